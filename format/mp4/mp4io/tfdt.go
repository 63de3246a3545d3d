package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// TrackFragDecodeTime is a tfdt box.
type TrackFragDecodeTime struct {
	FullBox
	BaseMediaDecodeTime uint64
}

func (self *TrackFragDecodeTime) fieldsLen() int {
	if self.Version == 1 {
		return FullHeaderSize + 8
	}
	return FullHeaderSize + 4
}

func (self *TrackFragDecodeTime) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	if self.Version == 1 {
		pio.PutU64BE(b[n:], self.BaseMediaDecodeTime)
		n += 8
	} else {
		pio.PutU32BE(b[n:], uint32(self.BaseMediaDecodeTime))
		n += 4
	}
	return
}

func (self *TrackFragDecodeTime) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if self.Version == 1 {
		if len(b) < n+8 {
			err = parseErr("BaseMediaDecodeTime", int64(n)+offset, err)
			return
		}
		self.BaseMediaDecodeTime = pio.U64BE(b[n:])
		n += 8
	} else {
		if len(b) < n+4 {
			err = parseErr("BaseMediaDecodeTime", int64(n)+offset, err)
			return
		}
		self.BaseMediaDecodeTime = uint64(pio.U32BE(b[n:]))
		n += 4
	}
	return
}
