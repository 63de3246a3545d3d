package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// TrackExtend is a trex box: per-track defaults for fragments.
type TrackExtend struct {
	FullBox
	TrackId               uint32
	DefaultSampleDescIdx  uint32
	DefaultSampleDuration uint32
	DefaultSampleSize     uint32
	DefaultSampleFlags    uint32
}

func (self *TrackExtend) fieldsLen() int {
	return FullHeaderSize + 20
}

func (self *TrackExtend) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], self.TrackId)
	n += 4
	pio.PutU32BE(b[n:], self.DefaultSampleDescIdx)
	n += 4
	pio.PutU32BE(b[n:], self.DefaultSampleDuration)
	n += 4
	pio.PutU32BE(b[n:], self.DefaultSampleSize)
	n += 4
	pio.PutU32BE(b[n:], self.DefaultSampleFlags)
	n += 4
	return
}

func (self *TrackExtend) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+20 {
		err = parseErr("DefaultSampleFlags", int64(n)+offset, err)
		return
	}
	self.TrackId = pio.U32BE(b[n:])
	n += 4
	self.DefaultSampleDescIdx = pio.U32BE(b[n:])
	n += 4
	self.DefaultSampleDuration = pio.U32BE(b[n:])
	n += 4
	self.DefaultSampleSize = pio.U32BE(b[n:])
	n += 4
	self.DefaultSampleFlags = pio.U32BE(b[n:])
	n += 4
	return
}

// MovieExtendsHeader is an mehd box.
type MovieExtendsHeader struct {
	FullBox
	FragmentDuration uint64
}

func (self *MovieExtendsHeader) fieldsLen() int {
	if self.Version == 1 {
		return FullHeaderSize + 8
	}
	return FullHeaderSize + 4
}

func (self *MovieExtendsHeader) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	if self.Version == 1 {
		pio.PutU64BE(b[n:], self.FragmentDuration)
		n += 8
	} else {
		pio.PutU32BE(b[n:], uint32(self.FragmentDuration))
		n += 4
	}
	return
}

func (self *MovieExtendsHeader) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if self.Version == 1 {
		if len(b) < n+8 {
			err = parseErr("FragmentDuration", int64(n)+offset, err)
			return
		}
		self.FragmentDuration = pio.U64BE(b[n:])
		n += 8
	} else {
		if len(b) < n+4 {
			err = parseErr("FragmentDuration", int64(n)+offset, err)
			return
		}
		self.FragmentDuration = uint64(pio.U32BE(b[n:]))
		n += 4
	}
	return
}
