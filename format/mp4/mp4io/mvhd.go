package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// MovieHeader is an mvhd box. Times are seconds since 1904, version 1 stores
// them in 64 bits.
type MovieHeader struct {
	FullBox
	CreateTime      uint64
	ModifyTime      uint64
	TimeScale       uint32
	Duration        uint64
	PreferredRate   int32
	PreferredVolume int16
	Reserved        [10]byte
	Matrix          [9]int32
	PreDefined      [24]byte
	NextTrackId     uint32
}

func (self *MovieHeader) fieldsLen() (n int) {
	n += FullHeaderSize
	if self.Version == 1 {
		n += 8 + 8 + 4 + 8
	} else {
		n += 4 + 4 + 4 + 4
	}
	n += 4
	n += 2
	n += len(self.Reserved)
	n += 4 * len(self.Matrix)
	n += len(self.PreDefined)
	n += 4
	return
}

func (self *MovieHeader) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	if self.Version == 1 {
		pio.PutU64BE(b[n:], self.CreateTime)
		n += 8
		pio.PutU64BE(b[n:], self.ModifyTime)
		n += 8
		pio.PutU32BE(b[n:], self.TimeScale)
		n += 4
		pio.PutU64BE(b[n:], self.Duration)
		n += 8
	} else {
		pio.PutU32BE(b[n:], uint32(self.CreateTime))
		n += 4
		pio.PutU32BE(b[n:], uint32(self.ModifyTime))
		n += 4
		pio.PutU32BE(b[n:], self.TimeScale)
		n += 4
		pio.PutU32BE(b[n:], uint32(self.Duration))
		n += 4
	}
	pio.PutI32BE(b[n:], self.PreferredRate)
	n += 4
	pio.PutI16BE(b[n:], self.PreferredVolume)
	n += 2
	n += copy(b[n:], self.Reserved[:])
	for _, entry := range self.Matrix {
		pio.PutI32BE(b[n:], entry)
		n += 4
	}
	n += copy(b[n:], self.PreDefined[:])
	pio.PutU32BE(b[n:], self.NextTrackId)
	n += 4
	return
}

func (self *MovieHeader) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if self.Version == 1 {
		if len(b) < n+28 {
			err = parseErr("Duration", int64(n)+offset, err)
			return
		}
		self.CreateTime = pio.U64BE(b[n:])
		n += 8
		self.ModifyTime = pio.U64BE(b[n:])
		n += 8
		self.TimeScale = pio.U32BE(b[n:])
		n += 4
		self.Duration = pio.U64BE(b[n:])
		n += 8
	} else {
		if len(b) < n+16 {
			err = parseErr("Duration", int64(n)+offset, err)
			return
		}
		self.CreateTime = uint64(pio.U32BE(b[n:]))
		n += 4
		self.ModifyTime = uint64(pio.U32BE(b[n:]))
		n += 4
		self.TimeScale = pio.U32BE(b[n:])
		n += 4
		self.Duration = uint64(pio.U32BE(b[n:]))
		n += 4
	}
	if len(b) < n+4+2+len(self.Reserved)+4*len(self.Matrix)+len(self.PreDefined)+4 {
		err = parseErr("NextTrackId", int64(n)+offset, err)
		return
	}
	self.PreferredRate = pio.I32BE(b[n:])
	n += 4
	self.PreferredVolume = pio.I16BE(b[n:])
	n += 2
	n += copy(self.Reserved[:], b[n:])
	for i := range self.Matrix {
		self.Matrix[i] = pio.I32BE(b[n:])
		n += 4
	}
	n += copy(self.PreDefined[:], b[n:])
	self.NextTrackId = pio.U32BE(b[n:])
	n += 4
	return
}
