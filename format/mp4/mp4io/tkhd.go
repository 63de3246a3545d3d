package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// Track header flags.
const (
	TrackEnabled   uint32 = 0x000001
	TrackInMovie   uint32 = 0x000002
	TrackInPreview uint32 = 0x000004
	TrackInPoster  uint32 = 0x000008
)

// TrackHeader is a tkhd box.
type TrackHeader struct {
	FullBox
	CreateTime     uint64
	ModifyTime     uint64
	TrackId        uint32
	Duration       uint64
	Layer          int16
	AlternateGroup int16
	Volume         int16
	Matrix         [9]int32
	TrackWidth     uint32 // 16.16 fixed point
	TrackHeight    uint32 // 16.16 fixed point
}

func (self *TrackHeader) fieldsLen() (n int) {
	n += FullHeaderSize
	if self.Version == 1 {
		n += 8 + 8 + 4 + 4 + 8
	} else {
		n += 4 + 4 + 4 + 4 + 4
	}
	n += 8
	n += 2
	n += 2
	n += 2
	n += 2
	n += 4 * len(self.Matrix)
	n += 4
	n += 4
	return
}

func (self *TrackHeader) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	if self.Version == 1 {
		pio.PutU64BE(b[n:], self.CreateTime)
		n += 8
		pio.PutU64BE(b[n:], self.ModifyTime)
		n += 8
		pio.PutU32BE(b[n:], self.TrackId)
		n += 4
		pio.PutU32BE(b[n:], 0)
		n += 4
		pio.PutU64BE(b[n:], self.Duration)
		n += 8
	} else {
		pio.PutU32BE(b[n:], uint32(self.CreateTime))
		n += 4
		pio.PutU32BE(b[n:], uint32(self.ModifyTime))
		n += 4
		pio.PutU32BE(b[n:], self.TrackId)
		n += 4
		pio.PutU32BE(b[n:], 0)
		n += 4
		pio.PutU32BE(b[n:], uint32(self.Duration))
		n += 4
	}
	pio.PutU64BE(b[n:], 0)
	n += 8
	pio.PutI16BE(b[n:], self.Layer)
	n += 2
	pio.PutI16BE(b[n:], self.AlternateGroup)
	n += 2
	pio.PutI16BE(b[n:], self.Volume)
	n += 2
	pio.PutU16BE(b[n:], 0)
	n += 2
	for _, entry := range self.Matrix {
		pio.PutI32BE(b[n:], entry)
		n += 4
	}
	pio.PutU32BE(b[n:], self.TrackWidth)
	n += 4
	pio.PutU32BE(b[n:], self.TrackHeight)
	n += 4
	return
}

func (self *TrackHeader) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if self.Version == 1 {
		if len(b) < n+32 {
			err = parseErr("Duration", int64(n)+offset, err)
			return
		}
		self.CreateTime = pio.U64BE(b[n:])
		n += 8
		self.ModifyTime = pio.U64BE(b[n:])
		n += 8
		self.TrackId = pio.U32BE(b[n:])
		n += 4
		n += 4
		self.Duration = pio.U64BE(b[n:])
		n += 8
	} else {
		if len(b) < n+20 {
			err = parseErr("Duration", int64(n)+offset, err)
			return
		}
		self.CreateTime = uint64(pio.U32BE(b[n:]))
		n += 4
		self.ModifyTime = uint64(pio.U32BE(b[n:]))
		n += 4
		self.TrackId = pio.U32BE(b[n:])
		n += 4
		n += 4
		self.Duration = uint64(pio.U32BE(b[n:]))
		n += 4
	}
	if len(b) < n+8+8+4*len(self.Matrix)+8 {
		err = parseErr("Matrix", int64(n)+offset, err)
		return
	}
	n += 8
	self.Layer = pio.I16BE(b[n:])
	n += 2
	self.AlternateGroup = pio.I16BE(b[n:])
	n += 2
	self.Volume = pio.I16BE(b[n:])
	n += 2
	n += 2
	for i := range self.Matrix {
		self.Matrix[i] = pio.I32BE(b[n:])
		n += 4
	}
	self.TrackWidth = pio.U32BE(b[n:])
	n += 4
	self.TrackHeight = pio.U32BE(b[n:])
	n += 4
	return
}
