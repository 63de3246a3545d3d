package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

const (
	TFHDBaseDataOffset    = uint32(0x01)
	TFHDStsdID            = uint32(0x02)
	TFHDDefaultDuration   = uint32(0x08)
	TFHDDefaultSize       = uint32(0x10)
	TFHDDefaultFlags      = uint32(0x20)
	TFHDDurationIsEmpty   = uint32(0x010000)
	TFHDDefaultBaseIsMOOF = uint32(0x020000)
)

// TrackFragHeader is a tfhd box. Optional fields are present when the
// matching flag is set.
type TrackFragHeader struct {
	FullBox
	TrackId         uint32
	BaseDataOffset  uint64
	StsdId          uint32
	DefaultDuration uint32
	DefaultSize     uint32
	DefaultFlags    uint32
}

func (self *TrackFragHeader) fieldsLen() (n int) {
	n += FullHeaderSize
	n += 4
	if self.Flags&TFHDBaseDataOffset != 0 {
		n += 8
	}
	if self.Flags&TFHDStsdID != 0 {
		n += 4
	}
	if self.Flags&TFHDDefaultDuration != 0 {
		n += 4
	}
	if self.Flags&TFHDDefaultSize != 0 {
		n += 4
	}
	if self.Flags&TFHDDefaultFlags != 0 {
		n += 4
	}
	return
}

func (self *TrackFragHeader) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], self.TrackId)
	n += 4
	if self.Flags&TFHDBaseDataOffset != 0 {
		pio.PutU64BE(b[n:], self.BaseDataOffset)
		n += 8
	}
	if self.Flags&TFHDStsdID != 0 {
		pio.PutU32BE(b[n:], self.StsdId)
		n += 4
	}
	if self.Flags&TFHDDefaultDuration != 0 {
		pio.PutU32BE(b[n:], self.DefaultDuration)
		n += 4
	}
	if self.Flags&TFHDDefaultSize != 0 {
		pio.PutU32BE(b[n:], self.DefaultSize)
		n += 4
	}
	if self.Flags&TFHDDefaultFlags != 0 {
		pio.PutU32BE(b[n:], self.DefaultFlags)
		n += 4
	}
	return
}

func (self *TrackFragHeader) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < self.fieldsLen() {
		err = parseErr("TrackFragHeader", int64(n)+offset, err)
		return
	}
	self.TrackId = pio.U32BE(b[n:])
	n += 4
	if self.Flags&TFHDBaseDataOffset != 0 {
		self.BaseDataOffset = pio.U64BE(b[n:])
		n += 8
	}
	if self.Flags&TFHDStsdID != 0 {
		self.StsdId = pio.U32BE(b[n:])
		n += 4
	}
	if self.Flags&TFHDDefaultDuration != 0 {
		self.DefaultDuration = pio.U32BE(b[n:])
		n += 4
	}
	if self.Flags&TFHDDefaultSize != 0 {
		self.DefaultSize = pio.U32BE(b[n:])
		n += 4
	}
	if self.Flags&TFHDDefaultFlags != 0 {
		self.DefaultFlags = pio.U32BE(b[n:])
		n += 4
	}
	return
}
