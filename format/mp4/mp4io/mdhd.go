package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// MediaHeader is an mdhd box.
type MediaHeader struct {
	FullBox
	CreateTime uint64
	ModifyTime uint64
	TimeScale  uint32
	Duration   uint64
	Language   uint16 // ISO 639-2/T, three 5-bit letters
	Quality    uint16
}

// LanguageCode unpacks Language into three letters.
func (self *MediaHeader) LanguageCode() string {
	l := self.Language
	return string([]byte{
		byte(l>>10&0x1f) + 0x60,
		byte(l>>5&0x1f) + 0x60,
		byte(l&0x1f) + 0x60,
	})
}

// SetLanguageCode packs a three letter lower-case code.
func (self *MediaHeader) SetLanguageCode(code string) {
	var l uint16
	for i := 0; i < 3; i++ {
		c := byte('a')
		if i < len(code) {
			c = code[i]
		}
		l = l<<5 | uint16(c-0x60)&0x1f
	}
	self.Language = l
}

func (self *MediaHeader) fieldsLen() (n int) {
	n += FullHeaderSize
	if self.Version == 1 {
		n += 8 + 8 + 4 + 8
	} else {
		n += 4 + 4 + 4 + 4
	}
	n += 2
	n += 2
	return
}

func (self *MediaHeader) marshalFields(b []byte) (n int) {
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
	pio.PutU16BE(b[n:], self.Language)
	n += 2
	pio.PutU16BE(b[n:], self.Quality)
	n += 2
	return
}

func (self *MediaHeader) unmarshalFields(b []byte, offset int64) (n int, err error) {
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
	if len(b) < n+4 {
		err = parseErr("Language", int64(n)+offset, err)
		return
	}
	self.Language = pio.U16BE(b[n:])
	n += 2
	self.Quality = pio.U16BE(b[n:])
	n += 2
	return
}
