package mp4io

import (
	"fmt"

	"github.com/ugparu/mp4track/utils/bits/pio"
)

// SampleSize is an stsz box. A non-zero SampleSize means every one of
// SampleNumber samples has that size and Entries is empty.
type SampleSize struct {
	FullBox
	SampleSize   uint32
	SampleNumber uint32
	Entries      []uint32
}

func (self *SampleSize) SampleCount() int {
	if self.SampleSize != 0 {
		return int(self.SampleNumber)
	}
	return len(self.Entries)
}

func (self *SampleSize) SampleSizeAt(i int) uint32 {
	if self.SampleSize != 0 {
		return self.SampleSize
	}
	return self.Entries[i]
}

func (self *SampleSize) fieldsLen() (n int) {
	n += FullHeaderSize
	n += 4
	n += 4
	if self.SampleSize != 0 {
		return
	}
	n += 4 * len(self.Entries)
	return
}

func (self *SampleSize) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], self.SampleSize)
	n += 4
	if self.SampleSize != 0 {
		pio.PutU32BE(b[n:], self.SampleNumber)
		n += 4
		return
	}
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		pio.PutU32BE(b[n:], entry)
		n += 4
	}
	return
}

func (self *SampleSize) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("SampleSize", int64(n)+offset, err)
		return
	}
	self.SampleSize = pio.U32BE(b[n:])
	n += 4
	if self.SampleSize != 0 {
		if len(b) < n+4 {
			err = parseErr("SampleNumber", int64(n)+offset, err)
			return
		}
		self.SampleNumber = pio.U32BE(b[n:])
		n += 4
		return
	}
	var count int
	if count, n, err = readCount(b, n, 4, offset); err != nil {
		return
	}
	self.SampleNumber = uint32(count)
	self.Entries = make([]uint32, count)
	for i := range self.Entries {
		self.Entries[i] = pio.U32BE(b[n:])
		n += 4
	}
	return
}

// CompactSampleSize is an stz2 box. Only 8 and 16 bit fields are handled;
// 4 bit fields are reported as unsupported.
type CompactSampleSize struct {
	FullBox
	FieldSize uint8
	Entries   []uint32
}

func (self *CompactSampleSize) SampleCount() int {
	return len(self.Entries)
}

func (self *CompactSampleSize) SampleSizeAt(i int) uint32 {
	return self.Entries[i]
}

func (self *CompactSampleSize) fieldsLen() int {
	return FullHeaderSize + 4 + 4 + len(self.Entries)*int(self.FieldSize)/8
}

func (self *CompactSampleSize) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU24BE(b[n:], 0)
	n += 3
	pio.PutU8(b[n:], self.FieldSize)
	n += 1
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		if self.FieldSize == 16 {
			pio.PutU16BE(b[n:], uint16(entry))
			n += 2
		} else {
			pio.PutU8(b[n:], uint8(entry))
			n += 1
		}
	}
	return
}

func (self *CompactSampleSize) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("FieldSize", int64(n)+offset, err)
		return
	}
	n += 3
	self.FieldSize = pio.U8(b[n:])
	switch self.FieldSize {
	case 8, 16:
	case 4:
		err = unsupported(fmt.Sprintf("stz2 field size %d", self.FieldSize), int64(n)+offset)
		return
	default:
		err = parseErr("FieldSize", int64(n)+offset, err)
		return
	}
	n += 1
	var count int
	if count, n, err = readCount(b, n, int(self.FieldSize)/8, offset); err != nil {
		return
	}
	self.Entries = make([]uint32, count)
	for i := range self.Entries {
		if self.FieldSize == 16 {
			self.Entries[i] = uint32(pio.U16BE(b[n:]))
			n += 2
		} else {
			self.Entries[i] = uint32(pio.U8(b[n:]))
			n += 1
		}
	}
	return
}
