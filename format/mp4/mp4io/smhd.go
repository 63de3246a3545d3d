package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// SoundMediaInfo is an smhd box; its presence marks an audio track.
type SoundMediaInfo struct {
	FullBox
	Balance int16
}

func (self *SoundMediaInfo) fieldsLen() int {
	return FullHeaderSize + 4
}

func (self *SoundMediaInfo) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutI16BE(b[n:], self.Balance)
	n += 2
	pio.PutU16BE(b[n:], 0)
	n += 2
	return
}

func (self *SoundMediaInfo) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("Balance", int64(n)+offset, err)
		return
	}
	self.Balance = pio.I16BE(b[n:])
	n += 2
	n += 2
	return
}

// HintMediaInfo is an hmhd box.
type HintMediaInfo struct {
	FullBox
	MaxPDUSize uint16
	AvgPDUSize uint16
	MaxBitrate uint32
	AvgBitrate uint32
}

func (self *HintMediaInfo) fieldsLen() int {
	return FullHeaderSize + 16
}

func (self *HintMediaInfo) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU16BE(b[n:], self.MaxPDUSize)
	n += 2
	pio.PutU16BE(b[n:], self.AvgPDUSize)
	n += 2
	pio.PutU32BE(b[n:], self.MaxBitrate)
	n += 4
	pio.PutU32BE(b[n:], self.AvgBitrate)
	n += 4
	pio.PutU32BE(b[n:], 0)
	n += 4
	return
}

func (self *HintMediaInfo) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+16 {
		err = parseErr("AvgBitrate", int64(n)+offset, err)
		return
	}
	self.MaxPDUSize = pio.U16BE(b[n:])
	n += 2
	self.AvgPDUSize = pio.U16BE(b[n:])
	n += 2
	self.MaxBitrate = pio.U32BE(b[n:])
	n += 4
	self.AvgBitrate = pio.U32BE(b[n:])
	n += 4
	n += 4
	return
}

// NullMediaInfo is an nmhd box.
type NullMediaInfo struct {
	FullBox
}

func (self *NullMediaInfo) fieldsLen() int {
	return FullHeaderSize
}

func (self *NullMediaInfo) marshalFields(b []byte) int {
	return self.marshalFull(b)
}

func (self *NullMediaInfo) unmarshalFields(b []byte, offset int64) (int, error) {
	return self.unmarshalFull(b, offset)
}
