package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// ChunkOffset is an stco box with 32-bit offsets.
type ChunkOffset struct {
	FullBox
	Entries []uint32
}

func (self *ChunkOffset) ChunkCount() int {
	return len(self.Entries)
}

func (self *ChunkOffset) ChunkOffsetAt(i int) uint64 {
	return uint64(self.Entries[i])
}

func (self *ChunkOffset) fieldsLen() int {
	return FullHeaderSize + 4 + 4*len(self.Entries)
}

func (self *ChunkOffset) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		pio.PutU32BE(b[n:], entry)
		n += 4
	}
	return
}

func (self *ChunkOffset) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = readCount(b, n, 4, offset); err != nil {
		return
	}
	self.Entries = make([]uint32, count)
	for i := range self.Entries {
		self.Entries[i] = pio.U32BE(b[n:])
		n += 4
	}
	return
}

// ChunkLargeOffset is a co64 box.
type ChunkLargeOffset struct {
	FullBox
	Entries []uint64
}

func (self *ChunkLargeOffset) ChunkCount() int {
	return len(self.Entries)
}

func (self *ChunkLargeOffset) ChunkOffsetAt(i int) uint64 {
	return self.Entries[i]
}

func (self *ChunkLargeOffset) fieldsLen() int {
	return FullHeaderSize + 4 + 8*len(self.Entries)
}

func (self *ChunkLargeOffset) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		pio.PutU64BE(b[n:], entry)
		n += 8
	}
	return
}

func (self *ChunkLargeOffset) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = readCount(b, n, 8, offset); err != nil {
		return
	}
	self.Entries = make([]uint64, count)
	for i := range self.Entries {
		self.Entries[i] = pio.U64BE(b[n:])
		n += 8
	}
	return
}
