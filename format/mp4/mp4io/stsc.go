package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// SampleToChunk is an stsc box. Each entry applies from FirstChunk up to the
// chunk before the next entry's FirstChunk; the last one runs to the final chunk.
type SampleToChunk struct {
	FullBox
	Entries []SampleToChunkEntry
}

func (self *SampleToChunk) fieldsLen() int {
	return FullHeaderSize + 4 + LenSampleToChunkEntry*len(self.Entries)
}

func (self *SampleToChunk) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		PutSampleToChunkEntry(b[n:], entry)
		n += LenSampleToChunkEntry
	}
	return
}

func (self *SampleToChunk) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = readCount(b, n, LenSampleToChunkEntry, offset); err != nil {
		return
	}
	self.Entries = make([]SampleToChunkEntry, count)
	for i := range self.Entries {
		self.Entries[i] = GetSampleToChunkEntry(b[n:])
		n += LenSampleToChunkEntry
	}
	return
}
