package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// CompositionOffset is a ctts box.
type CompositionOffset struct {
	FullBox
	Entries []CompositionOffsetEntry
}

// Append adds one sample offset, extending the last run when it repeats.
func (self *CompositionOffset) Append(offset int32) {
	if l := len(self.Entries); l > 0 && self.Entries[l-1].Offset == offset {
		self.Entries[l-1].Count++
		return
	}
	self.Entries = append(self.Entries, CompositionOffsetEntry{Count: 1, Offset: offset})
}

func (self *CompositionOffset) fieldsLen() int {
	return FullHeaderSize + 4 + LenCompositionOffsetEntry*len(self.Entries)
}

func (self *CompositionOffset) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		PutCompositionOffsetEntry(b[n:], entry)
		n += LenCompositionOffsetEntry
	}
	return
}

func (self *CompositionOffset) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = readCount(b, n, LenCompositionOffsetEntry, offset); err != nil {
		return
	}
	self.Entries = make([]CompositionOffsetEntry, count)
	for i := range self.Entries {
		self.Entries[i] = GetCompositionOffsetEntry(b[n:])
		n += LenCompositionOffsetEntry
	}
	return
}
