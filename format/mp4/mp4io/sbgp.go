package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

type SampleToGroupEntry struct {
	SampleCount           uint32
	GroupDescriptionIndex uint32
}

// SampleToGroup is an sbgp box.
type SampleToGroup struct {
	FullBox
	GroupingType          Tag
	GroupingTypeParameter uint32 // version 1 only
	Entries               []SampleToGroupEntry
}

func (self *SampleToGroup) fieldsLen() (n int) {
	n += FullHeaderSize
	n += 4
	if self.Version == 1 {
		n += 4
	}
	n += 4
	n += 8 * len(self.Entries)
	return
}

func (self *SampleToGroup) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(self.GroupingType))
	n += 4
	if self.Version == 1 {
		pio.PutU32BE(b[n:], self.GroupingTypeParameter)
		n += 4
	}
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		pio.PutU32BE(b[n:], entry.SampleCount)
		n += 4
		pio.PutU32BE(b[n:], entry.GroupDescriptionIndex)
		n += 4
	}
	return
}

func (self *SampleToGroup) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("GroupingType", int64(n)+offset, err)
		return
	}
	self.GroupingType = Tag(pio.U32BE(b[n:]))
	n += 4
	if self.Version == 1 {
		if len(b) < n+4 {
			err = parseErr("GroupingTypeParameter", int64(n)+offset, err)
			return
		}
		self.GroupingTypeParameter = pio.U32BE(b[n:])
		n += 4
	}
	var count int
	if count, n, err = readCount(b, n, 8, offset); err != nil {
		return
	}
	self.Entries = make([]SampleToGroupEntry, count)
	for i := range self.Entries {
		self.Entries[i].SampleCount = pio.U32BE(b[n:])
		n += 4
		self.Entries[i].GroupDescriptionIndex = pio.U32BE(b[n:])
		n += 4
	}
	return
}
