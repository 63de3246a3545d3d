package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// SyncSample is an stss box listing 1-based sync sample numbers.
type SyncSample struct {
	FullBox
	Entries []uint32
}

func (self *SyncSample) fieldsLen() int {
	return FullHeaderSize + 4 + 4*len(self.Entries)
}

func (self *SyncSample) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		pio.PutU32BE(b[n:], entry)
		n += 4
	}
	return
}

func (self *SyncSample) unmarshalFields(b []byte, offset int64) (n int, err error) {
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

type ShadowSyncEntry struct {
	ShadowedSample uint32
	SyncSample     uint32
}

// ShadowSyncSample is an stsh box.
type ShadowSyncSample struct {
	FullBox
	Entries []ShadowSyncEntry
}

func (self *ShadowSyncSample) fieldsLen() int {
	return FullHeaderSize + 4 + 8*len(self.Entries)
}

func (self *ShadowSyncSample) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		pio.PutU32BE(b[n:], entry.ShadowedSample)
		n += 4
		pio.PutU32BE(b[n:], entry.SyncSample)
		n += 4
	}
	return
}

func (self *ShadowSyncSample) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = readCount(b, n, 8, offset); err != nil {
		return
	}
	self.Entries = make([]ShadowSyncEntry, count)
	for i := range self.Entries {
		self.Entries[i].ShadowedSample = pio.U32BE(b[n:])
		n += 4
		self.Entries[i].SyncSample = pio.U32BE(b[n:])
		n += 4
	}
	return
}
