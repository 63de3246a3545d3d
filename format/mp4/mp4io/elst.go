package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

type EditListEntry struct {
	SegmentDuration   uint64
	MediaTime         int64
	MediaRateInteger  int16
	MediaRateFraction int16
}

// EditList is an elst box.
type EditList struct {
	FullBox
	Entries []EditListEntry
}

func (self *EditList) entryLen() int {
	if self.Version == 1 {
		return 20
	}
	return 12
}

func (self *EditList) fieldsLen() int {
	return FullHeaderSize + 4 + self.entryLen()*len(self.Entries)
}

func (self *EditList) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		if self.Version == 1 {
			pio.PutU64BE(b[n:], entry.SegmentDuration)
			n += 8
			pio.PutI64BE(b[n:], entry.MediaTime)
			n += 8
		} else {
			pio.PutU32BE(b[n:], uint32(entry.SegmentDuration))
			n += 4
			pio.PutI32BE(b[n:], int32(entry.MediaTime))
			n += 4
		}
		pio.PutI16BE(b[n:], entry.MediaRateInteger)
		n += 2
		pio.PutI16BE(b[n:], entry.MediaRateFraction)
		n += 2
	}
	return
}

func (self *EditList) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = readCount(b, n, self.entryLen(), offset); err != nil {
		return
	}
	self.Entries = make([]EditListEntry, count)
	for i := range self.Entries {
		entry := &self.Entries[i]
		if self.Version == 1 {
			entry.SegmentDuration = pio.U64BE(b[n:])
			n += 8
			entry.MediaTime = pio.I64BE(b[n:])
			n += 8
		} else {
			entry.SegmentDuration = uint64(pio.U32BE(b[n:]))
			n += 4
			entry.MediaTime = int64(pio.I32BE(b[n:]))
			n += 4
		}
		entry.MediaRateInteger = pio.I16BE(b[n:])
		n += 2
		entry.MediaRateFraction = pio.I16BE(b[n:])
		n += 2
	}
	return
}
