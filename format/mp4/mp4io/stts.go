package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// TimeToSample is an stts box.
type TimeToSample struct {
	FullBox
	Entries []TimeToSampleEntry
}

// Append adds one sample of the given duration, extending the last run when
// the duration repeats.
func (self *TimeToSample) Append(duration uint32) {
	if l := len(self.Entries); l > 0 && self.Entries[l-1].Duration == duration {
		self.Entries[l-1].Count++
		return
	}
	self.Entries = append(self.Entries, TimeToSampleEntry{Count: 1, Duration: duration})
}

// SampleCount sums the run counts.
func (self *TimeToSample) SampleCount() (n uint64) {
	for _, e := range self.Entries {
		n += uint64(e.Count)
	}
	return
}

// TotalDuration sums count*duration over all runs.
func (self *TimeToSample) TotalDuration() (d uint64) {
	for _, e := range self.Entries {
		d += uint64(e.Count) * uint64(e.Duration)
	}
	return
}

func (self *TimeToSample) fieldsLen() int {
	return FullHeaderSize + 4 + LenTimeToSampleEntry*len(self.Entries)
}

func (self *TimeToSample) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	for _, entry := range self.Entries {
		PutTimeToSampleEntry(b[n:], entry)
		n += LenTimeToSampleEntry
	}
	return
}

func (self *TimeToSample) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	var count int
	if count, n, err = readCount(b, n, LenTimeToSampleEntry, offset); err != nil {
		return
	}
	self.Entries = make([]TimeToSampleEntry, count)
	for i := range self.Entries {
		self.Entries[i] = GetTimeToSampleEntry(b[n:])
		n += LenTimeToSampleEntry
	}
	return
}
