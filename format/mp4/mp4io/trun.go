package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

const (
	TRUNDataOffset       = uint32(0x01)
	TRUNFirstSampleFlags = uint32(0x04)
	TRUNSampleDuration   = uint32(0x100)
	TRUNSampleSize       = uint32(0x200)
	TRUNSampleFlags      = uint32(0x400)
	TRUNSampleCTS        = uint32(0x800)

	maxRunSamples = 1 << 24
)

type TrackFragRunEntry struct {
	Duration uint32
	Size     uint32
	Flags    uint32
	CTS      int32
}

// TrackFragRun is a trun box. Per-sample fields are present when the
// matching flag is set.
type TrackFragRun struct {
	FullBox
	DataOffset       int32
	FirstSampleFlags uint32
	Entries          []TrackFragRunEntry
}

func (self *TrackFragRun) entryLen() (n int) {
	for _, f := range []uint32{TRUNSampleDuration, TRUNSampleSize, TRUNSampleFlags, TRUNSampleCTS} {
		if self.Flags&f != 0 {
			n += 4
		}
	}
	return
}

func (self *TrackFragRun) fieldsLen() (n int) {
	n += FullHeaderSize
	n += 4
	if self.Flags&TRUNDataOffset != 0 {
		n += 4
	}
	if self.Flags&TRUNFirstSampleFlags != 0 {
		n += 4
	}
	n += self.entryLen() * len(self.Entries)
	return
}

func (self *TrackFragRun) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Entries)))
	n += 4
	if self.Flags&TRUNDataOffset != 0 {
		pio.PutI32BE(b[n:], self.DataOffset)
		n += 4
	}
	if self.Flags&TRUNFirstSampleFlags != 0 {
		pio.PutU32BE(b[n:], self.FirstSampleFlags)
		n += 4
	}
	for _, entry := range self.Entries {
		if self.Flags&TRUNSampleDuration != 0 {
			pio.PutU32BE(b[n:], entry.Duration)
			n += 4
		}
		if self.Flags&TRUNSampleSize != 0 {
			pio.PutU32BE(b[n:], entry.Size)
			n += 4
		}
		if self.Flags&TRUNSampleFlags != 0 {
			pio.PutU32BE(b[n:], entry.Flags)
			n += 4
		}
		if self.Flags&TRUNSampleCTS != 0 {
			pio.PutI32BE(b[n:], entry.CTS)
			n += 4
		}
	}
	return
}

func (self *TrackFragRun) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("SampleCount", int64(n)+offset, err)
		return
	}
	count := pio.U32BE(b[n:])
	n += 4
	if self.Flags&TRUNDataOffset != 0 {
		if len(b) < n+4 {
			err = parseErr("DataOffset", int64(n)+offset, err)
			return
		}
		self.DataOffset = pio.I32BE(b[n:])
		n += 4
	}
	if self.Flags&TRUNFirstSampleFlags != 0 {
		if len(b) < n+4 {
			err = parseErr("FirstSampleFlags", int64(n)+offset, err)
			return
		}
		self.FirstSampleFlags = pio.U32BE(b[n:])
		n += 4
	}
	if count > maxRunSamples || uint64(count)*uint64(self.entryLen()) > uint64(len(b)-n) {
		err = parseErr("Entries", int64(n)+offset, err)
		return
	}
	self.Entries = make([]TrackFragRunEntry, count)
	for i := range self.Entries {
		entry := &self.Entries[i]
		if self.Flags&TRUNSampleDuration != 0 {
			entry.Duration = pio.U32BE(b[n:])
			n += 4
		}
		if self.Flags&TRUNSampleSize != 0 {
			entry.Size = pio.U32BE(b[n:])
			n += 4
		}
		if self.Flags&TRUNSampleFlags != 0 {
			entry.Flags = pio.U32BE(b[n:])
			n += 4
		}
		if self.Flags&TRUNSampleCTS != 0 {
			entry.CTS = pio.I32BE(b[n:])
			n += 4
		}
	}
	return
}
