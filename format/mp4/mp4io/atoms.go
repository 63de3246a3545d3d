package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

type TimeToSampleEntry struct {
	Count    uint32
	Duration uint32
}

func GetTimeToSampleEntry(b []byte) (self TimeToSampleEntry) {
	self.Count = pio.U32BE(b[0:])
	self.Duration = pio.U32BE(b[4:])
	return
}

func PutTimeToSampleEntry(b []byte, self TimeToSampleEntry) {
	pio.PutU32BE(b[0:], self.Count)
	pio.PutU32BE(b[4:], self.Duration)
}

const LenTimeToSampleEntry = 8

type SampleToChunkEntry struct {
	FirstChunk      uint32
	SamplesPerChunk uint32
	SampleDescId    uint32
}

func GetSampleToChunkEntry(b []byte) (self SampleToChunkEntry) {
	self.FirstChunk = pio.U32BE(b[0:])
	self.SamplesPerChunk = pio.U32BE(b[4:])
	self.SampleDescId = pio.U32BE(b[8:])
	return
}

func PutSampleToChunkEntry(b []byte, self SampleToChunkEntry) {
	pio.PutU32BE(b[0:], self.FirstChunk)
	pio.PutU32BE(b[4:], self.SamplesPerChunk)
	pio.PutU32BE(b[8:], self.SampleDescId)
}

const LenSampleToChunkEntry = 12

// CompositionOffsetEntry keeps the offset as stored; version 0 boxes declare
// it unsigned, version 1 signed.
type CompositionOffsetEntry struct {
	Count  uint32
	Offset int32
}

func GetCompositionOffsetEntry(b []byte) (self CompositionOffsetEntry) {
	self.Count = pio.U32BE(b[0:])
	self.Offset = pio.I32BE(b[4:])
	return
}

func PutCompositionOffsetEntry(b []byte, self CompositionOffsetEntry) {
	pio.PutU32BE(b[0:], self.Count)
	pio.PutI32BE(b[4:], self.Offset)
}

const LenCompositionOffsetEntry = 8

// SampleSizes is implemented by stsz and stz2.
type SampleSizes interface {
	Box
	SampleCount() int
	SampleSizeAt(i int) uint32
}

// ChunkOffsets is implemented by stco and co64.
type ChunkOffsets interface {
	Box
	ChunkCount() int
	ChunkOffsetAt(i int) uint64
}

// readCount reads a 32-bit entry count and checks that entries of entryLen
// bytes fit the rest of b.
func readCount(b []byte, n int, entryLen int, offset int64) (count int, next int, err error) {
	if len(b) < n+4 {
		err = parseErr("EntryCount", int64(n)+offset, err)
		return
	}
	c := pio.U32BE(b[n:])
	n += 4
	if uint64(c)*uint64(entryLen) > uint64(len(b)-n) {
		err = parseErr("Entries", int64(n)+offset, err)
		return
	}
	return int(c), n, nil
}
