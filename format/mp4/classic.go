package mp4

import (
	"fmt"
	"io"

	"github.com/ugparu/mp4track/format/mp4/mp4io"
	"github.com/ugparu/mp4track/utils/bits/pio"
	"github.com/ugparu/mp4track/utils/logger"
)

// chunk is a run of sample bytes copied verbatim from the source.
type chunk struct {
	offset int64 // absolute position in the source
	size   int64
}

// ExtractTrack copies trackID of a classical MP4 into out. The output holds
// every top-level box but mdat, with the other tracks removed from moov,
// followed by one mdat with the chunks of the track. A zero trackID selects
// the first audio track.
func ExtractTrack(in io.ReadSeeker, out io.Writer, trackID uint32, tags *Tags) error {
	return newExtraction(in, out, trackID, tags).classic()
}

func (e *extraction) classic() (err error) {
	boxes, err := mp4io.ReadBoxes(e.in, -1)
	if err != nil {
		return
	}
	moov := topLevel(boxes, mp4io.MOOV)
	if moov == nil {
		return errNoMoov
	}
	trak, err := e.selectTrack(boxes, moov)
	if err != nil {
		return
	}
	stbl, err := sampleTable(trak)
	if err != nil {
		return
	}
	chunks, err := chunkLayout(stbl)
	if err != nil {
		return
	}
	logger.Debugf(e, "classic source, %d chunks", len(chunks))

	head := mp4io.RemoveBoxes(boxes, mp4io.MDAT)
	if e.tags != nil {
		if head, err = ApplyTags(head, e.tags); err != nil {
			return
		}
	}
	return e.write(head, stbl, chunks)
}

// chunkLayout resolves the position and byte size of every chunk of stbl.
func chunkLayout(stbl mp4io.Box) ([]chunk, error) {
	sizes, ok := mp4io.Typed[mp4io.SampleSizes](mp4io.FindChild(stbl, mp4io.STSZ))
	if !ok {
		if sizes, ok = mp4io.Typed[mp4io.SampleSizes](mp4io.FindChild(stbl, mp4io.STZ2)); !ok {
			return nil, mp4io.Malformed("stbl.stsz", stbl.Base().Offset)
		}
	}
	nsamples := sizes.SampleCount()

	offsets, ok := mp4io.Typed[mp4io.ChunkOffsets](mp4io.FindChild(stbl, mp4io.STCO))
	if !ok {
		offsets, ok = mp4io.Typed[mp4io.ChunkOffsets](mp4io.FindChild(stbl, mp4io.CO64))
	}
	if !ok {
		if nsamples == 0 {
			return nil, nil
		}
		return nil, mp4io.Malformed("stbl.stco", stbl.Base().Offset)
	}
	nchunks := offsets.ChunkCount()
	if nsamples == 0 && nchunks == 0 {
		return nil, nil
	}

	stsc, ok := mp4io.Typed[*mp4io.SampleToChunk](mp4io.FindChild(stbl, mp4io.STSC))
	if !ok || len(stsc.Entries) == 0 || stsc.Entries[0].FirstChunk != 1 {
		return nil, mp4io.Malformed("stbl.stsc", stbl.Base().Offset)
	}

	chunks := make([]chunk, nchunks)
	sample := 0
	for i, entry := range stsc.Entries {
		if int64(entry.FirstChunk) > int64(nchunks) ||
			(i > 0 && entry.FirstChunk <= stsc.Entries[i-1].FirstChunk) {
			return nil, mp4io.Malformed("stsc.FirstChunk", stsc.Offset)
		}
		// the last run extends to the final chunk
		last := int64(nchunks)
		if i+1 < len(stsc.Entries) {
			last = min(last, int64(stsc.Entries[i+1].FirstChunk)-1)
		}
		for c := int64(entry.FirstChunk); c <= last; c++ {
			var size int64
			for range entry.SamplesPerChunk {
				if sample >= nsamples {
					return nil, mp4io.Malformed("stsc.SamplesPerChunk", stsc.Offset)
				}
				size += int64(sizes.SampleSizeAt(sample))
				sample++
			}
			offset, err := pio.Int64(offsets.ChunkOffsetAt(int(c - 1)))
			if err != nil {
				return nil, mp4io.Malformed("stco.Entries", offsets.Base().Offset)
			}
			chunks[c-1] = chunk{offset: offset, size: size}
		}
	}
	if sample != nsamples {
		return nil, mp4io.Malformed("stsz.SampleCount", sizes.Base().Offset)
	}
	return chunks, nil
}

// placeChunks points the chunk offset table of stbl at chunks stored back to
// back right after head, and returns the length of head. The table becomes
// co64 when the last offset does not fit 32 bits.
func placeChunks(stbl mp4io.Box, head []mp4io.Box, chunks []chunk) int64 {
	stco := mp4io.New[*mp4io.ChunkOffset](mp4io.STCO)
	stco.Entries = make([]uint32, len(chunks))
	setOffsetTable(stbl, stco)
	mp4io.UpdateAll(head)
	headLen := mp4io.HeadLen(head)

	last := headLen
	for _, c := range chunks[:max(len(chunks)-1, 0)] {
		last += c.size
	}
	if _, err := pio.Uint32(last); err == nil {
		pos := headLen
		for i, c := range chunks {
			stco.Entries[i] = uint32(pos)
			pos += c.size
		}
		return headLen
	}

	co64 := mp4io.New[*mp4io.ChunkLargeOffset](mp4io.CO64)
	co64.Entries = make([]uint64, len(chunks))
	setOffsetTable(stbl, co64)
	mp4io.UpdateAll(head)
	headLen = mp4io.HeadLen(head)
	pos := headLen
	for i, c := range chunks {
		co64.Entries[i] = uint64(pos)
		pos += c.size
	}
	return headLen
}

// setOffsetTable puts table in place of the stco or co64 of stbl.
func setOffsetTable(stbl mp4io.Box, table mp4io.Box) {
	base := stbl.Base()
	kept := base.Boxes[:0]
	placed := false
	for _, child := range base.Boxes {
		switch child.Base().Type {
		case mp4io.STCO, mp4io.CO64:
			if !placed {
				kept = append(kept, table)
				placed = true
			}
		default:
			kept = append(kept, child)
		}
	}
	clear(base.Boxes[len(kept):])
	base.Boxes = kept
	if !placed {
		base.Boxes = append(base.Boxes, table)
	}
}

// write emits head followed by one mdat holding chunks in order.
func (e *extraction) write(head []mp4io.Box, stbl mp4io.Box, chunks []chunk) (err error) {
	if err = e.checkChunks(chunks); err != nil {
		return
	}
	var dataLen int64
	for _, c := range chunks {
		dataLen += c.size
	}
	head = append(head, mp4io.NewMediaData(dataLen))
	headLen := placeChunks(stbl, head, chunks)
	logger.Debugf(e, "head %d bytes, %d payload bytes", headLen, dataLen)

	if err = mp4io.WriteBoxes(e.out, head); err != nil {
		return
	}
	if e.out.Count() != headLen {
		return fmt.Errorf("mp4: wrote %d head bytes, placed chunks after %d", e.out.Count(), headLen)
	}
	for _, c := range chunks {
		if c.size == 0 {
			continue
		}
		if err = e.in.Seek(c.offset); err != nil {
			return
		}
		if err = e.out.CopyN(e.in, c.size); err != nil {
			return
		}
	}
	return e.out.Flush()
}

// checkChunks rejects chunks outside the source before anything is written.
func (e *extraction) checkChunks(chunks []chunk) error {
	size, err := e.in.Size()
	if err != nil {
		return err
	}
	for _, c := range chunks {
		if c.offset < 0 || c.size < 0 || c.offset > size-c.size {
			return mp4io.Malformed("chunk", c.offset)
		}
	}
	return nil
}
