package mp4

import (
	"errors"
	"io"
	"math"
	"math/bits"

	"github.com/ugparu/mp4track/format/mp4/mp4io"
	"github.com/ugparu/mp4track/utils/bits/pio"
	"github.com/ugparu/mp4track/utils/logger"
)

// ExtractFragmentedTrack flattens trackID of a fragmented MP4 into a
// classical file. Each trun of the track becomes one chunk; its samples are
// appended to freshly built sample tables. A zero trackID selects the first
// audio track.
func ExtractFragmentedTrack(in io.ReadSeeker, out io.Writer, trackID uint32, tags *Tags) error {
	return newExtraction(in, out, trackID, tags).fragmented()
}

func (e *extraction) fragmented() (err error) {
	var (
		head    []mp4io.Box
		moov    mp4io.Box
		trak    mp4io.Box
		scan    *fragmentScan
		dropped int
	)
	for {
		var box mp4io.Box
		if box, err = mp4io.ReadBox(e.in); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return
		}
		base := box.Base()
		switch base.Type {
		case mp4io.MOOV:
			if moov != nil {
				return mp4io.Malformed("moov", base.Offset)
			}
			moov = box
			if trak, err = e.selectTrack([]mp4io.Box{moov}, moov); err != nil {
				return
			}
			scan = newFragmentScan(e.trackID, moov)
			head = append(head, box)
		case mp4io.MOOF:
			if scan == nil {
				return mp4io.Malformed("moof", base.Offset)
			}
			if err = scan.moof(box); err != nil {
				return
			}
			dropped++
		case mp4io.MDAT:
			md := box.(*mp4io.MediaData)
			if scan != nil {
				if err = scan.mdat(md); err != nil {
					return
				}
			}
			if err = e.in.Skip(md.DataLen); err != nil {
				return
			}
			dropped++
		case mp4io.SIDX, mp4io.STYP, mp4io.MFRA:
			dropped++
		default:
			head = append(head, box)
		}
	}
	err = nil
	if scan == nil {
		return errNoMoov
	}
	if err = scan.flush(nil); err != nil {
		return
	}
	logger.Debugf(e, "%d fragments, %d samples in %d chunks", scan.fragments, scan.sampleNumber, len(scan.chunks))
	if dropped > 0 {
		logger.Warningf(e, "dropped %d fragment boxes", dropped)
	}

	stbl, err := sampleTable(trak)
	if err != nil {
		return
	}
	scan.install(stbl)
	mp4io.RemoveChildren(moov, mp4io.MVEX)
	if err = setDurations(moov, trak, scan.stts.TotalDuration()); err != nil {
		return
	}

	if e.tags != nil {
		if head, err = ApplyTags(head, e.tags); err != nil {
			return
		}
	}
	return e.write(head, stbl, scan.chunks)
}

// run is a trun of the current moof waiting to be placed in the source.
type run struct {
	offset  int64 // absolute; -1 until the next mdat places it
	size    int64
	samples uint32
	descIdx uint32
	trun    int64 // source offset of the trun box
	keep    bool  // run of the extracted track
}

// fragmentScan accumulates the sample tables of one track while the
// fragments go by.
type fragmentScan struct {
	trackID uint32
	trex    map[uint32]mp4io.TrackExtend

	pending      []run
	chunks       []chunk
	sampleNumber uint32
	fragments    int

	stts   *mp4io.TimeToSample
	ctts   *mp4io.CompositionOffset
	hasCTS bool
	stss   *mp4io.SyncSample
	stsz   *mp4io.SampleSize
	stsc   *mp4io.SampleToChunk
}

func newFragmentScan(trackID uint32, moov mp4io.Box) *fragmentScan {
	s := &fragmentScan{
		trackID: trackID,
		trex:    make(map[uint32]mp4io.TrackExtend),
		stts:    mp4io.New[*mp4io.TimeToSample](mp4io.STTS),
		ctts:    mp4io.New[*mp4io.CompositionOffset](mp4io.CTTS),
		stss:    mp4io.New[*mp4io.SyncSample](mp4io.STSS),
		stsz:    mp4io.New[*mp4io.SampleSize](mp4io.STSZ),
		stsc:    mp4io.New[*mp4io.SampleToChunk](mp4io.STSC),
	}
	if mvex := mp4io.FindChild(moov, mp4io.MVEX); mvex != nil {
		for _, box := range mp4io.FindChildren(mvex, mp4io.TREX) {
			if trex, ok := box.(*mp4io.TrackExtend); ok {
				if _, dup := s.trex[trex.TrackId]; !dup {
					s.trex[trex.TrackId] = *trex
				}
			}
		}
	}
	return s
}

// moof reads the runs of one movie fragment. Runs of every track are
// measured: a traf without an explicit base continues where the data of the
// previous traf ended.
func (s *fragmentScan) moof(moof mp4io.Box) (err error) {
	if err = s.flush(nil); err != nil {
		return
	}
	s.fragments++
	start := moof.Base().Offset
	end := int64(-1) // end of the previous traf's data, -1 while it waits for an mdat
	for i, traf := range mp4io.FindChildren(moof, mp4io.TRAF) {
		tfhd, ok := mp4io.Typed[*mp4io.TrackFragHeader](mp4io.FindChild(traf, mp4io.TFHD))
		if !ok {
			return mp4io.Malformed("traf.tfhd", traf.Base().Offset)
		}

		// base resolves data offsets, first is where a run without one
		// begins (-1: the payload of the next mdat)
		base, first := start, int64(-1)
		switch {
		case tfhd.Flags&mp4io.TFHDBaseDataOffset != 0:
			if base, err = pio.Int64(tfhd.BaseDataOffset); err != nil {
				return mp4io.Malformed("tfhd.BaseDataOffset", tfhd.Offset)
			}
			first = base
		case tfhd.Flags&mp4io.TFHDDefaultBaseIsMOOF != 0:
			first = base
		case i > 0 && end >= 0:
			base, first = end, end
		}

		next := first
		for _, box := range mp4io.FindChildren(traf, mp4io.TRUN) {
			trun := box.(*mp4io.TrackFragRun)
			r := run{trun: trun.Offset}
			if tfhd.TrackId == s.trackID {
				if r, err = s.addRun(tfhd, trun); err != nil {
					return
				}
			} else {
				r.size = s.runSize(tfhd, trun)
			}
			r.offset = next
			if trun.Flags&mp4io.TRUNDataOffset != 0 {
				r.offset = base + int64(trun.DataOffset)
				if r.offset < 0 {
					return mp4io.Malformed("trun.DataOffset", trun.Offset)
				}
			}
			if r.offset >= 0 {
				next = r.offset + r.size
			}
			if r.keep && r.samples > 0 || !r.keep && r.offset < 0 {
				s.pending = append(s.pending, r)
			}
		}
		end = next
	}
	return
}

// defaults returns the sample size, duration and flags a run falls back to.
func (s *fragmentScan) defaults(tfhd *mp4io.TrackFragHeader) (size, duration, flags uint32) {
	trex := s.trex[tfhd.TrackId]
	size, duration, flags = trex.DefaultSampleSize, trex.DefaultSampleDuration, trex.DefaultSampleFlags
	if tfhd.Flags&mp4io.TFHDDefaultSize != 0 {
		size = tfhd.DefaultSize
	}
	if tfhd.Flags&mp4io.TFHDDefaultDuration != 0 {
		duration = tfhd.DefaultDuration
	}
	if tfhd.Flags&mp4io.TFHDDefaultFlags != 0 {
		flags = tfhd.DefaultFlags
	}
	return
}

// runSize is the byte length of a run of another track.
func (s *fragmentScan) runSize(tfhd *mp4io.TrackFragHeader, trun *mp4io.TrackFragRun) (n int64) {
	size, _, _ := s.defaults(tfhd)
	for _, entry := range trun.Entries {
		if trun.Flags&mp4io.TRUNSampleSize != 0 {
			n += int64(entry.Size)
		} else {
			n += int64(size)
		}
	}
	return
}

// addRun appends the samples of trun to the tables. Field values come from
// the run entry, then the tfhd defaults, then the trex defaults.
func (s *fragmentScan) addRun(tfhd *mp4io.TrackFragHeader, trun *mp4io.TrackFragRun) (r run, err error) {
	if uint64(s.sampleNumber)+uint64(len(trun.Entries)) > math.MaxUint32 {
		return r, &mp4io.UnsupportedError{Feature: "more than 2^32 samples", Offset: trun.Offset}
	}
	r.trun = trun.Offset
	r.keep = true
	r.descIdx = max(s.trex[tfhd.TrackId].DefaultSampleDescIdx, 1)
	if tfhd.Flags&mp4io.TFHDStsdID != 0 {
		r.descIdx = tfhd.StsdId
	}
	defSize, defDuration, defFlags := s.defaults(tfhd)

	for i, entry := range trun.Entries {
		duration := defDuration
		if trun.Flags&mp4io.TRUNSampleDuration != 0 {
			duration = entry.Duration
		}

		size := defSize
		if trun.Flags&mp4io.TRUNSampleSize != 0 {
			size = entry.Size
		}

		flags := defFlags
		if i == 0 && trun.Flags&mp4io.TRUNFirstSampleFlags != 0 {
			flags = trun.FirstSampleFlags
		}
		if trun.Flags&mp4io.TRUNSampleFlags != 0 {
			flags = entry.Flags
		}

		var cts int32
		if trun.Flags&mp4io.TRUNSampleCTS != 0 {
			cts = entry.CTS
			s.hasCTS = true
		}

		s.sampleNumber++
		s.stts.Append(duration)
		s.ctts.Append(cts)
		s.stsz.Entries = append(s.stsz.Entries, size)
		if flags&mp4io.SampleIsNonSync == 0 {
			s.stss.Entries = append(s.stss.Entries, s.sampleNumber)
		}
		r.size += int64(size)
		r.samples++
	}
	return
}

// mdat places the pending runs that had no base at the start of md's
// payload, one after another.
func (s *fragmentScan) mdat(md *mp4io.MediaData) error {
	if len(s.pending) == 0 {
		return nil
	}
	return s.flush(md)
}

// flush turns the pending runs of the track into chunks. With a nil md
// every such run must already be placed.
func (s *fragmentScan) flush(md *mp4io.MediaData) error {
	var cursor int64
	for _, r := range s.pending {
		if r.offset < 0 {
			if md == nil {
				if !r.keep {
					continue
				}
				return mp4io.Malformed("trun.DataOffset", r.trun)
			}
			r.offset = md.PayloadOffset() + cursor
			cursor += r.size
			if r.keep && cursor > md.DataLen {
				return mp4io.Malformed("mdat", md.Offset)
			}
		}
		if !r.keep {
			continue
		}
		s.chunks = append(s.chunks, chunk{offset: r.offset, size: r.size})

		n := uint32(len(s.chunks))
		entries := s.stsc.Entries
		if last := len(entries) - 1; last < 0 ||
			entries[last].SamplesPerChunk != r.samples || entries[last].SampleDescId != r.descIdx {
			s.stsc.Entries = append(entries, mp4io.SampleToChunkEntry{
				FirstChunk:      n,
				SamplesPerChunk: r.samples,
				SampleDescId:    r.descIdx,
			})
		}
	}
	s.pending = s.pending[:0]
	return nil
}

// sample tables rebuilt from the fragments
var rebuiltTables = map[mp4io.Tag]bool{
	mp4io.STTS: true, mp4io.CTTS: true, mp4io.STSS: true, mp4io.STSH: true,
	mp4io.STSC: true, mp4io.STSZ: true, mp4io.STZ2: true,
	mp4io.STCO: true, mp4io.CO64: true, mp4io.SBGP: true,
}

// install replaces the sample tables of stbl. The chunk offset table is
// added by placeChunks.
func (s *fragmentScan) install(stbl mp4io.Box) {
	base := stbl.Base()
	kept := base.Boxes[:0]
	for _, child := range base.Boxes {
		if !rebuiltTables[child.Base().Type] {
			kept = append(kept, child)
		}
	}
	clear(base.Boxes[len(kept):])
	base.Boxes = kept

	s.stsz.SampleNumber = uint32(len(s.stsz.Entries))
	base.Add(s.stts)
	if s.hasCTS {
		for _, entry := range s.ctts.Entries {
			if entry.Offset < 0 {
				s.ctts.Version = 1
				break
			}
		}
		base.Add(s.ctts)
	}
	if len(s.stss.Entries) < int(s.sampleNumber) {
		base.Add(s.stss)
	}
	base.Add(s.stsc, s.stsz)
}

// setDurations stores the total sample duration in mdhd and the same length
// in the movie timescale in tkhd and mvhd.
func setDurations(moov, trak mp4io.Box, total uint64) error {
	mdhd, _ := mp4io.Typed[*mp4io.MediaHeader](mp4io.FindPath(trak, mp4io.MDIA, mp4io.MDHD))
	tkhd, _ := mp4io.Typed[*mp4io.TrackHeader](mp4io.FindChild(trak, mp4io.TKHD))
	mvhd, ok := mp4io.Typed[*mp4io.MovieHeader](mp4io.FindChild(moov, mp4io.MVHD))
	if !ok {
		return mp4io.Malformed("moov.mvhd", moov.Base().Offset)
	}

	mdhd.Duration = total
	if total > math.MaxUint32 {
		mdhd.Version = 1
	}

	movie := total
	if mdhd.TimeScale != 0 {
		hi, lo := bits.Mul64(total, uint64(mvhd.TimeScale))
		if hi < uint64(mdhd.TimeScale) {
			movie, _ = bits.Div64(hi, lo, uint64(mdhd.TimeScale))
		} else {
			movie = math.MaxUint64
		}
	}
	tkhd.Duration = movie
	mvhd.Duration = movie
	if movie > math.MaxUint32 {
		tkhd.Version = 1
		mvhd.Version = 1
	}
	return nil
}
