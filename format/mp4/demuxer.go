// Package mp4 extracts one track of an MP4 file into a standalone classical
// MP4. Fragmented sources are flattened into regular sample tables.
package mp4

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ugparu/mp4track/format/mp4/mp4io"
	"github.com/ugparu/mp4track/utils/bits/pio"
	"github.com/ugparu/mp4track/utils/logger"
)

// Layout is the way a source stores its samples.
type Layout int

const (
	LayoutAuto Layout = iota
	LayoutClassic
	LayoutFragmented
)

func (l Layout) String() string {
	switch l {
	case LayoutClassic:
		return "classic"
	case LayoutFragmented:
		return "fragmented"
	default:
		return "auto"
	}
}

// ParseLayout accepts "auto", "classic" and "fragmented".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return LayoutAuto, nil
	case "classic":
		return LayoutClassic, nil
	case "fragmented", "fmp4":
		return LayoutFragmented, nil
	}
	return LayoutAuto, fmt.Errorf("mp4: unknown layout %q", s)
}

// normalized tkhd flags of the extracted track
const trackFlags = mp4io.TrackEnabled | mp4io.TrackInMovie | mp4io.TrackInPreview | mp4io.TrackInPoster

const trackLanguage = "eng"

var errNoMoov = &mp4io.NotFoundError{What: "'moov' box"}

// extraction carries the source, the sink and the requested track through
// either layout.
type extraction struct {
	in      *mp4io.InputChannel
	out     *mp4io.OutputChannel
	trackID uint32
	tags    *Tags
}

func newExtraction(in io.ReadSeeker, out io.Writer, trackID uint32, tags *Tags) *extraction {
	return &extraction{
		in:      mp4io.NewInputChannel(in),
		out:     mp4io.NewOutputChannel(out),
		trackID: trackID,
		tags:    tags,
	}
}

func (e *extraction) String() string {
	return fmt.Sprintf("mp4 track %d", e.trackID)
}

// Extract detects the layout of in and extracts trackID into out. A zero
// trackID selects the first audio track.
func Extract(in io.ReadSeeker, out io.Writer, trackID uint32, tags *Tags) error {
	return ExtractLayout(in, out, LayoutAuto, trackID, tags)
}

// ExtractLayout is Extract with the layout forced unless it is LayoutAuto.
func ExtractLayout(in io.ReadSeeker, out io.Writer, layout Layout, trackID uint32, tags *Tags) (err error) {
	if layout == LayoutAuto {
		if layout, err = DetectLayout(in); err != nil {
			return
		}
	}
	logger.Debugf(layout, "extracting track %d", trackID)
	if layout == LayoutFragmented {
		return ExtractFragmentedTrack(in, out, trackID, tags)
	}
	return ExtractTrack(in, out, trackID, tags)
}

// ExtractFile extracts trackID of the file src into a new file dst. Both files
// are closed on return and dst is removed when extraction fails.
func ExtractFile(src, dst string, trackID uint32, tags *Tags) (err error) {
	return ExtractFileLayout(src, dst, LayoutAuto, trackID, tags)
}

// ExtractFileLayout is ExtractFile with a forced layout.
func ExtractFileLayout(src, dst string, layout Layout, trackID uint32, tags *Tags) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return
	}
	defer in.Close()

	f, err := os.Create(dst)
	if err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			if rerr := os.Remove(dst); rerr != nil {
				logger.Warningf(dst, "remove partial output: %v", rerr)
			}
		}
	}()

	w := bufio.NewWriterSize(f, pio.RecommendBufioSize)
	if err = ExtractLayout(in, w, layout, trackID, tags); err != nil {
		return
	}
	return w.Flush()
}

// DetectLayout reads the top-level boxes of in up to and including moov and
// rewinds it. A moov holding mvex, or a moof before moov, means fragmented.
func DetectLayout(in io.ReadSeeker) (layout Layout, err error) {
	start, err := in.Seek(0, io.SeekCurrent)
	if err != nil {
		return
	}
	defer func() {
		if _, serr := in.Seek(start, io.SeekStart); serr != nil && err == nil {
			err = serr
		}
	}()

	ch := mp4io.NewInputChannel(in)
	for {
		var box mp4io.Box
		if box, err = mp4io.ReadBox(ch); err != nil {
			if errors.Is(err, io.EOF) {
				err = errNoMoov
			}
			return
		}
		switch box.Base().Type {
		case mp4io.MOOF:
			return LayoutFragmented, nil
		case mp4io.MOOV:
			if mp4io.FindChild(box, mp4io.MVEX) != nil {
				return LayoutFragmented, nil
			}
			return LayoutClassic, nil
		case mp4io.MDAT:
			if err = ch.Skip(box.(*mp4io.MediaData).DataLen); err != nil {
				return
			}
		}
	}
}

// AudioTrackID returns the id of the first track whose media information is
// a sound header.
func AudioTrackID(boxes []mp4io.Box) (uint32, error) {
	parents := mp4io.IndexParents(boxes)
	for _, smhd := range mp4io.FindAll(boxes, mp4io.SMHD) {
		trak := parents.Ancestor(smhd, mp4io.TRAK)
		if trak == nil {
			continue
		}
		if tkhd, ok := mp4io.Typed[*mp4io.TrackHeader](mp4io.FindChild(trak, mp4io.TKHD)); ok {
			return tkhd.TrackId, nil
		}
	}
	return 0, &mp4io.NotFoundError{What: "audio track"}
}

// selectTrack resolves the requested id, removes every other trak from moov
// and normalizes the header boxes of the kept one.
func (e *extraction) selectTrack(boxes []mp4io.Box, moov mp4io.Box) (trak mp4io.Box, err error) {
	if e.trackID == 0 {
		if e.trackID, err = AudioTrackID(boxes); err != nil {
			return
		}
		logger.Debug(e, "selected first audio track")
	}

	var tkhd *mp4io.TrackHeader
	for _, t := range mp4io.FindChildren(moov, mp4io.TRAK) {
		headers := mp4io.FindChildren(t, mp4io.TKHD)
		if len(headers) != 1 {
			return nil, mp4io.Malformed("trak.tkhd", t.Base().Offset)
		}
		if th, ok := headers[0].(*mp4io.TrackHeader); ok && th.TrackId == e.trackID && trak == nil {
			trak, tkhd = t, th
		}
	}
	if trak == nil {
		return nil, &mp4io.NotFoundError{What: fmt.Sprintf("track %d", e.trackID)}
	}

	base := moov.Base()
	kept := base.Boxes[:0]
	dropped := 0
	for _, child := range base.Boxes {
		if child.Base().Type == mp4io.TRAK && child != trak {
			dropped++
			continue
		}
		kept = append(kept, child)
	}
	clear(base.Boxes[len(kept):])
	base.Boxes = kept
	if dropped > 0 {
		logger.Warningf(e, "dropped %d other tracks", dropped)
	}

	mdhd, ok := mp4io.Typed[*mp4io.MediaHeader](mp4io.FindPath(trak, mp4io.MDIA, mp4io.MDHD))
	if !ok {
		return nil, mp4io.Malformed("mdia.mdhd", trak.Base().Offset)
	}
	tkhd.SetFlags(tkhd.Flags | trackFlags)
	mdhd.SetLanguageCode(trackLanguage)
	return
}

// sampleTable returns the stbl of trak and rejects tracks whose data lives
// outside the file.
func sampleTable(trak mp4io.Box) (mp4io.Box, error) {
	stbl := mp4io.FindPath(trak, mp4io.MDIA, mp4io.MINF, mp4io.STBL)
	if stbl == nil {
		return nil, mp4io.Malformed("minf.stbl", trak.Base().Offset)
	}
	if dref := mp4io.FindPath(trak, mp4io.MDIA, mp4io.MINF, mp4io.DINF, mp4io.DREF); dref != nil {
		for _, ref := range dref.Base().Boxes {
			if url, ok := ref.(*mp4io.DataReferURL); ok && url.Flags&1 == 0 {
				return nil, &mp4io.UnsupportedError{Feature: "external data reference", Offset: url.Offset}
			}
		}
	}
	return stbl, nil
}

// topLevel returns the first top-level box with the given type.
func topLevel(boxes []mp4io.Box, tag mp4io.Tag) mp4io.Box {
	for _, box := range boxes {
		if box.Base().Type == tag {
			return box
		}
	}
	return nil
}
