package mp4

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ugparu/mp4track/format/mp4/mp4io"
)

// Tags is the metadata written into moov/udta of the output.
type Tags struct {
	Title  string
	Author string
	Album  string // composed from title, author and source when empty
	Source string
	Cover  []byte // JPEG or PNG, see NormalizeCover

	// CompatibleBrands replaces the ftyp compatible brands when non-empty.
	CompatibleBrands []string
}

// AlbumName is the value of the album item.
func (t *Tags) AlbumName() string {
	if t.Album != "" {
		return t.Album
	}
	album := joinNonEmpty(t.Title, t.Author)
	if t.Source != "" {
		album = joinNonEmpty(album, "via "+t.Source)
	}
	return album
}

// AlbumArtist is the value of the album artist item.
func (t *Tags) AlbumArtist() string {
	return joinNonEmpty(t.Title, t.Author)
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// BuildUdta builds udta/meta/hdlr+ilst holding title, author, album artist,
// album, media kind and cover.
func BuildUdta(tags *Tags) *mp4io.Container {
	ilst := mp4io.NewContainer(mp4io.ILST)
	if tags.Title != "" {
		ilst.Add(mp4io.NewTextItem(mp4io.NAME, tags.Title))
	}
	if tags.Author != "" {
		ilst.Add(mp4io.NewTextItem(mp4io.ARTIST, tags.Author))
	}
	if s := tags.AlbumArtist(); s != "" {
		ilst.Add(mp4io.NewTextItem(mp4io.ALBUMARTIST, s))
	}
	if s := tags.AlbumName(); s != "" {
		ilst.Add(mp4io.NewTextItem(mp4io.ALBUM, s))
	}
	ilst.Add(mp4io.NewAppleItem(mp4io.STIK, mp4io.DataTypeInteger, []byte{mp4io.MediaKindNormal}))
	if len(tags.Cover) > 0 {
		ilst.Add(mp4io.NewAppleItem(mp4io.COVR, coverDataType(tags.Cover), tags.Cover))
	}

	hdlr := mp4io.New[*mp4io.HandlerRefer](mp4io.HDLR)
	hdlr.Type = mp4io.MDIR
	hdlr.Reserved[0] = uint32(mp4io.APPL)
	hdlr.Name = []byte{0}

	meta := mp4io.New[*mp4io.Meta](mp4io.META)
	meta.Add(hdlr, ilst)
	return mp4io.NewContainer(mp4io.UDTA, meta)
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func coverDataType(b []byte) uint32 {
	switch {
	case bytes.HasPrefix(b, pngMagic):
		return mp4io.DataTypePNG
	case bytes.HasPrefix(b, []byte("BM")):
		return mp4io.DataTypeBMP
	default:
		return mp4io.DataTypeJPEG
	}
}

// ApplyTags replaces moov/udta with BuildUdta(tags) and, when
// tags.CompatibleBrands is set, the compatible brands of ftyp. A missing
// ftyp is created in front of the list.
func ApplyTags(boxes []mp4io.Box, tags *Tags) ([]mp4io.Box, error) {
	moov := topLevel(boxes, mp4io.MOOV)
	if moov == nil {
		return boxes, errNoMoov
	}
	brands := make([]mp4io.Tag, 0, len(tags.CompatibleBrands))
	for _, b := range tags.CompatibleBrands {
		if n := len(b); n == 0 || n > 4 {
			return boxes, fmt.Errorf("mp4: brand %q is not a four character code", b)
		}
		brands = append(brands, mp4io.StringToTag(fmt.Sprintf("%-4s", b)))
	}

	mp4io.ReplaceChild(moov, BuildUdta(tags))
	if len(brands) == 0 {
		return boxes, nil
	}

	ftyp, ok := mp4io.Typed[*mp4io.FileType](topLevel(boxes, mp4io.FTYP))
	if !ok {
		ftyp = mp4io.New[*mp4io.FileType](mp4io.FTYP)
		ftyp.MajorBrand = brands[0]
		boxes = append([]mp4io.Box{ftyp}, boxes...)
	}
	ftyp.CompatibleBrands = brands
	return boxes, nil
}
