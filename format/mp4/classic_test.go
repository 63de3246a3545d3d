package mp4

import (
	"bytes"
	"errors"
	"testing"

	mp4ff "github.com/Eyevinn/mp4ff/mp4"
	"github.com/stretchr/testify/require"

	"github.com/ugparu/mp4track/format/mp4/mp4io"
)

func topLevelTypes(boxes []mp4io.Box) (r []string) {
	for _, box := range boxes {
		r = append(r, box.Base().Type.String())
	}
	return
}

func TestExtractTrack(t *testing.T) {
	t.Parallel()

	for _, moovFirst := range []bool{true, false} {
		src := newClassicSource(t, moovFirst)

		var out bytes.Buffer
		require.NoError(t, ExtractTrack(bytes.NewReader(src.file), &out, audioID, nil))
		p := parse(t, out.Bytes())

		require.Equal(t, []string{"ftyp", "moov", "mdat"}, topLevelTypes(p.boxes))
		require.Equal(t, src.audio, p.data)

		tkhd := find[*mp4io.TrackHeader](t, p.trak, mp4io.TKHD)
		require.EqualValues(t, audioID, tkhd.TrackId)
		require.EqualValues(t, 0xf, tkhd.Flags)

		mdhd := find[*mp4io.MediaHeader](t, p.trak, mp4io.MDIA, mp4io.MDHD)
		require.Equal(t, "eng", mdhd.LanguageCode())
		require.EqualValues(t, 0x15c7, mdhd.Language)

		// the first chunk starts right after the head
		stco := find[*mp4io.ChunkOffset](t, p.stbl, mp4io.STCO)
		first := uint32(p.mdat.PayloadOffset())
		require.Equal(t, []uint32{first, first + 12}, stco.Entries)

		stsz := find[*mp4io.SampleSize](t, p.stbl, mp4io.STSZ)
		require.Equal(t, []uint32{3, 4, 5, 6, 7}, stsz.Entries)
		stsc := find[*mp4io.SampleToChunk](t, p.stbl, mp4io.STSC)
		require.Len(t, stsc.Entries, 2)
	}
}

func TestExtractTrackFirstAudio(t *testing.T) {
	t.Parallel()

	src := newClassicSource(t, true)
	var out bytes.Buffer
	require.NoError(t, ExtractTrack(bytes.NewReader(src.file), &out, 0, nil))
	p := parse(t, out.Bytes())
	require.EqualValues(t, audioID, find[*mp4io.TrackHeader](t, p.trak, mp4io.TKHD).TrackId)
	require.Equal(t, src.audio, p.data)
}

func TestExtractTrackVideo(t *testing.T) {
	t.Parallel()

	src := newClassicSource(t, true)
	var out bytes.Buffer
	require.NoError(t, ExtractTrack(bytes.NewReader(src.file), &out, videoID, nil))
	p := parse(t, out.Bytes())
	require.Equal(t, append(fill(10, 0x10), fill(11, 0x40)...), p.data)
	require.NotNil(t, mp4io.FindPath(p.trak, mp4io.MDIA, mp4io.MINF, mp4io.VMHD))
}

func TestExtractTrackKeepsSiblings(t *testing.T) {
	t.Parallel()

	free := mp4io.New[*mp4io.Free](mp4io.FREE)
	free.Data = []byte{1, 2, 3, 4}
	unk := &mp4io.Unknown{BaseBox: mp4io.BaseBox{Type: mp4io.StringToTag("abcd"), Offset: -1}, Data: []byte{9, 9}}

	for _, moovFirst := range []bool{true, false} {
		src := newClassicSource(t, moovFirst, free, unk)

		var out bytes.Buffer
		require.NoError(t, ExtractTrack(bytes.NewReader(src.file), &out, audioID, nil))
		p := parse(t, out.Bytes())
		require.Equal(t, []string{"ftyp", "moov", "free", "abcd", "mdat"}, topLevelTypes(p.boxes))
		require.Equal(t, []byte{1, 2, 3, 4}, p.boxes[2].(*mp4io.Free).Data)
		require.Equal(t, []byte{9, 9}, p.boxes[3].(*mp4io.Unknown).Data)
		require.Equal(t, src.audio, p.data)
	}
}

func TestExtractTrackNotFound(t *testing.T) {
	t.Parallel()

	src := newClassicSource(t, true)
	var out bytes.Buffer
	err := ExtractTrack(bytes.NewReader(src.file), &out, 99, nil)
	var nf *mp4io.NotFoundError
	require.True(t, errors.As(err, &nf), "%v", err)
	require.Zero(t, out.Len())

	_, err = AudioTrackID([]mp4io.Box{mp4io.NewContainer(mp4io.MOOV, newMvhd(),
		newTrak(videoID, false, newStbl("avc1", sampleTables(nil, nil, 0)...)))})
	require.True(t, errors.As(err, &nf))

	err = ExtractTrack(bytes.NewReader(encode(t, []mp4io.Box{newFtyp()})), &out, 0, nil)
	require.ErrorIs(t, err, errNoMoov)
}

func TestExtractTrackMalformedTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		change func(stbl mp4io.Box)
	}{
		{"first chunk not one", func(stbl mp4io.Box) {
			stbl.Base().Boxes[2].(*mp4io.SampleToChunk).Entries[0].FirstChunk = 2
		}},
		{"first chunks not increasing", func(stbl mp4io.Box) {
			stbl.Base().Boxes[2].(*mp4io.SampleToChunk).Entries[1].FirstChunk = 1
		}},
		{"first chunk past the table", func(stbl mp4io.Box) {
			stbl.Base().Boxes[2].(*mp4io.SampleToChunk).Entries[1].FirstChunk = 3
		}},
		{"empty stsc", func(stbl mp4io.Box) {
			stbl.Base().Boxes[2].(*mp4io.SampleToChunk).Entries = nil
		}},
		{"extra sample", func(stbl mp4io.Box) {
			stsz := stbl.Base().Boxes[3].(*mp4io.SampleSize)
			stsz.Entries = append(stsz.Entries, 1)
		}},
		{"missing sample", func(stbl mp4io.Box) {
			stsz := stbl.Base().Boxes[3].(*mp4io.SampleSize)
			stsz.Entries = stsz.Entries[:4]
		}},
		{"chunk past the end", func(stbl mp4io.Box) {
			stbl.Base().Boxes[4].(*mp4io.ChunkOffset).Entries[1] = 1 << 30
		}},
		{"no chunk table", func(stbl mp4io.Box) {
			mp4io.RemoveChildren(stbl, mp4io.STCO)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := newClassicSource(t, true)
			tt.change(src.stbl(t, audioID))

			var out bytes.Buffer
			err := ExtractTrack(bytes.NewReader(src.reencode(t)), &out, audioID, nil)
			var me *mp4io.MalformedError
			require.True(t, errors.As(err, &me), "%v", err)
			require.Zero(t, out.Len())
		})
	}
}

func TestExtractTrackExternalData(t *testing.T) {
	t.Parallel()

	src := newClassicSource(t, true)
	for _, url := range mp4io.FindAll(src.boxes, mp4io.URL) {
		url.(*mp4io.DataReferURL).SetFlags(0)
	}
	var out bytes.Buffer
	err := ExtractTrack(bytes.NewReader(src.reencode(t)), &out, audioID, nil)
	var ue *mp4io.UnsupportedError
	require.True(t, errors.As(err, &ue), "%v", err)
}

func TestPlaceChunks(t *testing.T) {
	t.Parallel()

	stbl := newStbl("mp4a", sampleTables([]uint32{2, 3}, nil, 2)...)
	head := []mp4io.Box{newFtyp(), mp4io.NewContainer(mp4io.MOOV, newMvhd(), newTrak(audioID, true, stbl)), mp4io.NewMediaData(5)}
	headLen := placeChunks(stbl, head, []chunk{{size: 2}, {size: 3}})

	require.Equal(t, mp4io.HeadLen(head), headLen)
	stco := find[*mp4io.ChunkOffset](t, stbl, mp4io.STCO)
	require.Equal(t, []uint32{uint32(headLen), uint32(headLen) + 2}, stco.Entries)
	require.Nil(t, mp4io.FindChild(stbl, mp4io.CO64))
}

func TestPlaceChunksLargeOffsets(t *testing.T) {
	t.Parallel()

	const big = int64(1) << 32
	stbl := newStbl("mp4a", sampleTables([]uint32{1, 1}, nil, 2)...)
	mdat := mp4io.NewMediaData(big + 10)
	head := []mp4io.Box{newFtyp(), mp4io.NewContainer(mp4io.MOOV, newMvhd(), newTrak(audioID, true, stbl)), mdat}

	before := stbl.Base().Boxes
	headLen := placeChunks(stbl, head, []chunk{{size: big}, {size: 10}})

	require.Nil(t, mp4io.FindChild(stbl, mp4io.STCO))
	co64 := find[*mp4io.ChunkLargeOffset](t, stbl, mp4io.CO64)
	require.Equal(t, []uint64{uint64(headLen), uint64(headLen + big)}, co64.Entries)
	require.Equal(t, mp4io.HeadLen(head), headLen)
	require.Len(t, stbl.Base().Boxes, len(before))
	require.Equal(t, mp4io.CO64, stbl.Base().Boxes[len(before)-1].Base().Type)

	// 64-bit mdat header
	require.Equal(t, uint32(1), mdat.Size)
	require.Equal(t, mp4io.LargeHeaderSize, mdat.HeaderLen())
}

func TestExtractTrackMP4ff(t *testing.T) {
	t.Parallel()

	src := newClassicSource(t, false)
	var out bytes.Buffer
	require.NoError(t, ExtractTrack(bytes.NewReader(src.file), &out, audioID, nil))
	p := parse(t, out.Bytes())

	f, err := mp4ff.DecodeFile(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	require.NotNil(t, f.Moov)
	require.Len(t, f.Moov.Traks, 1)

	trak := f.Moov.Traks[0]
	require.EqualValues(t, audioID, trak.Tkhd.TrackID)
	require.Equal(t, find[*mp4io.ChunkOffset](t, p.stbl, mp4io.STCO).Entries, trak.Mdia.Minf.Stbl.Stco.ChunkOffset)
	require.EqualValues(t, 5, trak.Mdia.Minf.Stbl.Stsz.SampleNumber)
}
