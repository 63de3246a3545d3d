package mp4

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/mp4track/format/mp4/mp4io"
)

func TestExtractFragmentedTrack(t *testing.T) {
	t.Parallel()

	src := newFragmentedSource(t, false)
	var out bytes.Buffer
	require.NoError(t, ExtractFragmentedTrack(bytes.NewReader(src.file), &out, audioID, nil))
	p := parse(t, out.Bytes())

	require.Equal(t, []string{"ftyp", "moov", "mdat"}, topLevelTypes(p.boxes))
	require.Nil(t, mp4io.FindChild(p.moov, mp4io.MVEX))
	require.Equal(t, src.audio, p.data)

	stts := find[*mp4io.TimeToSample](t, p.stbl, mp4io.STTS)
	require.Equal(t, []mp4io.TimeToSampleEntry{{Count: 14, Duration: 1000}, {Count: 1, Duration: 2000}}, stts.Entries)

	stsz := find[*mp4io.SampleSize](t, p.stbl, mp4io.STSZ)
	require.Zero(t, stsz.SampleSize)
	require.Len(t, stsz.Entries, 15)
	require.Equal(t, []uint32{4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 5, 5, 6}, stsz.Entries)

	stsc := find[*mp4io.SampleToChunk](t, p.stbl, mp4io.STSC)
	require.Equal(t, []mp4io.SampleToChunkEntry{
		{FirstChunk: 1, SamplesPerChunk: 10, SampleDescId: 1},
		{FirstChunk: 2, SamplesPerChunk: 5, SampleDescId: 1},
	}, stsc.Entries)

	stco := find[*mp4io.ChunkOffset](t, p.stbl, mp4io.STCO)
	first := uint32(p.mdat.PayloadOffset())
	require.Equal(t, []uint32{first, first + 40}, stco.Entries)

	stss := find[*mp4io.SyncSample](t, p.stbl, mp4io.STSS)
	require.Equal(t, []uint32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}, stss.Entries)
	require.Nil(t, mp4io.FindChild(p.stbl, mp4io.CTTS))

	mdhd := find[*mp4io.MediaHeader](t, p.trak, mp4io.MDIA, mp4io.MDHD)
	require.EqualValues(t, 16000, mdhd.Duration)
	require.Equal(t, "eng", mdhd.LanguageCode())
	tkhd := find[*mp4io.TrackHeader](t, p.trak, mp4io.TKHD)
	require.EqualValues(t, 16000*movieScale/mediaScale, tkhd.Duration)
	require.EqualValues(t, 0xf, tkhd.Flags)
	mvhd := find[*mp4io.MovieHeader](t, p.moov, mp4io.MVHD)
	require.Equal(t, tkhd.Duration, mvhd.Duration)
}

func TestExtractFragmentedTrackCompositionOffsets(t *testing.T) {
	t.Parallel()

	src := newFragmentedSource(t, true)
	var out bytes.Buffer
	require.NoError(t, ExtractFragmentedTrack(bytes.NewReader(src.file), &out, 0, nil))
	p := parse(t, out.Bytes())

	ctts := find[*mp4io.CompositionOffset](t, p.stbl, mp4io.CTTS)
	require.Equal(t, []mp4io.CompositionOffsetEntry{
		{Count: 11, Offset: 0},
		{Count: 1, Offset: 500},
		{Count: 1, Offset: 1000},
		{Count: 1, Offset: 1500},
		{Count: 1, Offset: 2000},
	}, ctts.Entries)
	require.Equal(t, src.audio, p.data)
}

func TestExtractFragmentedVideoTrack(t *testing.T) {
	t.Parallel()

	src := newFragmentedSource(t, false)
	var out bytes.Buffer
	require.NoError(t, ExtractFragmentedTrack(bytes.NewReader(src.file), &out, videoID, nil))
	p := parse(t, out.Bytes())

	require.Equal(t, fill(14, 0x01), p.data)
	stsz := find[*mp4io.SampleSize](t, p.stbl, mp4io.STSZ)
	require.Equal(t, []uint32{7, 7}, stsz.Entries)
	// every sample is sync
	require.Nil(t, mp4io.FindChild(p.stbl, mp4io.STSS))
}

// newMultiTrafSource is one fragment whose runs carry no data offset. The
// video traf has an absolute base data offset and takes its sample size from
// trex. The audio traf has its own absolute base when explicit is set and
// otherwise continues after the video data.
func newMultiTrafSource(t *testing.T, explicit bool) []byte {
	t.Helper()

	videoTrex := mp4io.New[*mp4io.TrackExtend](mp4io.TREX)
	videoTrex.TrackId = videoID
	videoTrex.DefaultSampleDescIdx = 1
	videoTrex.DefaultSampleDuration = 1000
	videoTrex.DefaultSampleSize = 7
	audioTrex := mp4io.New[*mp4io.TrackExtend](mp4io.TREX)
	audioTrex.TrackId = audioID
	audioTrex.DefaultSampleDescIdx = 1
	audioTrex.DefaultSampleDuration = 1000
	moov := mp4io.NewContainer(mp4io.MOOV, newMvhd(),
		newTrak(videoID, false, newStbl("avc1", sampleTables(nil, nil, 0)...)),
		newTrak(audioID, true, newStbl("mp4a", sampleTables(nil, nil, 0)...)),
		mp4io.NewContainer(mp4io.MVEX, videoTrex, audioTrex))

	videoHdr := mp4io.New[*mp4io.TrackFragHeader](mp4io.TFHD)
	videoHdr.TrackId = videoID
	videoHdr.SetFlags(mp4io.TFHDBaseDataOffset)
	videoRun := mp4io.New[*mp4io.TrackFragRun](mp4io.TRUN)
	videoRun.Entries = make([]mp4io.TrackFragRunEntry, 2)

	audioHdr := mp4io.New[*mp4io.TrackFragHeader](mp4io.TFHD)
	audioHdr.TrackId = audioID
	audioHdr.DefaultSize = 4
	if explicit {
		audioHdr.SetFlags(mp4io.TFHDBaseDataOffset | mp4io.TFHDDefaultSize)
	} else {
		audioHdr.SetFlags(mp4io.TFHDDefaultSize)
	}
	audioRun := mp4io.New[*mp4io.TrackFragRun](mp4io.TRUN)
	audioRun.Entries = make([]mp4io.TrackFragRunEntry, 3)

	moof := mp4io.NewContainer(mp4io.MOOF,
		mp4io.New[*mp4io.MovieFragHeader](mp4io.MFHD),
		mp4io.NewContainer(mp4io.TRAF, videoHdr, videoRun),
		mp4io.NewContainer(mp4io.TRAF, audioHdr, audioRun))
	payload := append(fill(14, 0x01), fill(12, 0x80)...)
	boxes := []mp4io.Box{newFtyp(), moov, moof, mp4io.NewMediaData(int64(len(payload)))}
	mp4io.UpdateAll(boxes)

	start := mp4io.HeadLen(boxes)
	videoHdr.BaseDataOffset = uint64(start)
	audioHdr.BaseDataOffset = uint64(start + 14)
	return encode(t, boxes, payload)
}

func TestExtractFragmentedTrackBaseDataOffset(t *testing.T) {
	t.Parallel()

	for name, explicit := range map[string]bool{"explicit base": true, "previous traf end": false} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			file := newMultiTrafSource(t, explicit)

			var out bytes.Buffer
			require.NoError(t, ExtractFragmentedTrack(bytes.NewReader(file), &out, audioID, nil))
			p := parse(t, out.Bytes())
			require.Equal(t, fill(12, 0x80), p.data)
			require.Equal(t, []uint32{4, 4, 4}, find[*mp4io.SampleSize](t, p.stbl, mp4io.STSZ).Entries)

			out.Reset()
			require.NoError(t, ExtractFragmentedTrack(bytes.NewReader(file), &out, videoID, nil))
			p = parse(t, out.Bytes())
			require.Equal(t, fill(14, 0x01), p.data)
			require.Equal(t, []uint32{7, 7}, find[*mp4io.SampleSize](t, p.stbl, mp4io.STSZ).Entries)
		})
	}
}

func TestExtractFragmentedTrackNotFound(t *testing.T) {
	t.Parallel()

	src := newFragmentedSource(t, false)
	var out bytes.Buffer
	err := ExtractFragmentedTrack(bytes.NewReader(src.file), &out, 7, nil)
	var nf *mp4io.NotFoundError
	require.True(t, errors.As(err, &nf), "%v", err)
	require.Zero(t, out.Len())
}

func TestExtractFragmentedTrackUnplacedRun(t *testing.T) {
	t.Parallel()

	tfhd := mp4io.New[*mp4io.TrackFragHeader](mp4io.TFHD)
	tfhd.TrackId = audioID
	trun := mp4io.New[*mp4io.TrackFragRun](mp4io.TRUN)
	trun.Entries = make([]mp4io.TrackFragRunEntry, 2)
	moof := mp4io.NewContainer(mp4io.MOOF, mp4io.NewContainer(mp4io.TRAF, tfhd, trun))

	moov := mp4io.NewContainer(mp4io.MOOV, newMvhd(),
		newTrak(audioID, true, newStbl("mp4a", sampleTables(nil, nil, 0)...)),
		mp4io.NewContainer(mp4io.MVEX))
	// no mdat follows the fragment
	file := encode(t, []mp4io.Box{newFtyp(), moov, moof})

	var out bytes.Buffer
	err := ExtractFragmentedTrack(bytes.NewReader(file), &out, audioID, nil)
	var me *mp4io.MalformedError
	require.True(t, errors.As(err, &me), "%v", err)
}

func TestDetectLayout(t *testing.T) {
	t.Parallel()

	classic := bytes.NewReader(newClassicSource(t, false).file)
	layout, err := DetectLayout(classic)
	require.NoError(t, err)
	require.Equal(t, LayoutClassic, layout)
	pos, err := classic.Seek(0, 1)
	require.NoError(t, err)
	require.Zero(t, pos)

	layout, err = DetectLayout(bytes.NewReader(newFragmentedSource(t, false).file))
	require.NoError(t, err)
	require.Equal(t, LayoutFragmented, layout)

	_, err = DetectLayout(bytes.NewReader(encode(t, []mp4io.Box{newFtyp()})))
	require.ErrorIs(t, err, errNoMoov)
}

func TestParseLayout(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Layout{"": LayoutAuto, "auto": LayoutAuto, "Classic": LayoutClassic, "fragmented": LayoutFragmented} {
		got, err := ParseLayout(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseLayout("hls")
	require.Error(t, err)
}

func TestExtractDispatch(t *testing.T) {
	t.Parallel()

	frag := newFragmentedSource(t, false)
	var out bytes.Buffer
	require.NoError(t, Extract(bytes.NewReader(frag.file), &out, audioID, nil))
	require.Equal(t, frag.audio, parse(t, out.Bytes()).data)

	classic := newClassicSource(t, true)
	out.Reset()
	require.NoError(t, Extract(bytes.NewReader(classic.file), &out, audioID, nil))
	require.Equal(t, classic.audio, parse(t, out.Bytes()).data)
}
