package mp4

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/mp4track/format/mp4/mp4io"
)

const (
	videoID = 1
	audioID = 2

	movieScale = 1000
	mediaScale = 8000
)

func newFtyp() *mp4io.FileType {
	ftyp := mp4io.New[*mp4io.FileType](mp4io.FTYP)
	ftyp.MajorBrand = mp4io.StringToTag("isom")
	ftyp.MinorVersion = 0x200
	ftyp.CompatibleBrands = []mp4io.Tag{mp4io.StringToTag("isom"), mp4io.StringToTag("iso6")}
	return ftyp
}

func newMvhd() *mp4io.MovieHeader {
	mvhd := mp4io.New[*mp4io.MovieHeader](mp4io.MVHD)
	mvhd.TimeScale = movieScale
	mvhd.PreferredRate = 0x10000
	mvhd.PreferredVolume = 0x100
	mvhd.Matrix = [9]int32{0x10000, 0, 0, 0, 0x10000, 0, 0, 0, 0x40000000}
	mvhd.NextTrackId = 3
	return mvhd
}

func newStbl(entry string, tables ...mp4io.Box) *mp4io.Container {
	stsd := mp4io.New[*mp4io.SampleDesc](mp4io.STSD)
	stsd.Add(&mp4io.Unknown{
		BaseBox: mp4io.BaseBox{Type: mp4io.StringToTag(entry), Offset: -1},
		Data:    make([]byte, 28),
	})
	return mp4io.NewContainer(mp4io.STBL, append([]mp4io.Box{stsd}, tables...)...)
}

func newTrak(id uint32, audio bool, stbl *mp4io.Container) *mp4io.Container {
	tkhd := mp4io.New[*mp4io.TrackHeader](mp4io.TKHD)
	tkhd.TrackId = id
	tkhd.SetFlags(mp4io.TrackEnabled)

	mdhd := mp4io.New[*mp4io.MediaHeader](mp4io.MDHD)
	mdhd.TimeScale = mediaScale
	mdhd.SetLanguageCode("und")

	hdlr := mp4io.New[*mp4io.HandlerRefer](mp4io.HDLR)
	hdlr.Name = []byte{0}
	var mhd mp4io.Box
	if audio {
		hdlr.Type = mp4io.SOUN
		mhd = mp4io.New[*mp4io.SoundMediaInfo](mp4io.SMHD)
	} else {
		hdlr.Type = mp4io.VIDE
		mhd = mp4io.New[*mp4io.VideoMediaInfo](mp4io.VMHD)
	}

	url := mp4io.New[*mp4io.DataReferURL](mp4io.URL)
	url.SetFlags(1)
	dref := mp4io.New[*mp4io.DataRefer](mp4io.DREF)
	dref.Add(url)

	minf := mp4io.NewContainer(mp4io.MINF, mhd, mp4io.NewContainer(mp4io.DINF, dref), stbl)
	return mp4io.NewContainer(mp4io.TRAK, tkhd, mp4io.NewContainer(mp4io.MDIA, mdhd, hdlr, minf))
}

func sampleTables(sizes []uint32, stsc []mp4io.SampleToChunkEntry, chunks int) []mp4io.Box {
	stts := mp4io.New[*mp4io.TimeToSample](mp4io.STTS)
	stts.Entries = []mp4io.TimeToSampleEntry{{Count: uint32(len(sizes)), Duration: 1024}}
	sc := mp4io.New[*mp4io.SampleToChunk](mp4io.STSC)
	sc.Entries = stsc
	stsz := mp4io.New[*mp4io.SampleSize](mp4io.STSZ)
	stsz.Entries = sizes
	stco := mp4io.New[*mp4io.ChunkOffset](mp4io.STCO)
	stco.Entries = make([]uint32, chunks)
	return []mp4io.Box{stts, sc, stsz, stco}
}

// encode writes boxes, putting the next payload right after each mdat header.
func encode(t *testing.T, boxes []mp4io.Box, payloads ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	ch := mp4io.NewOutputChannel(&buf)
	for _, box := range boxes {
		require.NoError(t, mp4io.WriteBoxes(ch, []mp4io.Box{box}))
		if _, ok := box.(*mp4io.MediaData); ok {
			buf.Write(payloads[0])
			payloads = payloads[1:]
		}
	}
	return buf.Bytes()
}

func fill(n int, first byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = first + byte(i)
	}
	return b
}

// classicSource holds a video track and an audio track with interleaved
// chunks: video 10, audio 3+4+5, video 11, audio 6+7.
type classicSource struct {
	file    []byte
	audio   []byte // audio chunks in order
	boxes   []mp4io.Box
	payload []byte
}

func newClassicSource(t *testing.T, moovFirst bool, extra ...mp4io.Box) classicSource {
	t.Helper()

	video := newStbl("avc1", sampleTables(
		[]uint32{10, 11},
		[]mp4io.SampleToChunkEntry{{FirstChunk: 1, SamplesPerChunk: 1, SampleDescId: 1}},
		2)...)
	audio := newStbl("mp4a", sampleTables(
		[]uint32{3, 4, 5, 6, 7},
		[]mp4io.SampleToChunkEntry{
			{FirstChunk: 1, SamplesPerChunk: 3, SampleDescId: 1},
			{FirstChunk: 2, SamplesPerChunk: 2, SampleDescId: 1},
		},
		2)...)
	moov := mp4io.NewContainer(mp4io.MOOV, newMvhd(), newTrak(videoID, false, video), newTrak(audioID, true, audio))

	v1, a1, v2, a2 := fill(10, 0x10), fill(12, 0xa0), fill(11, 0x40), fill(13, 0xc0)
	payload := bytes.Join([][]byte{v1, a1, v2, a2}, nil)
	mdat := mp4io.NewMediaData(int64(len(payload)))

	boxes := []mp4io.Box{newFtyp()}
	if moovFirst {
		boxes = append(boxes, moov)
		boxes = append(boxes, extra...)
		boxes = append(boxes, mdat)
	} else {
		boxes = append(boxes, mdat, moov)
		boxes = append(boxes, extra...)
	}
	mp4io.UpdateAll(boxes)

	var start int64
	for _, box := range boxes {
		start += mp4io.Len(box)
		if box == mdat {
			break
		}
	}
	setOffsets(video, uint32(start), uint32(start+22))
	setOffsets(audio, uint32(start+10), uint32(start+33))

	return classicSource{
		file:    encode(t, boxes, payload),
		audio:   append(append([]byte(nil), a1...), a2...),
		boxes:   boxes,
		payload: payload,
	}
}

// reencode writes the source again after its tree was changed.
func (s classicSource) reencode(t *testing.T) []byte {
	return encode(t, s.boxes, s.payload)
}

// stbl returns the sample table of the source track with the given id.
func (s classicSource) stbl(t *testing.T, id uint32) mp4io.Box {
	t.Helper()
	for _, trak := range mp4io.FindAll(s.boxes, mp4io.TRAK) {
		if find[*mp4io.TrackHeader](t, trak, mp4io.TKHD).TrackId == id {
			return mp4io.FindPath(trak, mp4io.MDIA, mp4io.MINF, mp4io.STBL)
		}
	}
	t.Fatalf("no track %d", id)
	return nil
}

func setOffsets(stbl mp4io.Box, offsets ...uint32) {
	stco := mp4io.FindChild(stbl, mp4io.STCO).(*mp4io.ChunkOffset)
	stco.Entries = offsets
}

// fragmentedSource is an init segment with audio track 2 and video track 1
// followed by two fragments. Fragment one interleaves ten audio samples of
// default size 4 with two video samples; fragment two holds five audio
// samples that carry their own durations, sizes and flags.
type fragmentedSource struct {
	file  []byte
	audio []byte
}

func newFragmentedSource(t *testing.T, withCTS bool) fragmentedSource {
	t.Helper()

	trex := func(id uint32) *mp4io.TrackExtend {
		trex := mp4io.New[*mp4io.TrackExtend](mp4io.TREX)
		trex.TrackId = id
		trex.DefaultSampleDescIdx = 1
		trex.DefaultSampleDuration = 1000
		return trex
	}
	mvex := mp4io.NewContainer(mp4io.MVEX, trex(videoID), trex(audioID))
	moov := mp4io.NewContainer(mp4io.MOOV, newMvhd(),
		newTrak(videoID, false, newStbl("avc1", sampleTables(nil, nil, 0)...)),
		newTrak(audioID, true, newStbl("mp4a", sampleTables(nil, nil, 0)...)),
		mvex)

	// fragment 1
	audioHdr := mp4io.New[*mp4io.TrackFragHeader](mp4io.TFHD)
	audioHdr.TrackId = audioID
	audioHdr.SetFlags(mp4io.TFHDDefaultSize | mp4io.TFHDDefaultBaseIsMOOF)
	audioHdr.DefaultSize = 4
	audioRun := mp4io.New[*mp4io.TrackFragRun](mp4io.TRUN)
	audioRun.SetFlags(mp4io.TRUNDataOffset)
	audioRun.Entries = make([]mp4io.TrackFragRunEntry, 10)

	videoHdr := mp4io.New[*mp4io.TrackFragHeader](mp4io.TFHD)
	videoHdr.TrackId = videoID
	videoHdr.SetFlags(mp4io.TFHDDefaultBaseIsMOOF)
	videoRun := mp4io.New[*mp4io.TrackFragRun](mp4io.TRUN)
	videoRun.SetFlags(mp4io.TRUNDataOffset | mp4io.TRUNSampleSize)
	videoRun.Entries = []mp4io.TrackFragRunEntry{{Size: 7}, {Size: 7}}

	moof1 := mp4io.NewContainer(mp4io.MOOF,
		mp4io.New[*mp4io.MovieFragHeader](mp4io.MFHD),
		mp4io.NewContainer(mp4io.TRAF, videoHdr, videoRun),
		mp4io.NewContainer(mp4io.TRAF, audioHdr, audioRun))
	mp4io.Update(moof1)
	audioRun.DataOffset = int32(mp4io.Len(moof1)) + mp4io.HeaderSize
	videoRun.DataOffset = audioRun.DataOffset + 40
	audio1 := fill(40, 0x80)
	payload1 := append(append([]byte(nil), audio1...), fill(14, 0x01)...)

	// fragment 2
	hdr2 := mp4io.New[*mp4io.TrackFragHeader](mp4io.TFHD)
	hdr2.TrackId = audioID
	run2 := mp4io.New[*mp4io.TrackFragRun](mp4io.TRUN)
	flags := mp4io.TRUNSampleDuration | mp4io.TRUNSampleSize | mp4io.TRUNSampleFlags
	if withCTS {
		flags |= mp4io.TRUNSampleCTS
	}
	run2.SetFlags(flags)
	for i := range 5 {
		entry := mp4io.TrackFragRunEntry{Duration: 1000, Size: 5, Flags: mp4io.SampleNonKeyframe}
		if i == 0 {
			entry.Flags = mp4io.SampleNoDependencies
		}
		if i == 4 {
			entry.Duration, entry.Size = 2000, 6
		}
		if withCTS {
			entry.CTS = int32(i) * 500
		}
		run2.Entries = append(run2.Entries, entry)
	}
	moof2 := mp4io.NewContainer(mp4io.MOOF,
		mp4io.New[*mp4io.MovieFragHeader](mp4io.MFHD),
		mp4io.NewContainer(mp4io.TRAF, hdr2, run2))
	audio2 := fill(26, 0x30)

	styp := newFtyp()
	styp.Type = mp4io.STYP
	boxes := []mp4io.Box{
		newFtyp(), moov,
		styp, moof1, mp4io.NewMediaData(int64(len(payload1))),
		moof2, mp4io.NewMediaData(int64(len(audio2))),
	}
	return fragmentedSource{
		file:  encode(t, boxes, payload1, audio2),
		audio: append(append([]byte(nil), audio1...), audio2...),
	}
}

// parsed is an extracted file read back.
type parsed struct {
	boxes []mp4io.Box
	moov  mp4io.Box
	trak  mp4io.Box
	stbl  mp4io.Box
	mdat  *mp4io.MediaData
	data  []byte
}

func parse(t *testing.T, out []byte) parsed {
	t.Helper()
	boxes, err := mp4io.ReadBoxes(mp4io.NewInputChannel(bytes.NewReader(out)), -1)
	require.NoError(t, err)

	var p parsed
	p.boxes = boxes
	p.moov = topLevel(boxes, mp4io.MOOV)
	require.NotNil(t, p.moov)
	traks := mp4io.FindChildren(p.moov, mp4io.TRAK)
	require.Len(t, traks, 1)
	p.trak = traks[0]
	p.stbl = mp4io.FindPath(p.trak, mp4io.MDIA, mp4io.MINF, mp4io.STBL)
	require.NotNil(t, p.stbl)

	md, ok := mp4io.Typed[*mp4io.MediaData](topLevel(boxes, mp4io.MDAT))
	require.True(t, ok)
	p.mdat = md
	p.data = out[md.PayloadOffset():]
	require.EqualValues(t, len(p.data), md.DataLen)
	return p
}

func find[T mp4io.Box](t *testing.T, root mp4io.Box, tags ...mp4io.Tag) T {
	t.Helper()
	box, ok := mp4io.Typed[T](mp4io.FindPath(root, tags...))
	require.True(t, ok, "missing %v", tags)
	return box
}
