package mp4io

const (
	FTYP = Tag(0x66747970)
	MOOV = Tag(0x6d6f6f76)
	MVHD = Tag(0x6d766864)
	TRAK = Tag(0x7472616b)
	TKHD = Tag(0x746b6864)
	EDTS = Tag(0x65647473)
	ELST = Tag(0x656c7374)
	UDTA = Tag(0x75647461)
	MDIA = Tag(0x6d646961)
	MDHD = Tag(0x6d646864)
	HDLR = Tag(0x68646c72)
	MINF = Tag(0x6d696e66)
	VMHD = Tag(0x766d6864)
	SMHD = Tag(0x736d6864)
	HMHD = Tag(0x686d6864)
	NMHD = Tag(0x6e6d6864)
	DINF = Tag(0x64696e66)
	DREF = Tag(0x64726566)
	URL  = Tag(0x75726c20) // "url "
	URN  = Tag(0x75726e20) // "urn "
	STBL = Tag(0x7374626c)
	STSD = Tag(0x73747364)
	STTS = Tag(0x73747473)
	CTTS = Tag(0x63747473)
	STSS = Tag(0x73747373)
	STSH = Tag(0x73747368)
	SBGP = Tag(0x73626770)
	STSC = Tag(0x73747363)
	STSZ = Tag(0x7374737a)
	STZ2 = Tag(0x73747a32)
	STCO = Tag(0x7374636f)
	CO64 = Tag(0x636f3634)
	ESDS = Tag(0x65736473)
	META = Tag(0x6d657461)
	ILST = Tag(0x696c7374)
	DATA = Tag(0x64617461)
	FREE = Tag(0x66726565)
	SKIP = Tag(0x736b6970)
	MDAT = Tag(0x6d646174)
	UUID = Tag(0x75756964)

	MVEX = Tag(0x6d766578)
	MEHD = Tag(0x6d656864)
	TREX = Tag(0x74726578)
	SIDX = Tag(0x73696478)
	MOOF = Tag(0x6d6f6f66)
	MFHD = Tag(0x6d666864)
	TRAF = Tag(0x74726166)
	TFHD = Tag(0x74666864)
	TFDT = Tag(0x74666474)
	TRUN = Tag(0x7472756e)
	STYP = Tag(0x73747970)
	MFRA = Tag(0x6d667261)

	// iTunes item list entries; the leading byte 0xa9 is "©".
	NAME        = Tag(0xa96e616d) // ©nam
	ARTIST      = Tag(0xa9415254) // ©ART
	ALBUMARTIST = Tag(0x61415254) // aART
	ALBUM       = Tag(0xa9616c62) // ©alb
	COMMENT     = Tag(0xa9636d74) // ©cmt
	GENRE       = Tag(0xa967656e) // ©gen
	DAY         = Tag(0xa9646179) // ©day
	GNRE        = Tag(0x676e7265)
	STIK        = Tag(0x7374696b)
	COVR        = Tag(0x636f7672)
	TRKN        = Tag(0x74726b6e)

	// handler types
	SOUN = Tag(0x736f756e)
	VIDE = Tag(0x76696465)
	MDIR = Tag(0x6d646972)
	APPL = Tag(0x6170706c)
)

// Empty returns a zero box for tag with its header type set. Unrecognized
// tags get an Unknown that keeps the raw payload.
func Empty(tag Tag) Box {
	var box Box
	switch tag {
	case MOOV, TRAK, EDTS, MDIA, MINF, DINF, STBL, MVEX, MOOF, TRAF, UDTA, ILST:
		box = &Container{}
	case FTYP, STYP:
		box = &FileType{}
	case MVHD:
		box = &MovieHeader{}
	case TKHD:
		box = &TrackHeader{}
	case ELST:
		box = &EditList{}
	case MDHD:
		box = &MediaHeader{}
	case HDLR:
		box = &HandlerRefer{}
	case VMHD:
		box = &VideoMediaInfo{}
	case SMHD:
		box = &SoundMediaInfo{}
	case HMHD:
		box = &HintMediaInfo{}
	case NMHD:
		box = &NullMediaInfo{}
	case DREF:
		box = &DataRefer{}
	case URL:
		box = &DataReferURL{}
	case URN:
		box = &DataReferURN{}
	case STSD:
		box = &SampleDesc{}
	case STTS:
		box = &TimeToSample{}
	case CTTS:
		box = &CompositionOffset{}
	case STSS:
		box = &SyncSample{}
	case STSH:
		box = &ShadowSyncSample{}
	case SBGP:
		box = &SampleToGroup{}
	case STSC:
		box = &SampleToChunk{}
	case STSZ:
		box = &SampleSize{}
	case STZ2:
		box = &CompactSampleSize{}
	case STCO:
		box = &ChunkOffset{}
	case CO64:
		box = &ChunkLargeOffset{}
	case ESDS:
		box = &ElemStreamDesc{}
	case META:
		box = &Meta{}
	case DATA:
		box = &MetaData{}
	case NAME, ARTIST, ALBUMARTIST, ALBUM, COMMENT, GENRE, DAY, GNRE, STIK, COVR, TRKN:
		box = &AppleItem{}
	case FREE, SKIP:
		box = &Free{}
	case MDAT:
		box = &MediaData{}
	case MEHD:
		box = &MovieExtendsHeader{}
	case TREX:
		box = &TrackExtend{}
	case SIDX:
		box = &SegmentIndex{}
	case MFHD:
		box = &MovieFragHeader{}
	case TFHD:
		box = &TrackFragHeader{}
	case TFDT:
		box = &TrackFragDecodeTime{}
	case TRUN:
		box = &TrackFragRun{}
	default:
		box = &Unknown{}
	}
	base := box.Base()
	base.Type = tag
	base.Offset = -1
	return box
}

// New returns Empty(tag) as its concrete type, e.g. New[*TimeToSample](STTS).
// The zero T is returned when tag maps to another type.
func New[T Box](tag Tag) T {
	box, _ := Empty(tag).(T)
	return box
}
