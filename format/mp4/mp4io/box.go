package mp4io

import (
	"math"

	"github.com/ugparu/mp4track/utils/bits/pio"
)

// Box is a node of the container tree. The set of implementations is closed:
// every concrete type lives in this package and is created by Empty.
type Box interface {
	Base() *BaseBox

	// fieldsLen is the byte length of the box's own fields, children excluded.
	fieldsLen() int
	marshalFields(b []byte) int
	// unmarshalFields parses the box's own fields from the start of the payload
	// and returns how many bytes it consumed; the rest are child boxes.
	unmarshalFields(b []byte, offset int64) (int, error)
}

// BaseBox is the header shared by every box plus its owned children.
type BaseBox struct {
	Type      Tag
	Size      uint32
	LargeSize uint64 // valid when Size == 1
	UserType  []byte // 16 bytes, uuid boxes only

	// Offset is the position of the header in the source, -1 for new boxes.
	Offset int64

	Boxes []Box
	// Padding holds zero bytes found after the last child, e.g. the
	// 32-bit terminator QuickTime writers put at the end of udta.
	Padding []byte
}

func (self *BaseBox) Base() *BaseBox {
	return self
}

func (self *BaseBox) Tag() Tag {
	return self.Type
}

func (self *BaseBox) Children() []Box {
	return self.Boxes
}

// Add appends children in order.
func (self *BaseBox) Add(children ...Box) {
	self.Boxes = append(self.Boxes, children...)
}

// HeaderLen is the size of the encoded header.
func (self *BaseBox) HeaderLen() int {
	n := HeaderSize
	if self.Size == 1 {
		n += 8
	}
	if self.Type == UUID {
		n += UserTypeSize
	}
	return n
}

// Length is the content length declared by the header, -1 for a box that
// extends to the end of the stream.
func (self *BaseBox) Length() int64 {
	var n int64
	switch self.Size {
	case 0:
		return -1
	case 1:
		l, err := pio.Int64(self.LargeSize)
		if err != nil {
			return -1
		}
		n = l - LargeHeaderSize
	default:
		n = int64(self.Size) - HeaderSize
	}
	if self.Type == UUID {
		n -= UserTypeSize
	}
	return n
}

// SetLength stores a content length, switching to the 64-bit size form when
// the box would not fit a 32-bit size. A box already in the 64-bit form keeps it.
func (self *BaseBox) SetLength(n int64) {
	if self.Type == UUID {
		n += UserTypeSize
	}
	if self.Size != 1 && n+HeaderSize <= math.MaxUint32 {
		self.Size = uint32(n + HeaderSize)
		self.LargeSize = 0
		return
	}
	self.Size = 1
	self.LargeSize = uint64(n + LargeHeaderSize)
}

// TotalLen is header plus content, -1 when the length is open.
func (self *BaseBox) TotalLen() int64 {
	l := self.Length()
	if l < 0 {
		return -1
	}
	return int64(self.HeaderLen()) + l
}

func (self *BaseBox) marshalHeader(b []byte) (n int) {
	pio.PutU32BE(b[n:], self.Size)
	n += 4
	pio.PutU32BE(b[n:], uint32(self.Type))
	n += 4
	if self.Size == 1 {
		pio.PutU64BE(b[n:], self.LargeSize)
		n += 8
	}
	if self.Type == UUID {
		var ut [UserTypeSize]byte
		copy(ut[:], self.UserType)
		copy(b[n:], ut[:])
		n += UserTypeSize
	}
	return
}

// FullBox adds the version and 24-bit flags word.
type FullBox struct {
	BaseBox
	Version uint8
	Flags   uint32
}

// SetFlags stores the low 24 bits of flags.
func (self *FullBox) SetFlags(flags uint32) {
	self.Flags = flags & 0x00ffffff
}

func (self *FullBox) marshalFull(b []byte) (n int) {
	pio.PutU8(b[n:], self.Version)
	n += 1
	pio.PutU24BE(b[n:], self.Flags)
	n += 3
	return
}

func (self *FullBox) unmarshalFull(b []byte, offset int64) (n int, err error) {
	if len(b) < n+FullHeaderSize {
		err = parseErr("Version", int64(n)+offset, err)
		return
	}
	self.Version = pio.U8(b[n:])
	n += 1
	self.Flags = pio.U24BE(b[n:])
	n += 3
	return
}

// Container groups child boxes and has no fields of its own.
type Container struct {
	BaseBox
}

// NewContainer builds a container of the given type.
func NewContainer(tag Tag, children ...Box) *Container {
	c := &Container{BaseBox: BaseBox{Type: tag, Offset: -1}}
	c.Add(children...)
	return c
}

func (self *Container) fieldsLen() int { return 0 }
func (self *Container) marshalFields([]byte) int { return 0 }
func (self *Container) unmarshalFields([]byte, int64) (int, error) { return 0, nil }

// Unknown keeps the payload of an unrecognized box verbatim.
type Unknown struct {
	BaseBox
	Data []byte
}

func (self *Unknown) fieldsLen() int {
	return len(self.Data)
}

func (self *Unknown) marshalFields(b []byte) int {
	return copy(b, self.Data)
}

func (self *Unknown) unmarshalFields(b []byte, _ int64) (int, error) {
	self.Data = append([]byte(nil), b...)
	return len(b), nil
}

// Free is a free or skip box; its payload is kept so round trips stay exact.
type Free struct {
	BaseBox
	Data []byte
}

func (self *Free) fieldsLen() int {
	return len(self.Data)
}

func (self *Free) marshalFields(b []byte) int {
	return copy(b, self.Data)
}

func (self *Free) unmarshalFields(b []byte, _ int64) (int, error) {
	self.Data = append([]byte(nil), b...)
	return len(b), nil
}

// MediaData is an mdat header. The payload stays in the source and is
// streamed by the caller; DataLen is its length.
type MediaData struct {
	BaseBox
	DataLen int64
}

// NewMediaData builds an mdat header for a payload of n bytes.
func NewMediaData(n int64) *MediaData {
	md := &MediaData{BaseBox: BaseBox{Type: MDAT, Offset: -1}, DataLen: n}
	md.SetLength(n)
	return md
}

func (self *MediaData) fieldsLen() int { return 0 }
func (self *MediaData) marshalFields([]byte) int { return 0 }

func (self *MediaData) unmarshalFields(b []byte, _ int64) (int, error) {
	self.DataLen = int64(len(b))
	return len(b), nil
}

// PayloadOffset is the source position of the first payload byte.
func (self *MediaData) PayloadOffset() int64 {
	return self.Offset + int64(self.HeaderLen())
}
