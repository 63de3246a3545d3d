package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// Well-known types of a data atom.
const (
	DataTypeBinary  uint32 = 0
	DataTypeUTF8    uint32 = 1
	DataTypeUTF16   uint32 = 2
	DataTypeJPEG    uint32 = 13
	DataTypePNG     uint32 = 14
	DataTypeInteger uint32 = 21
	DataTypeBMP     uint32 = 27
)

// Media kinds stored in stik.
const (
	MediaKindMovie     = 0
	MediaKindNormal    = 1
	MediaKindAudiobook = 2
)

// MetaData is the data atom carried by every item of an ilst.
type MetaData struct {
	BaseBox
	DataType uint32 // high byte reserved, low 24 bits the type
	Locale   uint32
	Value    []byte
}

// NewMetaData builds a data atom.
func NewMetaData(dataType uint32, value []byte) *MetaData {
	return &MetaData{
		BaseBox:  BaseBox{Type: DATA, Offset: -1},
		DataType: dataType,
		Value:    value,
	}
}

// Text decodes a UTF-8 or UTF-16 value.
func (self *MetaData) Text() string {
	if self.DataType&0xffffff == DataTypeUTF16 {
		if s, err := pio.DecodeUTF16BE(self.Value); err == nil {
			return s
		}
	}
	return pio.DecodeUTF8(self.Value)
}

func (self *MetaData) fieldsLen() int {
	return 8 + len(self.Value)
}

func (self *MetaData) marshalFields(b []byte) (n int) {
	pio.PutU32BE(b[n:], self.DataType)
	n += 4
	pio.PutU32BE(b[n:], self.Locale)
	n += 4
	n += copy(b[n:], self.Value)
	return
}

func (self *MetaData) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if len(b) < n+8 {
		err = parseErr("DataType", int64(n)+offset, err)
		return
	}
	self.DataType = pio.U32BE(b[n:])
	n += 4
	self.Locale = pio.U32BE(b[n:])
	n += 4
	self.Value = append([]byte(nil), b[n:]...)
	n = len(b)
	return
}

// AppleItem is an ilst entry such as ©nam or covr. Its value is the data
// child.
type AppleItem struct {
	BaseBox
}

// NewAppleItem builds an item holding a single data atom.
func NewAppleItem(tag Tag, dataType uint32, value []byte) *AppleItem {
	item := &AppleItem{BaseBox: BaseBox{Type: tag, Offset: -1}}
	item.Add(NewMetaData(dataType, value))
	return item
}

// NewTextItem builds an item holding UTF-8 text.
func NewTextItem(tag Tag, text string) *AppleItem {
	return NewAppleItem(tag, DataTypeUTF8, []byte(pio.NormalizeText(text)))
}

// Data returns the first data child, nil when missing.
func (self *AppleItem) Data() *MetaData {
	d, _ := Typed[*MetaData](FindChild(self, DATA))
	return d
}

// Text returns the decoded value of a text item.
func (self *AppleItem) Text() string {
	if d := self.Data(); d != nil {
		return d.Text()
	}
	return ""
}

func (self *AppleItem) fieldsLen() int { return 0 }
func (self *AppleItem) marshalFields([]byte) int { return 0 }
func (self *AppleItem) unmarshalFields([]byte, int64) (int, error) { return 0, nil }
