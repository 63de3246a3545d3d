package mp4io

import (
	"bytes"

	"github.com/ugparu/mp4track/utils/bits/pio"
)

// HandlerRefer is an hdlr box.
type HandlerRefer struct {
	FullBox
	PreDefined Tag // QuickTime component type, zero in ISO files
	Type       Tag
	Reserved   [3]uint32
	Name       []byte // raw, usually NUL terminated
}

// NameString returns Name without the terminator.
func (self *HandlerRefer) NameString() string {
	name := self.Name
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return pio.DecodeUTF8(name)
}

func (self *HandlerRefer) fieldsLen() int {
	return FullHeaderSize + 4 + 4 + 12 + len(self.Name)
}

func (self *HandlerRefer) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(self.PreDefined))
	n += 4
	pio.PutU32BE(b[n:], uint32(self.Type))
	n += 4
	for _, r := range self.Reserved {
		pio.PutU32BE(b[n:], r)
		n += 4
	}
	n += copy(b[n:], self.Name)
	return
}

func (self *HandlerRefer) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+20 {
		err = parseErr("Type", int64(n)+offset, err)
		return
	}
	self.PreDefined = Tag(pio.U32BE(b[n:]))
	n += 4
	self.Type = Tag(pio.U32BE(b[n:]))
	n += 4
	for i := range self.Reserved {
		self.Reserved[i] = pio.U32BE(b[n:])
		n += 4
	}
	self.Name = append([]byte(nil), b[n:]...)
	n = len(b)
	return
}
