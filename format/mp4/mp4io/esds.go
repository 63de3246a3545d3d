package mp4io

// ElemStreamDesc is an esds box; the descriptor payload is kept as is.
type ElemStreamDesc struct {
	FullBox
	Descriptor []byte
}

func (self *ElemStreamDesc) fieldsLen() int {
	return FullHeaderSize + len(self.Descriptor)
}

func (self *ElemStreamDesc) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	n += copy(b[n:], self.Descriptor)
	return
}

func (self *ElemStreamDesc) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	self.Descriptor = append([]byte(nil), b[n:]...)
	n = len(b)
	return
}
