package mp4io

// DataReferURL is a "url " entry. Flags bit 1 means the media is in the same
// file and Location is empty.
type DataReferURL struct {
	FullBox
	Location []byte
}

func (self *DataReferURL) fieldsLen() int {
	return FullHeaderSize + len(self.Location)
}

func (self *DataReferURL) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	n += copy(b[n:], self.Location)
	return
}

func (self *DataReferURL) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	self.Location = append([]byte(nil), b[n:]...)
	n = len(b)
	return
}

// DataReferURN is a "urn " entry holding a NUL separated name and location.
type DataReferURN struct {
	FullBox
	Data []byte
}

func (self *DataReferURN) fieldsLen() int {
	return FullHeaderSize + len(self.Data)
}

func (self *DataReferURN) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	n += copy(b[n:], self.Data)
	return
}

func (self *DataReferURN) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	self.Data = append([]byte(nil), b[n:]...)
	n = len(b)
	return
}
