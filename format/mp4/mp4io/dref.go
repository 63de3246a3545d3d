package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// DataRefer is a dref box; its entries are the url and urn children.
type DataRefer struct {
	FullBox
}

func (self *DataRefer) fieldsLen() int {
	return FullHeaderSize + 4
}

func (self *DataRefer) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Boxes)))
	n += 4
	return
}

func (self *DataRefer) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("EntryCount", int64(n)+offset, err)
		return
	}
	n += 4
	return
}
