package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// MovieFragHeader is an mfhd box.
type MovieFragHeader struct {
	FullBox
	Seqnum uint32
}

func (self *MovieFragHeader) fieldsLen() int {
	return FullHeaderSize + 4
}

func (self *MovieFragHeader) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], self.Seqnum)
	n += 4
	return
}

func (self *MovieFragHeader) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+4 {
		err = parseErr("Seqnum", int64(n)+offset, err)
		return
	}
	self.Seqnum = pio.U32BE(b[n:])
	n += 4
	return
}
