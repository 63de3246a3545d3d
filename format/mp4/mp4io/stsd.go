package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// SampleDesc is an stsd box. Sample entries (mp4a, avc1, ...) are kept as
// opaque children.
type SampleDesc struct {
	FullBox
}

func (self *SampleDesc) fieldsLen() int {
	return FullHeaderSize + 4
}

func (self *SampleDesc) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], uint32(len(self.Boxes)))
	n += 4
	return
}

func (self *SampleDesc) unmarshalFields(b []byte, offset int64) (n int, err error) {
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
