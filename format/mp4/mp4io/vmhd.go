package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// VideoMediaInfo is a vmhd box.
type VideoMediaInfo struct {
	FullBox
	GraphicsMode uint16
	Opcolor      [3]uint16
}

func (self *VideoMediaInfo) fieldsLen() int {
	return FullHeaderSize + 2 + 2*len(self.Opcolor)
}

func (self *VideoMediaInfo) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU16BE(b[n:], self.GraphicsMode)
	n += 2
	for _, c := range self.Opcolor {
		pio.PutU16BE(b[n:], c)
		n += 2
	}
	return
}

func (self *VideoMediaInfo) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < n+8 {
		err = parseErr("Opcolor", int64(n)+offset, err)
		return
	}
	self.GraphicsMode = pio.U16BE(b[n:])
	n += 2
	for i := range self.Opcolor {
		self.Opcolor[i] = pio.U16BE(b[n:])
		n += 2
	}
	return
}
