package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

// Meta is a meta box. ISO files give it a version/flags word; QuickTime
// files omit it and start directly with the hdlr child.
type Meta struct {
	FullBox
	QuickTime bool
}

func (self *Meta) fieldsLen() int {
	if self.QuickTime {
		return 0
	}
	return FullHeaderSize
}

func (self *Meta) marshalFields(b []byte) int {
	if self.QuickTime {
		return 0
	}
	return self.marshalFull(b)
}

func (self *Meta) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if len(b) >= HeaderSize && Tag(pio.U32BE(b[4:])) == HDLR {
		self.QuickTime = true
		return
	}
	return self.unmarshalFull(b, offset)
}
