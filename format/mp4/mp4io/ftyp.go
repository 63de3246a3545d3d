package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

const bytesPerBrand = 4

// FileType is an ftyp (or styp) box.
type FileType struct {
	BaseBox
	MajorBrand       Tag
	MinorVersion     uint32
	CompatibleBrands []Tag
}

func (self *FileType) fieldsLen() int {
	return 8 + bytesPerBrand*len(self.CompatibleBrands)
}

func (self *FileType) marshalFields(b []byte) (n int) {
	pio.PutU32BE(b[n:], uint32(self.MajorBrand))
	n += 4
	pio.PutU32BE(b[n:], self.MinorVersion)
	n += 4
	for _, brand := range self.CompatibleBrands {
		pio.PutU32BE(b[n:], uint32(brand))
		n += bytesPerBrand
	}
	return
}

func (self *FileType) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if len(b) < n+8 {
		err = parseErr("MajorBrand", int64(n)+offset, err)
		return
	}
	self.MajorBrand = Tag(pio.U32BE(b[n:]))
	n += 4
	self.MinorVersion = pio.U32BE(b[n:])
	n += 4
	if (len(b)-n)%bytesPerBrand != 0 {
		err = parseErr("CompatibleBrands", int64(n)+offset, err)
		return
	}
	self.CompatibleBrands = nil
	for n < len(b) {
		self.CompatibleBrands = append(self.CompatibleBrands, Tag(pio.U32BE(b[n:])))
		n += bytesPerBrand
	}
	return
}
