package mp4io

import "github.com/ugparu/mp4track/utils/bits/pio"

type SegmentReference struct {
	ReferenceType      uint8  // 1 bit
	ReferencedSize     uint32 // 31 bits
	SubsegmentDuration uint32
	StartsWithSAP      uint8  // 1 bit
	SAPType            uint8  // 3 bits
	SAPDeltaTime       uint32 // 28 bits
}

const lenSegmentReference = 12

// SegmentIndex is a sidx box.
type SegmentIndex struct {
	FullBox
	ReferenceId              uint32
	Timescale                uint32
	EarliestPresentationTime uint64
	FirstOffset              uint64
	Reserved                 uint16
	References               []SegmentReference
}

func (self *SegmentIndex) fieldsLen() (n int) {
	n += FullHeaderSize
	n += 8
	if self.Version == 1 {
		n += 16
	} else {
		n += 8
	}
	n += 4
	n += lenSegmentReference * len(self.References)
	return
}

func (self *SegmentIndex) marshalFields(b []byte) (n int) {
	n += self.marshalFull(b[n:])
	pio.PutU32BE(b[n:], self.ReferenceId)
	n += 4
	pio.PutU32BE(b[n:], self.Timescale)
	n += 4
	if self.Version == 1 {
		pio.PutU64BE(b[n:], self.EarliestPresentationTime)
		n += 8
		pio.PutU64BE(b[n:], self.FirstOffset)
		n += 8
	} else {
		pio.PutU32BE(b[n:], uint32(self.EarliestPresentationTime))
		n += 4
		pio.PutU32BE(b[n:], uint32(self.FirstOffset))
		n += 4
	}
	pio.PutU16BE(b[n:], self.Reserved)
	n += 2
	pio.PutU16BE(b[n:], uint16(len(self.References)))
	n += 2
	for _, r := range self.References {
		pio.PutU32BE(b[n:], uint32(r.ReferenceType&1)<<31|r.ReferencedSize&0x7fffffff)
		n += 4
		pio.PutU32BE(b[n:], r.SubsegmentDuration)
		n += 4
		pio.PutU32BE(b[n:], uint32(r.StartsWithSAP&1)<<31|uint32(r.SAPType&7)<<28|r.SAPDeltaTime&0x0fffffff)
		n += 4
	}
	return
}

func (self *SegmentIndex) unmarshalFields(b []byte, offset int64) (n int, err error) {
	if n, err = self.unmarshalFull(b, offset); err != nil {
		return
	}
	if len(b) < self.fieldsLen() {
		err = parseErr("ReferenceCount", int64(n)+offset, err)
		return
	}
	self.ReferenceId = pio.U32BE(b[n:])
	n += 4
	self.Timescale = pio.U32BE(b[n:])
	n += 4
	if self.Version == 1 {
		self.EarliestPresentationTime = pio.U64BE(b[n:])
		n += 8
		self.FirstOffset = pio.U64BE(b[n:])
		n += 8
	} else {
		self.EarliestPresentationTime = uint64(pio.U32BE(b[n:]))
		n += 4
		self.FirstOffset = uint64(pio.U32BE(b[n:]))
		n += 4
	}
	self.Reserved = pio.U16BE(b[n:])
	n += 2
	count := int(pio.U16BE(b[n:]))
	n += 2
	if len(b)-n < count*lenSegmentReference {
		err = parseErr("References", int64(n)+offset, err)
		return
	}
	self.References = make([]SegmentReference, count)
	for i := range self.References {
		r := &self.References[i]
		w := pio.U32BE(b[n:])
		r.ReferenceType = uint8(w >> 31)
		r.ReferencedSize = w & 0x7fffffff
		n += 4
		r.SubsegmentDuration = pio.U32BE(b[n:])
		n += 4
		w = pio.U32BE(b[n:])
		r.StartsWithSAP = uint8(w >> 31)
		r.SAPType = uint8(w >> 28 & 7)
		r.SAPDeltaTime = w & 0x0fffffff
		n += 4
	}
	return
}
