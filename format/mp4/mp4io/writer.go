package mp4io

import (
	"fmt"

	"github.com/ugparu/mp4track/utils/buffer"
)

// Update recomputes the declared size of box and all of its descendants from
// their current content, children first. An mdat keeps DataLen as its length.
func Update(box Box) {
	base := box.Base()
	if md, ok := box.(*MediaData); ok {
		md.SetLength(md.DataLen)
		return
	}
	n := int64(box.fieldsLen())
	for _, child := range base.Boxes {
		Update(child)
		n += child.Base().TotalLen()
	}
	n += int64(len(base.Padding))
	base.SetLength(n)
}

// UpdateAll runs Update on every box of a list.
func UpdateAll(boxes []Box) {
	for _, box := range boxes {
		Update(box)
	}
}

// Len is the number of bytes Marshal produces for box: the declared total
// size, or only the header for an mdat.
func Len(box Box) int64 {
	base := box.Base()
	if _, ok := box.(*MediaData); ok {
		return int64(base.HeaderLen())
	}
	return base.TotalLen()
}

// HeadLen is the number of bytes WriteBoxes emits for boxes, which is also
// the source of the first mdat payload byte when the mdat is last.
func HeadLen(boxes []Box) (n int64) {
	for _, box := range boxes {
		n += Len(box)
	}
	return
}

// Marshal encodes box into b, header first, then its fields, then children in
// order. Sizes are taken as declared; call Update first after any change.
func Marshal(box Box, b []byte) (n int) {
	base := box.Base()
	n += base.marshalHeader(b[n:])
	if _, ok := box.(*MediaData); ok {
		return
	}
	n += box.marshalFields(b[n:])
	for _, child := range base.Boxes {
		n += Marshal(child, b[n:])
	}
	for range base.Padding {
		b[n] = 0
		n++
	}
	return
}

// Write encodes box into ch. Boxes without a definite size are rejected.
func Write(ch *OutputChannel, box Box) error {
	if err := checkSizes(box); err != nil {
		return err
	}
	l := Len(box)
	if l > MaxBoxSize {
		return unsupported(fmt.Sprintf("writing a %d byte %s box", l, box.Base().Type), box.Base().Offset)
	}
	if enc := encodedLen(box); enc != l {
		// declared sizes are stale
		return parseErr(box.Base().Type.String()+".Size", box.Base().Offset, nil)
	}
	buf := buffer.Get(int(l))
	defer buf.Release()

	Marshal(box, buf.Data())
	_, err := ch.Write(buf.Data())
	return err
}

// WriteBoxes updates and writes a list of top-level boxes.
func WriteBoxes(ch *OutputChannel, boxes []Box) error {
	for _, box := range boxes {
		Update(box)
		if err := Write(ch, box); err != nil {
			return err
		}
	}
	return nil
}

// encodedLen is the number of bytes Marshal writes for the current content.
func encodedLen(box Box) int64 {
	base := box.Base()
	n := int64(base.HeaderLen())
	if _, ok := box.(*MediaData); ok {
		return n
	}
	n += int64(box.fieldsLen())
	for _, child := range base.Boxes {
		enc := encodedLen(child)
		if enc != child.Base().TotalLen() {
			return -1
		}
		n += enc
	}
	return n + int64(len(base.Padding))
}

func checkSizes(box Box) error {
	base := box.Base()
	if base.Size == 0 {
		return unsupported(fmt.Sprintf("zero-size %s box in output", base.Type), base.Offset)
	}
	for _, child := range base.Boxes {
		if err := checkSizes(child); err != nil {
			return err
		}
	}
	return nil
}
