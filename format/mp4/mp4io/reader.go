package mp4io

import (
	"errors"
	"fmt"
	"io"

	"github.com/ugparu/mp4track/utils/bits/pio"
)

// ReadBox reads one top-level box. An mdat payload is left unread and the
// channel is positioned at its first byte; every other box is loaded and
// parsed together with its children. io.EOF means the input ended cleanly
// before a header.
func ReadBox(ch *InputChannel) (Box, error) {
	offset := ch.Position()

	var hdr [LargeHeaderSize + UserTypeSize]byte
	if err := ch.ReadFull(hdr[:HeaderSize]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("mp4io: box header at %d: %w", offset, err)
	}
	rest := 0
	size := pio.U32BE(hdr[0:])
	tag := Tag(pio.U32BE(hdr[4:]))
	if size == 1 {
		rest += 8
	}
	if tag == UUID {
		rest += UserTypeSize
	}
	if rest > 0 {
		if err := ch.ReadFull(hdr[HeaderSize : HeaderSize+rest]); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("mp4io: %s header at %d: %w", tag, offset, err)
		}
	}

	box := Empty(tag)
	base := box.Base()
	hl, err := base.unmarshalHeader(hdr[:HeaderSize+rest], offset)
	if err != nil {
		return nil, err
	}

	length := base.Length()
	if length < 0 {
		// the box runs to the end of the stream
		end, serr := ch.Size()
		if serr != nil {
			return nil, unsupported(fmt.Sprintf("open-ended %s box", tag), offset)
		}
		length = end - offset - int64(hl)
		base.SetLength(length)
	}

	if md, ok := box.(*MediaData); ok {
		md.DataLen = length
		return md, nil
	}
	n, nerr := pio.Int(length)
	if nerr != nil || n > MaxBoxSize {
		return nil, unsupported(fmt.Sprintf("%s box of %d bytes", tag, length), offset)
	}

	payload := make([]byte, n)
	if err = ch.ReadFull(payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("mp4io: %s payload at %d: %w", tag, offset, err)
	}
	if err = fill(box, payload, offset+int64(hl)); err != nil {
		return nil, parseErr(tag.String(), offset, err)
	}
	return box, nil
}

// ReadBoxes reads top-level boxes until the input ends or at least budget
// bytes were consumed; a negative budget reads everything. mdat payloads are
// skipped.
func ReadBoxes(ch *InputChannel, budget int64) (boxes []Box, err error) {
	start := ch.Count()
	for budget < 0 || ch.Count()-start < budget {
		var box Box
		if box, err = ReadBox(ch); err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			return
		}
		if md, ok := box.(*MediaData); ok {
			if err = ch.Skip(md.DataLen); err != nil {
				return
			}
		}
		boxes = append(boxes, box)
	}
	return
}

func (self *BaseBox) unmarshalHeader(b []byte, offset int64) (n int, err error) {
	if len(b) < HeaderSize {
		err = parseErr("Header", offset, err)
		return
	}
	self.Offset = offset
	self.Size = pio.U32BE(b[n:])
	n += 4
	self.Type = Tag(pio.U32BE(b[n:]))
	n += 4
	if self.Size == 1 {
		if len(b) < n+8 {
			err = parseErr("LargeSize", int64(n)+offset, err)
			return
		}
		self.LargeSize = pio.U64BE(b[n:])
		n += 8
	}
	if self.Type == UUID {
		if len(b) < n+UserTypeSize {
			err = parseErr("UserType", int64(n)+offset, err)
			return
		}
		self.UserType = append([]byte(nil), b[n:n+UserTypeSize]...)
		n += UserTypeSize
	}
	if self.Size != 0 && self.Length() < 0 {
		err = parseErr(self.Type.String()+".Size", offset, err)
		return
	}
	return
}

// fill parses the fields of box from payload and the child boxes after them.
func fill(box Box, payload []byte, offset int64) error {
	n, err := box.unmarshalFields(payload, offset)
	if err != nil {
		return err
	}
	if n > len(payload) {
		return parseErr("Fields", offset, nil)
	}
	if _, isData := box.(*MediaData); isData || n == len(payload) {
		return nil
	}
	base := box.Base()
	base.Boxes, base.Padding, err = readChildren(payload[n:], offset+int64(n))
	return err
}

// readChildren parses consecutive boxes filling b exactly.
func readChildren(b []byte, offset int64) (boxes []Box, padding []byte, err error) {
	n := 0
	for n < len(b) {
		if len(b)-n < HeaderSize {
			if isZero(b[n:]) {
				padding = append([]byte(nil), b[n:]...)
				return
			}
			err = parseErr("Trailer", offset+int64(n), nil)
			return
		}
		if pio.U32BE(b[n:]) == 0 && isZero(b[n:]) {
			padding = append([]byte(nil), b[n:]...)
			return
		}

		var hdr BaseBox
		var hl int
		if hl, err = hdr.unmarshalHeader(b[n:], offset+int64(n)); err != nil {
			return
		}
		if hdr.Size == 0 {
			err = parseErr(hdr.Type.String()+".Size", offset+int64(n), nil)
			return
		}
		total := hdr.TotalLen()
		if total > int64(len(b)-n) {
			// the child claims more than its container holds
			err = parseErr(hdr.Type.String(), offset+int64(n), nil)
			return
		}

		box := Empty(hdr.Type)
		base := box.Base()
		base.Size, base.LargeSize, base.UserType, base.Offset = hdr.Size, hdr.LargeSize, hdr.UserType, hdr.Offset

		end := n + int(total)
		if err = fill(box, b[n+hl:end], offset+int64(n+hl)); err != nil {
			err = parseErr(hdr.Type.String(), offset+int64(n), err)
			return
		}
		boxes = append(boxes, box)
		n = end
	}
	return
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
