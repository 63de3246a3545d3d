package mp4io

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/ugparu/mp4track/utils/buffer"
)

const copyBufSize = 64 * 1024

// InputChannel is a byte source that tracks its position and the number of
// bytes consumed.
type InputChannel struct {
	r     io.Reader
	s     io.Seeker
	pos   int64
	count int64
}

// NewInputChannel wraps r. When r is an io.Seeker the channel starts at its
// current position and supports Seek and Size.
func NewInputChannel(r io.Reader) *InputChannel {
	ch := &InputChannel{r: r}
	if s, ok := r.(io.Seeker); ok {
		if pos, err := s.Seek(0, io.SeekCurrent); err == nil {
			ch.s = s
			ch.pos = pos
		}
	}
	return ch
}

// Position is the absolute offset of the next byte.
func (self *InputChannel) Position() int64 {
	return self.pos
}

// Count is the total number of bytes read or skipped.
func (self *InputChannel) Count() int64 {
	return self.count
}

func (self *InputChannel) Seekable() bool {
	return self.s != nil
}

func (self *InputChannel) Read(p []byte) (int, error) {
	n, err := self.r.Read(p)
	self.pos += int64(n)
	self.count += int64(n)
	return n, err
}

// ReadFull fills p. Running out of input after the first byte is reported as
// io.ErrUnexpectedEOF; io.EOF is returned only when nothing was read.
func (self *InputChannel) ReadFull(p []byte) error {
	_, err := io.ReadFull(self, p)
	return err
}

// Skip advances n bytes, seeking when possible.
func (self *InputChannel) Skip(n int64) error {
	if n <= 0 {
		return nil
	}
	if self.s != nil {
		return self.Seek(self.pos + n)
	}
	copied, err := io.CopyN(io.Discard, self, n)
	if err != nil {
		if errors.Is(err, io.EOF) && copied < n {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("mp4io: skip %d bytes: %w", n, err)
	}
	return nil
}

// Seek moves to the absolute offset pos.
func (self *InputChannel) Seek(pos int64) error {
	if self.s == nil {
		return unsupported("seek on a non-seekable input", self.pos)
	}
	if _, err := self.s.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("mp4io: seek to %d: %w", pos, err)
	}
	if pos > self.pos {
		self.count += pos - self.pos
	}
	self.pos = pos
	return nil
}

// Size returns the total length of a seekable source.
func (self *InputChannel) Size() (int64, error) {
	if self.s == nil {
		return 0, unsupported("size of a non-seekable input", self.pos)
	}
	end, err := self.s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("mp4io: seek to end: %w", err)
	}
	if _, err = self.s.Seek(self.pos, io.SeekStart); err != nil {
		return 0, fmt.Errorf("mp4io: seek to %d: %w", self.pos, err)
	}
	return end, nil
}

// OutputChannel is a byte sink that counts written bytes.
type OutputChannel struct {
	w     io.Writer
	count int64
}

func NewOutputChannel(w io.Writer) *OutputChannel {
	return &OutputChannel{w: w}
}

// Count is the number of bytes written so far.
func (self *OutputChannel) Count() int64 {
	return self.count
}

func (self *OutputChannel) Write(p []byte) (int, error) {
	n, err := self.w.Write(p)
	self.count += int64(n)
	if err != nil {
		return n, fmt.Errorf("mp4io: write: %w", err)
	}
	return n, nil
}

// CopyN copies exactly n bytes from src.
func (self *OutputChannel) CopyN(src *InputChannel, n int64) error {
	size := copyBufSize
	if n < int64(size) {
		size = int(n)
	}
	buf := buffer.Get(size)
	defer buf.Release()

	data := buf.Data()
	for n > 0 {
		chunk := data
		if n < int64(len(chunk)) {
			chunk = chunk[:n]
		}
		if err := src.ReadFull(chunk); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return fmt.Errorf("mp4io: copy at %d: %w", src.Position(), err)
		}
		if _, err := self.Write(chunk); err != nil {
			return err
		}
		n -= int64(len(chunk))
	}
	return nil
}

// Flush flushes a buffered sink.
func (self *OutputChannel) Flush() error {
	if bw, ok := self.w.(*bufio.Writer); ok {
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("mp4io: flush: %w", err)
		}
	}
	return nil
}
