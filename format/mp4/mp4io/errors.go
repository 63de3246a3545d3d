package mp4io

import (
	"errors"
	"fmt"
	"strings"
)

// MalformedError reports box content inconsistent with its declared length or
// with related tables. The chain lists the outermost box first.
type MalformedError struct {
	Debug  string
	Offset int64
	prev   *MalformedError
}

func (self *MalformedError) Error() string {
	s := []string{}
	for err := self; err != nil; err = err.prev {
		s = append(s, fmt.Sprintf("%s:%d", err.Debug, err.Offset))
	}
	return "mp4io: malformed box: " + strings.Join(s, ",")
}

// UnsupportedError reports a valid encoding that is not implemented.
type UnsupportedError struct {
	Feature string
	Offset  int64
}

func (self *UnsupportedError) Error() string {
	return fmt.Sprintf("mp4io: unsupported %s at %d", self.Feature, self.Offset)
}

// NotFoundError reports a missing track or required box.
type NotFoundError struct {
	What string
}

func (self *NotFoundError) Error() string {
	return "mp4: " + self.What + " not found"
}

// parseErr starts or extends a MalformedError chain. Errors of any other kind
// pass through unchanged.
func parseErr(debug string, offset int64, prev error) error {
	var pe *MalformedError
	if prev != nil && !errors.As(prev, &pe) {
		return prev
	}
	return &MalformedError{Debug: debug, Offset: offset, prev: pe}
}

// Malformed builds a MalformedError outside the parser, e.g. for table checks.
func Malformed(debug string, offset int64) error {
	return &MalformedError{Debug: debug, Offset: offset}
}

func unsupported(feature string, offset int64) error {
	return &UnsupportedError{Feature: feature, Offset: offset}
}
