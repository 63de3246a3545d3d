// Package mp4io reads and writes the ISO base media file format box tree.
package mp4io

import (
	"strings"
	"unicode/utf8"

	"github.com/ugparu/mp4track/utils/bits/pio"
)

// Sample flag bits shared by trex, tfhd and trun.
const (
	SampleIsNonSync       uint32 = 0x00010000
	SampleHasDependencies uint32 = 0x01000000
	SampleNoDependencies  uint32 = 0x02000000

	SampleNonKeyframe = SampleHasDependencies | SampleIsNonSync
)

const (
	HeaderSize      = 8
	LargeHeaderSize = 16
	UserTypeSize    = 16
	FullHeaderSize  = 4

	// MaxBoxSize bounds boxes loaded into memory; mdat is never loaded.
	MaxBoxSize = 512 * 1024 * 1024
)

// Tag is a FourCC box type.
type Tag uint32

// String renders the FourCC; bytes above 0x7f are Latin-1, so 0xa9 prints as ©.
func (self Tag) String() string {
	var b [4]byte
	pio.PutU32BE(b[:], uint32(self))
	var sb strings.Builder
	for _, c := range b {
		switch {
		case c == 0:
			sb.WriteByte(' ')
		case c < utf8.RuneSelf:
			sb.WriteByte(c)
		default:
			sb.WriteRune(rune(c))
		}
	}
	return sb.String()
}

// StringToTag is the inverse of Tag.String for Latin-1 input.
func StringToTag(tag string) Tag {
	var b [4]byte
	i := 0
	for _, r := range tag {
		if i == len(b) {
			break
		}
		b[i] = byte(r)
		i++
	}
	return Tag(pio.U32BE(b[:]))
}
