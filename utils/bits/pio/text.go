package pio

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"
)

var utf16BE = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)

// DecodeUTF16BE decodes big-endian UTF-16 text, honouring a leading BOM.
func DecodeUTF16BE(b []byte) (string, error) {
	out, err := utf16BE.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DecodeUTF8 returns b as a string with invalid sequences replaced.
func DecodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// NormalizeText returns s as valid UTF-8 in NFC form.
func NormalizeText(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	return norm.NFC.String(s)
}
