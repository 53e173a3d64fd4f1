package cpt

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

const (
	// DefaultCharset is the ANSI code page assumed for 8-bit text fields.
	DefaultCharset = "cp1250"
	// CharsetUCS2LE is the encoding of every wide text field.
	CharsetUCS2LE = "UCS-2LE"
	// ConversionFailed replaces text the transcoder could not convert.
	ConversionFailed = "[conversion failed]"
)

// Transcoder converts raw text bytes in the named charset to UTF-8.
type Transcoder interface {
	Transcode(b []byte, charset string) (string, error)
}

// TextTranscoder is the default Transcoder, backed by golang.org/x/text.
type TextTranscoder struct{}

func (TextTranscoder) Transcode(b []byte, charset string) (string, error) {
	enc, err := LookupCharset(charset)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", charset, err)
	}
	return string(out), nil
}

var charsets = map[string]encoding.Encoding{
	"cp1250":       charmap.Windows1250,
	"windows-1250": charmap.Windows1250,
	"cp1251":       charmap.Windows1251,
	"windows-1251": charmap.Windows1251,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"cp1253":       charmap.Windows1253,
	"cp1254":       charmap.Windows1254,
	"cp1257":       charmap.Windows1257,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-2":   charmap.ISO8859_2,
	"latin2":       charmap.ISO8859_2,
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"cp852":        charmap.CodePage852,
	"cp866":        charmap.CodePage866,
	"koi8-r":       charmap.KOI8R,
	"macintosh":    charmap.Macintosh,
	"utf-8":        unicode.UTF8,
	"ucs-2le":      unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
}

// LookupCharset resolves a charset name, accepting code page aliases such as
// "cp1250" and any WHATWG label.
func LookupCharset(name string) (encoding.Encoding, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if enc, ok := charsets[key]; ok {
		return enc, nil
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q", name)
	}
	return enc, nil
}

// cutANSI trims an 8-bit text field at its first NUL.
func cutANSI(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

// cutWide trims a UCS-2 field at its first NUL code unit and drops a dangling odd byte.
func cutWide(b []byte) []byte {
	n := len(b) &^ 1
	for i := 0; i < n; i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			return b[:i]
		}
	}
	return b[:n]
}

type textDecoder struct {
	tr      Transcoder
	charset string
}

func (d textDecoder) ansi(b []byte) string {
	return d.convert(cutANSI(b), d.charset)
}

func (d textDecoder) wide(b []byte) string {
	return d.convert(cutWide(b), CharsetUCS2LE)
}

func (d textDecoder) convert(b []byte, charset string) string {
	if len(b) == 0 {
		return ""
	}
	s, err := d.tr.Transcode(b, charset)
	if err != nil {
		return ConversionFailed
	}
	return s
}
