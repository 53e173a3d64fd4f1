package cpt

import (
	"errors"
	"math"
	"testing"
)

func TestByteViewBounds(t *testing.T) {
	t.Parallel()

	v := NewByteView([]byte{1, 0, 0, 0, 2, 0, 0, 0})
	if got, err := v.U32(4); err != nil || got != 2 {
		t.Fatalf("U32(4): got %d, %v", got, err)
	}
	for _, off := range []int{5, 8, -1, math.MaxInt - 2} {
		if _, err := v.U32(off); !errors.Is(err, ErrTruncatedFile) {
			t.Fatalf("U32(%d): got %v want %v", off, err, ErrTruncatedFile)
		}
	}
	if v.Has(0, -1) || !v.Has(8, 0) || v.Has(9, 0) {
		t.Fatalf("Has edge cases")
	}

	sub, err := v.Sub(4, 4)
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	_, err = sub.U32(2)
	var de *Error
	if !errors.As(err, &de) || de.Offset != 6 {
		t.Fatalf("sub view error should carry absolute offset, got %v", err)
	}

	b, _ := v.Slice(0, 4)
	if cap(b) != 4 {
		t.Fatalf("slice capacity leaks the rest of the buffer: %d", cap(b))
	}
	if _, err := v.U32s(0, math.MaxInt/2); !errors.Is(err, ErrTruncatedFile) {
		t.Fatalf("huge U32s: got %v", err)
	}
	if offsetInt(math.MaxUint64) != -1 {
		t.Fatalf("offsetInt overflow")
	}
}

func TestLookupCharset(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"cp1250", "CP1252", "windows-1251", "ISO_8859-2", "UCS-2LE", "shift_jis"} {
		if _, err := LookupCharset(name); err != nil {
			t.Fatalf("LookupCharset(%q): %v", name, err)
		}
	}
	if _, err := LookupCharset("no-such-charset"); err == nil {
		t.Fatalf("expected error for unknown charset")
	}

	d := textDecoder{tr: TextTranscoder{}, charset: "nope"}
	if got := d.ansi([]byte("abc")); got != ConversionFailed {
		t.Fatalf("unknown charset: got %q", got)
	}
	if got := d.wide([]byte{'h', 0, 'i', 0, 0, 0, 'x', 0}); got != "hi" {
		t.Fatalf("wide cut at NUL: got %q", got)
	}
	if got := cutWide([]byte{'a', 0, 'b'}); len(got) != 2 {
		t.Fatalf("odd byte not dropped: %v", got)
	}
}
