package cpt

import (
	"errors"
	"fmt"
)

// Fatal decode conditions. Every error returned by Decode wraps exactly one of these.
var (
	ErrTruncatedFile                = errors.New("cpt: truncated file")
	ErrNotContainerFormat           = errors.New("cpt: not a CPT file")
	ErrUnsupportedVersion           = errors.New("cpt: unsupported CPT version")
	ErrIncompatibleColorModel       = errors.New("cpt: color model does not allow an ICC profile")
	ErrBadProfileMagic              = errors.New("cpt: bad ICC profile magic")
	ErrInvalidPaletteCount          = errors.New("cpt: invalid palette entries number")
	ErrInvalidBlockTableOffset      = errors.New("cpt: invalid block table offset")
	ErrBlockCountMismatch           = errors.New("cpt: block count mismatch")
	ErrCorruptChunk                 = errors.New("cpt: corrupt chunk")
	ErrUnexpectedChunkAfterZeroArea = errors.New("cpt: chunk found after chunk area")
)

// Error carries the file offset a fatal condition was detected at.
type Error struct {
	Err    error
	Offset int64
	Msg    string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%v (at 0x%08x)", e.Err, e.Offset)
	}
	return fmt.Sprintf("%v: %s (at 0x%08x)", e.Err, e.Msg, e.Offset)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, offset int, format string, args ...any) *Error {
	return &Error{
		Err:    kind,
		Offset: int64(offset),
		Msg:    fmt.Sprintf(format, args...),
	}
}

// asKind rewraps a bounds error from a ByteView under another fatal kind,
// keeping its offset. Errors of any other shape pass through unchanged.
func asKind(err error, kind error, format string, args ...any) error {
	var e *Error
	if errors.As(err, &e) && errors.Is(e.Err, ErrTruncatedFile) {
		return newError(kind, int(e.Offset), format, args...)
	}
	return err
}
