package cpt

import (
	"encoding/binary"
	"math"
)

// ByteView is a read-only, bounds-checked window over a file buffer.
// Offsets passed to its methods are relative to the start of the view;
// Base reports where that start sits in the whole file so errors can
// carry absolute offsets.
type ByteView struct {
	data []byte
	base int
}

// NewByteView wraps data. The slice must not be modified afterwards.
func NewByteView(data []byte) ByteView {
	return ByteView{data: data}
}

func (v ByteView) Len() int  { return len(v.data) }
func (v ByteView) Base() int { return v.base }

// Has reports whether n bytes starting at off lie inside the view.
func (v ByteView) Has(off, n int) bool {
	if off < 0 || n < 0 {
		return false
	}
	// off+n may overflow for hostile 32-bit offsets on 32-bit platforms.
	return off <= len(v.data) && n <= len(v.data)-off
}

func (v ByteView) check(off, n int) error {
	if !v.Has(off, n) {
		return newError(ErrTruncatedFile, v.base+off, "need %d bytes, %d available", n, v.avail(off))
	}
	return nil
}

func (v ByteView) avail(off int) int {
	if off < 0 || off > len(v.data) {
		return 0
	}
	return len(v.data) - off
}

// Slice returns n bytes at off without copying.
func (v ByteView) Slice(off, n int) ([]byte, error) {
	if err := v.check(off, n); err != nil {
		return nil, err
	}
	return v.data[off : off+n : off+n], nil
}

// Sub returns a view over n bytes at off.
func (v ByteView) Sub(off, n int) (ByteView, error) {
	b, err := v.Slice(off, n)
	if err != nil {
		return ByteView{}, err
	}
	return ByteView{data: b, base: v.base + off}, nil
}

func (v ByteView) U8(off int) (uint8, error) {
	if err := v.check(off, 1); err != nil {
		return 0, err
	}
	return v.data[off], nil
}

func (v ByteView) U16(off int) (uint16, error) {
	if err := v.check(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v.data[off:]), nil
}

func (v ByteView) U32(off int) (uint32, error) {
	if err := v.check(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v.data[off:]), nil
}

func (v ByteView) U64(off int) (uint64, error) {
	if err := v.check(off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(v.data[off:]), nil
}

func (v ByteView) F64(off int) (float64, error) {
	u, err := v.U64(off)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// U32s reads n consecutive double-words starting at off.
func (v ByteView) U32s(off, n int) ([]uint32, error) {
	if n < 0 || n > math.MaxInt/4 {
		return nil, newError(ErrTruncatedFile, v.base+off, "invalid double-word count %d", n)
	}
	if err := v.check(off, n*4); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(v.data[off+i*4:])
	}
	return out, nil
}

// offsetInt converts an on-disk 32-bit offset or size to int. Values that do
// not fit are mapped to -1, which every Has check rejects.
func offsetInt(x uint64) int {
	if x > uint64(math.MaxInt) {
		return -1
	}
	return int(x)
}
