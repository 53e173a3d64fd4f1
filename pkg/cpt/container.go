package cpt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// BlockRange selects blocks First..Last inclusive. Last < 0 means the last block.
type BlockRange struct {
	First int
	Last  int
}

// Options control decoding. The zero value decodes every block with the
// default charset.
type Options struct {
	// Charset names the code page of 8-bit text fields. Defaults to DefaultCharset.
	Charset string
	// Transcoder converts text fields. Defaults to TextTranscoder.
	Transcoder Transcoder
	// Blocks limits block decoding. Nil means all blocks.
	Blocks *BlockRange
}

func (o Options) withDefaults() Options {
	if o.Charset == "" {
		o.Charset = DefaultCharset
	}
	if o.Transcoder == nil {
		o.Transcoder = TextTranscoder{}
	}
	return o
}

// blockSpan clamps the selected range to a table of n entries. A range
// past the end of the table selects the last block.
func (o Options) blockSpan(n int) (first, last int) {
	first, last = 0, n-1
	if o.Blocks == nil {
		return first, last
	}
	first = min(max(o.Blocks.First, 0), n-1)
	if o.Blocks.Last >= 0 && o.Blocks.Last < last {
		last = max(o.Blocks.Last, first)
	}
	return first, last
}

// ParseBlockRange parses "n" or "n-m". A reversed range is swapped.
func ParseBlockRange(s string) (BlockRange, error) {
	s = strings.TrimSpace(s)
	lo, hi, isRange := strings.Cut(s, "-")
	first, err := strconv.ParseUint(strings.TrimSpace(lo), 10, 31)
	if err != nil {
		return BlockRange{}, fmt.Errorf("block range %q: %w", s, err)
	}
	if !isRange {
		return BlockRange{First: int(first), Last: int(first)}, nil
	}
	last, err := strconv.ParseUint(strings.TrimSpace(hi), 10, 31)
	if err != nil {
		return BlockRange{}, fmt.Errorf("block range %q: %w", s, err)
	}
	if first > last {
		first, last = last, first
	}
	return BlockRange{First: int(first), Last: int(last)}, nil
}

// Container is a decoded CPT file. Everything it exposes is derived from
// the immutable file buffer; the only edit is the sentinel fix-up applied
// to the decoded Header copy.
type Container struct {
	Version    Version
	Header     Header
	Flags      Flags
	Resolution Resolution
	Profile    *ColorProfile
	Palette    *Palette
	Comment    Comment
	BlockTable BlockTable
	Blocks     []Block

	// SentinelFixed is set when the header sentinel was reset on load;
	// SentinelRaw then holds the value read from the file, zero included.
	SentinelFixed bool
	SentinelRaw   uint32

	view      ByteView
	anomalies Anomalies
	opts      Options
	mmapped   bool
}

// Decode parses a whole CPT file held in data. data must not be modified
// while the Container is in use.
//
// On a fatal error the partially decoded Container is returned together
// with the error, so callers can still report what was read.
func Decode(data []byte, opts Options) (*Container, error) {
	c := &Container{
		view: NewByteView(data),
		opts: opts.withDefaults(),
	}
	return c, c.decode()
}

func (c *Container) decode() error {
	if err := c.resolveHeader(); err != nil {
		return err
	}
	if err := c.extractResources(); err != nil {
		return err
	}
	if err := c.resolveBlockTable(); err != nil {
		return err
	}
	return c.decodeBlocks()
}

// Open maps a CPT file read-only and decodes it. If mmap is unavailable it
// falls back to ReadAt-based loading. A non-nil Container must be closed
// to release the mapping, including when err is a decode error.
func Open(path string, opts Options) (*Container, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("%s: file size %d cannot be mapped", path, size64)
	}
	size := int(size64)

	if size > 0 {
		data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
		if err == nil {
			c, err := Decode(data, opts)
			c.mmapped = true
			return c, err
		}
	}

	data, err := readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return Decode(data, opts)
}

// OpenReaderAt loads a CPT file from a random-access reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64, opts Options) (*Container, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("reader size %d out of range", size)
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return Decode(data, opts)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

// Close releases the file mapping, if any. The Container and every slice
// obtained from it must not be used afterwards.
func (c *Container) Close() error {
	if c == nil || !c.mmapped {
		return nil
	}
	data := c.view.data
	c.view = ByteView{}
	c.mmapped = false
	return unix.Munmap(data)
}

// Size is the file size in bytes.
func (c *Container) Size() int { return c.view.Len() }

// Bytes returns the underlying file buffer. It must be treated as read-only.
func (c *Container) Bytes() []byte { return c.view.data }

// Charset is the code page used for 8-bit text fields.
func (c *Container) Charset() string { return c.opts.Charset }

// Anomalies returns every non-fatal finding in detection order.
func (c *Container) Anomalies() []Anomaly { return c.anomalies.Items() }

// Has reports whether at least one anomaly of kind was found.
func (c *Container) Has(kind AnomalyKind) bool { return c.anomalies.Count(kind) > 0 }

// Count returns the number of anomalies of kind.
func (c *Container) Count(kind AnomalyKind) int { return c.anomalies.Count(kind) }

// BlockAnomalies returns the anomalies attached to block i.
func (c *Container) BlockAnomalies(i int) []Anomaly { return c.anomalies.InBlock(i) }

func (c *Container) text() textDecoder {
	return textDecoder{tr: c.opts.Transcoder, charset: c.opts.Charset}
}
