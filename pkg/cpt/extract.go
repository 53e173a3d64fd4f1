package cpt

import "fmt"

// Extent is a byte range of the file together with its contents.
type Extent struct {
	Offset int
	Data   []byte
}

func (e Extent) Len() int { return len(e.Data) }

// ProfileData returns the embedded ICC profile bytes. ok is false when the
// file carries no inline profile.
func (c *Container) ProfileData() (Extent, bool) {
	if c.Profile == nil || !c.Profile.Inline() || c.Profile.data == nil {
		return Extent{}, false
	}
	return Extent{Offset: c.Profile.Offset + ProfileHeaderSize, Data: c.Profile.data}, true
}

// PaletteData returns the raw BGR palette exactly as stored.
func (c *Container) PaletteData() (Extent, bool) {
	if c.Palette == nil || len(c.Palette.Colors) == 0 {
		return Extent{}, false
	}
	b, err := c.view.Slice(c.Palette.Offset, len(c.Palette.Colors)*PaletteEntrySize)
	if err != nil {
		return Extent{}, false
	}
	return Extent{Offset: c.Palette.Offset, Data: b}, true
}

// BlockData returns the raw bytes of block i as laid out by the block table.
func (c *Container) BlockData(i int) (Extent, error) {
	off, n, ok := c.BlockTable.Span(i, c.view.Len())
	if !ok {
		return Extent{}, fmt.Errorf("block %04x: no valid byte range", i)
	}
	b, err := c.view.Slice(off, n)
	if err != nil {
		return Extent{}, fmt.Errorf("block %04x: %w", i, err)
	}
	return Extent{Offset: off, Data: b}, nil
}
