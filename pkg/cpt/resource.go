package cpt

import "fmt"

// ProfileType selects one of the built-in ICC profiles or marks inline data.
type ProfileType uint32

// ProfileInline means the profile bytes follow the profile block.
const ProfileInline ProfileType = 0xFFFFFFFF

var builtinProfiles = [...]string{
	"sRGB",
	"Fraser (1998)",
	"SMPTE-240M",
	"NTSC (1953)",
	"PAL",
	"SECAM",
	"Barco - D50",
	"Barco - D65",
}

func (t ProfileType) Known() bool {
	return t == ProfileInline || uint32(t) < uint32(len(builtinProfiles))
}

func (t ProfileType) String() string {
	if t == ProfileInline {
		return "embedded"
	}
	if uint32(t) < uint32(len(builtinProfiles)) {
		return builtinProfiles[t]
	}
	return fmt.Sprintf("unknown(0x%08x)", uint32(t))
}

// ColorProfile is the ICC block that follows the header when the file flags say so.
type ColorProfile struct {
	Offset int
	Magic  uint32
	Type   ProfileType
	Length uint32
	Opaque [3]uint32

	data []byte
}

func (p *ColorProfile) Inline() bool { return p.Type == ProfileInline }

// BlockSize is the number of bytes the block occupies, inline payload included.
func (p *ColorProfile) BlockSize() int {
	if p.Inline() {
		return ProfileHeaderSize + int(p.Length)
	}
	return ProfileHeaderSize
}

// Data returns the inline ICC profile bytes, or nil for built-in profiles.
func (p *ColorProfile) Data() []byte { return p.data }

func decodeColorProfile(v ByteView, off int) (*ColorProfile, error) {
	f, err := v.U32s(off, ProfileHeaderSize/4)
	if err != nil {
		return nil, err
	}
	p := &ColorProfile{
		Offset: off,
		Magic:  f[0],
		Type:   ProfileType(f[1]),
		Length: f[2],
		Opaque: [3]uint32{f[3], f[4], f[5]},
	}
	if p.Magic != ProfileMagic {
		return p, newError(ErrBadProfileMagic, off, "magic 0x%08x, want 0x%08x", p.Magic, ProfileMagic)
	}
	if p.Inline() {
		data, err := v.Slice(off+ProfileHeaderSize, offsetInt(uint64(p.Length)))
		if err != nil {
			return p, fmt.Errorf("embedded ICC profile of %d bytes: %w", p.Length, err)
		}
		p.data = data
	}
	return p, nil
}

// RGB is one palette color.
type RGB struct {
	R, G, B uint8
}

// Palette is the color table of an 8-bit paletted image, stored as BGR triplets.
type Palette struct {
	Offset int
	Colors []RGB
}

func decodePalette(b []byte, off int) *Palette {
	p := &Palette{Offset: off, Colors: make([]RGB, len(b)/PaletteEntrySize)}
	for i := range p.Colors {
		e := b[i*PaletteEntrySize:]
		p.Colors[i] = RGB{B: e[0], G: e[1], R: e[2]}
	}
	return p
}

// Bytes encodes the palette back to its on-disk BGR layout.
func (p *Palette) Bytes() []byte {
	out := make([]byte, 0, len(p.Colors)*PaletteEntrySize)
	for _, c := range p.Colors {
		out = append(out, c.B, c.G, c.R)
	}
	return out
}

// Comment holds both header comments. The wide one lives in its own block.
type Comment struct {
	ANSI        string
	Wide        string
	WidePresent bool
	WideOffset  int
}

// extractResources reads the optional blocks between the header and the
// block table: ICC profile, palette and wide comment, in file order.
func (c *Container) extractResources() error {
	off := HeaderSize
	h := &c.Header

	if c.Flags.EmbeddedProfile {
		if !h.ColorModel.AllowsProfile() {
			return newError(ErrIncompatibleColorModel, 0x08, "ICC bit set for %s", h.ColorModel)
		}
		p, err := decodeColorProfile(c.view, off)
		if err != nil {
			return err
		}
		if !p.Type.Known() {
			c.anomalies.add(NoBlock, off+4, AnomalyUnknownProfileType, "profile type 0x%08x", uint32(p.Type))
		}
		c.Profile = p
		off += p.BlockSize()
	}

	// A bad palette count is fatal, but only after the comments are decoded
	// so they still reach the report.
	var pending error
	if h.ColorModel == ColorModelPal8 {
		n := h.PaletteEntries
		if n < PaletteEntrySize || n > MaxPaletteEntries*PaletteEntrySize || n%PaletteEntrySize != 0 {
			pending = newError(ErrInvalidPaletteCount, 0x0C, "%d bytes is not 1..%d colors", n, MaxPaletteEntries)
		}
		count := int(n / PaletteEntrySize)
		if b, err := c.view.Slice(HeaderSize, count*PaletteEntrySize); err == nil {
			c.Palette = decodePalette(b, HeaderSize)
		} else if pending == nil {
			pending = err
		}
		off += offsetInt(uint64(n))
	}

	text := c.text()
	c.Comment.ANSI = text.ansi(h.Notes[:])
	c.Comment.WideOffset = off
	if magic, err := c.view.U32(off); err == nil && magic == WideCommentMagic {
		if notes, err := c.view.Slice(off+4, NoteLenWide); err == nil {
			c.Comment.WidePresent = true
			c.Comment.Wide = text.wide(notes)
		}
	}
	return pending
}
