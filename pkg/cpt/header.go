package cpt

import (
	"bytes"
	"fmt"
	"math"
)

// On-disk sizes of the fixed records.
const (
	HeaderSize          = 60 + NoteLenANSI
	NoteLenANSI         = 256
	NoteLenWide         = 512
	WideCommentSize     = 4 + NoteLenWide
	ProfileHeaderSize   = 24
	BlockTableEntrySize = 8
	BlockHeaderSize     = 60
	PaletteEntrySize    = 3
)

// Header field values.
const (
	SentinelValue     uint32 = 0x00010000
	WideCommentMagic  uint32 = 0x0204
	ProfileMagic      uint32 = 0x5A
	DPIMin                   = 10
	DPIMax                   = 10000
	MaxPaletteEntries        = 256

	// dpiScale converts the raw header resolution to dots per inch.
	dpiScale = 25.399986284007403 / 1000000
)

// Flag bits of the header flags field.
const (
	FlagEmbeddedProfile uint32 = 0x0100
	FlagWideComment     uint32 = 0x0200
	flagVersion701Mask  uint32 = 0x00F0
	flagVersion701      uint32 = 0x0090
	knownFlagBits              = FlagEmbeddedProfile | FlagWideComment | 0x00FF
)

// Version is the container format version.
type Version uint16

const (
	VersionUnknown Version = 0
	Version6       Version = 0x600
	Version7       Version = 0x700
	Version701     Version = 0x701
	Version8       Version = 0x800
	Version9       Version = 0x900
)

func (v Version) String() string {
	switch v {
	case Version6:
		return "6.0"
	case Version7:
		return "7.0"
	case Version701:
		return "7.01"
	case Version8:
		return "8.0"
	case Version9:
		return "9.0+"
	default:
		return fmt.Sprintf("unknown(0x%03x)", uint16(v))
	}
}

// Tag is the compact name used by short reports.
func (v Version) Tag() string {
	switch v {
	case Version6:
		return "CPT6"
	case Version7:
		return "CPT7"
	case Version701:
		return "CPT701"
	case Version8:
		return "CPT8"
	case Version9:
		return "CPT9"
	default:
		return "CPT?"
	}
}

// Legacy reports whether v uses the 7.x/8.0 block table convention.
func (v Version) Legacy() bool {
	return v == Version7 || v == Version701 || v == Version8
}

var versionMagics = []struct {
	magic   string
	version Version
}{
	{"CPT7FILE", Version7},
	{"CPT8FILE", Version8},
	{"CPT9FILE", Version9},
}

// Version 6 files are TIFF containers with an application string at a fixed offset.
const (
	v6Magic         = "II*\x00"
	v6Signature     = "Corel PHOTO-PAINT 6.0"
	v6SignatureOffs = 0x0F
)

// ColorModel identifies the pixel layout of the image.
type ColorModel uint32

const (
	ColorModelRGB24  ColorModel = 0x01
	ColorModelCMYK32 ColorModel = 0x03
	ColorModelGray8  ColorModel = 0x05
	ColorModelBW1    ColorModel = 0x06
	ColorModelPal8   ColorModel = 0x0A
	ColorModelLab24  ColorModel = 0x0B
	ColorModelRGB48  ColorModel = 0x0C
	ColorModelGray16 ColorModel = 0x0E
)

func (m ColorModel) String() string {
	switch m {
	case ColorModelBW1:
		return "1-bit black&white"
	case ColorModelGray8:
		return "8-bit grayscale"
	case ColorModelPal8:
		return "8-bit paletted"
	case ColorModelGray16:
		return "16-bit grayscale"
	case ColorModelRGB24:
		return "24-bit RGB"
	case ColorModelLab24:
		return "24-bit Lab"
	case ColorModelCMYK32:
		return "32-bit CMYK"
	case ColorModelRGB48:
		return "48-bit RGB"
	default:
		return "unknown"
	}
}

// Tag is the compact name used by short reports.
func (m ColorModel) Tag() string {
	switch m {
	case ColorModelBW1:
		return "BW1"
	case ColorModelGray8:
		return "GRAY8"
	case ColorModelPal8:
		return "PAL8"
	case ColorModelGray16:
		return "GRAY16"
	case ColorModelRGB24:
		return "RGB24"
	case ColorModelLab24:
		return "LAB24"
	case ColorModelCMYK32:
		return "CMYK32"
	case ColorModelRGB48:
		return "RGB48"
	default:
		return "UNK!"
	}
}

func (m ColorModel) Known() bool {
	switch m {
	case ColorModelRGB24, ColorModelCMYK32, ColorModelGray8, ColorModelBW1,
		ColorModelPal8, ColorModelLab24, ColorModelRGB48, ColorModelGray16:
		return true
	}
	return false
}

// AllowsProfile reports whether PHOTO-PAINT embeds ICC data for this model.
func (m ColorModel) AllowsProfile() bool {
	switch m {
	case ColorModelRGB24, ColorModelCMYK32, ColorModelLab24, ColorModelRGB48:
		return true
	}
	return false
}

// Creator is the application marker kept in the low byte of the flags.
type Creator uint8

const (
	CreatorV7 Creator = 0x01
	CreatorV8 Creator = 0x8C
	CreatorV9 Creator = 0x94
)

func (c Creator) String() string {
	switch c {
	case CreatorV7:
		return "Corel Photo-Paint 7.0"
	case CreatorV8:
		return "Corel Photo-Paint 8.0"
	case CreatorV9:
		return "Corel Photo-Paint 9.0+"
	default:
		return "unknown"
	}
}

func (c Creator) Known() bool {
	return c == CreatorV7 || c == CreatorV8 || c == CreatorV9
}

// Header is the fixed record at the start of every CPT7+ file.
type Header struct {
	Magic            [8]byte
	ColorModel       ColorModel
	PaletteEntries   uint32 // palette size in bytes, 3 per color
	Reserved00       [2]uint32
	XDPIRaw          uint32
	YDPIRaw          uint32
	Reserved01       [2]uint32
	BlockCount       uint32
	Sentinel         uint32
	Flags            uint32
	BlockTableOffset uint32
	Reserved02       uint32
	Notes            [NoteLenANSI]byte
}

// Flags is the decomposed header flags field.
type Flags struct {
	Raw             uint32
	High            uint8
	Low             uint8
	Creator         Creator
	EmbeddedProfile bool
	WideComment     bool
	Unknown         uint32
}

func resolveFlags(raw uint32) Flags {
	return Flags{
		Raw:             raw,
		High:            uint8(raw >> 8),
		Low:             uint8(raw),
		Creator:         Creator(raw),
		EmbeddedProfile: raw&FlagEmbeddedProfile != 0,
		WideComment:     raw&FlagWideComment != 0,
		Unknown:         raw &^ knownFlagBits,
	}
}

// Resolution is the image resolution in dots per inch.
type Resolution struct {
	X    int
	Y    int
	Mask bool
}

func dpiFromRaw(raw uint32) int {
	return int(math.Round(float64(raw) * dpiScale))
}

func decodeHeader(v ByteView) (Header, error) {
	var h Header
	if err := v.check(0, HeaderSize); err != nil {
		return h, err
	}
	b, _ := v.Slice(0, HeaderSize)
	f, _ := v.U32s(8, 13)

	copy(h.Magic[:], b[0:8])
	h.ColorModel = ColorModel(f[0])
	h.PaletteEntries = f[1]
	h.Reserved00 = [2]uint32{f[2], f[3]}
	h.XDPIRaw = f[4]
	h.YDPIRaw = f[5]
	h.Reserved01 = [2]uint32{f[6], f[7]}
	h.BlockCount = f[8]
	h.Sentinel = f[9]
	h.Flags = f[10]
	h.BlockTableOffset = f[11]
	h.Reserved02 = f[12]
	copy(h.Notes[:], b[60:HeaderSize])
	return h, nil
}

// detectVersion matches the file magic. The flags argument resolves the
// 7.01 variant, which shares its magic with 7.0.
func detectVersion(v ByteView, flags uint32) Version {
	magic, err := v.Slice(0, 8)
	if err != nil {
		return VersionUnknown
	}
	for _, m := range versionMagics {
		if string(magic) != m.magic {
			continue
		}
		if m.version == Version7 && flags&flagVersion701Mask == flagVersion701 {
			return Version701
		}
		return m.version
	}

	head, err := v.Slice(0, len(v6Magic))
	if err != nil || string(head) != v6Magic {
		return VersionUnknown
	}
	sig, err := v.Slice(v6SignatureOffs, len(v6Signature))
	if err != nil || !bytes.Equal(sig, []byte(v6Signature)) {
		return VersionUnknown
	}
	return Version6
}

func (c *Container) resolveHeader() error {
	if c.view.Len() < HeaderSize {
		return newError(ErrTruncatedFile, 0, "file is %d bytes, header needs %d", c.view.Len(), HeaderSize)
	}
	flags, _ := c.view.U32(0x30)
	c.Version = detectVersion(c.view, flags)
	switch c.Version {
	case VersionUnknown:
		return newError(ErrNotContainerFormat, 0, "no known magic")
	case Version6:
		return newError(ErrUnsupportedVersion, 0, "version %s files are not decoded", c.Version)
	}

	h, err := decodeHeader(c.view)
	if err != nil {
		return err
	}
	c.Header = h
	c.fixSentinel()

	c.Flags = resolveFlags(h.Flags)
	if !c.Flags.Creator.Known() {
		c.anomalies.add(NoBlock, 0x30, AnomalyUnknownCreator, "creator marker 0x%02x", c.Flags.Low)
	}
	if c.Flags.Unknown != 0 {
		c.anomalies.add(NoBlock, 0x30, AnomalyUnknownFlagBits, "unknown flag bits 0x%08x", c.Flags.Unknown)
	}
	if !h.ColorModel.Known() {
		c.anomalies.add(NoBlock, 0x08, AnomalyUnknownColorModel, "color model 0x%02x", uint32(h.ColorModel))
	}

	c.Resolution = Resolution{X: dpiFromRaw(h.XDPIRaw), Y: dpiFromRaw(h.YDPIRaw)}
	if c.Resolution.X == 0 && c.Resolution.Y == 0 {
		c.Resolution.Mask = true
	} else if !dpiInRange(c.Resolution.X) || !dpiInRange(c.Resolution.Y) {
		c.anomalies.add(NoBlock, 0x18, AnomalyDPIOutOfRange, "resolution %dx%d outside [%d, %d]",
			c.Resolution.X, c.Resolution.Y, DPIMin, DPIMax)
	}

	if h.Reserved00 != [2]uint32{} {
		c.anomalies.add(NoBlock, 0x10, AnomalyReservedFieldNonzero, "reserved 00: 0x%08x 0x%08x", h.Reserved00[0], h.Reserved00[1])
	}
	if h.Reserved01 != [2]uint32{} {
		c.anomalies.add(NoBlock, 0x20, AnomalyReservedFieldNonzero, "reserved 01: 0x%08x 0x%08x", h.Reserved01[0], h.Reserved01[1])
	}
	if h.Reserved02 != 0 {
		c.anomalies.add(NoBlock, 0x38, AnomalyReservedFieldNonzero, "reserved 02: 0x%08x", h.Reserved02)
	}
	return nil
}

// fixSentinel is the only mutation applied to a decoded header. PHOTO-PAINT
// resets the field on load and so does the decoder; the buffer is untouched.
func (c *Container) fixSentinel() {
	if c.Header.Sentinel == SentinelValue {
		return
	}
	c.SentinelRaw = c.Header.Sentinel
	c.SentinelFixed = true
	c.Header.Sentinel = SentinelValue
	c.anomalies.add(NoBlock, 0x2C, AnomalySentinelMismatch, "field was 0x%08x, reset to 0x%08x", c.SentinelRaw, SentinelValue)
}

func dpiInRange(d int) bool {
	return d >= DPIMin && d <= DPIMax
}
