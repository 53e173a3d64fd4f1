// Package report turns a decoded container into a serializable summary and
// renders it as verbose text, a single script-friendly line, JSON or YAML.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samcharles93/cptinfo/pkg/cpt"
)

// Format selects the output renderer.
type Format string

const (
	FormatText  Format = "text"
	FormatShort Format = "short"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatShort, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text, short, json or yaml)", s)
	}
}

// Options selects optional sections of the text renderers.
type Options struct {
	Verbose  bool // unknown fields of chunks and profiles
	NoHeader bool // short mode only: omit the file header part
	Data     bool // data record lists
	Reserved bool // reserved fields even when zero
	Chunks   bool // chunk lists
}

type Report struct {
	ID         string      `json:"id,omitempty" yaml:"id,omitempty"`
	File       string      `json:"file" yaml:"file"`
	Size       int         `json:"size" yaml:"size"`
	Version    string      `json:"version" yaml:"version"`
	VersionTag string      `json:"version_tag" yaml:"version_tag"`
	Header     *Header     `json:"header,omitempty" yaml:"header,omitempty"`
	Profile    *Profile    `json:"profile,omitempty" yaml:"profile,omitempty"`
	Palette    *Palette    `json:"palette,omitempty" yaml:"palette,omitempty"`
	Comment    *Comment    `json:"comment,omitempty" yaml:"comment,omitempty"`
	BlockTable *BlockTable `json:"block_table,omitempty" yaml:"block_table,omitempty"`
	Blocks     []Block     `json:"blocks,omitempty" yaml:"blocks,omitempty"`

	Anomalies []cpt.Anomaly `json:"anomalies" yaml:"anomalies"`
	Error     *Error        `json:"error,omitempty" yaml:"error,omitempty"`
}

type Header struct {
	Creator          string    `json:"creator" yaml:"creator"`
	CreatorKnown     bool      `json:"creator_known" yaml:"creator_known"`
	ColorModel       string    `json:"color_model" yaml:"color_model"`
	ColorModelTag    string    `json:"color_model_tag" yaml:"color_model_tag"`
	ColorModelKnown  bool      `json:"color_model_known" yaml:"color_model_known"`
	XDPI             int       `json:"xdpi" yaml:"xdpi"`
	YDPI             int       `json:"ydpi" yaml:"ydpi"`
	Mask             bool      `json:"mask" yaml:"mask"`
	DPIWarn          bool      `json:"dpi_warn" yaml:"dpi_warn"`
	EmbeddedProfile  bool      `json:"embedded_profile" yaml:"embedded_profile"`
	WideComment      bool      `json:"wide_comment" yaml:"wide_comment"`
	FlagsHigh        uint8     `json:"flags_high" yaml:"flags_high"`
	FlagsLow         uint8     `json:"flags_low" yaml:"flags_low"`
	UnknownFlags     uint32    `json:"unknown_flags" yaml:"unknown_flags"`
	Sentinel         uint32    `json:"sentinel" yaml:"sentinel"`
	SentinelRaw      uint32    `json:"sentinel_raw" yaml:"sentinel_raw"`
	SentinelFixed    bool      `json:"sentinel_fixed" yaml:"sentinel_fixed"`
	Reserved00       [2]uint32 `json:"reserved00" yaml:"reserved00,flow"`
	Reserved01       [2]uint32 `json:"reserved01" yaml:"reserved01,flow"`
	Reserved02       uint32    `json:"reserved02" yaml:"reserved02"`
	BlockCount       uint32    `json:"block_count" yaml:"block_count"`
	BlockTableOffset uint32    `json:"block_table_offset" yaml:"block_table_offset"`
}

type Profile struct {
	Type   string    `json:"type" yaml:"type"`
	Known  bool      `json:"known" yaml:"known"`
	Inline bool      `json:"inline" yaml:"inline"`
	Length uint32    `json:"length" yaml:"length"`
	Opaque [3]uint32 `json:"opaque" yaml:"opaque,flow"`
}

type Palette struct {
	Entries int    `json:"entries" yaml:"entries"`
	Bytes   uint32 `json:"bytes" yaml:"bytes"`
	Valid   bool   `json:"valid" yaml:"valid"`
}

type Comment struct {
	ANSI        string `json:"ansi" yaml:"ansi"`
	Wide        string `json:"wide,omitempty" yaml:"wide,omitempty"`
	WidePresent bool   `json:"wide_present" yaml:"wide_present"`
}

type BlockTable struct {
	Offset   int  `json:"offset" yaml:"offset"`
	Computed int  `json:"computed" yaml:"computed"`
	Count    int  `json:"count" yaml:"count"`
	V9AsV7   bool `json:"v9_as_v7" yaml:"v9_as_v7"`
	Selected bool `json:"selected" yaml:"selected"`
}

type Block struct {
	Index   int              `json:"index" yaml:"index"`
	Offset  int              `json:"offset" yaml:"offset"`
	Size    int              `json:"size" yaml:"size"`
	Header  *cpt.BlockHeader `json:"header,omitempty" yaml:"header,omitempty"`
	Object  bool             `json:"object" yaml:"object"`
	Area    *ChunkArea       `json:"chunk_area,omitempty" yaml:"chunk_area,omitempty"`
	Chunks  []Chunk          `json:"chunks,omitempty" yaml:"chunks,omitempty"`
	Records []cpt.DataRecord `json:"records,omitempty" yaml:"records,omitempty"`
	Overlap bool             `json:"record_overlap" yaml:"record_overlap"`
}

type ChunkArea struct {
	Size     uint32 `json:"size" yaml:"size"`
	Unknown  uint32 `json:"unknown" yaml:"unknown"`
	Mismatch bool   `json:"mismatch" yaml:"mismatch"`
}

type Chunk struct {
	Offset int             `json:"offset" yaml:"offset"`
	Length uint32          `json:"length" yaml:"length"`
	ID     string          `json:"id" yaml:"id"`
	Known  bool            `json:"known" yaml:"known"`
	Kind   string          `json:"kind,omitempty" yaml:"kind,omitempty"`
	Detail cpt.ChunkDetail `json:"detail,omitempty" yaml:"detail,omitempty"`
}

type Error struct {
	Kind   string `json:"kind" yaml:"kind"`
	Offset int64  `json:"offset" yaml:"offset"`
	Msg    string `json:"msg" yaml:"msg"`
}

var errorKinds = []struct {
	err  error
	kind string
}{
	{cpt.ErrTruncatedFile, "truncated_file"},
	{cpt.ErrNotContainerFormat, "not_container_format"},
	{cpt.ErrUnsupportedVersion, "unsupported_version"},
	{cpt.ErrIncompatibleColorModel, "incompatible_color_model"},
	{cpt.ErrBadProfileMagic, "bad_profile_magic"},
	{cpt.ErrInvalidPaletteCount, "invalid_palette_count"},
	{cpt.ErrInvalidBlockTableOffset, "invalid_block_table_offset"},
	{cpt.ErrBlockCountMismatch, "block_count_mismatch"},
	{cpt.ErrCorruptChunk, "corrupt_chunk"},
	{cpt.ErrUnexpectedChunkAfterZeroArea, "unexpected_chunk_after_zero_area"},
}

// ErrorKind names the fatal condition behind err, or "io" for anything
// that did not come from the decoder.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "io"
}

func newError(err error) *Error {
	if err == nil {
		return nil
	}
	e := &Error{Kind: ErrorKind(err), Msg: err.Error()}
	var de *cpt.Error
	if errors.As(err, &de) {
		e.Offset = de.Offset
	}
	return e
}

// Build summarises c. decodeErr is the error Decode returned alongside c;
// sections the decoder never reached are left out.
func Build(file string, c *cpt.Container, decodeErr error) *Report {
	r := &Report{
		File:      file,
		Anomalies: []cpt.Anomaly{},
		Error:     newError(decodeErr),
	}
	if c == nil {
		return r
	}
	r.Size = c.Size()
	r.Version = c.Version.String()
	r.VersionTag = c.Version.Tag()
	if c.Anomalies() != nil {
		r.Anomalies = c.Anomalies()
	}
	if c.Version == cpt.VersionUnknown || c.Version == cpt.Version6 {
		return r
	}

	h := &c.Header
	r.Header = &Header{
		Creator:          c.Flags.Creator.String(),
		CreatorKnown:     c.Flags.Creator.Known(),
		ColorModel:       h.ColorModel.String(),
		ColorModelTag:    h.ColorModel.Tag(),
		ColorModelKnown:  h.ColorModel.Known(),
		XDPI:             c.Resolution.X,
		YDPI:             c.Resolution.Y,
		Mask:             c.Resolution.Mask,
		DPIWarn:          c.Has(cpt.AnomalyDPIOutOfRange),
		EmbeddedProfile:  c.Flags.EmbeddedProfile,
		WideComment:      c.Flags.WideComment,
		FlagsHigh:        c.Flags.High,
		FlagsLow:         c.Flags.Low,
		UnknownFlags:     c.Flags.Unknown,
		Sentinel:         h.Sentinel,
		SentinelRaw:      c.SentinelRaw,
		SentinelFixed:    c.SentinelFixed,
		Reserved00:       h.Reserved00,
		Reserved01:       h.Reserved01,
		Reserved02:       h.Reserved02,
		BlockCount:       h.BlockCount,
		BlockTableOffset: h.BlockTableOffset,
	}

	if p := c.Profile; p != nil {
		r.Profile = &Profile{
			Type:   p.Type.String(),
			Known:  p.Type.Known(),
			Inline: p.Inline(),
			Length: p.Length,
			Opaque: p.Opaque,
		}
	}
	if h.ColorModel == cpt.ColorModelPal8 {
		r.Palette = &Palette{
			Entries: int(h.PaletteEntries / cpt.PaletteEntrySize),
			Bytes:   h.PaletteEntries,
			Valid:   !errors.Is(decodeErr, cpt.ErrInvalidPaletteCount),
		}
	}
	r.Comment = &Comment{
		ANSI:        c.Comment.ANSI,
		Wide:        c.Comment.Wide,
		WidePresent: c.Comment.WidePresent,
	}

	if c.BlockTable.Entries != nil {
		r.BlockTable = &BlockTable{
			Offset:   c.BlockTable.Offset,
			Computed: c.BlockTable.Computed,
			Count:    len(c.BlockTable.Entries),
			V9AsV7:   c.Has(cpt.AnomalyV9WrittenAsV7),
			Selected: len(c.Blocks) != len(c.BlockTable.Entries),
		}
	}
	for i := range c.Blocks {
		r.Blocks = append(r.Blocks, buildBlock(c, &c.Blocks[i]))
	}
	return r
}

func buildBlock(c *cpt.Container, b *cpt.Block) Block {
	out := Block{
		Index:   b.Index,
		Offset:  b.Offset,
		Size:    b.Size,
		Header:  b.Header,
		Records: b.Records,
	}
	if b.Header == nil {
		return out
	}
	out.Object = b.Header.IsObject()
	if b.Header.ChunkAreaSize != 0 {
		out.Area = &ChunkArea{Size: b.AreaSize, Unknown: b.AreaUnknown}
	}
	for _, a := range c.BlockAnomalies(b.Index) {
		switch a.Kind {
		case cpt.AnomalyChunkAreaSizeMismatch:
			if out.Area != nil {
				out.Area.Mismatch = true
			}
		case cpt.AnomalyAdjacentRecordOverlap:
			out.Overlap = true
		}
	}
	for _, ch := range b.Chunks {
		rc := Chunk{
			Offset: ch.Offset,
			Length: ch.Length,
			ID:     ch.ID.String(),
			Known:  ch.Known,
			Detail: ch.Detail,
		}
		if ch.Detail != nil {
			rc.Kind = ch.Detail.ChunkKind()
		}
		out.Chunks = append(out.Chunks, rc)
	}
	return out
}
