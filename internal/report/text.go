package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/samcharles93/cptinfo/pkg/cpt"
)

const warnMark = " [!]"

func mark(b bool) string {
	if b {
		return warnMark
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

type textWriter struct {
	w   *bufio.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

// Text writes the multi-line human-readable report.
func Text(w io.Writer, r *Report, opts Options) error {
	t := &textWriter{w: bufio.NewWriter(w)}

	t.printf("CPT file: %s (%d bytes)\n", r.File, r.Size)
	if r.Version != "" {
		t.printf("CPT file format: %s\n", r.Version)
	}
	if r.Header != nil {
		textHeader(t, r, opts)
	}
	for i := range r.Blocks {
		textBlock(t, &r.Blocks[i], opts)
	}

	if n := len(r.Anomalies); n > 0 {
		t.printf("Anomalies: %d\n", n)
		for _, a := range r.Anomalies {
			t.printf("  %s\n", a)
		}
	}
	if r.Error != nil {
		t.printf("[E] %s\n", r.Error.Msg)
	}

	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}

func textHeader(t *textWriter, r *Report, opts Options) {
	h := r.Header
	if h.CreatorKnown {
		t.printf("CPT creator version: %s\n", h.Creator)
	} else {
		t.printf("CPT creator version: Unknown%s\n", warnMark)
	}
	t.printf("CPT color model: %s%s\n", h.ColorModel, mark(!h.ColorModelKnown))

	t.printf("CPT resolution: %dx%d DPI", h.XDPI, h.YDPI)
	if h.Mask {
		t.printf(" (mask)")
	}
	t.printf("%s\n", mark(h.DPIWarn))

	t.printf("CPT has embedded wide comment: %s\n", yesNo(h.WideComment))
	t.printf("CPT has embedded ICC profile: %s\n", yesNo(h.EmbeddedProfile))
	t.printf("CPT flags value: 0x%02x 0x%02x%s\n", h.FlagsHigh, h.FlagsLow, mark(h.UnknownFlags != 0))

	if p := r.Profile; p != nil {
		t.printf("CPT ICC profile data type: %s%s\n", p.Type, mark(!p.Known))
		if p.Inline {
			t.printf("CPT ICC profile file size: %d bytes\n", p.Length)
		}
		if opts.Verbose {
			t.printf("CPT ICC unknown vars: 0x%08x 0x%08x 0x%08x\n", p.Opaque[0], p.Opaque[1], p.Opaque[2])
		}
	}

	entries := 0
	palWarn := false
	if p := r.Palette; p != nil {
		entries, palWarn = p.Entries, !p.Valid
	}
	t.printf("CPT palette entries number: %d color(s)%s\n", entries, mark(palWarn))

	if c := r.Comment; c != nil && c.ANSI != "" {
		t.printf("CPT comment (ANSI): %s\n", c.ANSI)
		if c.WidePresent {
			t.printf("CPT comment (UCS-2): %s\n", c.Wide)
		}
	}

	bt := r.BlockTable
	if bt == nil {
		return
	}
	v9 := ""
	if bt.V9AsV7 {
		v9 = " [CPT9]"
	}
	t.printf("CPT block table offset: 0x%08x%s\n", bt.Offset, v9)
	t.printf("CPT blocks number: %d\n", bt.Count)

	t.printf("CPT unknown field 00: 0x%08x (%d)%s\n", h.Sentinel, h.Sentinel, mark(h.SentinelFixed))
	if opts.Reserved || h.Reserved00 != [2]uint32{} {
		t.printf("CPT reserved 00: 0x%08x 0x%08x%s\n", h.Reserved00[0], h.Reserved00[1], mark(h.Reserved00 != [2]uint32{}))
	}
	if opts.Reserved || h.Reserved01 != [2]uint32{} {
		t.printf("CPT reserved 01: 0x%08x 0x%08x%s\n", h.Reserved01[0], h.Reserved01[1], mark(h.Reserved01 != [2]uint32{}))
	}
	if opts.Reserved || h.Reserved02 != 0 {
		t.printf("CPT reserved 02: 0x%08x%s\n", h.Reserved02, mark(h.Reserved02 != 0))
	}
	if bt.Selected && len(r.Blocks) > 0 {
		first, last := r.Blocks[0].Index, r.Blocks[len(r.Blocks)-1].Index
		if first == last {
			t.printf("Scanning block %d...\n", first)
		} else {
			t.printf("Scanning blocks %d-%d...\n", first, last)
		}
	}
}

func textBlock(t *textWriter, b *Block, opts Options) {
	t.printf("[*] BLOCK %04x @ 0x%08x (%d bytes)\n", b.Index, b.Offset, b.Size)
	h := b.Header
	if h == nil {
		return
	}
	t.printf("    Block dimensions: %dx%d pixels\n", h.Width, h.Height)
	t.printf("    [?] Tile dimensions: %dx%d pixels\n", h.TileWidth, h.TileHeight)
	t.printf("    Bits per pixel: %d bpp\n", h.BitsPerPixel)
	t.printf("    Unknown field 00: 0x%08x (%d)\n", h.Unknown0, h.Unknown0)
	t.printf("    Unknown field 01: 0x%08x (%d)\n", h.Unknown1, h.Unknown1)
	obj := ""
	if b.Object {
		obj = " [object]"
	}
	t.printf("    Unknown field 02: 0x%08x (%d)%s\n", h.Unknown2, h.Unknown2, obj)
	t.printf("    [?] Chunk area size: %d bytes\n", h.ChunkAreaSize)
	t.printf("    Palette data size: %d bytes\n", h.PaletteSize)
	t.printf("    Unknown field 03[5]: %d %d %d %d %d%s\n",
		h.Reserved[0], h.Reserved[1], h.Reserved[2], h.Reserved[3], h.Reserved[4], mark(h.Reserved != [5]uint32{}))

	if opts.Chunks {
		textChunks(t, b, opts)
	} else if b.Area != nil && b.Area.Mismatch {
		t.printf("    [W] Chunk table size differ, use --chunks for more details!\n")
	}
	if opts.Data {
		for _, rec := range b.Records {
			if rec.HasMarker {
				t.printf("    [**] 0x%08x (%5d bytes): 0x%08x\n", rec.Offset, rec.Length, rec.Marker)
			} else {
				t.printf("    [**] 0x%08x (%5d bytes): ????????%s\n", rec.Offset, rec.Length, warnMark)
			}
		}
		t.printf("    [--] END of list (%d element(s))%s\n", len(b.Records), mark(b.Overlap))
	}
}

func textChunks(t *textWriter, b *Block, opts Options) {
	a := b.Area
	if a == nil {
		t.printf("    Chunk table size is 0, skipping...\n")
		return
	}
	t.printf("    Chunk table size (block info/area info+pal_size): %d/%d%s\n",
		b.Header.ChunkAreaSize, a.Size+b.Header.PaletteSize, mark(a.Mismatch))
	t.printf("    Chunk table unknown variable: %d (%08x)\n", a.Unknown, a.Unknown)
	for _, ch := range b.Chunks {
		tag := "CHUNK"
		if !ch.Known {
			tag = "?????"
		}
		t.printf("    [**] %s: '%s' @ 0x%08x (%d=%d+8 bytes)\n", tag, ch.ID, ch.Offset, uint64(ch.Length)+8, ch.Length)
		textChunkDetail(t, ch.Detail, opts)
	}
	t.printf("    [--] END of chunks (%d found)\n", len(b.Chunks))
}

const detailTab = "         "

func textChunkDetail(t *textWriter, d cpt.ChunkDetail, opts Options) {
	switch d := d.(type) {
	case *cpt.Grid:
		t.printf("%sGrid density: %.4f %s / %.4f %s\n", detailTab,
			d.X.Value, unitName(d.X.Unit), d.Y.Value, unitName(d.Y.Unit))
		if opts.Verbose {
			t.printf("%sUnknown var 00: %08x %08x (%d %d)\n", detailTab, d.Unknown0[0], d.Unknown0[1], d.Unknown0[0], d.Unknown0[1])
			t.printf("%sUnknown var 01: %s\n", detailTab, joinU32(d.Unknown1[:]))
		}
	case *cpt.Path:
		t.printf("%sPath name ANSI: %s\n", detailTab, d.Name)
		if opts.Verbose {
			t.printf("%sUnknown var 00..04: %s\n", detailTab, joinU32(d.Unknown[:]))
		}
	case *cpt.PathWide:
		t.printf("%sPath name UCS-2: %s\n", detailTab, d.Name)
	case *cpt.BackgroundName:
		if d.Wide {
			t.printf("%sBackground name UCS-2: %s\n", detailTab, d.Name)
		} else {
			t.printf("%sBackground name ANSI: %s\n", detailTab, d.Name)
		}
	case *cpt.ObjectInfo:
		t.printf("%sObject name ANSI: %s\n", detailTab, d.NameANSI)
		t.printf("%sObject name UCS-2: %s\n", detailTab, d.NameWide)
		if opts.Verbose {
			t.printf("%sUnknown var 00: %s\n", detailTab, joinU32(d.Unknown0[:]))
			t.printf("%sUnknown var 01: %s\n", detailTab, joinU32(d.Unknown1[:]))
			t.printf("%sUnknown var 02: %s\n", detailTab, joinU32(d.Unknown2[:]))
		}
	}
}

func unitName(u cpt.GridUnit) string {
	if !u.Known() {
		return "unknown" + warnMark
	}
	return u.String()
}

func joinU32(v []uint32) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}

// Short writes the whole report as one space-separated line. Header fields
// come first, then one "|"-separated group per block; a trailing "!"
// marks a value that raised an anomaly.
func Short(w io.Writer, r *Report, opts Options) error {
	var f []string
	add := func(format string, args ...any) { f = append(f, fmt.Sprintf(format, args...)) }
	warn := func(b bool) string {
		if b {
			return "!"
		}
		return ""
	}

	if !opts.NoHeader {
		add("%s", strings.ReplaceAll(shortName(r.File), " ", "_"))
		add("%d", r.Size)
		if r.VersionTag != "" {
			add("%s", r.VersionTag)
		}
		if h := r.Header; h != nil {
			add("%s", h.ColorModelTag)
			add("%dx%d%s", h.XDPI, h.YDPI, warn(h.DPIWarn))
			add("%c", yn(h.EmbeddedProfile))
			add("%c", yn(h.WideComment))
			add("%02x", h.FlagsHigh)
			add("%02x", h.FlagsLow)
			entries, palWarn := 0, false
			if p := r.Palette; p != nil {
				entries, palWarn = p.Entries, !p.Valid
			}
			add("%d%s", entries, warn(palWarn))
			if bt := r.BlockTable; bt != nil {
				add("%x", bt.Offset)
				add("%d", bt.Count)
				if h.SentinelFixed {
					add("!")
				} else {
					add("%08x", h.Sentinel)
				}
				for _, v := range []uint32{h.Reserved00[0], h.Reserved00[1], h.Reserved01[0], h.Reserved01[1], h.Reserved02} {
					if v == 0 {
						add("0")
					} else {
						add("!")
					}
				}
			}
		}
	}

	for i := range r.Blocks {
		b := &r.Blocks[i]
		if b.Header == nil {
			continue
		}
		h := b.Header
		add("|")
		for _, v := range []uint32{h.Width, h.Height, h.TileWidth, h.TileHeight, h.BitsPerPixel,
			h.Unknown0, h.Unknown1, h.Unknown2, h.ChunkAreaSize, h.PaletteSize} {
			add("%d", v)
		}
		for _, v := range h.Reserved {
			add("%d", v)
		}
		if opts.Chunks {
			add("|")
			if b.Area == nil {
				add("0")
				add("?")
			} else {
				add("%d", b.Area.Size)
				add("%d%s", b.Area.Unknown, warn(b.Area.Mismatch))
				for _, ch := range b.Chunks {
					if ch.Known {
						add("%s", ch.ID)
					} else {
						add("????")
					}
				}
			}
		}
		if opts.Data {
			add("|")
			for _, rec := range b.Records {
				add("%08x", rec.Offset)
				add("%08x", rec.Length)
			}
			add("%d%s", len(b.Records), warn(b.Overlap))
		}
	}

	if r.Error != nil {
		add("%s!", r.Error.Kind)
	}

	_, err := fmt.Fprintln(w, strings.Join(f, " "))
	return err
}

func yn(b bool) rune {
	if b {
		return 'y'
	}
	return 'n'
}

func shortName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
