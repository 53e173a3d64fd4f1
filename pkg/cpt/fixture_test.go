package cpt

import (
	"encoding/binary"
	"math"
)

// testFile describes a synthetic CPT file. Zero values give a minimal
// valid 9.0+ RGB file with one block holding a single data record.
type testFile struct {
	magic       string
	model       ColorModel
	palette     []RGB
	paletteSize *uint32 // overrides len(palette)*3 in the header
	xdpi, ydpi  uint32
	sentinel    *uint32
	flags       uint32
	notes       []byte
	reserved02  uint32

	profile     *testProfile
	wide        []byte // wide comment notes, UCS-2LE
	tableOffset *uint32
	blockCount  *uint32
	blocks      []func(base int) []byte
}

type testProfile struct {
	magic uint32
	typ   ProfileType
	data  []byte
}

func le32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }

func u32p(v uint32) *uint32 { return &v }

func (f testFile) build() []byte {
	if f.magic == "" {
		f.magic = "CPT9FILE"
	}
	if f.model == 0 {
		f.model = ColorModelRGB24
	}
	if f.flags == 0 {
		f.flags = uint32(CreatorV9)
	}
	if f.xdpi == 0 && f.ydpi == 0 {
		f.xdpi, f.ydpi = 2834646, 2834646 // 72 dpi
	}
	if f.blocks == nil {
		f.blocks = []func(int) []byte{v9Block(testBlock{records: []uint32{16}, markers: []uint32{5}})}
	}

	hdr := make([]byte, HeaderSize)
	copy(hdr, f.magic)
	le32(hdr, 0x08, uint32(f.model))
	palBytes := uint32(len(f.palette) * PaletteEntrySize)
	if f.paletteSize != nil {
		palBytes = *f.paletteSize
	}
	le32(hdr, 0x0C, palBytes)
	le32(hdr, 0x18, f.xdpi)
	le32(hdr, 0x1C, f.ydpi)
	sentinel := SentinelValue
	if f.sentinel != nil {
		sentinel = *f.sentinel
	}
	le32(hdr, 0x2C, sentinel)
	le32(hdr, 0x38, f.reserved02)
	copy(hdr[60:], f.notes)

	out := hdr
	if f.profile != nil {
		f.flags |= FlagEmbeddedProfile
		p := make([]byte, ProfileHeaderSize)
		le32(p, 0, f.profile.magic)
		le32(p, 4, uint32(f.profile.typ))
		le32(p, 8, uint32(len(f.profile.data)))
		out = append(out, p...)
		out = append(out, f.profile.data...)
	}
	for _, c := range f.palette {
		out = append(out, c.B, c.G, c.R)
	}
	if f.wide != nil {
		f.flags |= FlagWideComment
		w := make([]byte, WideCommentSize)
		le32(w, 0, WideCommentMagic)
		copy(w[4:], f.wide)
		out = append(out, w...)
	}
	le32(out, 0x30, f.flags)

	tableOff := len(out)
	stored := uint32(tableOff)
	if f.magic != "CPT9FILE" {
		stored = 0
	}
	if f.tableOffset != nil {
		stored = *f.tableOffset
	}
	le32(out, 0x34, stored)
	count := uint32(len(f.blocks))
	if f.blockCount != nil {
		count = *f.blockCount
	}
	le32(out, 0x28, count)

	out = append(out, make([]byte, len(f.blocks)*BlockTableEntrySize)...)
	for i, mk := range f.blocks {
		base := len(out)
		le32(out, tableOff+i*BlockTableEntrySize, uint32(base))
		out = append(out, mk(base)...)
	}
	return out
}

type testChunk struct {
	id      ChunkID
	payload []byte
}

// testBlock describes a 9.0+ block body. Records get their data laid out
// right after the record list, each starting with its marker.
type testBlock struct {
	hdr        BlockHeader
	chunks     []testChunk
	areaSize   *uint32 // overrides the computed area prefix size
	chunkArea  *uint32 // overrides the sub-header chunk area size
	records    []uint32
	markers    []uint32
	trailer    []byte
	noDataList bool
}

func v9Block(tb testBlock) func(base int) []byte {
	return func(base int) []byte {
		var area []byte
		if len(tb.chunks) > 0 || tb.areaSize != nil {
			size := uint32(chunkAreaPrefix)
			for _, c := range tb.chunks {
				size += uint32(len(c.payload)) + 8
			}
			if tb.areaSize != nil {
				size = *tb.areaSize
			}
			area = make([]byte, chunkAreaPrefix)
			le32(area, 0, size)
			le32(area, 4, 1)
			for _, c := range tb.chunks {
				h := make([]byte, 8)
				le32(h, 0, uint32(len(c.payload)))
				le32(h, 4, uint32(c.id))
				area = append(area, h...)
				area = append(area, c.payload...)
			}
		}

		h := tb.hdr
		if h.ChunkAreaSize == 0 && area != nil {
			h.ChunkAreaSize = uint32(len(area)) + h.PaletteSize
		}
		if tb.chunkArea != nil {
			h.ChunkAreaSize = *tb.chunkArea
		}
		sub := make([]byte, BlockHeaderSize)
		fields := []uint32{h.Width, h.Height, h.TileWidth, h.TileHeight, h.BitsPerPixel,
			h.Unknown0, h.Unknown1, h.Unknown2, h.ChunkAreaSize, h.PaletteSize}
		fields = append(fields, h.Reserved[:]...)
		for i, v := range fields {
			le32(sub, i*4, v)
		}

		out := append(sub, area...)
		if !tb.noDataList {
			listStart := base + len(out)
			dataStart := listStart + len(tb.records)*8
			list := make([]byte, len(tb.records)*8)
			var data []byte
			for i, n := range tb.records {
				le32(list, i*8, uint32(dataStart+len(data)))
				le32(list, i*8+4, n)
				rec := make([]byte, n)
				if i < len(tb.markers) && n >= 4 {
					le32(rec, 0, tb.markers[i])
				}
				data = append(data, rec...)
			}
			out = append(out, list...)
			out = append(out, data...)
		}
		return append(out, tb.trailer...)
	}
}

func gridPayload(xd, yd float64, xu, yu GridUnit) []byte {
	p := make([]byte, gridPayloadSize)
	binary.LittleEndian.PutUint64(p[8:], math.Float64bits(xd))
	binary.LittleEndian.PutUint64(p[16:], math.Float64bits(yd))
	le32(p, 24, uint32(xu))
	le32(p, 28, uint32(yu))
	return p
}

func ucs2(s string) []byte {
	out := make([]byte, 0, 2*len(s))
	for _, r := range s {
		out = append(out, byte(r), byte(r>>8))
	}
	return out
}
