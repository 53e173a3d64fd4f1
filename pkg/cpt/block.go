package cpt

// BlockHeader is the 60-byte sub-header at the start of every 9.0+ block.
type BlockHeader struct {
	Width         uint32    `json:"width" yaml:"width"`
	Height        uint32    `json:"height" yaml:"height"`
	TileWidth     uint32    `json:"tile_width" yaml:"tile_width"`
	TileHeight    uint32    `json:"tile_height" yaml:"tile_height"`
	BitsPerPixel  uint32    `json:"bits_per_pixel" yaml:"bits_per_pixel"`
	Unknown0      uint32    `json:"unknown0" yaml:"unknown0"`
	Unknown1      uint32    `json:"unknown1" yaml:"unknown1"`
	Unknown2      uint32    `json:"unknown2" yaml:"unknown2"` // 1 marks an object block
	ChunkAreaSize uint32    `json:"chunk_area_size" yaml:"chunk_area_size"`
	PaletteSize   uint32    `json:"palette_size" yaml:"palette_size"`
	Reserved      [5]uint32 `json:"reserved" yaml:"reserved,flow"`
}

// IsObject reports whether the block holds an object rather than the background.
func (h *BlockHeader) IsObject() bool { return h.Unknown2 == 1 }

// DataRecord points at one stretch of pixel data. Marker is the first
// double-word of the data, which hints at its compression.
type DataRecord struct {
	Offset    uint32 `json:"offset" yaml:"offset"`
	Length    uint32 `json:"length" yaml:"length"`
	Marker    uint32 `json:"marker" yaml:"marker"`
	HasMarker bool   `json:"has_marker" yaml:"has_marker"`
}

// Block is one entry of the block table. Header, chunks and records are
// only decoded for 9.0+ files.
type Block struct {
	Index  int
	Offset int
	Size   int

	Header      *BlockHeader
	AreaSize    uint32 // chunk area size from the area prefix
	AreaUnknown uint32
	Chunks      []Chunk
	DataOffset  int // absolute offset of the record list
	Records     []DataRecord
}

// Decoded reports whether the block body was parsed.
func (b *Block) Decoded() bool { return b.Header != nil }

const chunkAreaPrefix = 8

func decodeBlockHeader(v ByteView) (*BlockHeader, error) {
	f, err := v.U32s(0, BlockHeaderSize/4)
	if err != nil {
		return nil, err
	}
	h := &BlockHeader{
		Width:         f[0],
		Height:        f[1],
		TileWidth:     f[2],
		TileHeight:    f[3],
		BitsPerPixel:  f[4],
		Unknown0:      f[5],
		Unknown1:      f[6],
		Unknown2:      f[7],
		ChunkAreaSize: f[8],
		PaletteSize:   f[9],
	}
	copy(h.Reserved[:], f[10:15])
	return h, nil
}

// decodeBlocks lists every block in the selected range and, for 9.0+
// files, parses each block body.
func (c *Container) decodeBlocks() error {
	t := &c.BlockTable
	first, last := c.opts.blockSpan(len(t.Entries))
	size := c.view.Len()

	for i := first; i <= last; i++ {
		e := t.Entries[i]
		b := Block{Index: i, Offset: offsetInt(uint64(e.Offset))}
		if uint64(e.Offset) >= uint64(size) {
			if c.Version != Version9 {
				// Legacy bodies are never read; the table check already flagged it.
				c.Blocks = append(c.Blocks, b)
				continue
			}
			return newError(ErrTruncatedFile, t.Offset+i*BlockTableEntrySize,
				"block %04x starts at 0x%08x past end of file", i, e.Offset)
		}
		off, n, ok := t.Span(i, size)
		if !ok {
			// Out-of-order table: the block is listed, its body is unknown.
			c.Blocks = append(c.Blocks, b)
			continue
		}
		b.Offset, b.Size = off, n

		if c.Version == Version9 {
			if err := c.decodeBlock9(&b); err != nil {
				c.Blocks = append(c.Blocks, b)
				return err
			}
		}
		c.Blocks = append(c.Blocks, b)
	}
	return nil
}

func (c *Container) decodeBlock9(b *Block) error {
	v, err := c.view.Sub(b.Offset, b.Size)
	if err != nil {
		return err
	}
	h, err := decodeBlockHeader(v)
	if err != nil {
		return err
	}
	b.Header = h
	if h.Reserved != [5]uint32{} {
		c.anomalies.add(b.Index, b.Offset+0x28, AnomalyReservedFieldNonzero, "block reserved: %v", h.Reserved)
	}

	if h.ChunkAreaSize != 0 {
		if err := c.scanChunks(b, v); err != nil {
			return err
		}
	}

	dataStart := uint64(BlockHeaderSize) + uint64(h.ChunkAreaSize)
	if dataStart+16 <= uint64(v.Len()) {
		id, _ := v.U32(int(dataStart) + 12)
		if IsKnownChunk(ChunkID(id)) {
			return newError(ErrUnexpectedChunkAfterZeroArea, v.Base()+int(dataStart)+12,
				"chunk %q found at data start", ChunkID(id).String())
		}
	}

	b.DataOffset = v.Base() + offsetInt(dataStart)
	c.scanRecords(b, v, offsetInt(dataStart))
	return nil
}

// scanChunks walks the tagged records of the chunk area. The area starts
// with an 8-byte prefix {size, unknown} that counts toward size.
func (c *Container) scanChunks(b *Block, v ByteView) error {
	h := b.Header
	prefix, err := v.U32s(BlockHeaderSize, 2)
	if err != nil {
		return asKind(err, ErrCorruptChunk, "chunk area prefix past block end")
	}
	b.AreaSize, b.AreaUnknown = prefix[0], prefix[1]

	if uint64(h.ChunkAreaSize) != uint64(b.AreaSize)+uint64(h.PaletteSize) {
		c.anomalies.add(b.Index, v.Base()+0x20, AnomalyChunkAreaSizeMismatch,
			"sub-header says %d, area prefix %d + palette %d", h.ChunkAreaSize, b.AreaSize, h.PaletteSize)
	}

	ctx := chunkContext{res: c.Resolution, text: c.text()}
	area := uint64(b.AreaSize)
	total := uint64(chunkAreaPrefix)
	off := BlockHeaderSize + chunkAreaPrefix

	for off < v.Len() && total < area {
		hdr, err := v.U32s(off, 2)
		if err != nil {
			return asKind(err, ErrCorruptChunk, "chunk header past block end")
		}
		ch := Chunk{Offset: v.Base() + off, Length: hdr[0], ID: ChunkID(hdr[1])}
		if ch.Length == 0 {
			return newError(ErrCorruptChunk, ch.Offset, "zero-length chunk %q", ch.ID.String())
		}
		payload, err := v.Sub(off+8, offsetInt(uint64(ch.Length)))
		if err != nil {
			return asKind(err, ErrCorruptChunk, "chunk %q of %d bytes past block end", ch.ID.String(), ch.Length)
		}
		total += uint64(ch.Length) + 8

		ch.Known = IsKnownChunk(ch.ID)
		if !ch.Known {
			c.anomalies.add(b.Index, ch.Offset+4, AnomalyUnidentifiedChunkID, "chunk id 0x%08x (%q)", uint32(ch.ID), ch.ID.String())
		}
		if handle, ok := chunkHandlers[ch.ID]; ok {
			detail, err := handle(ctx, payload)
			if err != nil {
				b.Chunks = append(b.Chunks, ch)
				return err
			}
			ch.Detail = detail
		}
		b.Chunks = append(b.Chunks, ch)
		off += 8 + int(ch.Length)
	}

	if total != area {
		c.anomalies.add(b.Index, v.Base()+BlockHeaderSize, AnomalyChunkAreaSizeMismatch,
			"%d chunks add up to %d bytes, area prefix says %d", len(b.Chunks), total, area)
	}
	return nil
}

// scanRecords reads {offset, length} pairs from the start of the data area.
// The list ends where the lowest record offset seen so far begins.
func (c *Container) scanRecords(b *Block, v ByteView, start int) {
	if start < 0 {
		return
	}
	fileSize := uint64(c.view.Len())
	limit := uint64(1<<63 - 1)
	cur := start

	for uint64(v.Base()+cur) < limit {
		pair, err := v.U32s(cur, 2)
		if err != nil {
			c.anomalies.add(b.Index, v.Base()+cur, AnomalyDataRecordOutOfRange,
				"record list reaches block end after %d records", len(b.Records))
			break
		}
		r := DataRecord{Offset: pair[0], Length: pair[1]}
		if uint64(r.Offset)+4 <= fileSize {
			r.Marker, _ = c.view.U32(int(r.Offset))
			r.HasMarker = true
		} else {
			c.anomalies.add(b.Index, v.Base()+cur, AnomalyDataRecordOutOfRange,
				"record offset 0x%08x past end of file", r.Offset)
		}
		b.Records = append(b.Records, r)
		if uint64(r.Offset) < limit {
			limit = uint64(r.Offset)
		}
		cur += 8
	}

	n := len(b.Records)
	if n == 0 || !v.Has(cur, 12) {
		return
	}
	last := b.Records[n-1]
	next, _ := v.U32(cur + 8)
	if uint64(last.Offset)+uint64(last.Length) == uint64(next) {
		c.anomalies.add(b.Index, v.Base()+cur+8, AnomalyAdjacentRecordOverlap,
			"record at 0x%08x+%d runs into 0x%08x, list may continue", last.Offset, last.Length, next)
	}
}
