package cpt

// BlockTableEntry is one record of the block offset table.
type BlockTableEntry struct {
	Offset   uint32
	Reserved uint32
}

// BlockTable is the resolved block offset table.
//
// Stored is the offset recorded in the header, Computed the offset the
// decoder derives from the header and the optional blocks. Offset is the
// one actually used.
type BlockTable struct {
	Offset   int
	Stored   uint32
	Computed int
	Entries  []BlockTableEntry
}

// Span returns the byte range of block i. The last block runs to the end
// of the file. ok is false when the table entries do not describe a valid
// range inside the file.
func (t *BlockTable) Span(i, fileSize int) (off, size int, ok bool) {
	if i < 0 || i >= len(t.Entries) {
		return 0, 0, false
	}
	start := uint64(t.Entries[i].Offset)
	end := uint64(fileSize)
	if i+1 < len(t.Entries) {
		end = uint64(t.Entries[i+1].Offset)
	}
	if start >= uint64(fileSize) || end > uint64(fileSize) || end <= start {
		return 0, 0, false
	}
	return int(start), int(end - start), true
}

func (c *Container) resolveBlockTable() error {
	h := &c.Header
	size := uint64(c.view.Len())

	computed := uint64(HeaderSize) + uint64(h.PaletteEntries)
	if c.Flags.WideComment && c.Comment.WidePresent {
		computed += WideCommentSize
	}
	t := BlockTable{Stored: h.BlockTableOffset, Computed: offsetInt(computed)}

	stored := uint64(h.BlockTableOffset)
	if c.Version.Legacy() {
		// 7.x/8.0 writers leave the field zero. PHOTO-PAINT 9 saving as
		// 7.0 fills it in, and then it is the one to trust.
		if stored != 0 {
			c.anomalies.add(NoBlock, 0x34, AnomalyV9WrittenAsV7, "block table offset 0x%08x set in a %s file", stored, c.Version)
			t.Offset = offsetInt(stored)
		} else {
			t.Offset = t.Computed
		}
	} else {
		if stored < computed || stored+BlockTableEntrySize > size {
			return newError(ErrInvalidBlockTableOffset, 0x34, "offset 0x%08x outside [0x%08x, 0x%08x]",
				stored, computed, size-BlockTableEntrySize)
		}
		t.Offset = offsetInt(stored)
	}

	count := h.BlockCount
	if count == 0 {
		return newError(ErrBlockCountMismatch, 0x28, "header declares no blocks")
	}
	first, err := c.view.U32(t.Offset)
	if err != nil {
		return err
	}
	if first == 0 {
		return newError(ErrBlockCountMismatch, t.Offset, "first block offset is zero")
	}
	if uint64(count)*BlockTableEntrySize+uint64(t.Offset) != uint64(first) {
		return newError(ErrBlockCountMismatch, t.Offset, "%d blocks do not end the table at 0x%08x", count, first)
	}

	raw, err := c.view.U32s(t.Offset, int(count)*2)
	if err != nil {
		return err
	}
	t.Entries = make([]BlockTableEntry, count)
	for i := range t.Entries {
		e := BlockTableEntry{Offset: raw[2*i], Reserved: raw[2*i+1]}
		t.Entries[i] = e
		at := t.Offset + i*BlockTableEntrySize
		if e.Reserved != 0 {
			c.anomalies.add(i, at+4, AnomalyReservedFieldNonzero, "table entry reserved 0x%08x", e.Reserved)
		}
		if uint64(e.Offset) >= size {
			c.anomalies.add(i, at, AnomalyBlockOrderViolation, "block offset 0x%08x past end of file", e.Offset)
		} else if i > 0 && e.Offset <= t.Entries[i-1].Offset {
			c.anomalies.add(i, at, AnomalyBlockOrderViolation, "block offset 0x%08x not after previous 0x%08x",
				e.Offset, t.Entries[i-1].Offset)
		}
	}
	c.BlockTable = t
	return nil
}
