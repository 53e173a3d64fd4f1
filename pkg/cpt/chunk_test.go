package cpt

import (
	"errors"
	"math"
	"testing"
)

func TestKnownChunkTable(t *testing.T) {
	t.Parallel()

	if KnownChunkCount != 50 {
		t.Fatalf("known chunks: got %d want 50", KnownChunkCount)
	}
	ids := KnownChunks()
	for i := 1; i < len(ids); i++ {
		if ids[i] <= ids[i-1] {
			t.Fatalf("table not sorted at %d: %s after %s", i, ids[i], ids[i-1])
		}
	}
	for _, id := range ids {
		if !IsKnownChunk(id) {
			t.Fatalf("IsKnownChunk(%s) = false", id)
		}
	}
	for _, id := range []ChunkID{0, 0xFFFFFFFF, 0x61616161, 0x7a7a7a7a} {
		if IsKnownChunk(id) {
			t.Fatalf("IsKnownChunk(0x%08x) = true", uint32(id))
		}
	}
	for id := range chunkHandlers {
		if !IsKnownChunk(id) {
			t.Fatalf("handler registered for unknown chunk %s", id)
		}
	}
}

func TestChunkIDString(t *testing.T) {
	t.Parallel()

	cases := map[ChunkID]string{
		ChunkGrid:       "grid",
		ChunkObjectInfo: "oinf",
		0:               "    ",
		0x41000142:      "A  B",
	}
	for id, want := range cases {
		if got := id.String(); got != want {
			t.Fatalf("ChunkID(0x%08x): got %q want %q", uint32(id), got, want)
		}
	}
}

func TestGridUnits(t *testing.T) {
	t.Parallel()

	ctx := chunkContext{res: Resolution{X: 300, Y: 150}}
	d, err := decodeGrid(ctx, NewByteView(gridPayload(254000, 254000, GridUnitInch, 7)))
	if err != nil {
		t.Fatalf("decode grid: %v", err)
	}
	g := d.(*Grid)
	if math.Abs(g.X.Value-1) > 1e-12 || g.X.Unit.String() != "inch" {
		t.Fatalf("x axis: got %+v", g.X)
	}
	if g.Y.Value != 0 || g.Y.Unit.Known() || g.Y.Unit.String() != "unknown" {
		t.Fatalf("empty slot should be unknown: got %+v", g.Y)
	}

	d, _ = decodeGrid(ctx, NewByteView(gridPayload(0, 254000, GridUnitCM, GridUnitPixel)))
	if got := d.(*Grid).Y.Value; got < 149.999 || got > 150.001 {
		t.Fatalf("pixel axis uses y dpi: got %v", got)
	}

	d, _ = decodeGrid(ctx, NewByteView(gridPayload(1, 1, 999, 14)))
	if g := d.(*Grid); g.X.Value != 0 || g.Y.Value != 0 || g.X.Unit.Known() {
		t.Fatalf("out-of-table units: got %+v", g)
	}
}

func TestHandlersRejectShortPayloads(t *testing.T) {
	t.Parallel()

	ctx := chunkContext{text: textDecoder{tr: TextTranscoder{}, charset: DefaultCharset}}
	cases := map[string]chunkHandler{
		"grid": decodeGrid,
		"path": decodePath,
		"oinf": decodeObjectInfo,
	}
	for name, h := range cases {
		_, err := h(ctx, NewByteView(make([]byte, 4)))
		if !errors.Is(err, ErrCorruptChunk) {
			t.Fatalf("%s: got %v want %v", name, err, ErrCorruptChunk)
		}
	}
	for _, h := range []chunkHandler{decodePathWide, decodeBackgroundName, decodeBackgroundNameWide} {
		if _, err := h(ctx, NewByteView(nil)); err != nil {
			t.Fatalf("variable-length handler failed on empty payload: %v", err)
		}
	}
}
