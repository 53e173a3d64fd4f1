package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/cptinfo/internal/dump"
	"github.com/samcharles93/cptinfo/internal/logger"
	"github.com/samcharles93/cptinfo/internal/report"
	"github.com/samcharles93/cptinfo/pkg/cpt"
)

// palettedFile is a 7.0 paletted file with two colors and one 4-byte block.
func palettedFile() []byte {
	put := func(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }

	out := make([]byte, cpt.HeaderSize)
	copy(out, "CPT7FILE")
	put(out, 0x08, uint32(cpt.ColorModelPal8))
	put(out, 0x0C, 6)
	put(out, 0x18, 2834646)
	put(out, 0x1C, 2834646)
	put(out, 0x28, 1)
	put(out, 0x2C, cpt.SentinelValue)
	put(out, 0x30, uint32(cpt.CreatorV7))
	out = append(out, 10, 20, 30, 40, 50, 60)

	table := make([]byte, 8)
	put(table, 0, cpt.HeaderSize+6+8)
	out = append(out, table...)
	return append(out, "DATA"...)
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func textOptions() inspectOptions {
	return inspectOptions{format: report.FormatText, decode: cpt.Options{Charset: "cp1250"}}
}

func TestInspectFile(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "pal.cpt", palettedFile())

	var buf bytes.Buffer
	if err := inspectFile(&buf, path, textOptions(), logger.Discard()); err != nil {
		t.Fatalf("inspectFile: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"CPT file format: 7.0\n",
		"CPT color model: 8-bit paletted\n",
		"CPT palette entries number: 2 color(s)\n",
		"[*] BLOCK 0000 @ 0x0000014a (4 bytes)\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestInspectFileUnsupportedVersion(t *testing.T) {
	t.Parallel()
	data := make([]byte, cpt.HeaderSize)
	copy(data, "II*\x00")
	copy(data[0x0F:], "Corel PHOTO-PAINT 6.0")
	path := writeTemp(t, "old.cpt", data)

	var buf bytes.Buffer
	if err := inspectFile(&buf, path, textOptions(), logger.Discard()); err != nil {
		t.Fatalf("unsupported version should not fail: %v", err)
	}
	if !strings.Contains(buf.String(), "CPT file format: 6.0\n") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestInspectFileErrors(t *testing.T) {
	t.Parallel()

	garbage := writeTemp(t, "junk.cpt", bytes.Repeat([]byte{0xAA}, 400))
	var buf bytes.Buffer
	err := inspectFile(&buf, garbage, textOptions(), logger.Discard())
	if !errors.Is(err, cpt.ErrNotContainerFormat) {
		t.Fatalf("got %v want not-a-container", err)
	}
	if !strings.Contains(buf.String(), "[E] ") {
		t.Fatalf("error line missing:\n%s", buf.String())
	}

	buf.Reset()
	if err := inspectFile(&buf, filepath.Join(t.TempDir(), "nope.cpt"), textOptions(), logger.Discard()); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be written for a missing file, got %q", buf.String())
	}
}

func TestInspectFileDumps(t *testing.T) {
	t.Parallel()
	path := writeTemp(t, "pal.cpt", palettedFile())
	outDir := t.TempDir()

	o := textOptions()
	o.format = report.FormatShort
	o.dump = dump.Options{Palette: true, Blocks: true}
	o.outDir = outDir

	var buf bytes.Buffer
	if err := inspectFile(&buf, path, o, logger.Discard()); err != nil {
		t.Fatalf("inspectFile: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "pal.cpt 334 CPT7 PAL8 ") {
		t.Fatalf("short line: %q", buf.String())
	}
	pal, err := os.ReadFile(filepath.Join(outDir, "pal.pal"))
	if err != nil || !bytes.Equal(pal, []byte{10, 20, 30, 40, 50, 60}) {
		t.Fatalf("palette dump: %v %v", pal, err)
	}
	blk, err := os.ReadFile(filepath.Join(outDir, "pal.blocks", "pal.0000"))
	if err != nil || string(blk) != "DATA" {
		t.Fatalf("block dump: %q %v", blk, err)
	}
}

func TestPrintChunks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := printChunks(&buf); err != nil {
		t.Fatalf("printChunks: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != cpt.KnownChunkCount {
		t.Fatalf("lines: got %d want %d", len(lines), cpt.KnownChunkCount)
	}
	if !strings.Contains(buf.String(), "grid 0x67726964 *\n") {
		t.Fatalf("grid line missing:\n%s", buf.String())
	}
}

func TestDiffFiles(t *testing.T) {
	t.Parallel()
	a := writeTemp(t, "a.cpt", palettedFile())
	same := writeTemp(t, "same.cpt", palettedFile())

	var buf bytes.Buffer
	equal, err := diffFiles(&buf, a, same, cpt.Options{}, report.Options{}, 3)
	if err != nil || !equal || buf.Len() != 0 {
		t.Fatalf("identical files: equal=%v err=%v out=%q", equal, err, buf.String())
	}

	changed := palettedFile()
	copy(changed[60:], "note")
	b := writeTemp(t, "b.cpt", changed)

	equal, err = diffFiles(&buf, a, b, cpt.Options{}, report.Options{}, 1)
	if err != nil || equal {
		t.Fatalf("changed files: equal=%v err=%v", equal, err)
	}
	out := buf.String()
	if !strings.Contains(out, "--- "+a+"\n") || !strings.Contains(out, "+CPT comment (ANSI): note\n") {
		t.Fatalf("unexpected diff:\n%s", out)
	}
}
