// Package dump writes the raw resources of a container to files: the
// embedded ICC profile, the palette and every block of the block table.
package dump

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samcharles93/cptinfo/internal/logger"
	"github.com/samcharles93/cptinfo/pkg/cpt"
)

const envDumpDir = "CPTINFO_DUMP_DIR"

// ErrNothingToDump is returned for a requested resource the file does not carry.
var ErrNothingToDump = errors.New("nothing to dump")

type Options struct {
	Profile bool
	Palette bool
	Blocks  bool
}

func (o Options) Any() bool { return o.Profile || o.Palette || o.Blocks }

// File is one written dump.
type File struct {
	Path   string `json:"path" yaml:"path"`
	Offset int    `json:"offset" yaml:"offset"`
	Size   int    `json:"size" yaml:"size"`
}

// BaseName strips the directory and the last extension of a file name.
func BaseName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// ResolveDir picks the output directory: the explicit flag, then
// $CPTINFO_DUMP_DIR, then the working directory. The directory is created.
func ResolveDir(flag string) (string, error) {
	dir := strings.TrimSpace(flag)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv(envDumpDir))
	}
	if dir == "" {
		dir = "."
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Write dumps the selected resources of c under dir, named after base:
// base.icc, base.pal and base.blocks/base.NNNN. A missing resource is
// logged and skipped; I/O errors stop the dump.
func Write(c *cpt.Container, dir, base string, opts Options, log logger.Logger) ([]File, error) {
	if log == nil {
		log = logger.Discard()
	}
	var out []File

	if opts.Profile {
		f, err := writeProfile(c, dir, base)
		switch {
		case errors.Is(err, ErrNothingToDump):
			log.Warn("ICC profile not dumped", "reason", err)
		case err != nil:
			return out, err
		default:
			out = append(out, f)
		}
	}
	if opts.Palette {
		f, err := writePalette(c, dir, base)
		switch {
		case errors.Is(err, ErrNothingToDump):
			log.Warn("palette not dumped", "reason", err)
		case err != nil:
			return out, err
		default:
			out = append(out, f)
		}
	}
	if opts.Blocks {
		files, err := writeBlocks(c, dir, base, log)
		out = append(out, files...)
		if err != nil {
			return out, err
		}
	}
	for _, f := range out {
		log.Debug("dumped", "path", f.Path, "offset", f.Offset, "size", f.Size)
	}
	return out, nil
}

func writeProfile(c *cpt.Container, dir, base string) (File, error) {
	if c.Profile == nil {
		return File{}, fmt.Errorf("%w: image has no ICC profile", ErrNothingToDump)
	}
	ext, ok := c.ProfileData()
	if !ok {
		return File{}, fmt.Errorf("%w: image uses built-in profile %s", ErrNothingToDump, c.Profile.Type)
	}
	return writeExtent(filepath.Join(dir, base+".icc"), ext)
}

func writePalette(c *cpt.Container, dir, base string) (File, error) {
	if c.Header.ColorModel != cpt.ColorModelPal8 {
		return File{}, fmt.Errorf("%w: image is not 8-bit paletted", ErrNothingToDump)
	}
	ext, ok := c.PaletteData()
	if !ok {
		return File{}, fmt.Errorf("%w: palette is empty", ErrNothingToDump)
	}
	return writeExtent(filepath.Join(dir, base+".pal"), ext)
}

// writeBlocks dumps every table entry regardless of the decoded block range.
func writeBlocks(c *cpt.Container, dir, base string, log logger.Logger) ([]File, error) {
	n := len(c.BlockTable.Entries)
	if n == 0 {
		return nil, nil
	}
	blockDir := filepath.Join(dir, base+".blocks")
	if err := os.MkdirAll(blockDir, 0o755); err != nil {
		return nil, err
	}
	out := make([]File, 0, n)
	for i := range n {
		ext, err := c.BlockData(i)
		if err != nil {
			log.Warn("block not dumped", "block", i, "reason", err)
			continue
		}
		f, err := writeExtent(filepath.Join(blockDir, fmt.Sprintf("%s.%04x", base, i)), ext)
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
	return out, nil
}

func writeExtent(path string, ext cpt.Extent) (File, error) {
	f, err := os.Create(path)
	if err != nil {
		return File{}, err
	}
	if err := writeFull(f, ext.Data); err != nil {
		_ = f.Close()
		return File{}, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return File{}, err
	}
	return File{Path: path, Offset: ext.Offset, Size: ext.Len()}, nil
}

func writeFull(f *os.File, p []byte) error {
	for len(p) > 0 {
		n, err := f.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
