package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cptinfo/internal/dump"
	"github.com/samcharles93/cptinfo/internal/logger"
	"github.com/samcharles93/cptinfo/internal/report"
	"github.com/samcharles93/cptinfo/pkg/cpt"
)

type inspectOptions struct {
	format report.Format
	report report.Options
	decode cpt.Options
	dump   dump.Options
	outDir string
}

func inspectCmd() *cli.Command {
	var (
		short       bool
		noHeader    bool
		verbose     bool
		blocks      string
		dumpICC     bool
		dumpBlocks  bool
		dumpPalette bool
		showData    bool
		showRsvd    bool
		showChunks  bool
		format      string
		outDir      string
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the structure of one or more .cpt files",
		ArgsUsage: "<file.cpt> [file.cpt...]",
		Flags: []cli.Flag{
			charsetFlag(),
			&cli.BoolFlag{Name: "short", Aliases: []string{"s"}, Usage: "one line per file (same as --format short)", Destination: &short},
			&cli.BoolFlag{Name: "no-header", Usage: "short mode: leave out the file header fields", Destination: &noHeader},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "show unknown fields of chunks and ICC data", Destination: &verbose},
			&cli.StringFlag{Name: "blocks", Aliases: []string{"b"}, Usage: "only decode blocks `n|n-m`", Destination: &blocks},
			&cli.BoolFlag{Name: "dump-icc", Usage: "write the embedded ICC profile to <name>.icc", Destination: &dumpICC},
			&cli.BoolFlag{Name: "dump-blocks", Usage: "write every block to <name>.blocks/<name>.NNNN", Destination: &dumpBlocks},
			&cli.BoolFlag{Name: "dump-palette", Usage: "write the palette of 8-bit paletted images to <name>.pal", Destination: &dumpPalette},
			&cli.BoolFlag{Name: "data", Usage: "list block data records", Destination: &showData},
			&cli.BoolFlag{Name: "reserved", Usage: "show reserved fields even when zero", Destination: &showRsvd},
			&cli.BoolFlag{Name: "chunks", Usage: "list block chunks", Destination: &showChunks},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "report format (text, short, json, yaml)", Value: "text", Destination: &format},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "dump directory (default: $CPTINFO_DUMP_DIR or .)", Destination: &outDir},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, cfg, err := setup(ctx, c)
			if err != nil {
				return err
			}
			log := logger.FromContext(ctx)
			applyInspectConfig(c, cfg, &format, &outDir)

			files := c.Args().Slice()
			if len(files) == 0 {
				return cli.Exit("error: no input file given", 1)
			}

			o := inspectOptions{
				report: report.Options{
					Verbose:  verbose,
					NoHeader: noHeader,
					Data:     showData,
					Reserved: showRsvd,
					Chunks:   showChunks,
				},
				decode: cpt.Options{Charset: charset},
				dump:   dump.Options{Profile: dumpICC, Palette: dumpPalette, Blocks: dumpBlocks},
			}
			if _, err := cpt.LookupCharset(charset); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if o.format, err = report.ParseFormat(format); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if short {
				o.format = report.FormatShort
			}
			if blocks != "" {
				br, err := cpt.ParseBlockRange(blocks)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				o.decode.Blocks = &br
			}
			if o.dump.Any() {
				if o.outDir, err = dump.ResolveDir(outDir); err != nil {
					return cli.Exit(fmt.Sprintf("error: dump directory: %v", err), 1)
				}
			}

			var failed []error
			for _, path := range files {
				if err := inspectFile(os.Stdout, path, o, log); err != nil {
					failed = append(failed, err)
				}
			}
			switch {
			case len(failed) == 0:
				return nil
			case len(files) == 1:
				return cli.Exit(fmt.Sprintf("error: %v", failed[0]), 1)
			default:
				return cli.Exit(fmt.Sprintf("error: %d of %d files failed", len(failed), len(files)), 1)
			}
		},
	}
}

// inspectFile decodes path, writes its report to w and dumps the requested
// resources. Files of an unsupported version are reported and not counted
// as failures.
func inspectFile(w io.Writer, path string, o inspectOptions, log logger.Logger) error {
	log = log.With("file", path)

	c, decodeErr := cpt.Open(path, o.decode)
	if c == nil {
		log.Error("open failed", "error", decodeErr)
		return decodeErr
	}
	defer func() { _ = c.Close() }()

	rep := report.Build(path, c, decodeErr)
	for _, a := range rep.Anomalies {
		log.Warn("anomaly", "kind", a.Kind, "block", a.Block, "offset", a.Offset, "msg", a.Msg)
	}
	if err := report.Write(w, o.format, rep, o.report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if o.dump.Any() && c.Version != cpt.VersionUnknown && c.Version != cpt.Version6 {
		if _, err := dump.Write(c, o.outDir, dump.BaseName(path), o.dump, log); err != nil {
			log.Error("dump failed", "error", err)
			return err
		}
	}

	switch {
	case decodeErr == nil:
		return nil
	case errors.Is(decodeErr, cpt.ErrUnsupportedVersion):
		log.Info("unsupported version", "version", c.Version.String())
		return nil
	default:
		log.Error("decode failed", "kind", report.ErrorKind(decodeErr), "error", decodeErr)
		return decodeErr
	}
}
