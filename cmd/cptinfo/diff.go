package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cptinfo/internal/logger"
	"github.com/samcharles93/cptinfo/internal/report"
	"github.com/samcharles93/cptinfo/pkg/cpt"
)

func diffCmd() *cli.Command {
	var (
		ctxLines   int
		showData   bool
		showChunks bool
	)

	return &cli.Command{
		Name:      "diff",
		Usage:     "Compare the structure reports of two .cpt files",
		ArgsUsage: "<a.cpt> <b.cpt>",
		Flags: []cli.Flag{
			charsetFlag(),
			&cli.IntFlag{Name: "context", Aliases: []string{"U"}, Usage: "lines of context", Value: 3, Destination: &ctxLines},
			&cli.BoolFlag{Name: "data", Usage: "include block data records", Destination: &showData},
			&cli.BoolFlag{Name: "chunks", Usage: "include block chunks", Destination: &showChunks},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, cfg, err := setup(ctx, c)
			if err != nil {
				return err
			}
			applyCharsetConfig(c, cfg)
			args := c.Args().Slice()
			if len(args) != 2 {
				return cli.Exit("error: diff needs exactly two files", 1)
			}
			if _, err := cpt.LookupCharset(charset); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			logger.FromContext(ctx).Debug("comparing reports", "a", args[0], "b", args[1], "charset", charset)
			opts := report.Options{Data: showData, Chunks: showChunks, Reserved: true}
			same, err := diffFiles(os.Stdout, args[0], args[1], cpt.Options{Charset: charset}, opts, ctxLines)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if same {
				fmt.Printf("%s and %s have the same structure\n", args[0], args[1])
			}
			return nil
		},
	}
}

// diffFiles writes a unified diff of the text reports of a and b and
// reports whether they matched. File names are left out of the reports.
func diffFiles(w io.Writer, a, b string, decode cpt.Options, opts report.Options, lines int) (bool, error) {
	left, err := renderText(a, decode, opts)
	if err != nil {
		return false, err
	}
	right, err := renderText(b, decode, opts)
	if err != nil {
		return false, err
	}
	if left == right {
		return true, nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(left),
		B:        difflib.SplitLines(right),
		FromFile: a,
		ToFile:   b,
		Context:  lines,
	})
	if err != nil {
		return false, err
	}
	_, err = io.WriteString(w, diff)
	return false, err
}

func renderText(path string, decode cpt.Options, opts report.Options) (string, error) {
	c, err := cpt.Open(path, decode)
	if c == nil {
		return "", err
	}
	defer func() { _ = c.Close() }()

	rep := report.Build("-", c, err)
	var buf bytes.Buffer
	if err := report.Text(&buf, rep, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}
