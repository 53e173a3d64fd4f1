package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cptinfo/internal/report"
	"github.com/samcharles93/cptinfo/internal/version"
	"github.com/samcharles93/cptinfo/pkg/cpt"
)

type versionInfo struct {
	version.Info `yaml:",inline"`

	Formats     []string `json:"formats" yaml:"formats,flow"`
	KnownChunks int      `json:"known_chunks" yaml:"known_chunks"`
}

func versionCmd() *cli.Command {
	var format string

	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "text, json or yaml", Value: "text", Destination: &format},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := report.ParseFormat(format)
			if err != nil || f == report.FormatShort {
				return cli.Exit(fmt.Sprintf("error: unsupported version format %q", format), 1)
			}
			return printVersion(os.Stdout, f)
		},
	}
}

func printVersion(w io.Writer, f report.Format) error {
	info := versionInfo{
		Info:        version.Resolve(),
		KnownChunks: cpt.KnownChunkCount,
	}
	for _, v := range []cpt.Version{cpt.Version7, cpt.Version701, cpt.Version8, cpt.Version9} {
		info.Formats = append(info.Formats, v.String())
	}

	switch f {
	case report.FormatJSON:
		return report.JSON(w, info)
	case report.FormatYAML:
		return report.YAML(w, info)
	}
	_, _ = fmt.Fprintf(w, "cptinfo %s\n", info.Version)
	if info.Commit != "" {
		_, _ = fmt.Fprintf(w, "  commit:   %s\n", info.Commit)
	}
	if info.BuildTime != "" {
		_, _ = fmt.Fprintf(w, "  built:    %s\n", info.BuildTime)
	}
	_, _ = fmt.Fprintf(w, "  go:       %s\n", info.GoVersion)
	_, _ = fmt.Fprintf(w, "  formats:  %v\n", info.Formats)
	_, err := fmt.Fprintf(w, "  chunks:   %d known\n", info.KnownChunks)
	return err
}
