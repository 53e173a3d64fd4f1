package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cptinfo/pkg/cpt"
)

func chunksCmd() *cli.Command {
	return &cli.Command{
		Name:  "chunks",
		Usage: "List the chunk ids the decoder recognizes",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return printChunks(os.Stdout)
		},
	}
}

// printChunks writes one id per line; ids with a payload decoder are marked '*'.
func printChunks(w io.Writer) error {
	for _, id := range cpt.KnownChunks() {
		mark := ""
		if cpt.HasChunkHandler(id) {
			mark = " *"
		}
		if _, err := fmt.Fprintf(w, "%s 0x%08x%s\n", id, uint32(id), mark); err != nil {
			return err
		}
	}
	return nil
}
