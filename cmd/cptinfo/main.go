package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cptinfo/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:  "cptinfo",
		Usage: "Inspect Corel PHOTO-PAINT (.cpt) image containers",
		Flags: loggingFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			inspectCmd(),
			serveCmd(),
			diffCmd(),
			chunksCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the config file and stores the subcommand logger in the
// returned context. Flags given on the command line win over the config file.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, Config, error) {
	cfg, err := LoadConfig(configPath())
	if err != nil {
		return ctx, cfg, cli.Exit(fmt.Sprintf("error: load config: %v", err), 1)
	}
	applyGlobalConfig(cmd, cfg)

	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return ctx, cfg, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	if debug {
		level = slog.LevelDebug
	}
	log, err := logger.Open(os.Stderr, logger.Format(logFormat), level)
	if err != nil {
		return ctx, cfg, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return logger.WithContext(ctx, log), cfg, nil
}
