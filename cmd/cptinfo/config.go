package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/creasty/defaults"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the cptinfo configuration file (~/.config/cptinfo/config.yaml).
// Keys left out of the file keep the defaults below.
type Config struct {
	Charset   string `yaml:"charset" default:"cp1250"`
	Format    string `yaml:"format" default:"text"`
	LogLevel  string `yaml:"log_level" default:"warn"`
	LogFormat string `yaml:"log_format" default:"pretty"`

	// Server
	ServerAddress  string `yaml:"server_address" default:"127.0.0.1:8080"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" default:"67108864"`

	// Dumps
	DumpDir string `yaml:"dump_dir"`
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "cptinfo", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// applyGlobalConfig applies config file defaults to the root flags when
// the corresponding CLI flag was not explicitly set.
func applyGlobalConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyCharsetConfig sets the --charset default from the config file.
func applyCharsetConfig(c *cli.Command, cfg Config) {
	if cfg.Charset != "" && !c.IsSet("charset") {
		charset = cfg.Charset
	}
}

func applyInspectConfig(c *cli.Command, cfg Config, format, outDir *string) {
	applyCharsetConfig(c, cfg)
	if cfg.Format != "" && !c.IsSet("format") {
		*format = cfg.Format
	}
	if cfg.DumpDir != "" && !c.IsSet("out") {
		*outDir = cfg.DumpDir
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxUpload *int64) {
	applyCharsetConfig(c, cfg)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxUploadBytes > 0 && !c.IsSet("max-upload") {
		*maxUpload = cfg.MaxUploadBytes
	}
}
