// Package main is the marginalia command line. It runs the decoration
// engine over a Markdown file and prints what a host view would draw.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/dshills/marginalia/internal/config"
	"github.com/dshills/marginalia/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are the flags shared by every command.
type Globals struct {
	ConfigFile string `name:"config" short:"c" help:"Configuration file (.toml, .yaml or .yml)." type:"existingfile"`
	LogLevel   string `name:"log-level" help:"Override the configured log level (debug, info, warn, error)."`
	LogFormat  string `name:"log-format" help:"Override the configured log format (text, json)."`
}

// CLI is the command tree.
var CLI struct {
	Globals

	Render  RenderCmd  `cmd:"" help:"Print the decorations for a Markdown file."`
	Widgets WidgetsCmd `cmd:"" help:"List the widgets found in a Markdown file."`
	Nav     NavCmd     `cmd:"" help:"Print the position of the nearest tagged element."`
	Check   CheckCmd   `cmd:"" help:"Validate a configuration file."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("marginalia"),
		kong.Description("Anchored annotations and incremental decorations for Markdown."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}

// setup loads the configuration, applies environment overrides and flag
// overrides, and builds the logger.
func (g *Globals) setup() (config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if g.ConfigFile != "" {
		loaded, err := config.Load(g.ConfigFile)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return config.Config{}, nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func newLogger(c config.LogConfig) (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{Level: level, Format: format}), nil
}

// VersionCmd prints build information.
type VersionCmd struct{}

// Run prints the version.
func (c *VersionCmd) Run() error {
	fmt.Printf("marginalia %s (commit %s, built %s)\n", version, commit, date)
	return nil
}
