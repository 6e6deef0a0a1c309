// Package commands implements the docsite command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/gitinfo"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	// Out receives command output such as manifests and reports.
	Out io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docsite.yaml" env:"DOCSITE_CONFIG"`
	DocsDir string           `short:"d" name:"docs-dir" help:"Override the documentation directory from the config file"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve       ServeCmd       `cmd:"" default:"withargs" help:"Serve documents over HTTP"`
	Manifest    ManifestCmd    `cmd:"" help:"Print the document manifest as JSON"`
	SearchIndex SearchIndexCmd `cmd:"" name:"search-index" help:"Print the search index as JSON"`
	Check       CheckCmd       `cmd:"" help:"Report files whose paths do not form valid slugs"`
	Init        InitCmd        `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration file, falling back to defaults when the
// file is absent, and applies command line overrides.
func loadConfig(root *CLI) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(root.Config); err == nil {
		loaded, err := config.Load(root.Config)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "failed to load configuration").
				WithContext("path", root.Config).
				Build()
		}
		cfg = loaded
	} else {
		slog.Debug("Configuration file not found, using defaults", logfields.File(root.Config))
		cfg = config.Default()
	}
	if root.DocsDir != "" {
		cfg.Content.DocsDir = root.DocsDir
	}
	return cfg, nil
}

// newLogger builds the process logger from configuration. Verbose always
// wins over the configured level.
func newLogger(cfg config.LoggingConfig, verbose bool, w io.Writer) *slog.Logger {
	level := cfg.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (g *Global) setup(cfg *config.Config, root *CLI) {
	g.Logger = newLogger(cfg.Logging, root.Verbose, os.Stderr)
	slog.SetDefault(g.Logger)
	if g.Out == nil {
		g.Out = os.Stdout
	}
}

// newProvider opens the content provider described by cfg.
func newProvider(cfg *config.Config, cache bool, logger *slog.Logger) (*content.FileSystemProvider, error) {
	opts := content.Options{
		BaseDir:       cfg.Content.DocsDir,
		CacheMetadata: cache,
		Resolve:       resolveOptions(cfg),
		Logger:        logger,
	}
	if cfg.Content.GitLastMod {
		history, err := gitinfo.Open(cfg.Content.DocsDir)
		if err != nil {
			logger.Warn("Git history unavailable, using file times", logfields.DocsDir(cfg.Content.DocsDir), logfields.Error(err))
		} else {
			opts.History = history
		}
	}

	p, err := content.New(opts)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to open documentation directory").
			WithContext("docs_dir", cfg.Content.DocsDir).
			Build()
	}
	return p, nil
}

func resolveOptions(cfg *config.Config) docs.ResolveOptions {
	return docs.ResolveOptions{
		Concurrency: cfg.Content.ResolveConcurrency,
		Timeout:     cfg.Content.ResolveTimeoutDuration(),
	}
}

// listResolved enumerates every document and resolves it, dropping failures.
func listResolved(ctx context.Context, p docs.Provider, cfg *config.Config, logger *slog.Logger) ([]docs.Document, error) {
	metas, err := p.ListAllMetadata(ctx)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "failed to enumerate documents").Build()
	}
	part := docs.ResolveAll(ctx, p, "", metas, resolveOptions(cfg))
	for _, f := range part.Failed {
		logger.Warn("Skipping unresolvable document", logfields.Slug(f.Slug.String()), logfields.Error(f.Err))
	}
	return part.Resolved, nil
}
