package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/manifest"
	"git.home.luguber.info/inful/docsite/internal/search"
)

// ManifestCmd implements the 'manifest' command.
type ManifestCmd struct {
	Pretty bool `short:"p" help:"Indent the JSON output"`
}

func (m *ManifestCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	g.setup(cfg, root)
	return RunManifest(context.Background(), g, cfg, m.Pretty)
}

// RunManifest writes the manifest of every resolvable document to g.Out.
func RunManifest(ctx context.Context, g *Global, cfg *config.Config, pretty bool) error {
	p, err := newProvider(cfg, false, g.Logger)
	if err != nil {
		return err
	}
	documents, err := listResolved(ctx, p, cfg, g.Logger)
	if err != nil {
		return err
	}
	return writeArtifact(g, manifest.NewBuilder().Build(documents), pretty, errors.CategoryManifest)
}

// SearchIndexCmd implements the 'search-index' command.
type SearchIndexCmd struct {
	Pretty bool `short:"p" help:"Indent the JSON output"`
}

func (s *SearchIndexCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	g.setup(cfg, root)
	return RunSearchIndex(context.Background(), g, cfg, s.Pretty)
}

// RunSearchIndex writes the client-side search index to g.Out.
func RunSearchIndex(ctx context.Context, g *Global, cfg *config.Config, pretty bool) error {
	p, err := newProvider(cfg, false, g.Logger)
	if err != nil {
		return err
	}
	documents, err := p.ListSearchable(ctx)
	if err != nil {
		return errors.WrapError(err, errors.CategorySearch, "failed to list searchable documents").Build()
	}
	return writeArtifact(g, search.NewBuilder(cfg.Search.MaxContentRunes).Build(documents), pretty, errors.CategorySearch)
}

func writeArtifact(g *Global, v any, pretty bool, category errors.ErrorCategory) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return errors.WrapError(err, category, "failed to encode output").Build()
	}
	if _, err := fmt.Fprintln(g.Out, string(data)); err != nil {
		return errors.WrapError(err, errors.CategoryRuntime, "failed to write output").Build()
	}
	return nil
}
