package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct{}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	g.setup(cfg, root)
	return RunCheck(context.Background(), g, cfg)
}

// RunCheck lists markdown files that cannot be addressed by a valid slug.
// It fails with a validation error when any are found.
func RunCheck(ctx context.Context, g *Global, cfg *config.Config) error {
	p, err := newProvider(cfg, false, g.Logger)
	if err != nil {
		return err
	}
	rejected, err := p.RejectedFiles(ctx)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to scan documentation directory").Build()
	}
	if len(rejected) == 0 {
		_, _ = fmt.Fprintln(g.Out, "All documents have valid slugs")
		return nil
	}
	for _, path := range rejected {
		_, _ = fmt.Fprintf(g.Out, "invalid slug: %s\n", path)
	}
	return errors.ValidationError(fmt.Sprintf("%d files do not map to a valid slug", len(rejected))).
		WithContext("docs_dir", cfg.Content.DocsDir).
		Build()
}
