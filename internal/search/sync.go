package search

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docsite/internal/docs"
)

// Sync rebuilds the store from the provider's searchable documents and
// returns how many were indexed.
func (s *Store) Sync(ctx context.Context, p docs.Provider, b *Builder) (int, error) {
	documents, err := p.ListSearchable(ctx)
	if err != nil {
		return 0, fmt.Errorf("list searchable documents: %w", err)
	}
	idx := b.Build(documents)
	if err := s.Rebuild(ctx, idx.Entries); err != nil {
		return 0, err
	}
	return len(idx.Entries), nil
}
