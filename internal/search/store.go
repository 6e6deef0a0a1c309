package search

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

const (
	// DefaultLimit is the number of hits returned when no limit is given.
	DefaultLimit = 10
	// MaxLimit caps the number of hits per query.
	MaxLimit = 50

	snippetRunes = 160
)

// Hit is a single search result.
type Hit struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Snippet     string  `json:"snippet,omitempty"`
	Score       float64 `json:"score"`
}

// Store is a sqlite-backed search store.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenStore opens or creates a store. Use ":memory:" for an in-memory store.
func OpenStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		slug TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		headings TEXT NOT NULL,
		content TEXT NOT NULL,
		haystack TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Rebuild replaces the store's contents with entries in one transaction.
func (s *Store) Rebuild(ctx context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO documents (slug, title, description, headings, content, haystack) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		headings, err := json.Marshal(e.Headings)
		if err != nil {
			return fmt.Errorf("marshal headings: %w", err)
		}
		haystack := strings.ToLower(strings.Join([]string{e.Title, strings.Join(e.Headings, " "), e.Description, e.Content}, "\n"))
		if _, err := stmt.ExecContext(ctx, e.Slug, e.Title, e.Description, string(headings), e.Content, haystack); err != nil {
			return fmt.Errorf("insert %q: %w", e.Slug, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rebuild: %w", err)
	}
	return nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// Search returns documents containing every term of query, best first.
// Titles weigh more than headings, headings more than descriptions and
// descriptions more than body text.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	terms := Terms(query)
	if len(terms) == 0 {
		return []Hit{}, nil
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	clauses := make([]string, 0, len(terms))
	args := make([]any, 0, len(terms))
	for _, t := range terms {
		clauses = append(clauses, `haystack LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(t)+"%")
	}
	q := "SELECT slug, title, description, headings, content FROM documents WHERE " + strings.Join(clauses, " AND ")

	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	hits := []Hit{}
	for rows.Next() {
		var (
			e        Entry
			headings string
		)
		if err := rows.Scan(&e.Slug, &e.Title, &e.Description, &headings, &e.Content); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if err := json.Unmarshal([]byte(headings), &e.Headings); err != nil {
			return nil, fmt.Errorf("decode headings for %q: %w", e.Slug, err)
		}
		hits = append(hits, Hit{
			Slug:        e.Slug,
			Title:       e.Title,
			Description: e.Description,
			Snippet:     snippet(e.Content, terms[0]),
			Score:       score(e, terms),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Slug < hits[j].Slug
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Terms splits a query into lower-case terms, dropping duplicates.
func Terms(query string) []string {
	seen := map[string]bool{}
	var out []string
	for _, f := range strings.Fields(strings.ToLower(query)) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func score(e Entry, terms []string) float64 {
	title := strings.ToLower(e.Title)
	headings := strings.ToLower(strings.Join(e.Headings, "\n"))
	desc := strings.ToLower(e.Description)
	content := strings.ToLower(e.Content)

	var total float64
	for _, t := range terms {
		if strings.Contains(title, t) {
			total += 10
		}
		if strings.Contains(headings, t) {
			total += 5
		}
		if strings.Contains(desc, t) {
			total += 3
		}
		total += float64(min(strings.Count(content, t), 5))
	}
	return total
}

func snippet(content, term string) string {
	runes := []rune(content)
	lower := []rune(strings.ToLower(content))
	if len(lower) != len(runes) {
		lower = runes
	}
	idx := indexRunes(lower, []rune(term))
	if idx < 0 {
		idx = 0
	}
	start := max(idx-snippetRunes/4, 0)
	end := min(start+snippetRunes, len(runes))
	out := strings.TrimSpace(string(runes[start:end]))
	if start > 0 {
		out = "…" + out
	}
	if end < len(runes) {
		out += "…"
	}
	return out
}

func indexRunes(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
