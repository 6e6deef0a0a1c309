// Package gitinfo derives document modification times from git history when
// the content directory lives inside a git working tree.
package gitinfo

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

var errStop = errors.New("stop iteration")

// History answers last-commit-time queries for files in one repository.
// Answers are cached until Reset is called.
type History struct {
	repo *git.Repository
	root string

	mu    sync.Mutex
	cache map[string]entry
}

type entry struct {
	when time.Time
	ok   bool
}

// Open locates the repository containing dir, searching parent directories.
func Open(dir string) (*History, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository for %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree for %s: %w", dir, err)
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	if resolved, rerr := filepath.EvalSymlinks(root); rerr == nil {
		root = resolved
	}
	return &History{repo: repo, root: root, cache: map[string]entry{}}, nil
}

// Root returns the working tree root.
func (h *History) Root() string { return h.root }

// LastModified returns the committer time of the newest commit touching path.
// ok is false for files outside the working tree, untracked files and
// repositories without commits.
func (h *History) LastModified(path string) (when time.Time, ok bool) {
	rel, relOK := h.relative(path)
	if !relOK {
		return time.Time{}, false
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if e, hit := h.cache[rel]; hit {
		return e.when, e.ok
	}
	e := h.lookup(rel)
	h.cache[rel] = e
	return e.when, e.ok
}

// Reset drops cached answers so new commits become visible.
func (h *History) Reset() {
	h.mu.Lock()
	h.cache = map[string]entry{}
	h.mu.Unlock()
}

func (h *History) relative(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(h.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (h *History) lookup(rel string) entry {
	iter, err := h.repo.Log(&git.LogOptions{FileName: &rel, Order: git.LogOrderCommitterTime})
	if err != nil {
		return entry{}
	}
	defer iter.Close()

	var found entry
	_ = iter.ForEach(func(c *object.Commit) error {
		found = entry{when: c.Committer.When.UTC(), ok: true}
		return errStop
	})
	return found
}
