// Package slug defines the grammar of document slugs: the lowercase,
// slash-delimited identifiers that address documents over HTTP.
//
// Three grammars are exposed and kept mutually consistent:
//   - segment: ^[a-z0-9][a-z0-9_-]*$
//   - markdown segment: a segment optionally followed by a literal ".md"
//   - path: the empty string (root) or segments joined by "/"
//
// None of the matchers normalize their input. Callers that want to accept
// "Guide" must lowercase it first; otherwise rejection is the expected outcome.
package slug

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MarkdownSuffix is the file suffix tolerated by the markdown segment grammar.
const MarkdownSuffix = ".md"

const segmentExpr = `[a-z0-9][a-z0-9_-]*`

var (
	segmentPattern         = regexp.MustCompile(`^` + segmentExpr + `$`)
	markdownSegmentPattern = regexp.MustCompile(`^` + segmentExpr + `(?:\.md)?$`)
	pathPattern            = regexp.MustCompile(`^(?:` + segmentExpr + `(?:/` + segmentExpr + `)*)?$`)
)

var (
	// ErrInvalidSegment is returned when a single segment violates the grammar.
	ErrInvalidSegment = errors.New("invalid slug segment")
	// ErrInvalidPath is returned when a slash-joined slug path violates the grammar.
	ErrInvalidPath = errors.New("invalid slug path")
)

// IsSegment reports whether s is a valid route segment.
func IsSegment(s string) bool {
	return segmentPattern.MatchString(s)
}

// IsMarkdownSegment reports whether s is a valid segment with an optional ".md" suffix.
func IsMarkdownSegment(s string) bool {
	return markdownSegmentPattern.MatchString(s)
}

// IsPath reports whether p is the empty root path or a "/"-joined sequence of
// valid segments without leading, trailing or doubled slashes.
func IsPath(p string) bool {
	return pathPattern.MatchString(p)
}

// Slug is an ordered sequence of validated segments. The zero value is the root.
type Slug []string

// Root is the slug of the root document.
var Root = Slug{}

// IsRoot reports whether the slug addresses the root document.
func (s Slug) IsRoot() bool { return len(s) == 0 }

// String returns the canonical "/"-joined form. The root renders as "".
func (s Slug) String() string { return strings.Join(s, "/") }

// Segments returns a copy of the underlying segments.
func (s Slug) Segments() []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Split splits a slug path on "/" without validating it. The empty path
// yields an empty sequence rather than a single empty segment.
func Split(p string) []string {
	if p == "" {
		return []string{}
	}
	return strings.Split(p, "/")
}

// Parse validates a slug path and returns its segments.
func Parse(p string) (Slug, error) {
	if !IsPath(p) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return Slug(Split(p)), nil
}

// FromSegments validates raw, already-decoded route segments. The last
// segment may name a physical file and carry a ".md" suffix, which is
// stripped; all other segments must match the plain segment grammar.
func FromSegments(segments []string) (Slug, error) {
	out := make(Slug, 0, len(segments))
	for i, seg := range segments {
		if i == len(segments)-1 && IsMarkdownSegment(seg) {
			out = append(out, strings.TrimSuffix(seg, MarkdownSuffix))
			continue
		}
		if !IsSegment(seg) {
			return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidSegment, seg, i)
		}
		out = append(out, seg)
	}
	return out, nil
}
