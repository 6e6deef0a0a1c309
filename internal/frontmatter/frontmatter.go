package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Fields are the frontmatter keys the content provider understands. Unknown
// keys are preserved in the raw map returned by Parse.
type Fields struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Weight      int    `yaml:"weight"`
	LastMod     string `yaml:"lastmod"`
	Draft       bool   `yaml:"draft"`
	Searchable  *bool  `yaml:"searchable"`
}

// IsSearchable reports whether the document belongs in the search index.
// Documents are searchable unless marked draft or searchable: false.
func (f Fields) IsSearchable() bool {
	if f.Draft {
		return false
	}
	return f.Searchable == nil || *f.Searchable
}

var lastModLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LastModTime parses the lastmod field. ok is false when it is absent or unparseable.
func (f Fields) LastModTime() (t time.Time, ok bool) {
	v := strings.TrimSpace(f.LastMod)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range lastModLayouts {
		if parsed, err := time.Parse(layout, v); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}

// Parse splits a document and decodes its frontmatter.
//
// Documents without frontmatter yield zero Fields, an empty raw map and the
// full content as body.
func Parse(content []byte) (fields Fields, raw map[string]any, body []byte, err error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return Fields{}, nil, nil, err
	}
	if !had || len(bytes.TrimSpace(fm)) == 0 {
		return Fields{}, map[string]any{}, body, nil
	}
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return Fields{}, nil, nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	raw, err = ParseYAML(fm)
	if err != nil {
		return Fields{}, nil, nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	return fields, raw, body, nil
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a YAML frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the last line without a trailing newline.
		closeEOF := []byte(nl + "---")
		if bytes.HasSuffix(content, closeEOF) {
			end := len(content) - len(closeEOF)
			return content[start : end+len(nl)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(frontmatter) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
