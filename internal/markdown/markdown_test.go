package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze_HeadingsAndTitle(t *testing.T) {
	body := []byte("Intro line\n\n# Install *the* tool\n\n## Linux\n\ntext\n\n## macOS\n\n# Second H1\n")

	out := Analyze(body)

	assert.Equal(t, "Install the tool", out.Title)
	assert.Equal(t, []string{"Install the tool", "Linux", "macOS", "Second H1"}, out.Headings)
}

func TestAnalyze_NoHeadings(t *testing.T) {
	out := Analyze([]byte("just a paragraph\n"))
	assert.Empty(t, out.Title)
	assert.Empty(t, out.Headings)
	assert.Equal(t, "just a paragraph", out.Text)
}

func TestAnalyze_PlainTextStripsMarkup(t *testing.T) {
	body := []byte("# Title\n\nSome **bold** and [a link](other.md)\nacross lines.\n\n```go\nfmt.Println(1)\n```\n\n<div>html</div>\n")

	out := Analyze(body)

	assert.Equal(t, "Title\nSome bold and a link across lines.\nfmt.Println(1)", out.Text)
}

func TestAnalyze_Links(t *testing.T) {
	body := []byte("See [install](guide/install.md) and ![logo](img/logo.png).\n\n- [ref][r]\n\n[r]: https://example.com\n")

	out := Analyze(body)

	assert.Equal(t, []string{"guide/install.md", "img/logo.png", "https://example.com"}, out.Links)
}

func TestAnalyze_Empty(t *testing.T) {
	out := Analyze(nil)
	assert.Equal(t, Outline{}, out)
}
