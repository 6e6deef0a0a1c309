package slug

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSegment(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a", true},
		{"0", true},
		{"getting-started", true},
		{"api_v2", true},
		{"a--b__c", true},
		{"9lives", true},
		{"", false},
		{"-lead", false},
		{"_lead", false},
		{"Upper", false},
		{"café", false},
		{"has space", false},
		{"dot.md", false},
		{"..", false},
		{"a/b", false},
		{"tab\t", false},
		{"line\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSegment(tt.in))
		})
	}
}

func TestIsMarkdownSegment(t *testing.T) {
	assert.True(t, IsMarkdownSegment("intro"))
	assert.True(t, IsMarkdownSegment("intro.md"))
	assert.False(t, IsMarkdownSegment(".md"))
	assert.False(t, IsMarkdownSegment("intro.MD"))
	assert.False(t, IsMarkdownSegment("intro.md.md"))
	assert.False(t, IsMarkdownSegment("intro.txt"))
	assert.False(t, IsMarkdownSegment("Intro.md"))
}

func TestIsPath(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"guide", true},
		{"guide/install", true},
		{"a/b/c-d/e_f", true},
		{"/guide", false},
		{"guide/", false},
		{"guide//install", false},
		{"/", false},
		{"guide/../etc", false},
		{"guide/Install", false},
		{"guide/install.md", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPath(tt.in))
		})
	}
}

var referenceSegment = regexp.MustCompile(`\A[a-z0-9][a-z0-9_-]*\z`)

const alphabet = "abcxyz019_-./ABZé \\\n"

func randomString(r *rand.Rand, maxLen int) string {
	runes := []rune(alphabet)
	n := r.IntN(maxLen + 1)
	var b strings.Builder
	for range n {
		b.WriteRune(runes[r.IntN(len(runes))])
	}
	return b.String()
}

func TestIsSegment_Property(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 5000 {
		s := randomString(r, 12)
		require.Equal(t, referenceSegment.MatchString(s), IsSegment(s), "segment %q", s)
	}
}

func TestIsPath_ConsistentWithSegments(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for range 5000 {
		parts := make([]string, r.IntN(4)+1)
		for i := range parts {
			parts[i] = randomString(r, 6)
		}
		p := strings.Join(parts, "/")

		want := true
		for _, part := range strings.Split(p, "/") {
			if !IsSegment(part) {
				want = false
				break
			}
		}
		if p == "" {
			want = true
		}
		require.Equal(t, want, IsPath(p), "path %q", p)
	}
}

func TestParse(t *testing.T) {
	s, err := Parse("")
	require.NoError(t, err)
	assert.True(t, s.IsRoot())
	assert.Equal(t, "", s.String())

	s, err = Parse("guide/install")
	require.NoError(t, err)
	assert.Equal(t, Slug{"guide", "install"}, s)
	assert.Equal(t, "guide/install", s.String())

	_, err = Parse("guide//install")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{}, Split(""))
	assert.Equal(t, []string{"a"}, Split("a"))
	assert.Equal(t, []string{"a", "b"}, Split("a/b"))
}

func TestFromSegments(t *testing.T) {
	s, err := FromSegments(nil)
	require.NoError(t, err)
	assert.True(t, s.IsRoot())

	s, err = FromSegments([]string{"guide", "install.md"})
	require.NoError(t, err)
	assert.Equal(t, Slug{"guide", "install"}, s)

	_, err = FromSegments([]string{"guide.md", "install"})
	require.ErrorIs(t, err, ErrInvalidSegment)

	_, err = FromSegments([]string{"..", "etc"})
	require.ErrorIs(t, err, ErrInvalidSegment)

	_, err = FromSegments([]string{"Guide"})
	require.ErrorIs(t, err, ErrInvalidSegment)
}

func TestSegmentsReturnsCopy(t *testing.T) {
	s := Slug{"a", "b"}
	segs := s.Segments()
	segs[0] = "z"
	assert.Equal(t, "a", s[0])
}
