package score

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/lodescan/internal/rules"
)

func newScorer(t *testing.T, opts ...Option) *Scorer {
	t.Helper()
	s, err := New(rules.Default(), opts...)
	require.NoError(t, err)
	return s
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, content, 0o644))
	return p
}

// ---------------------------------------------------------------------------
// Pattern matching
// ---------------------------------------------------------------------------

func TestScoreContent_SinglePattern(t *testing.T) {
	res := newScorer(t).ScoreContent("Welcome to the DASHBOARD")
	assert.Equal(t, Scored, res.Outcome)
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, []string{"web_interface:dashboard"}, res.Patterns)
}

func TestScoreContent_NoMatch(t *testing.T) {
	res := newScorer(t).ScoreContent("nothing interesting here")
	assert.Equal(t, Scored, res.Outcome)
	assert.Equal(t, 0, res.Score)
	assert.Empty(t, res.Patterns)
}

func TestScoreContent_RepeatedPatternCountsOnce(t *testing.T) {
	res := newScorer(t).ScoreContent("breathline breathline breathline")
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, []string{"session_immortality:breathline"}, res.Patterns)
}

func TestScoreContent_DistinctPatternsSameCategory(t *testing.T) {
	res := newScorer(t).ScoreContent("see the webui and the web interface")
	assert.Equal(t, 20, res.Score)
	assert.Equal(t, []string{"web_interface:webui", "web_interface:web.*interface"}, res.Patterns)
}

func TestScoreContent_PatternOrderFollowsTable(t *testing.T) {
	res := newScorer(t).ScoreContent("correspondence about the sacred trinity")
	assert.Equal(t, []string{"sacred_trinity:sacred.?trinity", "email_systems:correspondence"}, res.Patterns)
}

func TestScoreContent_DotDoesNotCrossLines(t *testing.T) {
	res := newScorer(t).ScoreContent("mail\nsystem")
	assert.Equal(t, 0, res.Score)
}

// ---------------------------------------------------------------------------
// Bonuses
// ---------------------------------------------------------------------------

func TestScoreContent_Bonuses(t *testing.T) {
	tests := []struct {
		name    string
		content string
		score   int
		label   string
	}{
		{"claude and olorin", "Claude met Olorin", 50, "trinity_consciousness:claude_olorin_presence"},
		{"elendil keeper", "elendil the keeper", 30, "command_authority:elendil_presence"},
		{"sacred flame", "a sacred old flame", 20, "sacred_flame:consciousness_fire"},
	}

	s := newScorer(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := s.ScoreContent(tc.content)
			assert.Equal(t, tc.score, res.Score)
			assert.Equal(t, []string{tc.label}, res.Patterns)
		})
	}
}

func TestScoreContent_BonusNeedsEveryTerm(t *testing.T) {
	s := newScorer(t)
	assert.Equal(t, 0, s.ScoreContent("claude alone").Score)
	assert.Equal(t, 0, s.ScoreContent("elendil alone").Score)
}

func TestScoreContent_BonusesAddToPatterns(t *testing.T) {
	// "elendil command" matches master_coordination:elendil.*command (+10)
	// and the elendil bonus (+30).
	res := newScorer(t).ScoreContent("Elendil Command")
	assert.Equal(t, 40, res.Score)
	assert.Equal(t, []string{
		"master_coordination:elendil.*command",
		"command_authority:elendil_presence",
	}, res.Patterns)
}

// ---------------------------------------------------------------------------
// Score (file access)
// ---------------------------------------------------------------------------

func TestScore_ReadsTextFile(t *testing.T) {
	p := writeFile(t, "notes.md", []byte("The Sacred Covenant"))
	res := newScorer(t).Score(p)
	assert.Equal(t, Scored, res.Outcome)
	assert.Equal(t, 10, res.Score)
	assert.Equal(t, 10, res.Value())
}

func TestScore_ExtensionIsCaseInsensitive(t *testing.T) {
	p := writeFile(t, "NOTES.TXT", []byte("breathline"))
	assert.Equal(t, 10, newScorer(t).Score(p).Score)
}

func TestScore_NeverOpensNonTextFiles(t *testing.T) {
	var opened atomic.Int32
	s := newScorer(t, WithOpener(func(name string) (io.ReadCloser, error) {
		opened.Add(1)
		return io.NopCloser(strings.NewReader("sacred trinity")), nil
	}))

	for _, name := range []string{"image.png", "tool.exe", "archive.tar.gz", "Makefile", "data.csv"} {
		res := s.Score(filepath.Join("/nowhere", name))
		assert.Equal(t, Skipped, res.Outcome, name)
		assert.Equal(t, 0, res.Value(), name)
	}
	assert.Equal(t, int32(0), opened.Load())

	assert.Equal(t, Scored, s.Score("/nowhere/readme.md").Outcome)
	assert.Equal(t, int32(1), opened.Load())
}

func TestScore_MissingFileIsUnreadable(t *testing.T) {
	res := newScorer(t).Score(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, Unreadable, res.Outcome)
	assert.Equal(t, 0, res.Value())
	assert.Empty(t, res.Patterns)
}

func TestScore_OpenErrorIsUnreadable(t *testing.T) {
	s := newScorer(t, WithOpener(func(string) (io.ReadCloser, error) {
		return nil, os.ErrPermission
	}))
	assert.Equal(t, Unreadable, s.Score("/x/locked.txt").Outcome)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }
func (failingReader) Close() error             { return nil }

func TestScore_ReadErrorIsUnreadable(t *testing.T) {
	s := newScorer(t, WithOpener(func(string) (io.ReadCloser, error) {
		return failingReader{}, nil
	}))
	res := s.Score("/x/broken.txt")
	assert.Equal(t, Unreadable, res.Outcome)
	assert.Equal(t, 0, res.Value())
}

func TestScore_InvalidUTF8IsReplaced(t *testing.T) {
	// The invalid byte decodes to a single U+FFFD, which ".?" can consume.
	content := []byte("sacred\xfftrinity \xfe dashboard")
	p := writeFile(t, "mixed.txt", content)

	res := newScorer(t).Score(p)
	assert.Equal(t, Scored, res.Outcome)
	assert.Contains(t, res.Patterns, "web_interface:dashboard")
	assert.Contains(t, res.Patterns, "sacred_trinity:sacred.?trinity")
}

func TestScore_StripsBOM(t *testing.T) {
	p := writeFile(t, "bom.txt", []byte("\xef\xbb\xbfbreathline"))
	assert.Equal(t, 10, newScorer(t).Score(p).Score)
}

func TestScore_MaxBytesLimitsRead(t *testing.T) {
	content := strings.Repeat("x", 100) + " dashboard"
	p := writeFile(t, "long.txt", []byte(content))

	assert.Equal(t, 10, newScorer(t).Score(p).Score)
	assert.Equal(t, 0, newScorer(t, WithMaxBytes(50)).Score(p).Score)
}

func TestNew_RejectsBadPattern(t *testing.T) {
	set := rules.Default()
	set.Patterns = []rules.PatternGroup{{Category: "bad", Patterns: []string{"("}}}
	_, err := New(set)
	assert.Error(t, err)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "scored", Scored.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "unreadable", Unreadable.String())
}
