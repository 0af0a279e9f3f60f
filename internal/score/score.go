// Package score rates file content against the pattern table and keyword
// bonuses of a rule set.
package score

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/blackwell-systems/lodescan/internal/rules"
)

// Outcome says whether a file was actually scored.
type Outcome int

const (
	// Scored means the content was read and matched.
	Scored Outcome = iota
	// Skipped means the extension is not on the text allow-list; the file
	// was never opened.
	Skipped
	// Unreadable means the file could not be opened, read or decoded.
	Unreadable
)

func (o Outcome) String() string {
	switch o {
	case Scored:
		return "scored"
	case Skipped:
		return "skipped"
	case Unreadable:
		return "unreadable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the outcome of scoring one file. Score and Patterns are only
// meaningful when Outcome is Scored; otherwise they are zero.
type Result struct {
	Outcome  Outcome
	Score    int
	Patterns []string
}

// Value returns the score, treating unscored files as 0.
func (r Result) Value() int {
	if r.Outcome != Scored {
		return 0
	}
	return r.Score
}

// Opener opens a file for reading.
type Opener func(name string) (io.ReadCloser, error)

type compiledPattern struct {
	label string
	re    *regexp.Regexp
}

// Scorer matches file content against precompiled patterns. It is safe for
// concurrent use.
type Scorer struct {
	textExts map[string]bool
	patterns []compiledPattern
	bonuses  []rules.Bonus
	maxBytes int64
	open     Opener
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithMaxBytes caps how much of each file is read. Zero means no limit.
func WithMaxBytes(n int64) Option {
	return func(s *Scorer) { s.maxBytes = n }
}

// WithOpener replaces the function used to open files.
func WithOpener(open Opener) Option {
	return func(s *Scorer) { s.open = open }
}

// New compiles the patterns of set into a Scorer.
func New(set rules.Set, opts ...Option) (*Scorer, error) {
	s := &Scorer{
		textExts: make(map[string]bool, len(set.TextExtensions)),
		bonuses:  set.Bonuses,
		open: func(name string) (io.ReadCloser, error) {
			return os.Open(name)
		},
	}
	for _, ext := range set.TextExtensions {
		s.textExts[ext] = true
	}
	for _, g := range set.Patterns {
		for _, p := range g.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("compiling %s:%s: %w", g.Category, p, err)
			}
			s.patterns = append(s.patterns, compiledPattern{label: g.Category + ":" + p, re: re})
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scoreable reports whether files with the given path would be read.
func (s *Scorer) Scoreable(path string) bool {
	return s.textExts[strings.ToLower(filepath.Ext(path))]
}

// Score reads the file at path and scores it. It never returns an error:
// failures are reported through Result.Outcome.
func (s *Scorer) Score(path string) Result {
	if !s.Scoreable(path) {
		return Result{Outcome: Skipped}
	}

	content, err := s.read(path)
	if err != nil {
		return Result{Outcome: Unreadable}
	}
	return s.ScoreContent(content)
}

// ScoreContent scores already-decoded text.
func (s *Scorer) ScoreContent(content string) Result {
	content = strings.ToLower(content)

	res := Result{Outcome: Scored}
	for _, p := range s.patterns {
		if p.re.MatchString(content) {
			res.Score += rules.PointsPerPattern
			res.Patterns = append(res.Patterns, p.label)
		}
	}

	for _, b := range s.bonuses {
		if bonusApplies(content, b) {
			res.Score += b.Points
			res.Patterns = append(res.Patterns, b.Label)
		}
	}
	return res
}

func (s *Scorer) read(path string) (string, error) {
	f, err := s.open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if s.maxBytes > 0 {
		r = io.LimitReader(f, s.maxBytes)
	}

	// Invalid UTF-8 becomes U+FFFD instead of failing the read.
	data, err := io.ReadAll(unicode.UTF8BOM.NewDecoder().Reader(r))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func bonusApplies(content string, b rules.Bonus) bool {
	for _, term := range b.All {
		if !strings.Contains(content, term) {
			return false
		}
	}
	if len(b.Any) == 0 {
		return true
	}
	for _, term := range b.Any {
		if strings.Contains(content, term) {
			return true
		}
	}
	return false
}
