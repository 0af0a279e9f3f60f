package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/lodescan/internal/classify"
	"github.com/blackwell-systems/lodescan/internal/logger"
	"github.com/blackwell-systems/lodescan/internal/rules"
	"github.com/blackwell-systems/lodescan/internal/score"
)

// BatchScanner walks the units of a batch, classifying and scoring every
// file. It writes only to the LocalStats it returns, so any number of
// ScanBatch calls may run at once.
type BatchScanner struct {
	root       string
	rules      rules.Set
	classifier *classify.Classifier
	scorer     *score.Scorer
	log        logger.Logger
}

// NewBatchScanner returns a BatchScanner for files under root.
func NewBatchScanner(root string, set rules.Set, c *classify.Classifier, s *score.Scorer, log logger.Logger) *BatchScanner {
	if log == nil {
		log = logger.Discard()
	}
	return &BatchScanner{root: root, rules: set, classifier: c, scorer: s, log: log}
}

// ScanBatch scans every unit in b. Directories that cannot be read are
// logged and skipped. The only error returned is ctx's, when it is cancelled
// or its deadline passes mid-walk.
func (s *BatchScanner) ScanBatch(ctx context.Context, b Batch) (*LocalStats, error) {
	st := newLocalStats(b.Index)
	for _, u := range b.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		if u.Recursive {
			err = s.walk(ctx, u, st)
		} else {
			err = s.shallow(ctx, u, st)
		}
		if err != nil {
			return nil, err
		}
	}
	return st, nil
}

func (s *BatchScanner) walk(ctx context.Context, u Unit, st *LocalStats) error {
	return filepath.WalkDir(u.Path, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Either the unit itself vanished (d == nil) or a directory
			// could not be listed. Both are skipped.
			s.log.Warnf("Error scanning %s: %v", p, err)
			st.SkippedDirectories++
			return nil
		}
		// Unit directories themselves are not counted.
		if p == u.Path {
			return nil
		}
		s.visit(p, d, st)
		return nil
	})
}

// shallow handles the non-directory entries directly inside u.Path.
func (s *BatchScanner) shallow(ctx context.Context, u Unit, st *LocalStats) error {
	entries, err := os.ReadDir(u.Path)
	if err != nil {
		s.log.Warnf("Error scanning %s: %v", u.Path, err)
		st.SkippedDirectories++
		return nil
	}
	for _, d := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			continue
		}
		s.visit(filepath.Join(u.Path, d.Name()), d, st)
	}
	return nil
}

// visit records one walked entry. Symlinks are resolved to decide whether
// they count as a file or a directory but are never descended into.
func (s *BatchScanner) visit(p string, d fs.DirEntry, st *LocalStats) {
	switch {
	case d.IsDir():
		st.Directories++
	case d.Type().IsRegular():
		s.scanFile(p, st)
	case d.Type()&fs.ModeSymlink != 0:
		info, err := os.Stat(p)
		if err != nil {
			return
		}
		if info.Mode().IsRegular() {
			s.scanFile(p, st)
		} else if info.IsDir() {
			st.Directories++
		}
	}
}

func (s *BatchScanner) scanFile(p string, st *LocalStats) {
	rel, err := filepath.Rel(s.root, p)
	if err != nil {
		rel = p
	}

	rec, cls := s.classifier.ClassifyFile(p, rel)
	res := s.scorer.Score(p)

	st.Files++
	st.Size += rec.Size
	st.Categories[cls.Category]++
	st.Risks[cls.Risk]++
	if res.Outcome == score.Unreadable {
		st.UnreadableFiles++
	}

	if v := res.Value(); v > 0 {
		st.Findings = append(st.Findings, Finding{
			Path:     p,
			Score:    v,
			Patterns: res.Patterns,
			Category: cls.Category,
			Risk:     cls.Risk,
			Size:     rec.Size,
			Seq:      Sequence{Batch: st.Batch, Index: len(st.Findings)},
		})
	}

	if s.rules.IsNotable(cls.Category) {
		st.Notable[p] = NotableEntry{
			Category: cls.Category,
			Score:    res.Value(),
			Size:     rec.Size,
		}
	}
}
