// Package scanner walks a directory tree in concurrent batches and merges
// the per-batch statistics into one global result.
package scanner

import (
	"math"
	"sort"
	"time"

	"github.com/blackwell-systems/lodescan/internal/rules"
)

// Unit is one directory assigned to a batch.
type Unit struct {
	// Path is the directory to scan.
	Path string

	// Recursive is false only for the unit that collects files sitting
	// directly in the scan root next to subdirectories.
	Recursive bool

	// IsRoot marks units whose Path is the scan root.
	IsRoot bool
}

// Batch is a contiguous run of units handled by one worker.
type Batch struct {
	Index int
	Units []Unit
}

// Sequence records where a finding was discovered: which batch, and its
// position in that batch's walk.
type Sequence struct {
	Batch int
	Index int
}

func (s Sequence) before(o Sequence) bool {
	if s.Batch != o.Batch {
		return s.Batch < o.Batch
	}
	return s.Index < o.Index
}

// Finding is a file whose content scored above zero.
type Finding struct {
	Path     string         `json:"path"`
	Score    int            `json:"score"`
	Patterns []string       `json:"patterns"`
	Category rules.Category `json:"category"`
	Risk     rules.Risk     `json:"risk"`
	Size     int64          `json:"size"`
	Seq      Sequence       `json:"-"`
}

// NotableEntry is recorded for every file in a notable category.
type NotableEntry struct {
	Category rules.Category `json:"category"`
	Score    int            `json:"score"`
	Size     int64          `json:"size"`
}

// LocalStats accumulates the results of one batch. It is owned by the worker
// that fills it and handed to the coordinator exactly once.
type LocalStats struct {
	Batch              int
	Files              int64
	Directories        int64
	Size               int64
	UnreadableFiles    int64
	SkippedDirectories int64
	Categories         map[rules.Category]int
	Risks              map[rules.Risk]int
	Findings           []Finding
	Notable            map[string]NotableEntry
}

func newLocalStats(batch int) *LocalStats {
	return &LocalStats{
		Batch:      batch,
		Categories: make(map[rules.Category]int),
		Risks:      make(map[rules.Risk]int),
		Notable:    make(map[string]NotableEntry),
	}
}

// GlobalStats is the merged result of a scan. Only the coordinator writes
// to it; after Run returns it is read-only.
type GlobalStats struct {
	Root               string
	TotalFiles         int64
	TotalDirectories   int64
	TotalSize          int64
	UnreadableFiles    int64
	SkippedDirectories int64
	Categories         map[rules.Category]int
	Risks              map[rules.Risk]int
	Findings           []Finding
	Notable            map[string]NotableEntry

	Batches       int
	FailedBatches int

	StartedAt      time.Time
	ProcessingTime time.Duration
	FilesPerSecond int64
}

func newGlobalStats(root string, start time.Time) *GlobalStats {
	return &GlobalStats{
		Root:       root,
		Categories: make(map[rules.Category]int),
		Risks:      make(map[rules.Risk]int),
		Notable:    make(map[string]NotableEntry),
		StartedAt:  start,
	}
}

// merge adds one batch's statistics. Batches cover disjoint units, so the
// order of merges does not change the result.
func (g *GlobalStats) merge(l *LocalStats) {
	g.TotalFiles += l.Files
	g.TotalDirectories += l.Directories
	g.TotalSize += l.Size
	g.UnreadableFiles += l.UnreadableFiles
	g.SkippedDirectories += l.SkippedDirectories

	for cat, n := range l.Categories {
		g.Categories[cat] += n
	}
	for risk, n := range l.Risks {
		g.Risks[risk] += n
	}
	g.Findings = append(g.Findings, l.Findings...)
	for path, entry := range l.Notable {
		g.Notable[path] = entry
	}
}

// finish computes timing metrics and orders findings by descending score.
// Equal scores keep discovery order.
func (g *GlobalStats) finish(end time.Time) {
	g.ProcessingTime = end.Sub(g.StartedAt)
	if secs := g.ProcessingTime.Seconds(); secs > 0 {
		g.FilesPerSecond = int64(math.Floor(float64(g.TotalFiles) / secs))
	}

	sort.SliceStable(g.Findings, func(i, j int) bool {
		a, b := g.Findings[i], g.Findings[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Seq.before(b.Seq)
	})
}

// NotablePaths returns the notable-system paths in sorted order.
func (g *GlobalStats) NotablePaths() []string {
	paths := make([]string, 0, len(g.Notable))
	for p := range g.Notable {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
