package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/lodescan/internal/classify"
	"github.com/blackwell-systems/lodescan/internal/logger"
	"github.com/blackwell-systems/lodescan/internal/rules"
	"github.com/blackwell-systems/lodescan/internal/score"
)

// DefaultThreads is the worker pool size used when none is configured.
const DefaultThreads = 4

// ErrRootNotFound is returned by Run when the source root does not exist or
// is not a directory.
var ErrRootNotFound = errors.New("source root not found")

// ErrAlreadyStarted is returned when Run is called twice on one Coordinator.
var ErrAlreadyStarted = errors.New("coordinator already started")

// State is the lifecycle state of a Coordinator.
type State int32

const (
	NotStarted State = iota
	Running
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case Running:
		return "RUNNING"
	case Completed:
		return "COMPLETED"
	case Failed:
		return "FAILED"
	default:
		return fmt.Sprintf("STATE(%d)", int32(s))
	}
}

// Options configures a Coordinator.
type Options struct {
	// Threads is the worker pool size. Values below 1 use DefaultThreads.
	Threads int

	// BatchTimeout bounds each batch. Zero means no limit. A batch that
	// runs out of time is dropped like any other failed batch.
	BatchTimeout time.Duration

	Logger logger.Logger
}

type batchFunc func(ctx context.Context, root string, b Batch) (*LocalStats, error)

type batchResult struct {
	index int
	stats *LocalStats
	err   error
}

// Coordinator partitions a tree into batches, scans them on a bounded pool
// of workers and merges the results. Workers only return values; the merge
// runs on the goroutine that called Run, so GlobalStats has a single writer.
type Coordinator struct {
	threads int
	timeout time.Duration
	log     logger.Logger
	state   atomic.Int32
	now     func() time.Time
	scan    batchFunc
}

// NewCoordinator returns a Coordinator that scans with c and s.
func NewCoordinator(set rules.Set, c *classify.Classifier, s *score.Scorer, opts Options) *Coordinator {
	threads := opts.Threads
	if threads < 1 {
		threads = DefaultThreads
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	co := &Coordinator{
		threads: threads,
		timeout: opts.BatchTimeout,
		log:     log,
		now:     time.Now,
	}
	co.scan = func(ctx context.Context, root string, b Batch) (*LocalStats, error) {
		return NewBatchScanner(root, set, c, s, log).ScanBatch(ctx, b)
	}
	return co
}

// State returns the current lifecycle state.
func (co *Coordinator) State() State {
	return State(co.state.Load())
}

// Threads returns the configured pool size.
func (co *Coordinator) Threads() int {
	return co.threads
}

// Run scans root. The only failure is a missing root, reported as
// ErrRootNotFound before any worker starts. Failed batches are logged,
// counted in GlobalStats.FailedBatches and otherwise ignored.
func (co *Coordinator) Run(ctx context.Context, root string) (*GlobalStats, error) {
	if !co.state.CompareAndSwap(int32(NotStarted), int32(Running)) {
		return nil, ErrAlreadyStarted
	}

	stats := newGlobalStats(root, co.now())

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		co.state.Store(int32(Failed))
		co.log.Errorf("Source root not found: %s", root)
		return stats, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	// WalkDir does not descend into a symlinked starting path.
	walkRoot := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		walkRoot = resolved
	}

	co.log.Infof("Scan started: %s", root)
	co.log.Infof("Processing threads: %d", co.threads)

	units, err := DiscoverUnits(walkRoot)
	if err != nil {
		co.log.Warnf("Listing %s failed, scanning it as one unit: %v", root, err)
	}
	co.log.Infof("Units to analyze: %d", len(units))
	for _, u := range units {
		co.log.Debugf("  %s", u.Path)
	}

	batches := Partition(units, co.threads)
	stats.Batches = len(batches)
	co.log.Infof("Processing %d batches", len(batches))

	results := make(chan batchResult, len(batches))
	go func() {
		var g errgroup.Group
		g.SetLimit(co.threads)
		for _, b := range batches {
			g.Go(func() error {
				results <- co.runBatch(ctx, walkRoot, b)
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	done := 0
	for res := range results {
		done++
		if res.err != nil {
			stats.FailedBatches++
			co.log.Errorf("Batch %d/%d failed: %v", done, len(batches), res.err)
			continue
		}
		stats.merge(res.stats)
		co.log.Infof("Batch %d/%d complete", done, len(batches))
	}

	stats.finish(co.now())
	co.state.Store(int32(Completed))

	co.log.Infof("Scan complete")
	co.log.Infof("Files discovered: %d", stats.TotalFiles)
	co.log.Infof("Directories: %d", stats.TotalDirectories)
	co.log.Infof("Total data: %.2f MB", float64(stats.TotalSize)/(1024*1024))
	co.log.Infof("Discovery time: %.2f seconds", stats.ProcessingTime.Seconds())
	co.log.Infof("Speed: %d files/second", stats.FilesPerSecond)
	co.log.Infof("Findings: %d files with matching content", len(stats.Findings))
	return stats, nil
}

// runBatch scans one batch, converting a timeout or panic into an error.
func (co *Coordinator) runBatch(ctx context.Context, root string, b Batch) (res batchResult) {
	res.index = b.Index
	if co.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, co.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			res.stats = nil
			res.err = fmt.Errorf("batch %d panicked: %v", b.Index, r)
		}
	}()

	st, err := co.scan(ctx, root, b)
	if err != nil {
		res.err = fmt.Errorf("batch %d: %w", b.Index, err)
		return res
	}
	res.stats = st
	return res
}
