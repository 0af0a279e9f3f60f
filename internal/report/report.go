// Package report turns merged scan statistics into the discovery report and
// its HTML dashboard.
package report

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blackwell-systems/lodescan/internal/scanner"
)

// DefaultTopN is how many findings the report lists individually.
const DefaultTopN = 10

// notableListed caps the notable-system identifiers listed in a report.
const notableListed = 5

// Summary status values.
const (
	StatusComplete       = "DISCOVERY_COMPLETE"
	StatusPartial        = "DISCOVERY_COMPLETE_WITH_FAILED_BATCHES"
	IntegrityVerified    = "VERIFIED"
	IntegrityPartial     = "PARTIAL"
	defaultEngineVersion = "dev"
	engineName           = "lodescan"
)

// Report is the top-level document written to discovery_report_*.json.
type Report struct {
	Discovery Discovery `json:"discovery_report"`
}

// Discovery holds every report section.
type Discovery struct {
	Metadata       Metadata        `json:"metadata"`
	Performance    Performance     `json:"performance_metrics"`
	Findings       FindingsSummary `json:"findings"`
	Notable        NotableAnalysis `json:"notable_analysis"`
	Classification map[string]int  `json:"content_classification"`
	Risk           map[string]int  `json:"risk_assessment"`
	Summary        Summary         `json:"discovery_summary"`
}

type Metadata struct {
	DiscoveryTimestamp time.Time `json:"discovery_timestamp"`
	ScanID             string    `json:"scan_id"`
	SourceRoot         string    `json:"source_root,omitempty"`
	ObfuscationEnabled bool      `json:"obfuscation_enabled"`
	ThreadCount        int       `json:"thread_count"`
	EngineVersion      string    `json:"engine_version"`
}

type Performance struct {
	TotalFiles           int64   `json:"total_files_discovered"`
	TotalDirectories     int64   `json:"total_directories"`
	TotalSizeBytes       int64   `json:"total_size_bytes"`
	TotalSizeMB          float64 `json:"total_size_mb"`
	DiscoveryTimeSeconds float64 `json:"discovery_time_seconds"`
	FilesPerSecond       int64   `json:"files_per_second"`
	Batches              int     `json:"batches"`
	FailedBatches        int     `json:"failed_batches"`
	UnreadableFiles      int64   `json:"unreadable_files"`
	SkippedDirectories   int64   `json:"skipped_directories"`
}

type FindingsSummary struct {
	TotalFindings  int          `json:"total_findings"`
	NotableSystems int          `json:"notable_systems"`
	Top            []TopFinding `json:"top_findings"`
}

// TopFinding is one listed finding. Identifier is the file path, or a
// sequential label when the report is obfuscated.
type TopFinding struct {
	Identifier       string  `json:"identifier"`
	Score            int     `json:"score"`
	Category         string  `json:"category"`
	Risk             string  `json:"risk"`
	SizeKB           float64 `json:"size_kb"`
	PatternsDetected int     `json:"patterns_detected"`
}

// NotableAnalysis summarises notable systems and domain categories. The
// counts are numbers of observed category names that mention the area.
type NotableAnalysis struct {
	NotableSystems        []string `json:"notable_systems_identified"`
	DeploymentSystems     int      `json:"deployment_systems_found"`
	WebInterfaces         int      `json:"web_interfaces_found"`
	ConsciousnessArchives int      `json:"consciousness_archives"`
}

type Summary struct {
	ScanStatus            string `json:"scan_status"`
	DataIntegrity         string `json:"data_integrity"`
	DomainContentDetected bool   `json:"domain_content_detected"`
}

// Options controls how Build renders statistics.
type Options struct {
	Obfuscate bool
	Threads   int
	// TopN defaults to DefaultTopN when zero.
	TopN    int
	Version string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Build assembles a Report from finished scan statistics. With Obfuscate set
// no file path or source root appears anywhere in the result.
func Build(stats *scanner.GlobalStats, opts Options) *Report {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	version := opts.Version
	if version == "" {
		version = defaultEngineVersion
	}

	d := Discovery{
		Metadata: Metadata{
			DiscoveryTimestamp: now(),
			ScanID:             uuid.NewString(),
			ObfuscationEnabled: opts.Obfuscate,
			ThreadCount:        opts.Threads,
			EngineVersion:      engineName + "/" + version,
		},
		Performance: Performance{
			TotalFiles:           stats.TotalFiles,
			TotalDirectories:     stats.TotalDirectories,
			TotalSizeBytes:       stats.TotalSize,
			TotalSizeMB:          round(float64(stats.TotalSize)/(1024*1024), 3),
			DiscoveryTimeSeconds: round(stats.ProcessingTime.Seconds(), 2),
			FilesPerSecond:       stats.FilesPerSecond,
			Batches:              stats.Batches,
			FailedBatches:        stats.FailedBatches,
			UnreadableFiles:      stats.UnreadableFiles,
			SkippedDirectories:   stats.SkippedDirectories,
		},
		Findings: FindingsSummary{
			TotalFindings:  len(stats.Findings),
			NotableSystems: len(stats.Notable),
			Top:            topFindings(stats.Findings, topN, opts.Obfuscate),
		},
		Classification: make(map[string]int, len(stats.Categories)),
		Risk:           make(map[string]int, len(stats.Risks)),
		Summary: Summary{
			ScanStatus:            StatusComplete,
			DataIntegrity:         IntegrityVerified,
			DomainContentDetected: len(stats.Findings) > 0 || len(stats.Notable) > 0,
		},
	}
	if !opts.Obfuscate {
		d.Metadata.SourceRoot = stats.Root
	}
	if stats.FailedBatches > 0 {
		d.Summary.ScanStatus = StatusPartial
		d.Summary.DataIntegrity = IntegrityPartial
	}

	for cat, n := range stats.Categories {
		c := string(cat)
		d.Classification[c] = n
		if strings.Contains(c, "deployment") {
			d.Notable.DeploymentSystems++
		}
		if strings.Contains(c, "web") {
			d.Notable.WebInterfaces++
		}
		if strings.Contains(c, "consciousness") {
			d.Notable.ConsciousnessArchives++
		}
	}
	for risk, n := range stats.Risks {
		d.Risk[string(risk)] = n
	}
	d.Notable.NotableSystems = notableIdentifiers(stats.NotablePaths(), opts.Obfuscate)

	return &Report{Discovery: d}
}

func topFindings(findings []scanner.Finding, n int, obfuscate bool) []TopFinding {
	if len(findings) < n {
		n = len(findings)
	}
	out := make([]TopFinding, n)
	for i, f := range findings[:n] {
		id := filepath.ToSlash(f.Path)
		if obfuscate {
			id = fmt.Sprintf("Item_%03d", i+1)
		}
		out[i] = TopFinding{
			Identifier:       id,
			Score:            f.Score,
			Category:         string(f.Category),
			Risk:             string(f.Risk),
			SizeKB:           round(float64(f.Size)/1024, 2),
			PatternsDetected: len(f.Patterns),
		}
	}
	return out
}

func notableIdentifiers(paths []string, obfuscate bool) []string {
	n := min(len(paths), notableListed)
	out := make([]string, n)
	for i := range out {
		if obfuscate {
			out[i] = fmt.Sprintf("System_%03d", i+1)
		} else {
			out[i] = filepath.ToSlash(paths[i])
		}
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
