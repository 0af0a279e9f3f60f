package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/lodescan/internal/classify"
	"github.com/blackwell-systems/lodescan/internal/config"
	"github.com/blackwell-systems/lodescan/internal/logger"
	"github.com/blackwell-systems/lodescan/internal/output"
	"github.com/blackwell-systems/lodescan/internal/report"
	"github.com/blackwell-systems/lodescan/internal/rules"
	"github.com/blackwell-systems/lodescan/internal/scanner"
	"github.com/blackwell-systems/lodescan/internal/score"
)

var (
	scanFlagSource       string
	scanFlagOutput       string
	scanFlagThreads      int
	scanFlagObfuscate    bool
	scanFlagBatchTimeout time.Duration
	scanFlagNoDashboard  bool
	scanFlagRules        string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a directory tree and write a discovery report",
	Long: `Scan partitions the immediate subdirectories of --source into batches,
scans the batches concurrently, then writes discovery_report_<time>.json and
dashboard_<time>.html into the output directory.

The command fails only when the source root is missing or not a directory.
Unreadable files and directories are logged and skipped.`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFlagSource, "source", "", "Directory to scan (required)")
	scanCmd.Flags().StringVar(&scanFlagOutput, "output", "", "Output directory for reports (default from config: ./reports)")
	scanCmd.Flags().IntVar(&scanFlagThreads, "threads", scanner.DefaultThreads, "Number of concurrent batch workers")
	scanCmd.Flags().BoolVar(&scanFlagObfuscate, "obfuscate", false, "Replace file paths in the report with sequential labels")
	scanCmd.Flags().DurationVar(&scanFlagBatchTimeout, "batch-timeout", 0, "Abandon a batch after this long (0 = no limit)")
	scanCmd.Flags().BoolVar(&scanFlagNoDashboard, "no-dashboard", false, "Skip writing the HTML dashboard")
	scanCmd.Flags().StringVar(&scanFlagRules, "rules", "", "YAML file overriding the built-in rules")
	_ = scanCmd.MarkFlagRequired("source")

	rootCmd.AddCommand(scanCmd)
}

// scanOutcome is what a finished scan produced.
type scanOutcome struct {
	Stats         *scanner.GlobalStats
	Report        *report.Report
	ReportPath    string
	DashboardPath string
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyScanFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := executeScan(ctx, cfg, scanFlagSource, log)
	if err != nil {
		return err
	}

	if flagJSON {
		return renderScanJSON(cmd.OutOrStdout(), out)
	}
	renderScanSummary(cmd.OutOrStdout(), out)
	return nil
}

// applyScanFlags lets explicitly set flags override configured values.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir = scanFlagOutput
	}
	if flags.Changed("threads") {
		cfg.Threads = scanFlagThreads
	}
	if flags.Changed("obfuscate") {
		cfg.Obfuscate = scanFlagObfuscate
	}
	if flags.Changed("batch-timeout") {
		cfg.BatchTimeout = scanFlagBatchTimeout
	}
	if flags.Changed("no-dashboard") {
		cfg.Dashboard = !scanFlagNoDashboard
	}
	if flags.Changed("rules") {
		cfg.RulesFile = scanFlagRules
	}
}

// applyThreshold lets a non-default large_file_threshold from config replace
// the one in the rules.
func applyThreshold(set *rules.Set, cfg *config.Config) {
	if cfg.LargeFileThreshold != rules.DefaultLargeFileThreshold {
		set.LargeFileThreshold = cfg.LargeFileThreshold
	}
}

// executeScan runs the whole pipeline for source and writes the artifacts.
func executeScan(ctx context.Context, cfg *config.Config, source string, log logger.Logger) (*scanOutcome, error) {
	set, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	applyThreshold(&set, cfg)

	sc, err := score.New(set, score.WithMaxBytes(cfg.MaxReadBytes))
	if err != nil {
		return nil, fmt.Errorf("building scorer: %w", err)
	}
	co := scanner.NewCoordinator(set, classify.New(set), sc, scanner.Options{
		Threads:      cfg.Threads,
		BatchTimeout: cfg.BatchTimeout,
		Logger:       log,
	})

	stats, err := co.Run(ctx, source)
	if err != nil {
		if errors.Is(err, scanner.ErrRootNotFound) {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		return nil, err
	}

	rep := report.Build(stats, report.Options{
		Obfuscate: cfg.Obfuscate,
		Threads:   co.Threads(),
		TopN:      cfg.TopFindings,
		Version:   appVersion,
	})
	out := &scanOutcome{Stats: stats, Report: rep}

	out.ReportPath, err = report.WriteJSON(cfg.OutputDir, rep)
	if err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	log.Infof("Discovery report generated: %s", out.ReportPath)

	if cfg.Dashboard {
		out.DashboardPath, err = report.WriteDashboard(cfg.OutputDir, rep, rep.Discovery.Metadata.DiscoveryTimestamp)
		if err != nil {
			return nil, fmt.Errorf("writing dashboard: %w", err)
		}
		log.Infof("Dashboard generated: %s", out.DashboardPath)
	}
	return out, nil
}

// scanJSON is the --json form of the scan summary.
type scanJSON struct {
	ReportPath    string         `json:"report_path"`
	DashboardPath string         `json:"dashboard_path,omitempty"`
	Report        *report.Report `json:"report"`
}

func renderScanJSON(w io.Writer, out *scanOutcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(scanJSON{
		ReportPath:    out.ReportPath,
		DashboardPath: out.DashboardPath,
		Report:        out.Report,
	})
}

func renderScanSummary(w io.Writer, out *scanOutcome) {
	st := out.Stats
	perf := out.Report.Discovery.Performance

	fmt.Fprintln(w, output.Section("Discovery Summary"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.Metric("Files", output.Count(st.TotalFiles)))
	fmt.Fprintln(w, output.Metric("Directories", output.Count(st.TotalDirectories)))
	fmt.Fprintln(w, output.Metric("Data", output.Bytes(st.TotalSize)))
	fmt.Fprintln(w, output.Metric("Time", fmt.Sprintf("%.2fs", perf.DiscoveryTimeSeconds)))
	fmt.Fprintln(w, output.Metric("Speed", output.Count(st.FilesPerSecond)+" files/s"))
	fmt.Fprintln(w, output.Metric("Findings", len(st.Findings)))
	fmt.Fprintln(w, output.Metric("Notable systems", len(st.Notable)))
	if st.FailedBatches > 0 {
		fmt.Fprintln(w, output.StyleError.Render(fmt.Sprintf(" %d of %d batches failed; totals are partial", st.FailedBatches, st.Batches)))
	}

	if top := out.Report.Discovery.Findings.Top; len(top) > 0 {
		fmt.Fprintln(w, output.Section("Top Findings"))
		fmt.Fprintln(w)
		tbl := output.NewTable("Score", "Category", "Risk", "File").AlignRight(0)
		for _, f := range top {
			tbl.AddRow(output.ScoreBadge(f.Score), f.Category, output.RiskStyle(f.Risk).Render(f.Risk), f.Identifier)
		}
		tbl.WriteTo(w)
	}

	fmt.Fprintln(w, output.Section("Content Classification"))
	fmt.Fprintln(w)
	renderDistribution(w, output.SortTallies(st.Categories), int(st.TotalFiles), nil)

	fmt.Fprintln(w, output.Section("Risk Assessment"))
	fmt.Fprintln(w)
	renderDistribution(w, output.SortTallies(st.Risks), int(st.TotalFiles), output.RiskStyle)

	fmt.Fprintln(w)
	fmt.Fprintln(w, output.StyleMuted.Render(" Report:    "+out.ReportPath))
	if out.DashboardPath != "" {
		fmt.Fprintln(w, output.StyleMuted.Render(" Dashboard: "+out.DashboardPath))
	}
}

// renderDistribution prints one bar per tally, styling names with style
// when it is set.
func renderDistribution(w io.Writer, tallies []output.Tally, total int, style func(string) lipgloss.Style) {
	if len(tallies) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render(" No files."))
		return
	}
	tbl := output.NewTable("Name", "Files", "Share").AlignRight(1)
	for _, t := range tallies {
		name := t.Name
		if style != nil {
			name = style(t.Name).Render(t.Name)
		}
		tbl.AddRow(name, output.Count(int64(t.Count)), output.ShareBar(t.Count, total, 20))
	}
	tbl.WriteTo(w)
}
