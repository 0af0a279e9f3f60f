package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"

	"github.com/blackwell-systems/lodescan/internal/output"
)

//go:embed dashboard.html.tmpl
var dashboardSource string

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(template.FuncMap{
	"comma": func(n int64) string { return humanize.Comma(n) },
	"add1":  func(i int) int { return i + 1 },
}).Parse(dashboardSource))

var markdown = goldmark.New()

type dashboardData struct {
	GeneratedAt    string
	ScanID         string
	SourceRoot     string
	Obfuscated     bool
	Performance    Performance
	TotalFindings  int
	NotableSystems int
	Highlights     template.HTML
	Top            []TopFinding
	Classification []output.Tally
	Risk           []output.Tally
}

// RenderDashboard renders r as a standalone HTML page stamped with at.
func RenderDashboard(r *Report, at time.Time) ([]byte, error) {
	d := r.Discovery
	highlights, err := renderHighlights(d)
	if err != nil {
		return nil, err
	}

	data := dashboardData{
		GeneratedAt:    at.Format("2006-01-02 15:04:05"),
		ScanID:         d.Metadata.ScanID,
		SourceRoot:     d.Metadata.SourceRoot,
		Obfuscated:     d.Metadata.ObfuscationEnabled,
		Performance:    d.Performance,
		TotalFindings:  d.Findings.TotalFindings,
		NotableSystems: d.Findings.NotableSystems,
		Highlights:     highlights,
		Top:            d.Findings.Top,
		Classification: output.SortTallies(d.Classification),
		Risk:           output.SortTallies(d.Risk),
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering dashboard: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDashboard renders r and writes it into dir as dashboard_<at>.html.
func WriteDashboard(dir string, r *Report, at time.Time) (string, error) {
	page, err := RenderDashboard(r, at)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, DashboardFileName(at))
	if err := lockAndWrite(dir, path, page); err != nil {
		return "", err
	}
	return path, nil
}

// renderHighlights builds the highlights list as markdown and converts it.
// Only numbers and fixed text go into the markdown; goldmark escapes the
// rest and drops raw HTML.
func renderHighlights(d Discovery) (template.HTML, error) {
	p := d.Performance
	protection := "disabled, file paths are included"
	if d.Metadata.ObfuscationEnabled {
		protection = "enabled, file paths are replaced by labels"
	}

	var md bytes.Buffer
	fmt.Fprintf(&md, "- **Throughput:** %s files per second\n", humanize.Comma(p.FilesPerSecond))
	fmt.Fprintf(&md, "- **Findings:** %d files with matching content, %d notable systems\n",
		d.Findings.TotalFindings, d.Findings.NotableSystems)
	fmt.Fprintf(&md, "- **Scale:** %s files in %.2f seconds (%.3f MB)\n",
		humanize.Comma(p.TotalFiles), p.DiscoveryTimeSeconds, p.TotalSizeMB)
	fmt.Fprintf(&md, "- **Batches:** %d processed, %d failed\n", p.Batches, p.FailedBatches)
	fmt.Fprintf(&md, "- **Obfuscation:** %s\n", protection)

	var html bytes.Buffer
	if err := markdown.Convert(md.Bytes(), &html); err != nil {
		return "", fmt.Errorf("rendering highlights: %w", err)
	}
	return template.HTML(html.String()), nil
}
