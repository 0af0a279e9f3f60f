package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// LockFileName is created in the output directory and held while writing.
const LockFileName = ".lodescan.lock"

// timestampLayout is the filename suffix format, e.g. 20260101_153000.
const timestampLayout = "20060102_150405"

// ErrNotReport is returned by LoadJSON for JSON that is not a discovery report.
var ErrNotReport = errors.New("not a discovery report")

// JSONFileName returns the report filename for a scan finished at t.
func JSONFileName(t time.Time) string {
	return "discovery_report_" + t.Format(timestampLayout) + ".json"
}

// DashboardFileName returns the dashboard filename for a render at t.
func DashboardFileName(t time.Time) string {
	return "dashboard_" + t.Format(timestampLayout) + ".html"
}

// WriteJSON writes r as indented JSON into dir, named after the report's
// discovery timestamp, and returns the file path.
func WriteJSON(dir string, r *Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, JSONFileName(r.Discovery.Metadata.DiscoveryTimestamp))
	if err := lockAndWrite(dir, path, data); err != nil {
		return "", err
	}
	return path, nil
}

// LoadJSON reads a report previously written by WriteJSON.
func LoadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", path, err)
	}
	if r.Discovery.Metadata.EngineVersion == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNotReport)
	}
	return &r, nil
}

// lockAndWrite creates dir if needed and replaces path with data while
// holding the directory's lock file.
func lockAndWrite(dir, path string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	lock := flock.New(filepath.Join(dir, LockFileName))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", dir, err)
	}
	defer lock.Unlock()

	return atomicWrite(path, data)
}

// atomicWrite writes data to a temp file beside path and renames it into
// place, so readers never see a partial file.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	tmp = nil
	return nil
}
