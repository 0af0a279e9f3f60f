package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/lodescan/internal/config"
	"github.com/blackwell-systems/lodescan/internal/output"
	"github.com/blackwell-systems/lodescan/internal/report"
	"github.com/blackwell-systems/lodescan/internal/rules"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [SOURCE]",
	Short: "Check whether the lodescan setup is healthy",
	Long: `Run a series of health checks against your lodescan configuration:
config file, rules, output directory and worker count. When SOURCE is given
it is checked as a scan root too. Prints a pass/fail line for each check and
a summary of how many checks passed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checks := []doctorCheck{
		checkConfigFile(flagConfig),
		checkRules(cfg.RulesFile),
		checkOutputDir(cfg.OutputDir),
		checkThreads(cfg.Threads),
	}
	if len(args) == 1 {
		checks = append(checks, checkSource(args[0]))
	}

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	fmt.Fprintln(w, output.Section("Doctor"))
	fmt.Fprintln(w)
	for _, c := range checks {
		renderDoctorCheck(w, c)
	}

	fmt.Fprintln(w)
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Fprintf(w, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Fprintf(w, " %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(w io.Writer, c doctorCheck) {
	indicator := output.StyleSuccess.Render("✓")
	if !c.Passed {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Fprintf(w, "  %s  %-30s %s\n", indicator, label, detail)
}

// checkConfigFile reports which config file is in use. Running on defaults
// is a pass; a named file that does not exist is not.
func checkConfigFile(explicit string) doctorCheck {
	path := explicit
	if path == "" {
		path = filepath.Join(config.ConfigDir(), config.DefaultConfigFile)
	}
	if _, err := os.Stat(path); err != nil {
		if explicit != "" {
			return doctorCheck{Name: "Config file", Message: fmt.Sprintf("not found: %s", path)}
		}
		return doctorCheck{Name: "Config file", Passed: true, Message: "using defaults"}
	}
	return doctorCheck{Name: "Config file", Passed: true, Message: path}
}

// checkRules loads and validates the active rules.
func checkRules(path string) doctorCheck {
	set, err := rules.Load(path)
	if err != nil {
		return doctorCheck{Name: "Rules", Message: err.Error()}
	}
	patterns := 0
	for _, g := range set.Patterns {
		patterns += len(g.Patterns)
	}
	source := "built-in"
	if path != "" {
		source = path
	}
	return doctorCheck{
		Name:    "Rules",
		Passed:  true,
		Message: fmt.Sprintf("%s: %d patterns in %d groups, %d bonuses", source, patterns, len(set.Patterns), len(set.Bonuses)),
	}
}

// checkOutputDir verifies the output directory can be created and its lock
// taken right now.
func checkOutputDir(dir string) doctorCheck {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return doctorCheck{Name: "Output directory", Message: fmt.Sprintf("cannot create %s: %v", dir, err)}
	}
	lock := flock.New(filepath.Join(dir, report.LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return doctorCheck{Name: "Output directory", Message: fmt.Sprintf("cannot lock %s: %v", dir, err)}
	}
	if !ok {
		return doctorCheck{Name: "Output directory", Message: fmt.Sprintf("%s is locked by another scan", dir)}
	}
	defer lock.Unlock()
	return doctorCheck{Name: "Output directory", Passed: true, Message: dir}
}

// checkThreads flags worker counts far above the machine's CPU count.
func checkThreads(threads int) doctorCheck {
	cpus := runtime.NumCPU()
	msg := fmt.Sprintf("%d workers on %d CPUs", threads, cpus)
	if threads > 4*cpus {
		return doctorCheck{Name: "Worker threads", Message: msg + " (more than 4x CPUs)"}
	}
	return doctorCheck{Name: "Worker threads", Passed: true, Message: msg}
}

// checkSource verifies that root exists and is a listable directory.
func checkSource(root string) doctorCheck {
	info, err := os.Stat(root)
	if err != nil {
		return doctorCheck{Name: "Scan source", Message: fmt.Sprintf("not found: %s", root)}
	}
	if !info.IsDir() {
		return doctorCheck{Name: "Scan source", Message: fmt.Sprintf("path exists but is not a directory: %s", root)}
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return doctorCheck{Name: "Scan source", Message: fmt.Sprintf("cannot list %s: %v", root, err)}
	}
	return doctorCheck{Name: "Scan source", Passed: true, Message: fmt.Sprintf("%s (%d entries)", root, len(entries))}
}
