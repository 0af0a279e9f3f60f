package app

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/lodescan/internal/report"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard REPORT.json [OUTPUT_DIR]",
	Short: "Regenerate the HTML dashboard from a discovery report",
	Long: `Dashboard reads a discovery_report_*.json written by 'lodescan scan' and
renders a fresh dashboard_<time>.html. OUTPUT_DIR defaults to the directory
holding the report.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	rep, err := report.LoadJSON(args[0])
	if err != nil {
		return err
	}

	dir := filepath.Dir(args[0])
	if len(args) > 1 {
		dir = args[1]
	}

	path, err := report.WriteDashboard(dir, rep, time.Now())
	if err != nil {
		return fmt.Errorf("writing dashboard: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
