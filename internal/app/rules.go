package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/lodescan/internal/output"
	"github.com/blackwell-systems/lodescan/internal/rules"
)

var rulesFlagFile string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the active classification and scoring rules",
	Long: `Rules prints the keyword sets, extension lists, content patterns and
bonuses in effect, after applying --rules (or rules_file from config).`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFlagFile, "rules", "", "YAML file overriding the built-in rules")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := cfg.RulesFile
	if cmd.Flags().Changed("rules") {
		path = rulesFlagFile
	}

	set, err := rules.Load(path)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	applyThreshold(&set, cfg)

	if flagJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	}
	renderRules(cmd.OutOrStdout(), set)
	return nil
}

func renderRules(w io.Writer, set rules.Set) {
	fmt.Fprintln(w, output.Section("Categories (first match wins)"))
	fmt.Fprintln(w)
	tbl := output.NewTable("Category", "Matches")
	for _, sub := range set.Domain.Subcategories {
		tbl.AddRow(string(sub.Category), fmt.Sprintf("path has %s and %q", anyOf(set.Domain.Keywords), sub.Keyword))
	}
	tbl.AddRow(string(set.Domain.Fallback), "path has "+anyOf(set.Domain.Keywords))
	for _, r := range set.PathRules {
		tbl.AddRow(string(r.Category), "path has "+anyOf(r.Keywords))
	}
	for _, r := range set.ExtensionRules {
		tbl.AddRow(string(r.Category), "extension "+strings.Join(r.Extensions, " "))
	}
	tbl.AddRow(string(rules.CategoryOther), "anything else")
	tbl.WriteTo(w)

	fmt.Fprintln(w, output.Section("Risk levels (first match wins)"))
	fmt.Fprintln(w)
	tbl = output.NewTable("Risk", "Matches")
	for _, r := range set.RiskRules {
		tbl.AddRow(output.RiskStyle(string(r.Risk)).Render(string(r.Risk)), "name has "+anyOf(r.Keywords))
	}
	tbl.AddRow(output.RiskStyle(string(rules.RiskLargeAsset)).Render(string(rules.RiskLargeAsset)), "larger than "+output.Bytes(set.LargeFileThreshold))
	tbl.AddRow(output.RiskStyle(string(rules.RiskLow)).Render(string(rules.RiskLow)), "anything else")
	tbl.WriteTo(w)

	fmt.Fprintln(w, output.Section("Content patterns"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.StyleMuted.Render(fmt.Sprintf(" Scored extensions: %s", strings.Join(set.TextExtensions, " "))))
	fmt.Fprintln(w)
	tbl = output.NewTable("Group", "Pattern", "Points").AlignRight(2)
	for _, g := range set.Patterns {
		for _, p := range g.Patterns {
			tbl.AddRow(g.Category, p, fmt.Sprintf("+%d", rules.PointsPerPattern))
		}
	}
	tbl.WriteTo(w)

	fmt.Fprintln(w, output.Section("Bonuses"))
	fmt.Fprintln(w)
	tbl = output.NewTable("Label", "Requires", "Points").AlignRight(2)
	for _, b := range set.Bonuses {
		var req []string
		if len(b.All) > 0 {
			req = append(req, "all of "+strings.Join(b.All, ", "))
		}
		if len(b.Any) > 0 {
			req = append(req, "any of "+strings.Join(b.Any, ", "))
		}
		tbl.AddRow(b.Label, strings.Join(req, "; "), fmt.Sprintf("+%d", b.Points))
	}
	tbl.WriteTo(w)
}

func anyOf(keywords []string) string {
	return strings.Join(keywords, "|")
}
