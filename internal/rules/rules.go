// Package rules holds the static keyword sets and content patterns that drive
// file classification and content scoring.
package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is a classification tag such as "source_code".
type Category string

// Risk is a risk-level tag such as "high_risk".
type Risk string

// Set is the complete rule configuration. A Set is built once, validated and
// then handed by value to the classifier and scorer; nothing mutates it after
// construction.
type Set struct {
	Domain             DomainRule      `yaml:"domain"`
	PathRules          []PathRule      `yaml:"path_rules"`
	ExtensionRules     []ExtensionRule `yaml:"extension_rules"`
	RiskRules          []RiskRule      `yaml:"risk_rules"`
	LargeFileThreshold int64           `yaml:"large_file_threshold"`
	NotableCategories  []Category      `yaml:"notable_categories"`
	TextExtensions     []string        `yaml:"text_extensions"`
	Patterns           []PatternGroup  `yaml:"patterns"`
	Bonuses            []Bonus         `yaml:"bonuses"`
}

// DomainRule selects the flagship categories. A path containing any keyword
// is assigned the first matching subcategory, or Fallback.
type DomainRule struct {
	Keywords      []string          `yaml:"keywords"`
	Subcategories []KeywordCategory `yaml:"subcategories"`
	Fallback      Category          `yaml:"fallback"`
}

// KeywordCategory maps a single path keyword to a category.
type KeywordCategory struct {
	Keyword  string   `yaml:"keyword"`
	Category Category `yaml:"category"`
}

// PathRule assigns Category when the path contains any of Keywords.
type PathRule struct {
	Keywords []string `yaml:"keywords"`
	Category Category `yaml:"category"`
}

// ExtensionRule assigns Category to files with one of Extensions.
type ExtensionRule struct {
	Extensions []string `yaml:"extensions"`
	Category   Category `yaml:"category"`
}

// RiskRule assigns Risk when the file name contains any of Keywords.
type RiskRule struct {
	Keywords []string `yaml:"keywords"`
	Risk     Risk     `yaml:"risk"`
}

// PatternGroup is a labelled list of regular expressions matched against
// lowercased file content.
type PatternGroup struct {
	Category string   `yaml:"category"`
	Patterns []string `yaml:"patterns"`
}

// Bonus adds Points when every term in All and at least one term in Any
// (if Any is non-empty) occur in the content.
type Bonus struct {
	Label  string   `yaml:"label"`
	Points int      `yaml:"points"`
	All    []string `yaml:"all"`
	Any    []string `yaml:"any,omitempty"`
}

// Load returns the default rules with any sections present in the YAML file
// at path replacing their defaults. An empty path returns Default().
func Load(path string) (Set, error) {
	set := Default()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("reading rules file: %w", err)
	}
	if err := yaml.Unmarshal(data, &set); err != nil {
		return Set{}, fmt.Errorf("parsing rules file %s: %w", path, err)
	}

	set.normalize()
	if err := set.Validate(); err != nil {
		return Set{}, fmt.Errorf("rules file %s: %w", path, err)
	}
	return set, nil
}

// Validate checks that every pattern compiles and every rule is usable.
func (s Set) Validate() error {
	for _, g := range s.Patterns {
		if g.Category == "" {
			return fmt.Errorf("pattern group with empty category")
		}
		for _, p := range g.Patterns {
			if _, err := regexp.Compile(p); err != nil {
				return fmt.Errorf("pattern %s:%s: %w", g.Category, p, err)
			}
		}
	}
	for _, b := range s.Bonuses {
		if b.Label == "" || len(b.All) == 0 {
			return fmt.Errorf("bonus %q needs a label and at least one required term", b.Label)
		}
		if b.Points < 0 {
			return fmt.Errorf("bonus %q has negative points", b.Label)
		}
	}
	if s.LargeFileThreshold < 0 {
		return fmt.Errorf("large_file_threshold must not be negative")
	}
	return nil
}

// IsNotable reports whether files in category are tracked as notable systems.
func (s Set) IsNotable(category Category) bool {
	for _, c := range s.NotableCategories {
		if c == category {
			return true
		}
	}
	return false
}

// normalize lowercases keywords and extensions so matching can assume
// lowercase input.
func (s *Set) normalize() {
	lowerAll(s.Domain.Keywords)
	for i := range s.Domain.Subcategories {
		s.Domain.Subcategories[i].Keyword = strings.ToLower(s.Domain.Subcategories[i].Keyword)
	}
	for i := range s.PathRules {
		lowerAll(s.PathRules[i].Keywords)
	}
	for i := range s.ExtensionRules {
		normalizeExtensions(s.ExtensionRules[i].Extensions)
	}
	for i := range s.RiskRules {
		lowerAll(s.RiskRules[i].Keywords)
	}
	normalizeExtensions(s.TextExtensions)
	for i := range s.Bonuses {
		lowerAll(s.Bonuses[i].All)
		lowerAll(s.Bonuses[i].Any)
	}
}

func lowerAll(values []string) {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
}

func normalizeExtensions(exts []string) {
	for i, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[i] = e
	}
}
