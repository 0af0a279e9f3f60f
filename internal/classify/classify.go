// Package classify maps files to a category and risk level using path and
// name keyword heuristics.
package classify

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/lodescan/internal/rules"
)

// FileRecord describes one file found during traversal.
type FileRecord struct {
	// Path is the filesystem path as walked.
	Path string

	// Rel is Path relative to the scan root, slash-separated. Keyword
	// matching uses Rel so results do not depend on where the root lives.
	Rel string

	// Name is the base name of the file.
	Name string

	// Ext is the lowercase extension including the dot, or "".
	Ext string

	// Size is the file size in bytes.
	Size int64

	// Parents are the directory components of Rel, outermost first.
	Parents []string
}

// NewFileRecord builds a FileRecord from a walked path, its root-relative
// form and its size.
func NewFileRecord(p, rel string, size int64) FileRecord {
	rel = filepath.ToSlash(rel)
	if rel == "" || rel == "." {
		rel = filepath.ToSlash(p)
	}
	name := path.Base(rel)

	var parents []string
	if dir := path.Dir(rel); dir != "." && dir != "/" {
		parents = strings.Split(strings.TrimPrefix(dir, "/"), "/")
	}

	return FileRecord{
		Path:    p,
		Rel:     rel,
		Name:    name,
		Ext:     strings.ToLower(path.Ext(name)),
		Size:    size,
		Parents: parents,
	}
}

// Classification is the category and risk assigned to a file.
type Classification struct {
	Category rules.Category `json:"category"`
	Risk     rules.Risk     `json:"risk"`
}

// Unclassifiable is returned for files whose metadata cannot be read.
var Unclassifiable = Classification{Category: rules.CategoryError, Risk: rules.RiskUnknown}

// Classifier applies a rule set. It holds no state besides the rules, so a
// single Classifier is safe for concurrent use.
type Classifier struct {
	rules   rules.Set
	extCats map[string]rules.Category
}

// New returns a Classifier for the given rules.
func New(set rules.Set) *Classifier {
	extCats := make(map[string]rules.Category)
	for _, r := range set.ExtensionRules {
		for _, ext := range r.Extensions {
			// First rule listing an extension wins.
			if _, ok := extCats[ext]; !ok {
				extCats[ext] = r.Category
			}
		}
	}
	return &Classifier{rules: set, extCats: extCats}
}

// Classify returns the category and risk for rec. It is a pure function of
// rec and the rules.
func (c *Classifier) Classify(rec FileRecord) Classification {
	return Classification{
		Category: c.category(strings.ToLower(rec.Rel), rec.Ext),
		Risk:     c.risk(strings.ToLower(rec.Name), rec.Size),
	}
}

// ClassifyFile stats the file at p and classifies it. When the file cannot
// be stat'ed the record has size 0 and the classification is Unclassifiable.
func (c *Classifier) ClassifyFile(p, rel string) (FileRecord, Classification) {
	info, err := os.Stat(p)
	if err != nil {
		return NewFileRecord(p, rel, 0), Unclassifiable
	}
	rec := NewFileRecord(p, rel, info.Size())
	return rec, c.Classify(rec)
}

func (c *Classifier) category(lowerPath, ext string) rules.Category {
	d := c.rules.Domain
	if containsAny(lowerPath, d.Keywords) {
		for _, sub := range d.Subcategories {
			if strings.Contains(lowerPath, sub.Keyword) {
				return sub.Category
			}
		}
		return d.Fallback
	}

	for _, r := range c.rules.PathRules {
		if containsAny(lowerPath, r.Keywords) {
			return r.Category
		}
	}

	if cat, ok := c.extCats[ext]; ok {
		return cat
	}
	return rules.CategoryOther
}

func (c *Classifier) risk(lowerName string, size int64) rules.Risk {
	for _, r := range c.rules.RiskRules {
		if containsAny(lowerName, r.Keywords) {
			return r.Risk
		}
	}
	if c.rules.LargeFileThreshold > 0 && size > c.rules.LargeFileThreshold {
		return rules.RiskLargeAsset
	}
	return rules.RiskLow
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}
