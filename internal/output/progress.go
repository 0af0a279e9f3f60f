package output

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// ShareBar renders the share of count in total as a bar followed by the
// percentage. Example: "██████░░░░  60.0%"
func ShareBar(count, total int, width int) string {
	if width <= 0 {
		width = 20
	}
	var share float64
	if total > 0 {
		share = float64(count) / float64(total)
	}
	filled := int(share * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s", StyleHeader.Render(bar), StyleMuted.Render(fmt.Sprintf("%5.1f%%", share*100)))
}

// ScoreBadge renders a finding score, brighter for stronger matches.
func ScoreBadge(score int) string {
	s := fmt.Sprintf("%d", score)
	switch {
	case score >= 50:
		return StyleError.Render(s)
	case score >= 20:
		return StyleAccent.Render(s)
	default:
		return StyleMuted.Render(s)
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// Metric renders one "label value" summary line.
func Metric(label string, value any) string {
	return fmt.Sprintf(" %s %s", StyleLabel.Render(label), StyleValue.Render(fmt.Sprint(value)))
}

// Bytes formats a byte count for humans, e.g. "1.5 MB".
func Bytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// Count formats an integer with thousands separators.
func Count(n int64) string {
	return humanize.Comma(n)
}

// Tally is one name/count pair of a distribution.
type Tally struct {
	Name  string
	Count int
}

// SortTallies orders counts descending, breaking ties by name.
func SortTallies[K ~string](m map[K]int) []Tally {
	out := make([]Tally, 0, len(m))
	for k, v := range m {
		out = append(out, Tally{Name: string(k), Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
