package output

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = "  "

// Table lays out rows under a header and a rule. Cells may carry lipgloss
// styling; widths are measured on what the terminal shows.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
	right   map[int]bool
}

func NewTable(headers ...string) *Table {
	t := &Table{
		headers: headers,
		widths:  make([]int, len(headers)),
		right:   make(map[int]bool),
	}
	for i, h := range headers {
		t.widths[i] = lipgloss.Width(h)
	}
	return t
}

// AlignRight right-aligns the given zero-based columns. Out of range
// indexes are ignored.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, c := range cols {
		if c >= 0 && c < len(t.headers) {
			t.right[c] = true
		}
	}
	return t
}

// AddRow appends a row. Missing cells render empty and cells beyond the
// header count are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	for i, c := range row {
		t.widths[i] = max(t.widths[i], lipgloss.Width(c))
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}
	var sb strings.Builder

	head := make([]string, len(t.headers))
	for i, h := range t.headers {
		head[i] = StyleHeader.Render(t.fit(i, h))
	}
	sb.WriteString(strings.Join(head, columnGap) + "\n")

	rule := make([]string, len(t.widths))
	for i, w := range t.widths {
		rule[i] = StyleMuted.Render(strings.Repeat("─", w))
	}
	sb.WriteString(strings.Join(rule, columnGap) + "\n")

	cells := make([]string, len(t.headers))
	for _, row := range t.rows {
		for i, c := range row {
			cells[i] = t.fit(i, c)
		}
		sb.WriteString(strings.TrimRight(strings.Join(cells, columnGap), " ") + "\n")
	}
	return sb.String()
}

func (t *Table) String() string {
	return t.Render()
}

// WriteTo writes the rendered table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, t.Render())
	return int64(n), err
}

// fit pads s to the width of column i on the side its alignment calls for.
func (t *Table) fit(i int, s string) string {
	gap := t.widths[i] - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if t.right[i] {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}
