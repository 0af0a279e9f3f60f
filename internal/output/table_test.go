package output

import (
	"bytes"
	"strings"
	"testing"
)

func plainLines(t *testing.T, tbl *Table) []string {
	t.Helper()
	return strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

func TestTable_HeaderRuleAndRows(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Category", "Files")
	tbl.AddRow("documentation", "95")
	tbl.AddRow("source_code", "87")

	lines := plainLines(t, tbl)
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want header, rule and 2 rows:\n%s", len(lines), tbl.Render())
	}
	if lines[0] != "Category       Files" {
		t.Errorf("header = %q", lines[0])
	}
	if want := strings.Repeat("─", 13) + "  " + strings.Repeat("─", 5); lines[1] != want {
		t.Errorf("rule = %q, want %q", lines[1], want)
	}
	if lines[2] != "documentation  95" {
		t.Errorf("row = %q", lines[2])
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestTable_NoHeadersRendersNothing(t *testing.T) {
	tbl := NewTable()
	tbl.AddRow("ignored")
	if got := tbl.Render(); got != "" {
		t.Errorf("Render() = %q, want empty", got)
	}
}

func TestTable_RaggedRows(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Name", "Files", "Share")
	tbl.AddRow("short")
	tbl.AddRow("a", "1", "50%", "dropped")

	lines := plainLines(t, tbl)
	if lines[2] != "short" {
		t.Errorf("short row = %q, want missing cells trimmed", lines[2])
	}
	if strings.Contains(tbl.Render(), "dropped") {
		t.Error("cell beyond header count was rendered")
	}
}

func TestTable_AlignRight(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	tbl := NewTable("Name", "Files").AlignRight(1, 7, -1)
	tbl.AddRow("documentation", "1,204")
	tbl.AddRow("source_code", "9")

	lines := plainLines(t, tbl)
	if lines[0] != "Name           Files" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[2] != "documentation  1,204" {
		t.Errorf("row = %q", lines[2])
	}
	if lines[3] != "source_code        9" {
		t.Errorf("row = %q", lines[3])
	}
}

func TestTable_StyledCellsMeasuredByVisibleWidth(t *testing.T) {
	tbl := NewTable("Score", "Path")
	tbl.AddRow("\x1b[31m60\x1b[0m", "a.md")
	tbl.AddRow("10", "b.md")

	lines := plainLines(t, tbl)
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	a := strings.Index(lines[2], "a.md") - len("\x1b[31m\x1b[0m")
	b := strings.Index(lines[3], "b.md")
	if a != b {
		t.Errorf("path column misaligned: %d vs %d", a, b)
	}
}

func TestTable_WriteTo(t *testing.T) {
	tbl := NewTable("Risk")
	tbl.AddRow("low_risk")

	var buf bytes.Buffer
	n, err := tbl.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if buf.String() != tbl.String() {
		t.Errorf("WriteTo wrote %q, want %q", buf.String(), tbl.String())
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo returned %d, wrote %d bytes", n, buf.Len())
	}
}

// ---------------------------------------------------------------------------
// Styles
// ---------------------------------------------------------------------------

func TestSetNoColor_Toggles(t *testing.T) {
	SetNoColor(true)
	if !IsNoColor() {
		t.Error("IsNoColor() = false after SetNoColor(true)")
	}
	if got := StyleHeader.Render("x"); got != "x" {
		t.Errorf("plain header rendered %q", got)
	}
	if StyleHeader.GetBold() {
		t.Error("plain header is still bold")
	}

	SetNoColor(false)
	if IsNoColor() {
		t.Error("IsNoColor() = true after SetNoColor(false)")
	}
	if !StyleHeader.GetBold() {
		t.Error("header style not restored")
	}
	if StyleError.GetForeground() != ColorError {
		t.Errorf("error foreground = %v, want %v", StyleError.GetForeground(), ColorError)
	}
}
