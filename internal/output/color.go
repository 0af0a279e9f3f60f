// Package output renders lodescan's terminal views: styled text, bars and
// aligned tables.
package output

import "github.com/charmbracelet/lipgloss"

// Palette entries, one per role in the scan summary.
var (
	ColorPrimary = lipgloss.Color("#64b5f6")
	ColorSuccess = lipgloss.Color("#66bb6a") // low risk, passed checks
	ColorError   = lipgloss.Color("#ef5350") // high risk, failed batches
	ColorWarning = lipgloss.Color("#fff59d") // medium risk, large assets
	ColorAccent  = lipgloss.Color("#ffb74d") // domain content
	ColorMuted   = lipgloss.Color("#888888")
)

// labelWidth is the column the Metric values start at.
const labelWidth = 24

// Shared styles. SetNoColor swaps all of them at once.
var (
	StyleHeader  lipgloss.Style
	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleAccent  lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleBold    lipgloss.Style
	StyleLabel   lipgloss.Style
	StyleValue   lipgloss.Style
)

var noColor bool

func init() {
	applyStyles(false)
}

func applyStyles(plain bool) {
	fg := func(c lipgloss.Color) lipgloss.Style {
		if plain {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(c)
	}
	bold := lipgloss.NewStyle()
	if !plain {
		bold = bold.Bold(true)
	}

	StyleHeader = fg(ColorPrimary).Inherit(bold)
	StyleSuccess = fg(ColorSuccess)
	StyleError = fg(ColorError)
	StyleWarning = fg(ColorWarning)
	StyleAccent = fg(ColorAccent)
	StyleMuted = fg(ColorMuted)
	StyleBold = bold
	StyleLabel = lipgloss.NewStyle().Width(labelWidth)
	StyleValue = bold
}

// SetNoColor switches every shared style between the palette and plain
// text. It can be toggled back and forth.
func SetNoColor(disabled bool) {
	noColor = disabled
	applyStyles(disabled)
}

// IsNoColor reports whether plain styles are active.
func IsNoColor() bool {
	return noColor
}

// RiskStyle maps a risk level name to its style. Unknown levels are muted.
func RiskStyle(risk string) lipgloss.Style {
	switch risk {
	case "high_risk":
		return StyleError
	case "sacred_content":
		return StyleAccent
	case "medium_risk", "large_asset":
		return StyleWarning
	case "low_risk":
		return StyleSuccess
	default:
		return StyleMuted
	}
}
