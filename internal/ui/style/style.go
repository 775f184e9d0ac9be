// Package style provides shared styling primitives for terminal output.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
)

// Accent renders s bold in the accent color.
func Accent(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(Iris).Render(s)
}

// Muted renders s in the secondary text color.
func Muted(s string) string {
	return lipgloss.NewStyle().Foreground(Slate).Render(s)
}
