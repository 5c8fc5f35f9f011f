package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, notes
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - resources
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func (c *CLI) printSuccess(format string, args ...any) {
	fmt.Fprintln(c.out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func (c *CLI) printWarning(format string, args ...any) {
	fmt.Fprintln(c.out, styleIconWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

func (c *CLI) printInfo(format string, args ...any) {
	fmt.Fprintln(c.out, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func (c *CLI) printDetail(format string, args ...any) {
	fmt.Fprintln(c.out, "  "+styleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written file.
func (c *CLI) printFile(path string) {
	fmt.Fprintln(c.out, "  "+styleDim.Render(iconArrow)+" "+styleValue.Render(path))
}

func (c *CLI) printKeyValue(key, value string) {
	fmt.Fprintln(c.out, styleKey.Render(key)+" "+styleValue.Render(value))
}

// printStats prints board counts on a single line. Zero counts are left
// out except for items.
func (c *CLI) printStats(items, connections, skipped int) {
	parts := []string{plural(items, "item")}
	if connections > 0 {
		parts = append(parts, plural(connections, "connection"))
	}
	if skipped > 0 {
		parts = append(parts, styleWarning.Render(fmt.Sprintf("%d skipped", skipped)))
	}
	fmt.Fprintln(c.out, "  "+strings.Join(parts, styleDim.Render(" · ")))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
