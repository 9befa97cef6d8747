package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/coin-snake/internal/core"
)

// kindStyles maps cell kinds to lipgloss styles. Blank and text cells
// are left unstyled.
var kindStyles = map[core.Kind]lipgloss.Style{
	core.KindHint:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	core.KindBorder: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	core.KindHead:   lipgloss.NewStyle().Foreground(lipgloss.Color("#34C759")).Bold(true),
	core.KindBody:   lipgloss.NewStyle().Foreground(lipgloss.Color("#A4E8AF")),
	core.KindFood:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF3B30")).Bold(true),
}

// RenderScreen converts a Screen buffer to a styled string for display,
// one style per run of equal cells to keep ANSI sequences short.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for _, run := range s.Runs(y) {
			if style, ok := kindStyles[run.Kind]; ok {
				sb.WriteString(style.Render(run.Text))
				continue
			}
			sb.WriteString(run.Text)
		}
	}
	return sb.String()
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	textWidth := lipgloss.Width(text)
	if textWidth >= width {
		return text
	}
	padding := (width - textWidth) / 2
	return strings.Repeat(" ", padding) + text
}
