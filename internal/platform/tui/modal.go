package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/coin-snake/internal/bridge"
)

const modalMaxWidth = 48

var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("229")).
			Padding(1, 2)
	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229"))
	modalButtonStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57")).
				Padding(0, 2)
)

// buttonLabel returns the text shown on a popup button.
func buttonLabel(b bridge.Button) string {
	switch b.Type {
	case bridge.ButtonClose:
		return "Close"
	case bridge.ButtonCancel:
		return "Cancel"
	default:
		return "OK"
	}
}

// renderModal draws a popup or alert box no wider than width.
func renderModal(n bridge.Notice, width int) string {
	w := min(modalMaxWidth, width-4)
	if w < 10 {
		w = 10
	}
	text := lipgloss.NewStyle().Width(w - 6)

	var parts []string
	if n.Popup.Title != "" {
		parts = append(parts, modalTitleStyle.Render(n.Popup.Title), "")
	}
	parts = append(parts, text.Render(n.Popup.Message), "")

	buttons := n.Popup.Buttons
	if len(buttons) == 0 {
		buttons = []bridge.Button{{Type: bridge.ButtonOK}}
	}
	labels := make([]string, len(buttons))
	for i, b := range buttons {
		labels[i] = modalButtonStyle.Render(buttonLabel(b))
	}
	parts = append(parts, strings.Join(labels, " "))

	return modalStyle.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}
