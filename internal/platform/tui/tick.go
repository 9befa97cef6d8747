// Package tui provides the Bubble Tea front end of the app: the game and
// wallet pages, popups, the score viewer and the SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// historyRefresh is how often the wallet page reloads withdrawal statuses,
// which an operator may change at any time.
const historyRefresh = 5 * time.Second

// RefreshMsg is sent to trigger a reload of the withdrawal history.
type RefreshMsg time.Time

// refreshCmd returns a Bubble Tea command that sends a refresh message after d.
func refreshCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return RefreshMsg(t)
	})
}
