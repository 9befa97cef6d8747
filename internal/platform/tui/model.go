package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/coin-snake/internal/app"
	"github.com/vovakirdan/coin-snake/internal/bridge"
	"github.com/vovakirdan/coin-snake/internal/core"
	"github.com/vovakirdan/coin-snake/internal/games/snake"
	"github.com/vovakirdan/coin-snake/internal/render"
)

// Rows taken by the header, the tab bar and the help line.
const chromeHeight = 3

// Maximum popups waiting behind the visible one.
const maxModals = 8

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// eventMsg wraps an app event.
type eventMsg struct {
	event app.Event
}

// noticeMsg signals that popups or alerts are waiting on the recorder.
type noticeMsg struct{}

// waitForEvent returns a command that waits for the next app event.
func waitForEvent(a *app.App) tea.Cmd {
	return func() tea.Msg {
		select {
		case evt, ok := <-a.Events():
			if !ok {
				return nil
			}
			return eventMsg{event: evt}
		case <-a.Done():
			return nil
		}
	}
}

// waitForNotice returns a command that waits for the next popup.
func waitForNotice(notify <-chan struct{}, done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-notify:
			return noticeMsg{}
		case <-done:
			return nil
		}
	}
}

// Model is the Bubble Tea model of one user's session.
type Model struct {
	session *Session
	history HistorySource
	keys    KeyMap
	mapper  *KeyMapper
	help    help.Model
	screen  *core.Screen

	width, height int
	page          app.Page
	balance       int64
	snap          snake.Snapshot
	modals        []bridge.Notice
	form          walletForm
	quitting      bool
}

// NewModel creates the model for a started session.
func NewModel(s *Session, history HistorySource, width, height int) Model {
	h := help.New()
	h.Width = width

	m := Model{
		session: s,
		history: history,
		keys:    DefaultKeyMap(),
		mapper:  NewKeyMapper(),
		help:    h,
		screen:  core.NewScreen(width, max(height-chromeHeight, 1)),
		width:   width,
		height:  height,
		page:    s.App.Page(),
		balance: s.App.Balance(),
		snap:    s.App.Snapshot(),
		form:    newWalletForm(),
	}
	m.form.resize(width, height-chromeHeight)
	// Popups raised while the session started.
	m.modals = append(m.modals, s.Recorder.Drain()...)
	return m
}

// Init starts listening for events, popups and history refreshes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.session.App),
		waitForNotice(m.session.notify, m.session.App.Done()),
		loadHistory(m.history, m.userID()),
		refreshCmd(historyRefresh),
	)
}

func (m Model) userID() string {
	return m.session.App.Identity().UserID
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-chromeHeight, 1))
		m.help.Width = msg.Width
		m.form.resize(msg.Width, msg.Height-chromeHeight)
		return m, nil

	case eventMsg:
		return m.handleEvent(msg.event)

	case noticeMsg:
		m.modals = append(m.modals, m.session.Recorder.Drain()...)
		if len(m.modals) > maxModals {
			m.modals = m.modals[len(m.modals)-maxModals:]
		}
		return m, waitForNotice(m.session.notify, m.session.App.Done())

	case historyMsg:
		m.form.setHistory(msg)
		return m, nil

	case RefreshMsg:
		var cmd tea.Cmd
		if m.page == app.PageWallet {
			cmd = loadHistory(m.history, m.userID())
		}
		return m, tea.Batch(cmd, refreshCmd(historyRefresh))
	}

	return m, m.form.update(msg)
}

// handleEvent applies an app event.
func (m Model) handleEvent(evt app.Event) (tea.Model, tea.Cmd) {
	next := waitForEvent(m.session.App)

	switch e := evt.(type) {
	case app.RenderEvent:
		m.snap = e.Snapshot
	case app.BalanceEvent:
		m.balance = e.Balance
	case app.PageEvent:
		m.page = e.Page
		if e.Page == app.PageWallet {
			return m, tea.Batch(next, loadHistory(m.history, m.userID()))
		}
	case app.GameOverEvent:
		m.snap = m.session.App.Snapshot()
	case app.FormResetEvent:
		m.form.reset()
		return m, tea.Batch(next, loadHistory(m.history, m.userID()))
	}
	return m, next
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := m.session.App

	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	// An open popup takes every key until dismissed.
	if len(m.modals) > 0 {
		if key.Matches(msg, m.keys.Dismiss) {
			m.modals = m.modals[1:]
		}
		return m, nil
	}

	if m.page == app.PageWallet && m.form.typing() {
		switch {
		case key.Matches(msg, m.keys.NextField):
			return m, m.form.nextFocus()
		case key.Matches(msg, m.keys.Submit):
			return m, m.submit()
		case key.Matches(msg, m.keys.Back):
			m.form.blur()
			return m, nil
		}
		return m, m.form.update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Game):
		return m, m.playGame()
	case key.Matches(msg, m.keys.Ad):
		a.ShowAd()
		return m, nil
	case key.Matches(msg, m.keys.Wallet):
		a.SwitchPage(app.PageWallet)
		return m, nil
	case msg.String() == "ctrl+s":
		m.saveScreenshot()
		return m, nil
	}

	if m.page == app.PageWallet {
		switch {
		case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.Submit):
			return m, m.form.nextFocus()
		case key.Matches(msg, m.keys.Back):
			a.SwitchPage(app.PageGame)
		}
		return m, nil
	}

	action, _ := m.mapper.MapKey(msg)
	switch {
	case action == core.ActionRestart:
		if m.snap.Status == snake.StatusOver.String() {
			return m, m.playGame()
		}
	case action.IsDirectional():
		a.Input(action)
	}
	return m, nil
}

// playGame returns a command that starts a new game.
func (m Model) playGame() tea.Cmd {
	a := m.session.App
	return func() tea.Msg {
		// A full board is reported as a finished game.
		_ = a.PlayGame()
		return nil
	}
}

// submit returns a command that sends the withdrawal form. The outcome
// arrives as an alert.
func (m Model) submit() tea.Cmd {
	a := m.session.App
	payout, amount := m.form.values()
	return func() tea.Msg {
		_, _ = a.Withdraw(payout, amount)
		return nil
	}
}

// saveScreenshot saves the current board to a file.
func (m *Model) saveScreenshot() {
	m.snap.Render(m.screen)

	dir := filepath.Join(os.Getenv("HOME"), ".coinsnake", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("snake_%s.txt", timestamp))

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)

	f, err := os.Create(strings.TrimSuffix(path, ".txt") + ".png")
	if err != nil {
		return
	}
	defer f.Close()
	opts := render.DefaultOptions()
	opts.Background = "#FFFFFF"
	//nolint:errcheck // Best-effort save
	render.EncodePNG(f, render.Board(m.snap, opts))
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	bodyHeight := max(m.height-chromeHeight, 1)
	switch {
	case len(m.modals) > 0:
		modal := renderModal(m.modals[0], m.width)
		b.WriteString(lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, modal))
	case m.page == app.PageWallet:
		body := m.form.view(m.balance)
		b.WriteString(lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body))
	default:
		m.snap.Render(m.screen)
		b.WriteString(RenderScreen(m.screen))
	}

	b.WriteString("\n")
	m.keys.page = m.page
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderHeader() string {
	id := m.session.App.Identity()
	name := headerStyle.Render(id.DisplayName())
	coins := balanceStyle.Render(fmt.Sprintf("Coins: %s", humanize.Comma(m.balance)))
	return name + "  " + coins
}

func (m Model) renderTabs() string {
	tabs := []struct {
		label  string
		active bool
	}{
		{"1 Game", m.page == app.PageGame},
		{"2 Watch Ad", false},
		{"3 Wallet", m.page == app.PageWallet},
	}
	out := make([]string, len(tabs))
	for i, t := range tabs {
		if t.active {
			out[i] = activeTabStyle.Render(t.label)
		} else {
			out[i] = tabStyle.Render(t.label)
		}
	}
	return strings.Join(out, " ")
}

// Run starts a local session for the given user and blocks until the
// player quits.
func Run(f *app.Factory, history HistorySource, id bridge.Identity, width, height int) error {
	s, err := NewSession(f, id)
	if err != nil {
		return err
	}
	defer s.Close()

	p := tea.NewProgram(
		NewModel(s, history, width, height),
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err = p.Run()
	return err
}
