package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/coin-snake/internal/storage"
)

// Scoreboard layout constants
const (
	tableMinWidth = 40  // Minimum table width
	maxScores     = 100 // Max scores to load
)

// ScoreSource reads finished games.
type ScoreSource interface {
	TopScores(ctx context.Context, limit int) ([]storage.ScoreEntry, error)
	UserScores(ctx context.Context, userID string, limit int) ([]storage.ScoreEntry, error)
	GetUserStats(ctx context.Context, userID string) (*storage.UserStats, error)
}

// scoreView is one tab of the scoreboard.
type scoreView int

const (
	viewTop scoreView = iota
	viewMine
)

func (v scoreView) String() string {
	if v == viewMine {
		return "My Games"
	}
	return "Top Players"
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	NextTab key.Binding
	Quit    key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.NextTab, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.NextTab, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "left", "right", "h", "l"),
			key.WithHelp("tab", "switch view"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// scoresMsg carries loaded scores for one view.
type scoresMsg struct {
	view   scoreView
	scores []storage.ScoreEntry
	stats  *storage.UserStats
	err    error
}

// ScoreboardModel is the Bubble Tea model for the scoreboard screen.
type ScoreboardModel struct {
	source   ScoreSource
	userID   string
	view     scoreView
	scores   []storage.ScoreEntry
	stats    *storage.UserStats
	loadErr  error
	table    table.Model
	help     help.Model
	keys     ScoreboardKeyMap
	width    int
	height   int
	quitting bool
}

// NewScoreboardModel creates a new scoreboard model. An empty userID
// hides the personal view.
func NewScoreboardModel(source ScoreSource, userID string, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		source: source,
		userID: userID,
		keys:   DefaultScoreboardKeyMap(),
		help:   h,
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	return m
}

// createTable creates a new table with columns for the current view.
func (m *ScoreboardModel) createTable() table.Model {
	tableWidth := max(m.width-4, tableMinWidth)

	var columns []table.Column
	if m.view == viewTop {
		columns = []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Player", Width: max(tableWidth-40, 12)},
			{Title: "Score", Width: 10},
			{Title: "Date", Width: 18},
		}
	} else {
		columns = []table.Column{
			{Title: "#", Width: 6},
			{Title: "Score", Width: 10},
			{Title: "Played", Width: max(tableWidth-22, 14)},
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)), // Leave room for header, stats and help
	)

	// Table styles
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// loadScores returns a command loading the scores of a view.
func (m ScoreboardModel) loadScores(view scoreView) tea.Cmd {
	src, userID := m.source, m.userID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		msg := scoresMsg{view: view}
		if view == viewTop {
			msg.scores, msg.err = src.TopScores(ctx, maxScores)
			return msg
		}
		msg.scores, msg.err = src.UserScores(ctx, userID, maxScores)
		if msg.err == nil {
			msg.stats, msg.err = src.GetUserStats(ctx, userID)
		}
		return msg
	}
}

// updateTableRows updates the table with current scores.
func (m *ScoreboardModel) updateTableRows() {
	rows := make([]table.Row, len(m.scores))
	now := time.Now()
	for i, s := range m.scores {
		if m.view == viewTop {
			rows[i] = table.Row{
				fmt.Sprintf("#%d", i+1),
				s.UserID,
				humanize.Comma(int64(s.Score)),
				s.CreatedAt.Format("Jan 02 15:04"),
			}
			continue
		}
		rows[i] = table.Row{
			fmt.Sprintf("%d", i+1),
			humanize.Comma(int64(s.Score)),
			humanize.RelTime(s.CreatedAt, now, "ago", "from now"),
		}
	}
	m.table.SetRows(rows)

	// Reset cursor to top
	m.table.GotoTop()
}

// Init loads the first view.
func (m ScoreboardModel) Init() tea.Cmd {
	return m.loadScores(m.view)
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextTab):
			if m.userID == "" {
				return m, nil
			}
			m.view = 1 - m.view
			m.scores = nil
			m.stats = nil
			m.table = m.createTable()
			return m, m.loadScores(m.view)
		}

	case scoresMsg:
		if msg.view != m.view {
			return m, nil
		}
		m.loadErr = msg.err
		m.scores = msg.scores
		m.stats = msg.stats
		m.updateTableRows()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table for scrolling
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	// Title
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)

	title := fmt.Sprintf("HIGH SCORES - %s", m.view)
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.view == viewMine && m.stats != nil && m.stats.GamesCount > 0 {
		statsLine := fmt.Sprintf("Games: %d   Best: %d   Average: %.1f   Coins earned: %s",
			m.stats.GamesCount, m.stats.HighScore, m.stats.AvgScore, humanize.Comma(m.stats.TotalScore))
		b.WriteString(centerText(statsLine, m.width))
		b.WriteString("\n\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	// Help bar
	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderTableContent renders the table or empty message.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	if m.loadErr != nil {
		return emptyStyle.Render(fmt.Sprintf("Cannot load scores: %v", m.loadErr))
	}
	if len(m.scores) == 0 {
		return emptyStyle.Render("No scores recorded yet.\nPlay a game to set a high score!")
	}

	return m.table.View()
}

// RunScoreboard runs the scoreboard screen.
func RunScoreboard(source ScoreSource, userID string, width, height int) error {
	p := tea.NewProgram(
		NewScoreboardModel(source, userID, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
