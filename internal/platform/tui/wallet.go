package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/coin-snake/internal/storage"
	"github.com/vovakirdan/coin-snake/internal/wallet"
)

const historyLimit = 20

// HistorySource lists a user's withdrawal requests.
type HistorySource interface {
	Withdrawals(ctx context.Context, filter storage.WithdrawalFilter) ([]wallet.Withdrawal, error)
}

// historyMsg carries a reloaded withdrawal history.
type historyMsg struct {
	rows []wallet.Withdrawal
	err  error
}

// loadHistory returns a command reading the user's latest withdrawals.
func loadHistory(src HistorySource, userID string) tea.Cmd {
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		rows, err := src.Withdrawals(ctx, storage.WithdrawalFilter{UserID: userID, Limit: historyLimit})
		return historyMsg{rows: rows, err: err}
	}
}

// Form field focus
const (
	focusNone = iota
	focusPayout
	focusAmount
)

var (
	balanceStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

// walletForm is the wallet page: balance, withdrawal form and history.
type walletForm struct {
	payout  textinput.Model
	amount  textinput.Model
	focus   int
	table   table.Model
	rows    []wallet.Withdrawal
	loadErr error
	width   int
	now     func() time.Time
}

func newWalletForm() walletForm {
	payout := textinput.New()
	payout.Placeholder = "Bkash number"
	payout.Prompt = "› "
	payout.CharLimit = 20
	payout.Width = 24

	amount := textinput.New()
	amount.Placeholder = "Amount"
	amount.Prompt = "› "
	amount.CharLimit = 12
	amount.Width = 24

	t := table.New(
		table.WithColumns(historyColumns(60)),
		table.WithHeight(6),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	return walletForm{payout: payout, amount: amount, table: t, width: 60, now: time.Now}
}

func historyColumns(width int) []table.Column {
	when := max(width-40, 12)
	return []table.Column{
		{Title: "Request", Width: 10},
		{Title: "Amount", Width: 10},
		{Title: "Status", Width: 10},
		{Title: "When", Width: when},
	}
}

// typing reports whether a text field has focus.
func (f *walletForm) typing() bool {
	return f.focus != focusNone
}

// nextFocus moves focus between the two fields.
func (f *walletForm) nextFocus() tea.Cmd {
	f.payout.Blur()
	f.amount.Blur()
	if f.focus == focusPayout {
		f.focus = focusAmount
		return f.amount.Focus()
	}
	f.focus = focusPayout
	return f.payout.Focus()
}

func (f *walletForm) blur() {
	f.focus = focusNone
	f.payout.Blur()
	f.amount.Blur()
}

// values returns the raw field contents.
func (f *walletForm) values() (payout, amount string) {
	return f.payout.Value(), f.amount.Value()
}

// reset clears both fields after a successful request.
func (f *walletForm) reset() {
	f.payout.Reset()
	f.amount.Reset()
	f.blur()
}

// update forwards a message to the focused field.
func (f *walletForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case focusPayout:
		f.payout, cmd = f.payout.Update(msg)
	case focusAmount:
		f.amount, cmd = f.amount.Update(msg)
	}
	return cmd
}

func (f *walletForm) resize(width, height int) {
	f.width = width
	f.table.SetColumns(historyColumns(width))
	f.table.SetWidth(width)
	f.table.SetHeight(max(height-10, 3))
}

func (f *walletForm) setHistory(msg historyMsg) {
	f.loadErr = msg.err
	if msg.err != nil {
		return
	}
	f.rows = msg.rows

	now := f.now()
	rows := make([]table.Row, len(msg.rows))
	for i, w := range msg.rows {
		id := w.ID
		if len(id) > 8 {
			id = id[len(id)-8:]
		}
		rows[i] = table.Row{
			id,
			humanize.Comma(w.Amount),
			string(w.Status),
			humanize.RelTime(w.CreatedAt(), now, "ago", "from now"),
		}
	}
	f.table.SetRows(rows)
}

func (f walletForm) view(balance int64) string {
	var b strings.Builder

	b.WriteString(labelStyle.Render("Your balance"))
	b.WriteString("\n")
	b.WriteString(balanceStyle.Render(humanize.Comma(balance) + " coins"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Withdraw to Bkash"))
	b.WriteString("\n")
	b.WriteString(f.payout.View())
	b.WriteString("\n")
	b.WriteString(f.amount.View())
	b.WriteString("\n\n")

	switch {
	case f.loadErr != nil:
		b.WriteString(labelStyle.Render(fmt.Sprintf("History unavailable: %v", f.loadErr)))
	case len(f.rows) == 0:
		b.WriteString(labelStyle.Render("No withdrawal requests yet"))
	default:
		b.WriteString(f.table.View())
	}
	return b.String()
}
