package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/coin-snake/internal/storage"
	"github.com/vovakirdan/coin-snake/internal/wallet"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Inspect and adjust balances",
}

var walletBalanceCmd = &cobra.Command{
	Use:   "balance <user>",
	Short: "Show a user's coins",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		balance, err := store.Balance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s coins\n", args[0], humanize.Comma(balance))
		return nil
	},
}

var walletGrantCmd = &cobra.Command{
	Use:   "grant <user> <amount>",
	Short: "Add coins to a user (negative amounts take them away)",
	Long: `Adjust a balance by hand. The change is refused when it would take
the balance below zero.

Examples:
  coinsnake wallet grant 12345 500
  coinsnake wallet grant 12345 -- -200`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("amount must be an integer: %w", err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		balance, err := store.AddBalance(cmd.Context(), args[0], delta)
		if err != nil {
			return err
		}
		logger.Info("balance adjusted", "user", args[0], "delta", delta, "balance", balance)
		fmt.Printf("%s: %s coins\n", args[0], humanize.Comma(balance))
		return nil
	},
}

var (
	flagListUser   string
	flagListStatus string
	flagListLimit  int
)

var withdrawalsCmd = &cobra.Command{
	Use:   "withdrawals",
	Short: "Review withdrawal requests",
	Long: `List withdrawal requests and approve or reject pending ones.
Rejecting a request returns its coins to the user.

Examples:
  coinsnake withdrawals list --status pending
  coinsnake withdrawals approve <id>
  coinsnake withdrawals reject <id>`,
}

var withdrawalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List withdrawal requests, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status := wallet.WithdrawalStatus(flagListStatus)
		if status != "" && !status.Valid() {
			return fmt.Errorf("unknown status %q", flagListStatus)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rows, err := store.Withdrawals(cmd.Context(), storage.WithdrawalFilter{
			UserID: flagListUser,
			Status: status,
			Limit:  flagListLimit,
		})
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No withdrawal requests.")
			return nil
		}

		fmt.Println(withdrawalTable(rows))
		return nil
	},
}

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	statusStyles     = map[wallet.WithdrawalStatus]lipgloss.Style{
		wallet.StatusPending:  tableCellStyle.Foreground(lipgloss.Color("214")),
		wallet.StatusApproved: tableCellStyle.Foreground(lipgloss.Color("42")),
		wallet.StatusRejected: tableCellStyle.Foreground(lipgloss.Color("196")),
	}
)

// Column holding the status in withdrawalTable.
const statusColumn = 4

// withdrawalTable renders withdrawal requests as a bordered table.
func withdrawalTable(rows []wallet.Withdrawal) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "USER", "PAYOUT", "AMOUNT", "STATUS", "CREATED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			if col == statusColumn && row >= 0 && row < len(rows) {
				if style, ok := statusStyles[rows[row].Status]; ok {
					return style
				}
			}
			return tableCellStyle
		})
	for _, w := range rows {
		t.Row(w.ID, w.UserID, w.PayoutNumber, humanize.Comma(w.Amount), string(w.Status),
			w.CreatedAt().Format(time.DateTime))
	}
	return t.String()
}

func init() {
	walletCmd.AddCommand(walletBalanceCmd, walletGrantCmd)

	withdrawalsListCmd.Flags().StringVar(&flagListUser, "user", "", "Only this user's requests")
	withdrawalsListCmd.Flags().StringVar(&flagListStatus, "status", "", "pending, approved or rejected")
	withdrawalsListCmd.Flags().IntVar(&flagListLimit, "limit", 50, "Maximum rows")

	withdrawalsCmd.AddCommand(
		withdrawalsListCmd,
		reviewCmd("approve", wallet.StatusApproved),
		reviewCmd("reject", wallet.StatusRejected),
	)
}

// reviewCmd builds the command that moves a pending request to status.
func reviewCmd(verb string, status wallet.WithdrawalStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: fmt.Sprintf("Mark a pending request %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			w, err := store.SetWithdrawalStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			logger.Info("withdrawal reviewed", "id", w.ID, "user", w.UserID, "status", w.Status, "amount", w.Amount)
			fmt.Printf("%s %s (%s coins to %s)\n", w.ID, w.Status, humanize.Comma(w.Amount), w.PayoutNumber)
			return nil
		},
	}
}
