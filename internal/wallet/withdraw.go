package wallet

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Withdrawer validates withdrawal requests and commits them to the store.
type Withdrawer struct {
	Store  Store
	Rules  Rules
	Logger *log.Logger
	Now    func() time.Time
}

// NewWithdrawer creates a withdrawer with the given rules.
func NewWithdrawer(store Store, rules Rules, logger *log.Logger) *Withdrawer {
	if logger == nil {
		logger = log.Default()
	}
	return &Withdrawer{
		Store:  store,
		Rules:  rules,
		Logger: logger,
		Now:    time.Now,
	}
}

// Submit validates the raw form fields against the current balance, then
// records a pending withdrawal and debits its amount. On success the
// committed request is returned. Validation failures are *ValidationError
// and store failures are *StoreError. The payout number is stored trimmed,
// as it was validated.
func (w *Withdrawer) Submit(ctx context.Context, userID, payoutNumber, amountInput string) (Withdrawal, error) {
	payoutNumber = strings.TrimSpace(payoutNumber)
	if err := w.Rules.checkPayout(payoutNumber); err != nil {
		return Withdrawal{}, err
	}
	amount, err := ParseAmount(amountInput)
	if err != nil {
		return Withdrawal{}, err
	}
	if err := w.Rules.checkRequest(payoutNumber, amount); err != nil {
		return Withdrawal{}, err
	}

	balance, err := w.Store.Balance(ctx, userID)
	if err != nil {
		return Withdrawal{}, &StoreError{Op: "read balance", Err: err}
	}
	if err := Validate(w.Rules, payoutNumber, amount, balance); err != nil {
		return Withdrawal{}, err
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	wd := Withdrawal{
		UserID:       userID,
		PayoutNumber: payoutNumber,
		Amount:       amount,
		Status:       StatusPending,
		Timestamp:    now().UnixMilli(),
	}

	if c, ok := w.Store.(WithdrawalCommitter); ok {
		id, newBalance, err := c.CommitWithdrawal(ctx, wd)
		if err != nil {
			if errors.Is(err, ErrInsufficientBalance) {
				return Withdrawal{}, insufficientBalance()
			}
			return Withdrawal{}, &StoreError{Op: "commit withdrawal", Err: err}
		}
		wd.ID = id
		w.logger().Info("withdrawal submitted", "user", userID, "id", id, "amount", amount, "balance", newBalance)
		return wd, nil
	}

	return w.appendAndDebit(ctx, wd)
}

// appendAndDebit is the two-step commit for stores without transactions.
// A failed debit removes the appended request again.
func (w *Withdrawer) appendAndDebit(ctx context.Context, wd Withdrawal) (Withdrawal, error) {
	id, err := w.Store.AppendWithdrawal(ctx, wd)
	if err != nil {
		return Withdrawal{}, &StoreError{Op: "append withdrawal", Err: err}
	}
	wd.ID = id

	newBalance, err := w.Store.AddBalance(ctx, wd.UserID, -wd.Amount)
	if err != nil {
		if delErr := w.Store.DeleteWithdrawal(ctx, id); delErr != nil {
			w.logger().Error("orphaned withdrawal", "id", id, "user", wd.UserID, "err", delErr)
			err = errors.Join(err, delErr)
		}
		if errors.Is(err, ErrInsufficientBalance) {
			return Withdrawal{}, insufficientBalance()
		}
		return Withdrawal{}, &StoreError{Op: "debit balance", Err: err}
	}

	w.logger().Info("withdrawal submitted", "user", wd.UserID, "id", id, "amount", wd.Amount, "balance", newBalance)
	return wd, nil
}

func (w *Withdrawer) logger() *log.Logger {
	if w.Logger == nil {
		return log.Default()
	}
	return w.Logger
}
