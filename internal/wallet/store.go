// Package wallet holds the coin economy of the app: crediting rewards for
// played games and watched ads, and validating and committing withdrawal
// requests. It talks to persistence only through the Store port.
package wallet

import (
	"context"
	"time"
)

// WithdrawalStatus is the review state of a withdrawal request. The app
// only ever creates pending requests; an operator moves them on.
type WithdrawalStatus string

const (
	StatusPending  WithdrawalStatus = "pending"
	StatusApproved WithdrawalStatus = "approved"
	StatusRejected WithdrawalStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s WithdrawalStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Withdrawal is a request to pay coins out to a mobile-payment account.
type Withdrawal struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	PayoutNumber string           `json:"payoutNumber"`
	Amount       int64            `json:"amount"`
	Status       WithdrawalStatus `json:"status"`
	Timestamp    int64            `json:"timestamp"` // Unix milliseconds
}

// CreatedAt returns the request time.
func (w Withdrawal) CreatedAt() time.Time {
	return time.UnixMilli(w.Timestamp)
}

// Store is the balance store port. Balances change only through the
// atomic AddBalance; nothing ever writes a balance read earlier.
type Store interface {
	// Balance returns the user's coins, 0 if the user has none yet.
	Balance(ctx context.Context, userID string) (int64, error)

	// SubscribeBalance calls fn with the current balance and again after
	// every change. The returned function ends the subscription.
	SubscribeBalance(ctx context.Context, userID string, fn func(balance int64)) (unsubscribe func(), err error)

	// AddBalance atomically adds delta (which may be negative) and returns
	// the new balance. A change that would go below zero fails with
	// ErrInsufficientBalance and leaves the balance untouched.
	AddBalance(ctx context.Context, userID string, delta int64) (int64, error)

	// AppendWithdrawal stores a new request under a store-generated,
	// collision-free ID and returns that ID.
	AppendWithdrawal(ctx context.Context, w Withdrawal) (string, error)

	// DeleteWithdrawal removes a request. Used to undo an append whose
	// debit failed.
	DeleteWithdrawal(ctx context.Context, id string) error
}

// WithdrawalCommitter is implemented by stores that can append a request
// and debit the balance in one transaction.
type WithdrawalCommitter interface {
	CommitWithdrawal(ctx context.Context, w Withdrawal) (id string, balance int64, err error)
}
