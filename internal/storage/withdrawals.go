package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/vovakirdan/coin-snake/internal/wallet"
)

// WithdrawalFilter narrows a withdrawal listing. Zero fields match all.
type WithdrawalFilter struct {
	UserID string
	Status wallet.WithdrawalStatus
	Limit  int
}

// newWithdrawalID returns a time-ordered unique key.
func newWithdrawalID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("storage: cannot generate withdrawal ID: %w", err)
	}
	return id.String(), nil
}

func insertWithdrawal(ctx context.Context, tx *sql.Tx, w wallet.Withdrawal) (string, error) {
	if w.ID == "" {
		id, err := newWithdrawalID()
		if err != nil {
			return "", err
		}
		w.ID = id
	}
	if w.Status == "" {
		w.Status = wallet.StatusPending
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO withdrawals (id, user_id, payout_number, amount, status, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.PayoutNumber, w.Amount, string(w.Status), w.Timestamp,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save withdrawal: %w", err)
	}
	return w.ID, nil
}

// AppendWithdrawal stores a new request and returns its ID. The balance is
// not touched.
func (s *Store) AppendWithdrawal(ctx context.Context, w wallet.Withdrawal) (string, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var id string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = insertWithdrawal(ctx, tx, w)
		return err
	})
	return id, err
}

// DeleteWithdrawal removes a request.
func (s *Store) DeleteWithdrawal(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM withdrawals WHERE id = ?", id); err != nil {
			return fmt.Errorf("storage: cannot delete withdrawal: %w", err)
		}
		return nil
	})
}

// CommitWithdrawal records the request and debits its amount in one
// transaction. Either both happen or neither does.
func (s *Store) CommitWithdrawal(ctx context.Context, w wallet.Withdrawal) (string, int64, error) {
	s.writeMu.Lock()
	var (
		id    string
		coins int64
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		if id, err = insertWithdrawal(ctx, tx, w); err != nil {
			return err
		}
		coins, err = addBalanceTx(ctx, tx, w.UserID, -w.Amount)
		return err
	})
	if err != nil {
		s.writeMu.Unlock()
		return "", 0, err
	}
	s.seq++
	seq := s.seq
	s.writeMu.Unlock()

	s.hub.publish(w.UserID, coins, seq)
	return id, coins, nil
}

// Withdrawals lists requests, newest first.
func (s *Store) Withdrawals(ctx context.Context, filter WithdrawalFilter) ([]wallet.Withdrawal, error) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT id, user_id, payout_number, amount, status, timestamp FROM withdrawals"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query withdrawals: %w", err)
	}
	defer rows.Close()

	var out []wallet.Withdrawal
	for rows.Next() {
		var w wallet.Withdrawal
		var status string
		if err := rows.Scan(&w.ID, &w.UserID, &w.PayoutNumber, &w.Amount, &status, &w.Timestamp); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		w.Status = wallet.WithdrawalStatus(status)
		out = append(out, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return out, nil
}

// Withdrawal returns one request by ID.
func (s *Store) Withdrawal(ctx context.Context, id string) (wallet.Withdrawal, error) {
	var w wallet.Withdrawal
	var status string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, payout_number, amount, status, timestamp FROM withdrawals WHERE id = ?",
		id,
	).Scan(&w.ID, &w.UserID, &w.PayoutNumber, &w.Amount, &status, &w.Timestamp)
	if err == sql.ErrNoRows {
		return wallet.Withdrawal{}, fmt.Errorf("storage: withdrawal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return wallet.Withdrawal{}, fmt.Errorf("storage: cannot query withdrawal: %w", err)
	}
	w.Status = wallet.WithdrawalStatus(status)
	return w, nil
}

// SetWithdrawalStatus moves a pending request to approved or rejected.
// Rejecting returns the amount to the user's balance in the same
// transaction.
func (s *Store) SetWithdrawalStatus(ctx context.Context, id string, status wallet.WithdrawalStatus) (wallet.Withdrawal, error) {
	if status != wallet.StatusApproved && status != wallet.StatusRejected {
		return wallet.Withdrawal{}, fmt.Errorf("storage: invalid target status %q", status)
	}

	s.writeMu.Lock()
	var (
		w        wallet.Withdrawal
		coins    int64
		refunded bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var cur string
		err := tx.QueryRowContext(ctx,
			"SELECT user_id, payout_number, amount, status, timestamp FROM withdrawals WHERE id = ?",
			id,
		).Scan(&w.UserID, &w.PayoutNumber, &w.Amount, &cur, &w.Timestamp)
		if err == sql.ErrNoRows {
			return fmt.Errorf("storage: withdrawal %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("storage: cannot query withdrawal: %w", err)
		}
		if wallet.WithdrawalStatus(cur) != wallet.StatusPending {
			return fmt.Errorf("storage: withdrawal %s is %s: %w", id, cur, ErrNotPending)
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE withdrawals SET status = ? WHERE id = ?",
			string(status), id,
		); err != nil {
			return fmt.Errorf("storage: cannot update withdrawal: %w", err)
		}

		if status == wallet.StatusRejected {
			coins, err = addBalanceTx(ctx, tx, w.UserID, w.Amount)
			if err != nil {
				return err
			}
			refunded = true
		}
		return nil
	})
	if err != nil {
		s.writeMu.Unlock()
		return wallet.Withdrawal{}, err
	}
	var seq uint64
	if refunded {
		s.seq++
		seq = s.seq
	}
	s.writeMu.Unlock()

	w.ID = id
	w.Status = status
	if refunded {
		s.hub.publish(w.UserID, coins, seq)
	}
	s.logger.Info("withdrawal reviewed", "id", id, "status", status, "user", w.UserID)
	return w, nil
}
