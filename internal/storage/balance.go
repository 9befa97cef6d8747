package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vovakirdan/coin-snake/internal/wallet"
)

// Balance returns the user's coins. Unknown users have 0.
func (s *Store) Balance(ctx context.Context, userID string) (int64, error) {
	var coins int64
	err := s.db.QueryRowContext(ctx,
		"SELECT coins FROM users WHERE user_id = ?",
		userID,
	).Scan(&coins)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("storage: cannot query balance: %w", err)
	}
	return coins, nil
}

// addBalanceTx applies delta inside tx and returns the new balance. A
// result below zero fails with wallet.ErrInsufficientBalance.
func addBalanceTx(ctx context.Context, tx *sql.Tx, userID string, delta int64) (int64, error) {
	var coins int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO users (user_id, coins, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET coins = coins + excluded.coins, updated_at = excluded.updated_at
		 RETURNING coins`,
		userID, delta, time.Now().UnixMilli(),
	).Scan(&coins)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot update balance: %w", err)
	}
	if coins < 0 {
		return 0, fmt.Errorf("storage: cannot subtract %d: %w", -delta, wallet.ErrInsufficientBalance)
	}
	return coins, nil
}

// AddBalance atomically adds delta to the user's coins and returns the new
// balance. Subscribers are notified after the commit.
func (s *Store) AddBalance(ctx context.Context, userID string, delta int64) (int64, error) {
	s.writeMu.Lock()
	var coins int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		coins, err = addBalanceTx(ctx, tx, userID, delta)
		return err
	})
	if err != nil {
		s.writeMu.Unlock()
		return 0, err
	}
	s.seq++
	seq := s.seq
	s.writeMu.Unlock()

	s.hub.publish(userID, coins, seq)
	return coins, nil
}

// SubscribeBalance calls fn with the current balance and then after every
// committed change, including commits made by other processes. Calling the returned function more than once is safe.
func (s *Store) SubscribeBalance(ctx context.Context, userID string, fn func(int64)) (func(), error) {
	s.writeMu.Lock()
	coins, err := s.Balance(ctx, userID)
	if err != nil {
		s.writeMu.Unlock()
		return nil, err
	}
	sub := s.hub.subscribe(userID, fn, s.seq)
	// Hold the subscription until the first value is delivered so a
	// concurrent publish cannot overtake it.
	sub.mu.Lock()
	s.writeMu.Unlock()

	sub.last = coins
	fn(coins)
	sub.mu.Unlock()

	return func() { s.hub.unsubscribe(sub) }, nil
}
