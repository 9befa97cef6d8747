package storage

import (
	"context"
	"fmt"
	"time"
)

// DefaultPollInterval is how often the store checks the database for
// commits made by other connections.
const DefaultPollInterval = 250 * time.Millisecond

// watchExternal polls PRAGMA data_version, starting from version, until
// stop is closed. The value only moves when another connection commits,
// so a change means balances may have been written by another process.
func (s *Store) watchExternal(version int64, interval time.Duration) {
	defer close(s.watchDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		if len(s.hub.users()) == 0 {
			continue
		}
		current, err := s.dataVersion(context.Background())
		if err != nil {
			s.logger.Warn("cannot read data version", "err", err)
			continue
		}
		if current == version {
			continue
		}
		version = current
		if err := s.refreshSubscribers(context.Background()); err != nil {
			s.logger.Warn("cannot refresh balances", "err", err)
		}
	}
}

func (s *Store) dataVersion(ctx context.Context) (int64, error) {
	var v int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("storage: cannot read data version: %w", err)
	}
	return v, nil
}

// refreshSubscribers re-reads the balance of every subscribed user and
// pushes the values that changed.
func (s *Store) refreshSubscribers(ctx context.Context) error {
	type update struct {
		userID string
		coins  int64
		seq    uint64
	}

	s.writeMu.Lock()
	var updates []update
	for _, userID := range s.hub.users() {
		coins, err := s.Balance(ctx, userID)
		if err != nil {
			s.writeMu.Unlock()
			return err
		}
		s.seq++
		updates = append(updates, update{userID, coins, s.seq})
	}
	s.writeMu.Unlock()

	for _, u := range updates {
		s.hub.refresh(u.userID, u.coins, u.seq)
	}
	return nil
}
