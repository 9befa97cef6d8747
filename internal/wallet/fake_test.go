package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// memStore is an in-memory Store without transactions.
type memStore struct {
	mu          sync.Mutex
	balances    map[string]int64
	withdrawals map[string]Withdrawal
	nextID      int
	addCalls    int

	failBalance error
	failAppend  error
	failAdd     error
	failDelete  error
}

func newMemStore() *memStore {
	return &memStore{
		balances:    make(map[string]int64),
		withdrawals: make(map[string]Withdrawal),
	}
}

func (s *memStore) Balance(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failBalance != nil {
		return 0, s.failBalance
	}
	return s.balances[userID], nil
}

func (s *memStore) SubscribeBalance(ctx context.Context, userID string, fn func(int64)) (func(), error) {
	b, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	fn(b)
	return func() {}, nil
}

func (s *memStore) AddBalance(_ context.Context, userID string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCalls++
	if s.failAdd != nil {
		return 0, s.failAdd
	}
	next := s.balances[userID] + delta
	if next < 0 {
		return 0, ErrInsufficientBalance
	}
	s.balances[userID] = next
	return next, nil
}

func (s *memStore) AppendWithdrawal(_ context.Context, w Withdrawal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAppend != nil {
		return "", s.failAppend
	}
	s.nextID++
	id := fmt.Sprintf("w%d", s.nextID)
	w.ID = id
	s.withdrawals[id] = w
	return id, nil
}

func (s *memStore) DeleteWithdrawal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete != nil {
		return s.failDelete
	}
	delete(s.withdrawals, id)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.withdrawals)
}

// txStore adds a transactional commit on top of memStore.
type txStore struct {
	*memStore
	commits int
}

func (s *txStore) CommitWithdrawal(_ context.Context, w Withdrawal) (string, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	next := s.balances[w.UserID] - w.Amount
	if next < 0 {
		return "", 0, fmt.Errorf("memstore: debit: %w", ErrInsufficientBalance)
	}
	s.nextID++
	id := fmt.Sprintf("tx%d", s.nextID)
	w.ID = id
	s.withdrawals[id] = w
	s.balances[w.UserID] = next
	return id, next, nil
}

// manualTimers records scheduled calls so tests fire them explicitly.
type manualTimers struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (m *manualTimers) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	m.timers = append(m.timers, t)
	return &manualHandle{m: m, t: t}
}

// fireAll runs every pending timer.
func (m *manualTimers) fireAll() int {
	m.mu.Lock()
	var pending []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			pending = append(pending, t)
		}
	}
	m.mu.Unlock()
	for _, t := range pending {
		t.f()
	}
	return len(pending)
}

type manualHandle struct {
	m *manualTimers
	t *manualTimer
}

func (h *manualHandle) Stop() bool {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.t.stopped || h.t.fired {
		return false
	}
	h.t.stopped = true
	return true
}

var errBoom = errors.New("boom")
