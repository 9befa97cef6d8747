package web

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/coin-snake/internal/app"
	"github.com/vovakirdan/coin-snake/internal/bridge"
)

// ErrTooManySessions is returned when the session limit is reached.
var ErrTooManySessions = errors.New("web: too many sessions")

// noticeLimit bounds the popups kept for a client that stopped polling.
const noticeLimit = 32

// session is one user's app kept alive between requests.
type session struct {
	app      *app.App
	recorder *bridge.Recorder

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// sessions maps users to their running apps. A user has one session no
// matter how many tabs are open. Thread-safe for concurrent access.
type sessions struct {
	factory *app.Factory
	logger  *log.Logger
	limit   int
	now     func() time.Time

	mu   sync.Mutex
	byID map[string]*session
}

func newSessions(factory *app.Factory, limit int, logger *log.Logger) *sessions {
	return &sessions{
		factory: factory,
		logger:  logger,
		limit:   limit,
		now:     time.Now,
		byID:    make(map[string]*session),
	}
}

// get returns the user's session, starting one on first use.
func (r *sessions) get(id bridge.Identity) (*session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byID[id.UserID]; ok {
		s.touch(r.now())
		return s, nil
	}
	if r.limit > 0 && len(r.byID) >= r.limit {
		return nil, ErrTooManySessions
	}

	rec := bridge.NewRecorder(id, noticeLimit)
	a := r.factory.New(rec)
	if err := a.Init(); err != nil {
		a.Close()
		return nil, fmt.Errorf("web: start session: %w", err)
	}

	s := &session{app: a, recorder: rec, lastSeen: r.now()}
	r.byID[id.UserID] = s
	r.logger.Info("session started", "user", id.UserID, "active", len(r.byID))
	return s, nil
}

// count returns the number of live sessions.
func (r *sessions) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// reap closes sessions unused for longer than idle.
func (r *sessions) reap(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var stale []*session
	for userID, s := range r.byID {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, s)
			delete(r.byID, userID)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.app.Close()
		r.logger.Info("session expired", "user", s.app.Identity().UserID)
	}
	return len(stale)
}

// runReaper reaps idle sessions until ctx is done.
func (r *sessions) runReaper(ctx context.Context, idle time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(max(idle/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reap(idle)
		}
	}
}

// closeAll ends every session.
func (r *sessions) closeAll() {
	r.mu.Lock()
	all := r.byID
	r.byID = make(map[string]*session)
	r.mu.Unlock()

	for _, s := range all {
		s.app.Close()
	}
}
