package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Timer is a pending delayed call. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func timeAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Rewarder credits coins for finished games and watched ads.
type Rewarder struct {
	Store           Store
	AdDelay         time.Duration // Simulated ad length
	AdAmount        int64         // Coins per watched ad
	ScoreMultiplier int64         // Coins per point of score
	Logger          *log.Logger
	AfterFunc       AfterFunc
}

// NewRewarder creates a rewarder with the production values: 10 coins after
// a 5 second ad and one coin per point.
func NewRewarder(store Store, logger *log.Logger) *Rewarder {
	if logger == nil {
		logger = log.Default()
	}
	return &Rewarder{
		Store:           store,
		AdDelay:         5 * time.Second,
		AdAmount:        10,
		ScoreMultiplier: 1,
		Logger:          logger,
		AfterFunc:       timeAfterFunc,
	}
}

// GrantForScore credits the coins earned by a finished game and returns the
// amount credited. A score of zero credits nothing and does not touch the
// store.
func (r *Rewarder) GrantForScore(ctx context.Context, userID string, score int) (int64, error) {
	if score <= 0 {
		return 0, nil
	}
	mult := r.ScoreMultiplier
	if mult <= 0 {
		mult = 1
	}
	amount := int64(score) * mult

	balance, err := r.Store.AddBalance(ctx, userID, amount)
	if err != nil {
		return 0, &StoreError{Op: "credit score", Err: err}
	}
	r.logger().Info("score credited", "user", userID, "score", score, "coins", amount, "balance", balance)
	return amount, nil
}

// AdGrant is a scheduled ad reward.
type AdGrant struct {
	mu       sync.Mutex
	timer    Timer
	done     chan struct{}
	canceled bool
	fired    bool
}

// Cancel stops the grant if the credit has not started yet. It reports
// whether the grant was stopped.
func (g *AdGrant) Cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fired || g.canceled {
		return false
	}
	if g.timer != nil && !g.timer.Stop() {
		return false
	}
	g.canceled = true
	close(g.done)
	return true
}

// Done is closed once the grant has been credited, has failed, or was
// canceled.
func (g *AdGrant) Done() <-chan struct{} {
	return g.done
}

// begin marks the grant as firing. It returns false if it was canceled.
func (g *AdGrant) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.canceled {
		return false
	}
	g.fired = true
	return true
}

// GrantForAd schedules the ad reward. After AdDelay the amount is credited
// and done is called with the credited amount or the store error. The
// credit does not depend on ctx staying alive: a user who leaves while the
// ad plays still gets the coins.
func (r *Rewarder) GrantForAd(ctx context.Context, userID string, done func(amount int64, err error)) *AdGrant {
	amount := r.AdAmount
	if amount <= 0 {
		amount = 10
	}
	after := r.AfterFunc
	if after == nil {
		after = timeAfterFunc
	}
	creditCtx := context.WithoutCancel(ctx)

	g := &AdGrant{done: make(chan struct{})}
	r.logger().Debug("ad started", "user", userID, "delay", r.AdDelay)

	g.mu.Lock()
	g.timer = after(r.AdDelay, func() {
		if !g.begin() {
			return
		}
		defer close(g.done)

		balance, err := r.Store.AddBalance(creditCtx, userID, amount)
		if err != nil {
			err = &StoreError{Op: "credit ad", Err: err}
			r.logger().Error("ad reward failed", "user", userID, "err", err)
			if done != nil {
				done(0, err)
			}
			return
		}
		r.logger().Info("ad credited", "user", userID, "coins", amount, "balance", balance)
		if done != nil {
			done(amount, nil)
		}
	})
	g.mu.Unlock()

	return g
}

func (r *Rewarder) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
