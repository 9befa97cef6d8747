package snake

import (
	"context"
	"sync"
	"time"
)

// Hooks are the callbacks a Driver invokes. They run on the driver's tick
// goroutine (or the caller's, for Start and Step) and never under the
// driver's lock, so they may call back into the driver.
type Hooks struct {
	// OnRender is called with the new state after every tick that moved
	// the snake, and once after Start.
	OnRender func(Snapshot)

	// OnGameOver is called exactly once per game, on the tick that ends it.
	OnGameOver func(score int, reason OverReason)
}

// Driver runs a Game on a fixed period. It owns the only timer that may
// tick its game: starting a new game always cancels the previous tick
// stream first.
type Driver struct {
	mu     sync.Mutex
	game   *Game
	period time.Duration
	hooks  Hooks

	cancel context.CancelFunc
	gen    uint64 // Identifies the current tick stream
}

// NewDriver creates a driver for game ticking every period.
func NewDriver(game *Game, period time.Duration, hooks Hooks) *Driver {
	if period <= 0 {
		period = 150 * time.Millisecond
	}
	return &Driver{
		game:   game,
		period: period,
		hooks:  hooks,
	}
}

// Start begins a new game and its tick stream. Any running stream is
// stopped before the game is reset.
func (d *Driver) Start(ctx context.Context) error {
	d.mu.Lock()
	d.stopLocked()

	if err := d.game.Start(); err != nil {
		d.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.gen++
	gen := d.gen
	snap := d.game.Snapshot()
	d.mu.Unlock()

	if d.hooks.OnRender != nil {
		d.hooks.OnRender(snap)
	}

	go d.run(runCtx, gen)
	return nil
}

// run ticks the game until ctx is cancelled or the game ends.
func (d *Driver) run(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(d.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !d.step(gen) {
				return
			}
		}
	}
}

// Step performs one tick synchronously, exactly as the timer would.
// It reports whether the game is still running afterwards.
func (d *Driver) Step() bool {
	d.mu.Lock()
	gen := d.gen
	d.mu.Unlock()
	return d.step(gen)
}

// step ticks the game if gen is still the current stream.
func (d *Driver) step(gen uint64) bool {
	d.mu.Lock()
	if gen != d.gen || d.game.Status() != StatusRunning {
		d.mu.Unlock()
		return false
	}

	res := d.game.Tick()
	var snap Snapshot
	if res.Moved || res.Over {
		snap = d.game.Snapshot()
	}
	if res.Over {
		d.stopLocked()
	}
	d.mu.Unlock()

	if res.Moved && d.hooks.OnRender != nil {
		d.hooks.OnRender(snap)
	}
	if res.Over {
		if d.hooks.OnGameOver != nil {
			d.hooks.OnGameOver(res.Score, res.Reason)
		}
		return false
	}
	return true
}

// SetDirection turns the snake between two ticks.
func (d *Driver) SetDirection(dir Direction) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.game.SetDirection(dir)
}

// Snapshot returns a copy of the current game state.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.game.Snapshot()
}

// Running reports whether a tick stream is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// Stop cancels the tick stream, leaving the game state as it is.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// stopLocked cancels the current stream. Must be called with mu held.
func (d *Driver) stopLocked() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	// Bumping the generation turns any tick already waiting on mu into a no-op.
	d.gen++
}
