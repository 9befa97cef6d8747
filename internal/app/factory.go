package app

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/coin-snake/internal/bridge"
	"github.com/vovakirdan/coin-snake/internal/config"
	"github.com/vovakirdan/coin-snake/internal/games/snake"
	"github.com/vovakirdan/coin-snake/internal/wallet"
)

// Store is what a session needs from persistence.
type Store interface {
	wallet.Store
	ScoreRecorder
}

// Factory builds sessions that share one store and configuration.
// Thread-safe for concurrent access.
type Factory struct {
	store  Store
	logger *log.Logger

	mu  sync.RWMutex
	cfg config.AppConfig
}

// NewFactory creates a session factory.
func NewFactory(store Store, cfg config.AppConfig, logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Default()
	}
	return &Factory{store: store, cfg: cfg, logger: logger}
}

// Config returns the configuration new sessions are built with.
func (f *Factory) Config() config.AppConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.cfg
}

// SetConfig replaces the configuration. Running sessions keep theirs.
func (f *Factory) SetConfig(cfg config.AppConfig) {
	f.mu.Lock()
	f.cfg = cfg
	f.mu.Unlock()
	f.logger.Info("configuration reloaded",
		"ad_amount", cfg.Rewards.AdAmount,
		"min_withdraw", cfg.Withdraw.MinAmount,
	)
}

// New builds a session for the host's user. The caller runs Init.
func (f *Factory) New(host bridge.Host) *App {
	cfg := f.Config()

	rewarder := wallet.NewRewarder(f.store, f.logger)
	rewarder.AdDelay = cfg.Rewards.AdDelay()
	rewarder.AdAmount = cfg.Rewards.AdAmount
	rewarder.ScoreMultiplier = cfg.Rewards.ScoreMultiplier

	rules := wallet.Rules{
		MinAmount:    cfg.Withdraw.MinAmount,
		PayoutMinLen: cfg.Withdraw.PayoutMinLen,
	}

	return New(Deps{
		Host:       host,
		Store:      f.store,
		Rewarder:   rewarder,
		Withdrawer: wallet.NewWithdrawer(f.store, rules, f.logger),
		Scores:     f.store,
		Game:       GameConfig(cfg.Game),
		TickPeriod: cfg.Game.TickPeriod(),
		Logger:     f.logger,
	})
}

// GameConfig converts the file settings into a game configuration. A zero
// seed is replaced by the clock.
func GameConfig(g config.GameConfig) snake.Config {
	seed := g.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return snake.Config{
		BoardSize:    g.BoardSize(),
		Start:        snake.Point{X: g.StartX, Y: g.StartY},
		Seed:         seed,
		FoodAttempts: g.FoodAttempts,
	}
}
