// Package config provides YAML-based application configuration: game
// board and timing, reward amounts, withdrawal rules, storage, servers
// and logging.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// AppConfig is the complete application configuration.
type AppConfig struct {
	Game     GameConfig     `yaml:"game"`
	Rewards  RewardsConfig  `yaml:"rewards"`
	Withdraw WithdrawConfig `yaml:"withdraw"`
	Storage  StorageConfig  `yaml:"storage"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// GameConfig defines the snake board and its pace.
type GameConfig struct {
	CanvasPx     int   `yaml:"canvas_px"` // Canvas side in pixels
	TileSize     int   `yaml:"tile_size"` // Pixels per cell
	TickMs       int   `yaml:"tick_ms"`   // Milliseconds per move
	StartX       int   `yaml:"start_x"`   // Cell of the first segment
	StartY       int   `yaml:"start_y"`
	FoodAttempts int   `yaml:"food_attempts"` // Random samples before scanning for a free cell
	Seed         int64 `yaml:"seed"`          // 0 = seed from the clock
}

// BoardSize returns the number of cells per side.
func (g GameConfig) BoardSize() int {
	if g.TileSize <= 0 {
		return 0
	}
	return g.CanvasPx / g.TileSize
}

// TickPeriod returns the time between moves.
func (g GameConfig) TickPeriod() time.Duration {
	return time.Duration(g.TickMs) * time.Millisecond
}

// RewardsConfig defines how coins are earned.
type RewardsConfig struct {
	AdDelayMs       int   `yaml:"ad_delay_ms"`
	AdAmount        int64 `yaml:"ad_amount"`
	ScoreMultiplier int64 `yaml:"score_multiplier"`
}

// AdDelay returns the simulated ad length.
func (r RewardsConfig) AdDelay() time.Duration {
	return time.Duration(r.AdDelayMs) * time.Millisecond
}

// WithdrawConfig defines the withdrawal rules.
type WithdrawConfig struct {
	MinAmount    int64 `yaml:"min_amount"`
	PayoutMinLen int   `yaml:"payout_min_len"`
}

// StorageConfig locates the database.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// BridgeConfig defines how users are identified.
type BridgeConfig struct {
	FallbackUserID string `yaml:"fallback_user_id"`
	BotToken       string `yaml:"bot_token"`        // Empty disables init data verification
	InitMaxAgeMin  int    `yaml:"init_max_age_min"` // 0 = no freshness check
}

// InitMaxAge returns how old verified init data may be.
func (b BridgeConfig) InitMaxAge() time.Duration {
	return time.Duration(b.InitMaxAgeMin) * time.Minute
}

// ServerConfig defines the SSH and HTTP front ends.
type ServerConfig struct {
	SSHAddr        string `yaml:"ssh_addr"`
	HostKeyPath    string `yaml:"host_key_path"`
	HTTPAddr       string `yaml:"http_addr"`
	StaticDir      string `yaml:"static_dir"`
	IdleTimeoutMin int    `yaml:"idle_timeout_min"`
	MaxSessions    int    `yaml:"max_sessions"`
}

// IdleTimeout returns how long an unused session is kept.
func (s ServerConfig) IdleTimeout() time.Duration {
	return time.Duration(s.IdleTimeoutMin) * time.Minute
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Validate checks the configuration for values the app cannot run with.
func (c AppConfig) Validate() error {
	var errs []error
	if c.Game.TileSize <= 0 {
		errs = append(errs, fmt.Errorf("game.tile_size must be positive, got %d", c.Game.TileSize))
	}
	if c.Game.TileSize > 0 && c.Game.CanvasPx < c.Game.TileSize*2 {
		errs = append(errs, fmt.Errorf("game.canvas_px must fit at least 2 tiles, got %d", c.Game.CanvasPx))
	}
	if c.Game.TickMs <= 0 {
		errs = append(errs, fmt.Errorf("game.tick_ms must be positive, got %d", c.Game.TickMs))
	}
	if n := c.Game.BoardSize(); n > 0 && (c.Game.StartX < 0 || c.Game.StartX >= n || c.Game.StartY < 0 || c.Game.StartY >= n) {
		errs = append(errs, fmt.Errorf("game start (%d,%d) is off the %dx%d board", c.Game.StartX, c.Game.StartY, n, n))
	}
	if c.Rewards.AdDelayMs < 0 {
		errs = append(errs, fmt.Errorf("rewards.ad_delay_ms must not be negative"))
	}
	if c.Rewards.AdAmount <= 0 {
		errs = append(errs, fmt.Errorf("rewards.ad_amount must be positive, got %d", c.Rewards.AdAmount))
	}
	if c.Rewards.ScoreMultiplier <= 0 {
		errs = append(errs, fmt.Errorf("rewards.score_multiplier must be positive, got %d", c.Rewards.ScoreMultiplier))
	}
	if c.Withdraw.MinAmount <= 0 {
		errs = append(errs, fmt.Errorf("withdraw.min_amount must be positive, got %d", c.Withdraw.MinAmount))
	}
	if c.Withdraw.PayoutMinLen <= 0 {
		errs = append(errs, fmt.Errorf("withdraw.payout_min_len must be positive, got %d", c.Withdraw.PayoutMinLen))
	}
	if c.Storage.DBPath == "" {
		errs = append(errs, errors.New("storage.db_path is required"))
	}
	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// LogLevel returns the configured level, Info if unset or invalid.
func (c AppConfig) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
