package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/coin-snake/internal/bridge"
	"github.com/vovakirdan/coin-snake/internal/config"
	"github.com/vovakirdan/coin-snake/internal/storage"
)

func TestFactoryAppliesConfig(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "wallet.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	cfg := config.DefaultAppConfig()
	cfg.Game.CanvasPx = 300
	cfg.Rewards.AdAmount = 25
	cfg.Withdraw.MinAmount = 500
	f := NewFactory(store, cfg, nil)

	a := f.New(bridge.NewRecorder(bridge.Identity{UserID: "u1"}, 8))
	defer a.Close()

	if a.deps.Rewarder.AdAmount != 25 || a.deps.Rewarder.AdDelay != 5*time.Second {
		t.Errorf("Reward settings not applied: %+v", a.deps.Rewarder)
	}
	if a.deps.Withdrawer.Rules.MinAmount != 500 {
		t.Errorf("Withdraw rules not applied: %+v", a.deps.Withdrawer.Rules)
	}
	if a.Snapshot().BoardSize != 15 {
		t.Errorf("Expected 15 cell board, got %d", a.Snapshot().BoardSize)
	}

	// Reloads affect only new sessions
	cfg.Rewards.AdAmount = 99
	f.SetConfig(cfg)
	if a.deps.Rewarder.AdAmount != 25 {
		t.Error("Running session should keep its settings")
	}
	b := f.New(bridge.NewRecorder(bridge.Identity{UserID: "u2"}, 8))
	defer b.Close()
	if b.deps.Rewarder.AdAmount != 99 {
		t.Errorf("New session should use reloaded settings, got %d", b.deps.Rewarder.AdAmount)
	}
}

func TestGameConfigSeed(t *testing.T) {
	g := config.DefaultAppConfig().Game
	g.Seed = 7
	if GameConfig(g).Seed != 7 {
		t.Error("Fixed seed should be kept")
	}
	g.Seed = 0
	if GameConfig(g).Seed == 0 {
		t.Error("Zero seed should come from the clock")
	}
}
