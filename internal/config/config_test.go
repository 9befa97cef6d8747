package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestEmbeddedDefaultsMatchCode(t *testing.T) {
	cfg, err := parse(DefaultYAML(), "embedded")
	if err != nil {
		t.Fatalf("Embedded default does not parse: %v", err)
	}
	want := DefaultAppConfig()
	if cfg != want {
		t.Errorf("Embedded YAML differs from DefaultAppConfig()\n got: %+v\nwant: %+v", cfg, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config is invalid: %v", err)
	}
}

func TestDerivedValues(t *testing.T) {
	cfg := DefaultAppConfig()

	if cfg.Game.BoardSize() != 20 {
		t.Errorf("Expected 20 cells, got %d", cfg.Game.BoardSize())
	}
	if cfg.Game.TickPeriod() != 150*time.Millisecond {
		t.Errorf("Expected 150ms ticks, got %v", cfg.Game.TickPeriod())
	}
	if cfg.Rewards.AdDelay() != 5*time.Second {
		t.Errorf("Expected 5s ads, got %v", cfg.Rewards.AdDelay())
	}
}

func TestLoadFileKeepsMissingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("rewards:\n  ad_amount: 25\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if cfg.Rewards.AdAmount != 25 {
		t.Errorf("Override not applied, got %d", cfg.Rewards.AdAmount)
	}
	if cfg.Withdraw.MinAmount != 10000 || cfg.Game.TickMs != 150 {
		t.Error("Missing keys should keep their defaults")
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Missing custom config should be an error")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("game: [not, a, map"), 0o644)
	if _, _, err := Load(bad); err == nil {
		t.Error("Malformed config should be an error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDB:          "/tmp/x.db",
		EnvHTTPAddr:    ":9000",
		EnvAdAmount:    "15",
		EnvMinWithdraw: "500",
		EnvLogLevel:    "debug",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultAppConfig()
	if err := ApplyEnv(&cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv() failed: %v", err)
	}
	if cfg.Storage.DBPath != "/tmp/x.db" || cfg.Server.HTTPAddr != ":9000" {
		t.Errorf("String overrides not applied: %+v", cfg)
	}
	if cfg.Rewards.AdAmount != 15 || cfg.Withdraw.MinAmount != 500 {
		t.Errorf("Number overrides not applied: %+v", cfg)
	}
	if cfg.Server.SSHAddr != ":23234" {
		t.Error("Unset variables must not change the config")
	}

	env[EnvAdAmount] = "lots"
	if err := ApplyEnv(&cfg, lookup); err == nil {
		t.Error("Non-numeric amount should be rejected")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	os.WriteFile(path, []byte("COINSNAKE_TEST_DOTENV=hello\n"), 0o644)
	t.Cleanup(func() { os.Unsetenv("COINSNAKE_TEST_DOTENV") })

	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv() failed: %v", err)
	}
	if os.Getenv("COINSNAKE_TEST_DOTENV") != "hello" {
		t.Error(".env variable not loaded")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Game.TileSize = 0
	cfg.Rewards.AdAmount = -1
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation errors")
	}
	for _, key := range []string{"tile_size", "ad_amount", "log.level"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Error should mention %s: %v", key, err)
		}
	}

	cfg = DefaultAppConfig()
	cfg.Game.StartX = 25
	if cfg.Validate() == nil {
		t.Error("Start cell off the board should be rejected")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := DefaultAppConfig()
	cfg.Withdraw.MinAmount = 123

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if got != cfg {
		t.Errorf("Saved config differs: %+v", got)
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(path, DefaultAppConfig()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan AppConfig, 4)
	if err := Watch(ctx, path, func(c AppConfig) { changes <- c }, nil); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	cfg := DefaultAppConfig()
	cfg.Rewards.AdAmount = 42
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changes:
		if got.Rewards.AdAmount != 42 {
			t.Errorf("Expected reloaded ad amount 42, got %d", got.Rewards.AdAmount)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Config change not detected")
	}
}

func TestWatchKeepsConfigOnBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	Save(path, DefaultAppConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errs := make(chan error, 4)
	changed := make(chan AppConfig, 4)
	if err := Watch(ctx, path, func(c AppConfig) { changed <- c }, func(err error) { errs <- err }); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}

	os.WriteFile(path, []byte("game:\n  tick_ms: -5\n"), 0o644)

	select {
	case <-errs:
	case c := <-changed:
		t.Errorf("Invalid config should not be applied: %+v", c)
	case <-time.After(5 * time.Second):
		t.Fatal("Invalid config not reported")
	}
}
