package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file configuration.
const (
	EnvDB          = "COINSNAKE_DB"
	EnvHTTPAddr    = "COINSNAKE_HTTP_ADDR"
	EnvSSHAddr     = "COINSNAKE_SSH_ADDR"
	EnvLogLevel    = "COINSNAKE_LOG_LEVEL"
	EnvAdAmount    = "COINSNAKE_AD_AMOUNT"
	EnvMinWithdraw = "COINSNAKE_MIN_WITHDRAW"
	EnvBotToken    = "COINSNAKE_BOT_TOKEN"
)

// LoadFile reads one YAML file on top of the built-in defaults, so keys
// missing from the file keep their default values.
func LoadFile(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, name string) (AppConfig, error) {
	cfg := DefaultAppConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to parse config %s: %w", name, err)
	}
	return cfg, nil
}

// Load finds and reads the configuration, then applies environment
// overrides. It returns the path it read, empty for the embedded default.
// Search order: customPath -> ~/.coinsnake/config.yaml -> ./configs/coinsnake.yaml -> embedded default
func Load(customPath string) (AppConfig, string, error) {
	cfg, path, err := find(customPath)
	if err != nil {
		return cfg, "", err
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

func find(customPath string) (AppConfig, string, error) {
	// Try custom path first
	if customPath != "" {
		cfg, err := LoadFile(customPath)
		return cfg, customPath, err
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if cfg, err := LoadFile(userCfgPath); err == nil {
			return cfg, userCfgPath, nil
		}
	}

	// Try local configs directory
	local := filepath.Join("configs", "coinsnake.yaml")
	if cfg, err := LoadFile(local); err == nil {
		return cfg, local, nil
	}

	// Use embedded default YAML
	cfg, err := parse(defaultYAML, "embedded default")
	if err != nil {
		return DefaultAppConfig(), "", nil // Fallback to hardcoded if embed fails
	}
	return cfg, "", nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".coinsnake", filename)
}

// LoadDotEnv loads variables from the given .env files (./.env when none
// are given) into the process environment. Missing files are ignored;
// variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with environment variables read through lookup.
func ApplyEnv(cfg *AppConfig, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDB); ok && v != "" {
		cfg.Storage.DBPath = v
	}
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v, ok := lookup(EnvSSHAddr); ok && v != "" {
		cfg.Server.SSHAddr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvBotToken); ok {
		cfg.Bridge.BotToken = v
	}
	if v, ok := lookup(EnvAdAmount); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s must be an integer: %w", EnvAdAmount, err)
		}
		cfg.Rewards.AdAmount = n
	}
	if v, ok := lookup(EnvMinWithdraw); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s must be an integer: %w", EnvMinWithdraw, err)
		}
		cfg.Withdraw.MinAmount = n
	}
	return nil
}

// Save writes cfg as YAML, creating parent directories.
func Save(path string, cfg AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: cannot encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: cannot create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: cannot write %s: %w", path, err)
	}
	return nil
}
