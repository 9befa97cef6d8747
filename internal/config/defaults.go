package config

import (
	_ "embed"
)

//go:embed defaults/coinsnake.yaml
var defaultYAML []byte

// DefaultAppConfig returns the built-in configuration.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Game: GameConfig{
			CanvasPx:     400,
			TileSize:     20,
			TickMs:       150,
			StartX:       10,
			StartY:       10,
			FoodAttempts: 64,
		},
		Rewards: RewardsConfig{
			AdDelayMs:       5000,
			AdAmount:        10,
			ScoreMultiplier: 1,
		},
		Withdraw: WithdrawConfig{
			MinAmount:    10000,
			PayoutMinLen: 11,
		},
		Storage: StorageConfig{
			DBPath: "~/.coinsnake/wallet.db",
		},
		Bridge: BridgeConfig{
			FallbackUserID: "test_user_12345",
		},
		Server: ServerConfig{
			SSHAddr:        ":23234",
			HostKeyPath:    "~/.coinsnake/ssh_host_ed25519",
			HTTPAddr:       ":8080",
			StaticDir:      "./static",
			IdleTimeoutMin: 30,
			MaxSessions:    1000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
