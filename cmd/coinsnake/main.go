// coinsnake is a Snake game that pays coins, with a wallet for cashing
// them out.
//
// Usage:
//
//	coinsnake play                      - Play in this terminal
//	coinsnake serve                     - Serve players over SSH and HTTP
//	coinsnake scores                    - Show high scores
//	coinsnake wallet balance <user>     - Show a user's coins
//	coinsnake withdrawals list          - Review withdrawal requests
//	coinsnake config show               - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.coinsnake/config.yaml)
//	--db <path>         - Database path (default: ~/.coinsnake/wallet.db)
//	--log-level <level> - debug, info, warn or error
//	--env-file <path>   - Extra .env file to load
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/coin-snake/internal/config"
	"github.com/vovakirdan/coin-snake/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
	flagEnvFile  string

	// Set by loadConfig before any command runs
	appCfg  config.AppConfig
	cfgPath string
	logger  *log.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "coinsnake",
	Short: "Coin Snake - play Snake, earn coins, withdraw them",
	Long: `Coin Snake is a Snake game where every food eaten earns a coin.
Coins can also be earned by watching ads and are withdrawn to a Bkash
mobile wallet once enough have been collected.

Available commands:
  play         - Play in this terminal
  serve        - Serve players over SSH and HTTP
  scores       - Show high scores
  wallet       - Inspect and adjust balances
  withdrawals  - Review withdrawal requests
  config       - Show or write the configuration

Examples:
  coinsnake play
  coinsnake serve --ssh :2222 --http :8080
  coinsnake withdrawals list --status pending
  coinsnake withdrawals approve 0192...`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to wallet database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "Additional .env file")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(walletCmd)
	rootCmd.AddCommand(withdrawalsCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads .env files, the config file and the environment, then
// applies flag overrides.
func loadConfig(_ *cobra.Command, _ []string) error {
	envFiles := []string{".env"}
	if flagEnvFile != "" {
		envFiles = append(envFiles, flagEnvFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return err
	}

	cfg, path, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	appCfg = cfg
	cfgPath = path
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "coinsnake",
		Level:           cfg.LogLevel(),
	})
	if path != "" {
		logger.Debug("configuration loaded", "path", path)
	}
	return nil
}

// openStore opens the wallet database named by the configuration.
func openStore() (*storage.Store, error) {
	store, err := storage.Open(appCfg.Storage.DBPath, storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("cannot open wallet database: %w", err)
	}
	return store, nil
}
