package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/coin-snake/internal/app"
	"github.com/vovakirdan/coin-snake/internal/bridge"
	"github.com/vovakirdan/coin-snake/internal/platform/tui"
)

var (
	flagUser string
	flagName string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start a session in this terminal.

Controls:
  Arrows/WASD  - Steer the snake
  R            - New game (after game over)
  1 / 2 / 3    - Game, watch an ad, wallet
  Tab          - Next form field (wallet page)
  Enter        - Submit the withdrawal / close a popup
  Ctrl+S       - Save a screenshot of the board
  Q/Ctrl+C     - Quit

Without --user the configured fallback user is used.

Examples:
  coinsnake play
  coinsnake play --user 12345 --name Rafi`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagUser, "user", "", "User ID to play as")
	playCmd.Flags().StringVar(&flagName, "name", "", "Display name")
}

func runPlay(_ *cobra.Command, _ []string) error {
	// Get terminal size
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	// The terminal belongs to the game; logs go to a file.
	logPath := filepath.Join(filepath.Dir(expandHome(appCfg.Storage.DBPath)), "coinsnake.log")
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
		defer f.Close()
		logger.SetOutput(f)
	} else {
		logger.SetOutput(io.Discard)
	}

	id := bridge.FallbackIdentity(appCfg.Bridge.FallbackUserID)
	if flagUser != "" {
		id = bridge.Identity{UserID: flagUser, FirstName: flagName}
	}

	factory := app.NewFactory(store, appCfg, logger)
	return tui.Run(factory, store, id, width, height)
}

// expandHome replaces a leading ~ with the home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
