package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/coin-snake/internal/platform/tui"
)

var (
	flagScoresUser string
	flagScoresTop  int
	flagScoresTUI  bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show high scores",
	Long: `Display the best scores across all players, or one player's games.

Examples:
  coinsnake scores
  coinsnake scores --top 25
  coinsnake scores --user 12345
  coinsnake scores --tui --user 12345`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresUser, "user", "", "Show this player's games")
	scoresCmd.Flags().IntVar(&flagScoresTop, "top", 10, "Number of scores to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse scores interactively")
}

func runScores(cmd *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if flagScoresTUI {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		return tui.RunScoreboard(store, flagScoresUser, width, height)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if flagScoresUser == "" {
		scores, err := store.TopScores(ctx, flagScoresTop)
		if err != nil {
			return fmt.Errorf("cannot retrieve scores: %w", err)
		}
		fmt.Println("High Scores")
		fmt.Println()
		if len(scores) == 0 {
			fmt.Println("No scores recorded yet.")
			fmt.Println()
			fmt.Println("Play 'coinsnake play' to set the first high score!")
			return nil
		}

		// Print header
		fmt.Printf("  %-4s  %-20s  %-10s  %s\n", "Rank", "Player", "Score", "Date")
		fmt.Printf("  %-4s  %-20s  %-10s  %s\n", "----", "------", "-----", "----")
		for i, entry := range scores {
			dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
			fmt.Printf("  %-4d  %-20s  %-10d  %s\n", i+1, entry.UserID, entry.Score, dateStr)
		}
		return nil
	}

	scores, err := store.UserScores(ctx, flagScoresUser, flagScoresTop)
	if err != nil {
		return fmt.Errorf("cannot retrieve scores: %w", err)
	}
	stats, err := store.GetUserStats(ctx, flagScoresUser)
	if err != nil {
		return fmt.Errorf("cannot retrieve stats: %w", err)
	}

	fmt.Printf("Games of %s\n", flagScoresUser)
	fmt.Println()
	if stats.GamesCount == 0 {
		fmt.Println("No games recorded yet.")
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "#", "Score", "Played")
	fmt.Printf("  %-4s  %-10s  %s\n", "-", "-----", "------")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, humanize.Time(entry.CreatedAt))
	}

	// Show summary
	fmt.Println()
	fmt.Printf("Games: %d  Best: %d  Average: %.1f  Coins earned: %s\n",
		stats.GamesCount, stats.HighScore, stats.AvgScore, humanize.Comma(stats.TotalScore))
	return nil
}
