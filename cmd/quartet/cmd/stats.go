package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quartetgames/quartet/internal/game"
	"github.com/quartetgames/quartet/internal/share"
	"github.com/quartetgames/quartet/internal/stats"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats [game]",
	Short: "Show aggregate statistics",
	Long:  `Show plays, wins, streaks and times for one game or for all four.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "emit JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	kinds := game.Kinds
	if len(args) == 1 {
		kind, err := game.ParseKind(args[0])
		if err != nil {
			return err
		}
		kinds = []game.Kind{kind}
	}

	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.Progress.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	today := game.Today()
	aggregates := make([]*stats.Aggregate, 0, len(kinds))
	for _, kind := range kinds {
		results, err := deps.Progress.AllResults(ctx, kind)
		if err != nil {
			return fmt.Errorf("reading %s results: %w", kind, err)
		}
		aggregates = append(aggregates, stats.Compute(kind, results, today))
	}

	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(aggregates)
	}

	for _, agg := range aggregates {
		fmt.Printf("%s\n", agg.Kind.DisplayName())
		fmt.Printf("  Played       %d\n", agg.Plays)
		fmt.Printf("  Won          %d (%.0f%%)\n", agg.Wins, agg.WinRate*100)
		fmt.Printf("  Streak       %d (max %d)\n", agg.CurrentStreak, agg.MaxStreak)
		if agg.Wins > 0 {
			fmt.Printf("  Best win     %s\n", share.FormatElapsed(agg.BestWinMs))
			fmt.Printf("  Average win  %s\n", share.FormatElapsed(agg.AvgWinMs))
		}
		if agg.Plays > 0 {
			fmt.Printf("  Hints        %d\n", agg.HintsTotal)
			fmt.Printf("  Avg mistakes %.1f\n", agg.MistakesAvgPerPlay)
		}
		fmt.Println()
	}
	return nil
}
