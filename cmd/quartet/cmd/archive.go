package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quartetgames/quartet/internal/access"
	"github.com/quartetgames/quartet/internal/game"
)

var archiveMonth string

var archiveCmd = &cobra.Command{
	Use:   "archive <game>",
	Short: "List a month of puzzles with your progress",
	Long: `List one game's puzzles for a month, marking completed dates and
dates the archive has locked behind the subscription flag.`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().StringVar(&archiveMonth, "month", "", "month to list (YYYY-MM, default current)")
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) error {
	kind, err := game.ParseKind(args[0])
	if err != nil {
		return err
	}

	today := game.Today()
	year, month := today.Year, int(today.Month)
	if archiveMonth != "" {
		if _, err := fmt.Sscanf(archiveMonth, "%d-%d", &year, &month); err != nil || month < 1 || month > 12 {
			return fmt.Errorf("invalid month %q, want YYYY-MM", archiveMonth)
		}
	}

	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.Progress.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	records, err := deps.Catalog.MonthOf(ctx, kind, year, month)
	if err != nil {
		return fmt.Errorf("listing %s %04d-%02d: %w", kind, year, month, err)
	}
	if len(records) == 0 {
		fmt.Printf("No %s puzzles in %04d-%02d.\n", kind.DisplayName(), year, month)
		return nil
	}

	first := game.Date{Year: year, Month: time.Month(month), Day: 1}
	last := first.AddDays(31)
	done, err := deps.Progress.CompletedDatesInRange(ctx, kind, first, last)
	if err != nil {
		return fmt.Errorf("reading progress: %w", err)
	}

	fmt.Printf("%s, %04d-%02d\n", kind.DisplayName(), year, month)
	for _, rec := range records {
		mark := " "
		note := ""
		decision := access.Decide(kind, rec.Date, today, deps.Settings.Subscribed)
		switch {
		case done[rec.Date]:
			mark = "✓"
		case !decision.Allowed && decision.Reason == access.ReasonArchiveLocked:
			note = " (locked)"
		}
		fmt.Printf("  %s %s  #%d%s\n", mark, rec.Date, rec.Number, note)
	}
	return nil
}
