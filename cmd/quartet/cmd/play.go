package cmd

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/quartetgames/quartet/internal/access"
	"github.com/quartetgames/quartet/internal/game"
	"github.com/quartetgames/quartet/internal/tui"
)

var playDate string

var playCmd = &cobra.Command{
	Use:   "play <game or deep link>",
	Short: "Open one game directly",
	Long: `Open the TUI on a specific game.

The argument is a game name (tandem, mini, reel, cryptic) or a deep
link of the form /mini?date=2025-11-10. A game name combines with
--date; a bare name opens today's puzzle.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playDate, "date", "", "puzzle date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	kind, date, err := resolveTarget(args[0], playDate)
	if err != nil {
		return err
	}

	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.Progress.Close()

	p := tea.NewProgram(tui.NewAppAt(deps, kind, date), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// resolveTarget turns a game name or deep link plus an optional date flag
// into a (kind, date) pair.
func resolveTarget(arg, dateFlag string) (game.Kind, game.Date, error) {
	today := game.Today()

	if strings.HasPrefix(arg, "/") {
		if dateFlag != "" {
			return "", game.Date{}, fmt.Errorf("--date conflicts with a deep link")
		}
		return access.ParseDeepLink(arg, today)
	}

	kind, err := game.ParseKind(arg)
	if err != nil {
		return "", game.Date{}, err
	}
	date := today
	if dateFlag != "" {
		if date, err = game.ParseDate(dateFlag); err != nil {
			return "", game.Date{}, err
		}
	}
	return kind, date, nil
}
