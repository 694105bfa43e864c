// Package views holds the per-screen bubbletea sub-models of the
// Quartet shell: one view per game plus the archive calendar and stats.
package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quartetgames/quartet/internal/access"
	"github.com/quartetgames/quartet/internal/catalog"
	"github.com/quartetgames/quartet/internal/clipboard"
	"github.com/quartetgames/quartet/internal/config"
	"github.com/quartetgames/quartet/internal/engine"
	"github.com/quartetgames/quartet/internal/game"
	"github.com/quartetgames/quartet/internal/progress"
	"github.com/quartetgames/quartet/internal/share"
)

// Deps bundles the stores every view works against.
type Deps struct {
	Catalog  *catalog.Store
	Progress progress.Store
	Saver    engine.Saver
	Registry *engine.Registry
	Settings *config.Settings
}

// PuzzleLoadedMsg delivers the outcome of a puzzle load: either a
// record (plus any saved history) or an access denial or error.
type PuzzleLoadedMsg struct {
	Kind   game.Kind
	Date   game.Date
	Record *game.PuzzleRecord
	Entry  *game.HistoryEntry
	Denied access.Reason
	Err    error
}

// ShowGameMsg asks the app to open a game view at a date, sent by the
// archive calendar.
type ShowGameMsg struct {
	Kind game.Kind
	Date game.Date
}

// TickMsg drives the elapsed display and the hard-mode countdown.
type TickMsg time.Time

// Tick schedules the next once-per-second tick.
func Tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// LoadPuzzle checks access and fetches the record and saved progress.
func LoadPuzzle(deps Deps, kind game.Kind, date game.Date) tea.Cmd {
	return func() tea.Msg {
		today := game.Today()
		msg := PuzzleLoadedMsg{Kind: kind, Date: date}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		decision := access.Decide(kind, date, today, deps.Settings.Subscribed)
		if !decision.Allowed {
			msg.Denied = decision.Reason
			return msg
		}
		rec, err := deps.Catalog.ByDate(ctx, kind, date)
		if err != nil {
			msg.Err = err
			return msg
		}
		if rec == nil {
			msg.Denied = access.ReasonNoPuzzle
			return msg
		}
		msg.Record = rec

		entry, err := deps.Progress.Load(ctx, kind, date)
		if err != nil {
			// Saved progress is a bonus; the puzzle still opens.
			entry = nil
		}
		msg.Entry = entry
		return msg
	}
}

// ResumableSnapshot extracts a snapshot worth adopting, if any.
func ResumableSnapshot(entry *game.HistoryEntry) *game.Snapshot {
	if entry == nil || entry.Result != nil {
		return nil
	}
	return entry.Partial
}

// Shared view styles
var (
	gameTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	gameSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4ecdc4"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8e6cf")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffe66d"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	shareBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ecdc4")).
			Padding(1, 2).
			Margin(1, 0)
)

// statusLine renders the common session footer.
func statusLine(eng engine.Engine) string {
	snap := eng.Snapshot()
	return mutedStyle.Render(fmt.Sprintf("Time %s · Mistakes %d · Hints %d",
		share.FormatElapsed(eng.CurrentElapsedMs()), snap.Mistakes, snap.HintsUsed))
}

// finishedBlock renders the terminal-state summary with the share text.
func finishedBlock(eng engine.Engine, copied bool) string {
	res, err := eng.Result()
	if err != nil {
		return ""
	}
	var b strings.Builder
	if res.Won {
		b.WriteString(successStyle.Render("Solved!"))
	} else {
		b.WriteString(errorStyle.Render("Out of luck this time."))
	}
	b.WriteString("\n")
	b.WriteString(shareBoxStyle.Render(share.Format(res)))
	b.WriteString("\n")
	if copied {
		b.WriteString(successStyle.Render("Copied to clipboard"))
	} else {
		b.WriteString(helpStyle.Render("y: copy share text"))
	}
	return b.String()
}

// copyShare writes the share text for a finished session.
func copyShare(eng engine.Engine) bool {
	res, err := eng.Result()
	if err != nil {
		return false
	}
	return clipboard.Write(share.Format(res)) == nil
}

// deniedView explains an access denial.
func deniedView(reason access.Reason) string {
	switch reason {
	case access.ReasonFuture:
		return mutedStyle.Render("That puzzle isn't out yet.")
	case access.ReasonArchiveLocked:
		return mutedStyle.Render("Archive puzzles need a subscription. Toggle it in settings.yaml.")
	case access.ReasonNoPuzzle:
		return mutedStyle.Render("No puzzle for that date.")
	}
	return mutedStyle.Render("Unavailable.")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
