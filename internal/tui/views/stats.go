package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quartetgames/quartet/internal/game"
	"github.com/quartetgames/quartet/internal/share"
	"github.com/quartetgames/quartet/internal/stats"
)

var (
	statsHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#4ecdc4")).
				MarginTop(1)

	statsLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Width(14)

	statsValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))

	statsBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a8e6cf"))
)

// StatsLoadedMsg delivers the per-kind aggregates.
type StatsLoadedMsg struct {
	Aggregates map[game.Kind]*stats.Aggregate
	Err        error
}

// StatsModel shows the aggregate record per game.
type StatsModel struct {
	deps Deps

	kindIdx    int
	aggregates map[game.Kind]*stats.Aggregate
	loading    bool
	loadErr    error

	width  int
	height int
}

// NewStatsModel creates the stats view.
func NewStatsModel(deps Deps) StatsModel {
	return StatsModel{deps: deps}
}

// SetSize updates the view dimensions.
func (m *StatsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Refresh recomputes all aggregates from the result log.
func (m *StatsModel) Refresh() tea.Cmd {
	m.loading = true
	m.loadErr = nil
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		today := game.Today()
		out := make(map[game.Kind]*stats.Aggregate, len(game.Kinds))
		for _, kind := range game.Kinds {
			results, err := deps.Progress.AllResults(ctx, kind)
			if err != nil {
				return StatsLoadedMsg{Err: err}
			}
			out[kind] = stats.Compute(kind, results, today)
		}
		return StatsLoadedMsg{Aggregates: out}
	}
}

// Update handles messages.
func (m StatsModel) Update(msg tea.Msg) (StatsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case StatsLoadedMsg:
		m.loading = false
		m.loadErr = msg.Err
		if msg.Err == nil {
			m.aggregates = msg.Aggregates
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.kindIdx = (m.kindIdx + len(game.Kinds) - 1) % len(game.Kinds)
		case "right", "l", "tab":
			m.kindIdx = (m.kindIdx + 1) % len(game.Kinds)
		}
	}
	return m, nil
}

// View renders one game's aggregate with a kind switcher.
func (m StatsModel) View() string {
	var b strings.Builder
	b.WriteString(gameTitleStyle.Render("Statistics"))
	b.WriteString("\n")

	var tabs []string
	for i, kind := range game.Kinds {
		name := kind.DisplayName()
		if i == m.kindIdx {
			tabs = append(tabs, successStyle.Render("["+name+"]"))
		} else {
			tabs = append(tabs, mutedStyle.Render(" "+name+" "))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n")

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Couldn't load results: " + m.loadErr.Error()))
		return b.String()
	}
	if m.loading || m.aggregates == nil {
		b.WriteString(mutedStyle.Render("Loading..."))
		return b.String()
	}

	agg := m.aggregates[game.Kinds[m.kindIdx]]
	b.WriteString(m.renderAggregate(agg))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: switch game"))
	return b.String()
}

func (m StatsModel) renderAggregate(agg *stats.Aggregate) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(statsLabelStyle.Render(label))
		b.WriteString(statsValueStyle.Render(value))
		b.WriteString("\n")
	}

	b.WriteString(statsHeaderStyle.Render("Record"))
	b.WriteString("\n")
	row("Played", fmt.Sprintf("%d", agg.Plays))
	row("Won", fmt.Sprintf("%d (%.0f%%)", agg.Wins, agg.WinRate*100))
	row("Streak", fmt.Sprintf("%d", agg.CurrentStreak))
	row("Max streak", fmt.Sprintf("%d", agg.MaxStreak))

	if agg.Wins > 0 {
		b.WriteString(statsHeaderStyle.Render("Times"))
		b.WriteString("\n")
		row("Best win", share.FormatElapsed(agg.BestWinMs))
		row("Average win", share.FormatElapsed(agg.AvgWinMs))
	}

	if agg.Plays > 0 {
		b.WriteString(statsHeaderStyle.Render("Assists"))
		b.WriteString("\n")
		row("Hints used", fmt.Sprintf("%d", agg.HintsTotal))
		row("Avg mistakes", fmt.Sprintf("%.1f", agg.MistakesAvgPerPlay))
	}

	if len(agg.DistributionByDifficulty) > 0 {
		b.WriteString(statsHeaderStyle.Render("Difficulty"))
		b.WriteString("\n")
		for _, rating := range game.Ratings {
			n := agg.DistributionByDifficulty[rating]
			if n == 0 {
				continue
			}
			bar := statsBarStyle.Render(strings.Repeat("█", minInt(n, 30)))
			row(string(rating), fmt.Sprintf("%s %d", bar, n))
		}
	}
	return b.String()
}
