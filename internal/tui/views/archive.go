package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quartetgames/quartet/internal/access"
	"github.com/quartetgames/quartet/internal/game"
)

var (
	archiveDayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee"))

	archiveDayDoneStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a8e6cf"))

	archiveDayLockedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666"))

	archiveDayEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#2d3436"))

	archiveCursorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1a1a2e")).
				Background(lipgloss.Color("#ffe66d"))
)

// ArchiveMonthMsg delivers the availability and completion maps for one
// displayed month.
type ArchiveMonthMsg struct {
	Kind        game.Kind
	Year        int
	Month       time.Month
	Available   map[game.Date]bool
	Completed   map[game.Date]bool
	CatalogErr  error
	ProgressErr error
}

// ArchiveModel is the month calendar for browsing past puzzles.
type ArchiveModel struct {
	deps Deps

	kindIdx int
	year    int
	month   time.Month
	cursor  game.Date

	available map[game.Date]bool
	completed map[game.Date]bool
	loading   bool
	loadErr   error

	width  int
	height int
}

// NewArchiveModel creates the archive view anchored on the current month.
func NewArchiveModel(deps Deps) ArchiveModel {
	today := game.Today()
	return ArchiveModel{
		deps:   deps,
		year:   today.Year,
		month:  today.Month,
		cursor: today,
	}
}

// SetSize updates the view dimensions.
func (m *ArchiveModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m ArchiveModel) kind() game.Kind {
	return game.Kinds[m.kindIdx]
}

// Refresh fetches availability and completion for the displayed month.
func (m *ArchiveModel) Refresh() tea.Cmd {
	m.loading = true
	m.loadErr = nil
	kind, year, month := m.kind(), m.year, m.month
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		msg := ArchiveMonthMsg{Kind: kind, Year: year, Month: month}

		recs, err := deps.Catalog.MonthOf(ctx, kind, year, int(month))
		if err != nil {
			msg.CatalogErr = err
		}
		msg.Available = make(map[game.Date]bool, len(recs))
		for _, r := range recs {
			msg.Available[r.Date] = true
		}

		first := game.Date{Year: year, Month: month, Day: 1}
		last := first.AddDays(daysIn(year, month) - 1)
		done, err := deps.Progress.CompletedDatesInRange(ctx, kind, first, last)
		if err != nil {
			msg.ProgressErr = err
		}
		msg.Completed = done
		return msg
	}
}

// Update handles messages.
func (m ArchiveModel) Update(msg tea.Msg) (ArchiveModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ArchiveMonthMsg:
		// Stale month loads can arrive after further navigation.
		if msg.Kind != m.kind() || msg.Year != m.year || msg.Month != m.month {
			return m, nil
		}
		m.loading = false
		m.available = msg.Available
		m.completed = msg.Completed
		if msg.CatalogErr != nil {
			m.loadErr = msg.CatalogErr
		} else if msg.ProgressErr != nil {
			m.loadErr = msg.ProgressErr
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			m.cursor = m.clampToMonth(m.cursor.AddDays(-1))
		case "right", "l":
			m.cursor = m.clampToMonth(m.cursor.AddDays(1))
		case "up", "k":
			m.cursor = m.clampToMonth(m.cursor.AddDays(-7))
		case "down", "j":
			m.cursor = m.clampToMonth(m.cursor.AddDays(7))
		case "[", "pgup":
			return m.shiftMonth(-1)
		case "]", "pgdown":
			return m.shiftMonth(1)
		case "g":
			m.kindIdx = (m.kindIdx + 1) % len(game.Kinds)
			return m, m.Refresh()
		case "enter":
			if m.available[m.cursor] {
				return m, func() tea.Msg {
					return ShowGameMsg{Kind: m.kind(), Date: m.cursor}
				}
			}
		}
	}
	return m, nil
}

func (m ArchiveModel) shiftMonth(delta int) (ArchiveModel, tea.Cmd) {
	y, mo := m.year, int(m.month)+delta
	if mo < 1 {
		y, mo = y-1, 12
	}
	if mo > 12 {
		y, mo = y+1, 1
	}
	m.year, m.month = y, time.Month(mo)
	m.cursor = m.clampToMonth(game.Date{Year: y, Month: time.Month(mo), Day: m.cursor.Day})
	return m, m.Refresh()
}

// clampToMonth keeps the cursor inside the displayed month.
func (m ArchiveModel) clampToMonth(d game.Date) game.Date {
	days := daysIn(m.year, m.month)
	if d.Year != m.year || d.Month != m.month {
		day := d.Day
		if day > days {
			day = days
		}
		if day < 1 {
			day = 1
		}
		return game.Date{Year: m.year, Month: m.month, Day: day}
	}
	return d
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// View renders the calendar with completion and lock markers.
func (m ArchiveModel) View() string {
	var b strings.Builder
	kind := m.kind()
	b.WriteString(gameTitleStyle.Render("Archive · " + kind.DisplayName()))
	b.WriteString("\n")
	b.WriteString(gameSubtitleStyle.Render(fmt.Sprintf("%s %d", m.month, m.year)))
	b.WriteString("\n\n")

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Couldn't load the month: " + m.loadErr.Error()))
		b.WriteString("\n\n")
	} else if m.loading {
		b.WriteString(mutedStyle.Render("Loading..."))
		b.WriteString("\n\n")
	}

	b.WriteString(mutedStyle.Render("Mo Tu We Th Fr Sa Su"))
	b.WriteString("\n")
	b.WriteString(m.renderCalendar())
	b.WriteString("\n")

	b.WriteString(m.renderCursorNote())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("arrows: day • [ ]: month • g: game • enter: play"))
	return b.String()
}

func (m ArchiveModel) renderCalendar() string {
	today := game.Today()
	days := daysIn(m.year, m.month)

	// Monday-first column for day 1.
	weekday := int(time.Date(m.year, m.month, 1, 12, 0, 0, 0, time.UTC).Weekday())
	col := (weekday + 6) % 7

	var b strings.Builder
	b.WriteString(strings.Repeat("   ", col))
	for day := 1; day <= days; day++ {
		d := game.Date{Year: m.year, Month: m.month, Day: day}
		cell := fmt.Sprintf("%2d", day)

		style := archiveDayEmptyStyle
		if m.available[d] {
			decision := access.Decide(m.kind(), d, today, m.deps.Settings.Subscribed)
			switch {
			case m.completed[d]:
				style = archiveDayDoneStyle
			case !decision.Allowed:
				style = archiveDayLockedStyle
			default:
				style = archiveDayStyle
			}
		}
		if d == m.cursor {
			style = archiveCursorStyle
		}
		b.WriteString(style.Render(cell))
		b.WriteString(" ")

		col++
		if col == 7 && day != days {
			b.WriteString("\n")
			col = 0
		}
	}
	b.WriteString("\n")
	return b.String()
}

// renderCursorNote explains the state of the highlighted date.
func (m ArchiveModel) renderCursorNote() string {
	if !m.available[m.cursor] {
		return mutedStyle.Render(m.cursor.Short() + ": no puzzle")
	}
	decision := access.Decide(m.kind(), m.cursor, game.Today(), m.deps.Settings.Subscribed)
	switch {
	case m.completed[m.cursor]:
		return archiveDayDoneStyle.Render(m.cursor.Short() + ": completed ✓")
	case decision.Reason == access.ReasonArchiveLocked:
		return hintStyle.Render(m.cursor.Short() + ": subscription required")
	case decision.Reason == access.ReasonFuture:
		return mutedStyle.Render(m.cursor.Short() + ": not out yet")
	}
	return archiveDayStyle.Render(fmt.Sprintf("%s: %s #%d", m.cursor.Short(), m.kind().DisplayName(), m.kind().NumberFor(m.cursor)))
}
