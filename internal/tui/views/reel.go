package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quartetgames/quartet/internal/access"
	"github.com/quartetgames/quartet/internal/engine"
	"github.com/quartetgames/quartet/internal/game"
)

var (
	reelTileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee")).
			Background(lipgloss.Color("#2d3436")).
			Padding(0, 1)

	reelTileCursorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1a1a2e")).
				Background(lipgloss.Color("#ffe66d")).
				Padding(0, 1)

	reelTileSelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1a1a2e")).
				Background(lipgloss.Color("#4ecdc4")).
				Padding(0, 1)

	reelGroupStyles = map[game.Difficulty]lipgloss.Style{
		game.Easiest: lipgloss.NewStyle().Foreground(lipgloss.Color("#1a1a2e")).Background(lipgloss.Color("#ffe66d")).Padding(0, 1),
		game.Easy:    lipgloss.NewStyle().Foreground(lipgloss.Color("#1a1a2e")).Background(lipgloss.Color("#a8e6cf")).Padding(0, 1),
		game.Medium:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f1faee")).Background(lipgloss.Color("#3d5a80")).Padding(0, 1),
		game.Hardest: lipgloss.NewStyle().Foreground(lipgloss.Color("#f1faee")).Background(lipgloss.Color("#7d3c98")).Padding(0, 1),
	}
)

// ReelModel plays the movie grouping game.
type ReelModel struct {
	record  *game.PuzzleRecord
	eng     *engine.ReelEngine
	denied  access.Reason
	loadErr error

	cursor  int
	moveMsg string
	copied  bool

	width  int
	height int
}

// NewReelModel creates an empty Reel view.
func NewReelModel() ReelModel {
	return ReelModel{}
}

// SetSize updates the view dimensions.
func (m *ReelModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetSession installs a loaded puzzle and its engine.
func (m *ReelModel) SetSession(record *game.PuzzleRecord, eng *engine.ReelEngine) {
	m.record = record
	m.eng = eng
	m.denied = ""
	m.loadErr = nil
	m.cursor = 0
	m.moveMsg = ""
	m.copied = false
	eng.Start()
}

// SetDenied shows an access denial instead of a board.
func (m *ReelModel) SetDenied(reason access.Reason) {
	m.record, m.eng = nil, nil
	m.denied = reason
}

// SetError shows a load failure.
func (m *ReelModel) SetError(err error) {
	m.record, m.eng = nil, nil
	m.loadErr = err
}

// Update handles messages.
func (m ReelModel) Update(msg tea.Msg) (ReelModel, tea.Cmd) {
	if m.eng == nil {
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.eng.Status().Terminal() {
		if key.String() == "y" {
			m.copied = copyShare(m.eng)
		}
		return m, nil
	}

	remaining := m.eng.Order()
	m.clampCursor(len(remaining))

	m.moveMsg = ""
	var err error
	switch key.String() {
	case "left", "h":
		m.cursor--
	case "right", "l":
		m.cursor++
	case "up", "k":
		m.cursor -= 4
	case "down", "j":
		m.cursor += 4
	case " ":
		if len(remaining) > 0 {
			err = m.eng.Toggle(remaining[m.cursor])
		}
	case "d":
		err = m.eng.Deselect()
	case "s":
		err = m.eng.Shuffle()
	case "ctrl+h":
		var g *game.Group
		if g, err = m.eng.UseHint(); err == nil {
			m.moveMsg = "Connection: " + g.Connection
		}
	case "enter":
		var out engine.SubmitOutcome
		out, err = m.eng.Submit()
		switch {
		case err != nil:
		case out.Correct:
			m.moveMsg = fmt.Sprintf("%s! (%s)", out.Group.Connection, out.Group.Difficulty)
		case out.OneAway:
			m.moveMsg = "One away..."
		default:
			m.moveMsg = "Nope."
		}
	}
	m.clampCursor(len(remaining))
	if err != nil {
		m.moveMsg = moveErrText(err)
	}
	return m, nil
}

func (m *ReelModel) clampCursor(n int) {
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m ReelModel) movieByID(id string) *game.Movie {
	for i := range m.record.Reel.Movies {
		if m.record.Reel.Movies[i].ID == id {
			return &m.record.Reel.Movies[i]
		}
	}
	return nil
}

func (m ReelModel) isSelected(id string) bool {
	for _, s := range m.eng.Selected() {
		if s == id {
			return true
		}
	}
	return false
}

// View renders solved groups on top, then the remaining tiles.
func (m ReelModel) View() string {
	if m.loadErr != nil {
		return errorStyle.Render("Couldn't load the puzzle: " + m.loadErr.Error())
	}
	if m.denied != "" {
		return deniedView(m.denied)
	}
	if m.eng == nil {
		return mutedStyle.Render("Loading...")
	}

	var b strings.Builder
	b.WriteString(gameTitleStyle.Render(fmt.Sprintf("Reel #%d", m.record.Number)))
	b.WriteString("\n")
	b.WriteString(gameSubtitleStyle.Render(m.record.Date.Short()))
	b.WriteString("\n\n")

	for _, gid := range m.eng.SolvedGroups() {
		b.WriteString(m.renderGroup(gid))
		b.WriteString("\n")
	}

	terminal := m.eng.Status().Terminal()
	if terminal && m.eng.Status() == game.StatusLost {
		// Reveal the unsolved groups in difficulty order.
		for _, id := range m.unsolvedRevealOrder() {
			b.WriteString(m.renderGroup(id))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(m.renderTiles())
	}

	if hinted := m.eng.HintedGroup(); hinted != "" && !terminal {
		if g := m.record.Reel.GroupByID(hinted); g != nil {
			b.WriteString(hintStyle.Render("Hint: one group is \"" + g.Connection + "\""))
			b.WriteString("\n")
		}
	}

	if terminal {
		b.WriteString(finishedBlock(m.eng, m.copied))
	} else {
		if m.moveMsg != "" {
			b.WriteString(hintStyle.Render(m.moveMsg))
			b.WriteString("\n")
		}
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Selected %d/4", len(m.eng.Selected()))))
		b.WriteString("\n")
		b.WriteString(statusLine(m.eng))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("space: select • enter: submit • d: deselect • s: shuffle • ctrl+h: hint"))
	}
	return b.String()
}

// unsolvedRevealOrder lists the group ids RevealOrder adds after the
// solved ones.
func (m ReelModel) unsolvedRevealOrder() []string {
	solved := make(map[string]bool)
	for _, id := range m.eng.SolvedGroups() {
		solved[id] = true
	}
	var out []string
	for _, id := range m.eng.RevealOrder() {
		if !solved[id] {
			out = append(out, id)
		}
	}
	return out
}

func (m ReelModel) renderGroup(id string) string {
	g := m.record.Reel.GroupByID(id)
	if g == nil {
		return ""
	}
	style, ok := reelGroupStyles[g.Difficulty]
	if !ok {
		style = reelTileStyle
	}
	var titles []string
	for _, mid := range g.MovieIDs {
		if mv := m.movieByID(mid); mv != nil {
			titles = append(titles, mv.Title)
		}
	}
	return style.Render(g.Connection + ": " + strings.Join(titles, " · "))
}

func (m ReelModel) renderTiles() string {
	remaining := m.eng.Order()

	// Pad titles so the 4-wide grid stays aligned.
	widest := 0
	for _, id := range remaining {
		if mv := m.movieByID(id); mv != nil && len(mv.Title) > widest {
			widest = len(mv.Title)
		}
	}

	var b strings.Builder
	for i, id := range remaining {
		mv := m.movieByID(id)
		if mv == nil {
			continue
		}
		title := mv.Title + strings.Repeat(" ", widest-len(mv.Title))
		style := reelTileStyle
		switch {
		case i == m.cursor:
			style = reelTileCursorStyle
		case m.isSelected(id):
			style = reelTileSelStyle
		}
		b.WriteString(style.Render(title))
		if (i+1)%4 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}
