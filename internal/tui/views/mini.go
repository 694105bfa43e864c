package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quartetgames/quartet/internal/access"
	"github.com/quartetgames/quartet/internal/engine"
	"github.com/quartetgames/quartet/internal/game"
	"github.com/quartetgames/quartet/internal/share"
)

var (
	miniCellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1faee")).
			Background(lipgloss.Color("#2d3436"))

	miniCellSelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#1a1a2e")).
				Background(lipgloss.Color("#ffe66d"))

	miniCellWordStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f1faee")).
				Background(lipgloss.Color("#3d5a80"))

	miniCellOkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1a1a2e")).
			Background(lipgloss.Color("#a8e6cf"))

	miniCellBadStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#1a1a2e")).
				Background(lipgloss.Color("#FF6B6B"))

	miniCellBlackStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("#0c0c12"))

	miniCountdownStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FF6B6B"))
)

// MiniModel plays the 5x5 crossword.
type MiniModel struct {
	record  *game.PuzzleRecord
	eng     *engine.MiniEngine
	denied  access.Reason
	loadErr error

	moveMsg string
	copied  bool

	width  int
	height int
}

// NewMiniModel creates an empty Mini view.
func NewMiniModel() MiniModel {
	return MiniModel{}
}

// SetSize updates the view dimensions.
func (m *MiniModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetSession installs a loaded puzzle and its engine.
func (m *MiniModel) SetSession(record *game.PuzzleRecord, eng *engine.MiniEngine) {
	m.record = record
	m.eng = eng
	m.denied = ""
	m.loadErr = nil
	m.moveMsg = ""
	m.copied = false
	eng.Start()
}

// SetDenied shows an access denial instead of a board.
func (m *MiniModel) SetDenied(reason access.Reason) {
	m.record, m.eng = nil, nil
	m.denied = reason
}

// SetError shows a load failure.
func (m *MiniModel) SetError(err error) {
	m.record, m.eng = nil, nil
	m.loadErr = err
}

// Update handles messages. TickMsg drives the hard-mode countdown even
// when no key arrives.
func (m MiniModel) Update(msg tea.Msg) (MiniModel, tea.Cmd) {
	if m.eng == nil {
		return m, nil
	}

	if _, ok := msg.(TickMsg); ok {
		m.eng.Tick()
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

	m.moveMsg = ""
	var err error
	switch key.String() {
	case "up":
		err = m.move(-1, 0)
	case "down":
		err = m.move(1, 0)
	case "left":
		err = m.move(0, -1)
	case "right":
		err = m.move(0, 1)
	case " ":
		err = m.eng.ToggleDirection()
	case "tab":
		err = m.eng.NextClueInSection()
	case "backspace":
		err = m.eng.Backspace()
	case "ctrl+a":
		_, _, _, autoCheck := m.assists()
		err = m.eng.SetAutoCheck(!autoCheck)
	case "ctrl+x":
		err = m.eng.CheckSquare()
	case "ctrl+w":
		err = m.eng.CheckWord()
	case "ctrl+p":
		err = m.eng.CheckPuzzle()
	case "ctrl+r":
		err = m.eng.RevealSquare()
	case "ctrl+t":
		err = m.eng.RevealWord()
	case "ctrl+g":
		err = m.eng.RevealPuzzle()
	default:
		if len(key.Runes) == 1 {
			r := key.Runes[0]
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				err = m.eng.EnterLetter(r)
			}
		}
	}
	if err != nil {
		m.moveMsg = moveErrText(err)
	}
	return m, nil
}

func (m *MiniModel) move(dr, dc int) error {
	c, _ := m.eng.Selected()
	row, col := c.Row+dr, c.Col+dc
	for row >= 0 && row < game.MiniSize && col >= 0 && col < game.MiniSize {
		if !m.record.Mini.IsBlack(row, col) {
			return m.eng.SelectCell(row, col)
		}
		row += dr
		col += dc
	}
	return nil
}

func (m *MiniModel) assists() (checks, reveals int, hard, autoCheck bool) {
	snap := m.eng.Snapshot()
	if snap.Mini == nil {
		return 0, 0, m.eng.HardMode(), false
	}
	return snap.Mini.ChecksUsed, snap.Mini.RevealsUsed, snap.Mini.HardMode, snap.Mini.AutoCheck
}

// View renders the grid and the active clue.
func (m MiniModel) View() string {
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
	title := fmt.Sprintf("Mini #%d", m.record.Number)
	if m.eng.HardMode() {
		title += " · HARD"
	}
	b.WriteString(gameTitleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(gameSubtitleStyle.Render(m.record.Date.Short()))
	b.WriteString("\n\n")

	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	if clue := m.eng.CurrentClue(); clue != nil && !m.eng.Status().Terminal() {
		b.WriteString(gameSubtitleStyle.Render(fmt.Sprintf("%d %s: %s", clue.Number, clue.Direction, clue.Text)))
		b.WriteString("\n")
	}

	if m.eng.HardMode() && !m.eng.Status().Terminal() {
		b.WriteString(miniCountdownStyle.Render("⏱ " + share.FormatElapsed(m.eng.RemainingMs())))
		b.WriteString("\n")
	}

	if m.eng.Status().Terminal() {
		b.WriteString(finishedBlock(m.eng, m.copied))
	} else {
		if m.moveMsg != "" {
			b.WriteString(hintStyle.Render(m.moveMsg))
			b.WriteString("\n")
		}
		b.WriteString(statusLine(m.eng))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("arrows: move • space: direction • tab: next clue"))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("^a autocheck • ^x/^w/^p check • ^r/^t reveal • ^g reveal all"))
	}
	return b.String()
}

func (m MiniModel) renderGrid() string {
	sel, dir := m.eng.Selected()
	inWord := m.wordCells(sel, dir)

	var rows []string
	for r := 0; r < game.MiniSize; r++ {
		var cells []string
		for c := 0; c < game.MiniSize; c++ {
			coord := game.Coord{Row: r, Col: c}
			if m.record.Mini.IsBlack(r, c) {
				cells = append(cells, miniCellBlackStyle.Render("   "))
				continue
			}
			ch := " "
			if letter := m.eng.Letter(r, c); letter != 0 && letter != '.' {
				ch = string(letter)
			}
			style := miniCellStyle
			switch {
			case coord == sel:
				style = miniCellSelStyle
			case m.eng.CellMarkedIncorrect(coord):
				style = miniCellBadStyle
			case m.eng.CellCorrect(coord) || m.eng.CellRevealed(coord):
				style = miniCellOkStyle
			case inWord[coord]:
				style = miniCellWordStyle
			}
			cells = append(cells, style.Render(" "+ch+" "))
		}
		rows = append(rows, strings.Join(cells, ""))
	}
	return strings.Join(rows, "\n")
}

// wordCells marks the cells of the word through the selection.
func (m MiniModel) wordCells(sel game.Coord, dir game.Direction) map[game.Coord]bool {
	out := make(map[game.Coord]bool)
	dr, dc := 0, 1
	if dir == game.Down {
		dr, dc = 1, 0
	}
	// Walk back to the word start, then forward across it.
	start := sel
	for start.Row-dr >= 0 && start.Col-dc >= 0 && !m.record.Mini.IsBlack(start.Row-dr, start.Col-dc) {
		start.Row -= dr
		start.Col -= dc
	}
	for start.Row < game.MiniSize && start.Col < game.MiniSize && !m.record.Mini.IsBlack(start.Row, start.Col) {
		out[start] = true
		start.Row += dr
		start.Col += dc
	}
	return out
}
