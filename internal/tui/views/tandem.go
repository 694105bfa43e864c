package views

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/quartetgames/quartet/internal/access"
	"github.com/quartetgames/quartet/internal/engine"
	"github.com/quartetgames/quartet/internal/game"
)

var (
	tandemLockedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#a8e6cf"))

	tandemGuessStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f1faee"))

	tandemActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#ffe66d")).
				Background(lipgloss.Color("#2d3436")).
				Padding(0, 1)

	tandemRowStyle = lipgloss.NewStyle().
			Padding(0, 1)
)

// TandemModel plays the emoji pair game.
type TandemModel struct {
	record  *game.PuzzleRecord
	eng     *engine.TandemEngine
	denied  access.Reason
	loadErr error

	selected int
	moveMsg  string
	copied   bool

	width  int
	height int
}

// NewTandemModel creates an empty Tandem view; the app hands it a
// session once the puzzle loads.
func NewTandemModel() TandemModel {
	return TandemModel{}
}

// SetSize updates the view dimensions.
func (m *TandemModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetSession installs a loaded puzzle and its engine.
func (m *TandemModel) SetSession(record *game.PuzzleRecord, eng *engine.TandemEngine) {
	m.record = record
	m.eng = eng
	m.denied = ""
	m.loadErr = nil
	m.selected = 0
	m.moveMsg = ""
	m.copied = false
	eng.Start()
}

// SetDenied shows an access denial instead of a board.
func (m *TandemModel) SetDenied(reason access.Reason) {
	m.record, m.eng = nil, nil
	m.denied = reason
}

// SetError shows a load failure.
func (m *TandemModel) SetError(err error) {
	m.record, m.eng = nil, nil
	m.loadErr = err
}

// Update handles messages.
func (m TandemModel) Update(msg tea.Msg) (TandemModel, tea.Cmd) {
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

	m.moveMsg = ""
	switch key.String() {
	case "tab", "down":
		m.selected = (m.selected + 1) % 4
	case "shift+tab", "up":
		m.selected = (m.selected + 3) % 4
	case "enter":
		m.submit()
	case "backspace":
		_, _, guess := m.eng.Pair(m.selected)
		if guess != "" {
			m.applyGuess(guess[:len(guess)-1])
		}
	case "ctrl+h":
		if err := m.eng.UseHintOn(m.selected); err != nil {
			m.moveMsg = moveErrText(err)
		}
	default:
		if len(key.Runes) == 1 {
			r := key.Runes[0]
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				_, _, guess := m.eng.Pair(m.selected)
				m.applyGuess(guess + string(r))
			}
		}
	}
	return m, nil
}

func (m *TandemModel) applyGuess(guess string) {
	if err := m.eng.SetGuess(m.selected, guess); err != nil {
		m.moveMsg = moveErrText(err)
	}
}

func (m *TandemModel) submit() {
	err := m.eng.SubmitGuess(m.selected)
	switch {
	case err == nil:
		if solved, _, _ := m.eng.Pair(m.selected); solved {
			m.moveMsg = "Pair solved!"
		} else {
			m.moveMsg = "Not quite. Correct letters stay locked."
		}
	default:
		m.moveMsg = moveErrText(err)
	}
}

// moveErrText turns engine errors into one-line feedback.
func moveErrText(err error) string {
	var invalid *engine.InvalidMoveError
	if errors.As(err, &invalid) {
		return invalid.Msg
	}
	return err.Error()
}

// View renders the board.
func (m TandemModel) View() string {
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
	b.WriteString(gameTitleStyle.Render(fmt.Sprintf("Tandem #%d", m.record.Number)))
	b.WriteString("\n")
	b.WriteString(gameSubtitleStyle.Render(m.record.Date.Short()))
	b.WriteString("\n\n")

	for i, pair := range m.record.Tandem.Pairs {
		b.WriteString(m.renderPair(i, pair))
		b.WriteString("\n")
	}

	if theme := m.eng.Theme(); theme != "" {
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("Theme: " + theme))
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
		b.WriteString(helpStyle.Render("type to guess • enter: submit • tab: next pair • ctrl+h: reveal a letter"))
	}
	return b.String()
}

// renderPair draws one emoji pair with its guess slots. Solved letters
// and smart-locked letters render green; the rest show the live guess.
func (m TandemModel) renderPair(i int, pair game.Pair) string {
	solved, locked, guess := m.eng.Pair(i)

	// Emoji cells vary in display width; pad to keep answers aligned.
	emoji := pair.Emoji1 + pair.Emoji2
	emoji += strings.Repeat(" ", maxInt(0, 6-runewidth.StringWidth(emoji)))

	var slots []string
	for pos := 0; pos < len(pair.Answer); pos++ {
		ch := "_"
		style := tandemGuessStyle
		switch {
		case solved:
			ch = string(pair.Answer[pos])
			style = tandemLockedStyle
		case pos < len(locked) && locked[pos]:
			ch = string(pair.Answer[pos])
			style = tandemLockedStyle
		case pos < len(guess):
			ch = string(guess[pos])
		}
		slots = append(slots, style.Render(ch))
	}

	row := emoji + " " + strings.Join(slots, " ")
	if i == m.selected && !solved {
		return tandemActiveStyle.Render(row)
	}
	return tandemRowStyle.Render(row)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
