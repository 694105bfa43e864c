package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quartetgames/quartet/internal/access"
	"github.com/quartetgames/quartet/internal/engine"
	"github.com/quartetgames/quartet/internal/game"
)

var crypticClueStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#f1faee")).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#3d5a80")).
	Padding(0, 2).
	MarginBottom(1)

// CrypticModel plays the daily cryptic clue.
type CrypticModel struct {
	record  *game.PuzzleRecord
	eng     *engine.CrypticEngine
	denied  access.Reason
	loadErr error

	input   textinput.Model
	moveMsg string
	copied  bool

	width  int
	height int
}

// NewCrypticModel creates an empty Cryptic view.
func NewCrypticModel() CrypticModel {
	ti := textinput.New()
	ti.Placeholder = "Your answer..."
	ti.CharLimit = 40
	ti.Width = 30
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ecdc4"))
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffe66d"))
	return CrypticModel{input: ti}
}

// SetSize updates the view dimensions.
func (m *CrypticModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetSession installs a loaded puzzle and its engine.
func (m *CrypticModel) SetSession(record *game.PuzzleRecord, eng *engine.CrypticEngine) {
	m.record = record
	m.eng = eng
	m.denied = ""
	m.loadErr = nil
	m.moveMsg = ""
	m.copied = false
	m.input.SetValue(eng.Answer())
	m.input.Focus()
	eng.Start()
}

// SetDenied shows an access denial instead of the clue.
func (m *CrypticModel) SetDenied(reason access.Reason) {
	m.record, m.eng = nil, nil
	m.denied = reason
}

// SetError shows a load failure.
func (m *CrypticModel) SetError(err error) {
	m.record, m.eng = nil, nil
	m.loadErr = err
}

// Focus returns the text input's cursor blink command.
func (m CrypticModel) Focus() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m CrypticModel) Update(msg tea.Msg) (CrypticModel, tea.Cmd) {
	if m.eng == nil {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		if m.eng.Status().Terminal() {
			if key.String() == "y" {
				m.copied = copyShare(m.eng)
			}
			return m, nil
		}

		switch key.String() {
		case "enter":
			m.moveMsg = ""
			if err := m.eng.CheckAnswer(); err != nil {
				m.moveMsg = moveErrText(err)
			} else if !m.eng.Status().Terminal() {
				m.moveMsg = "Not it. Try again."
			}
			return m, nil
		case "ctrl+h":
			m.moveMsg = ""
			if _, err := m.eng.UseHint(); err != nil {
				m.moveMsg = moveErrText(err)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.eng.Answer() {
		if err := m.eng.SetAnswer(v); err != nil {
			m.moveMsg = moveErrText(err)
		}
	}
	return m, cmd
}

// View renders the clue, the hint ladder, and the answer input.
func (m CrypticModel) View() string {
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
	b.WriteString(gameTitleStyle.Render(fmt.Sprintf("Cryptic #%d", m.record.Number)))
	b.WriteString("\n")
	b.WriteString(gameSubtitleStyle.Render(m.record.Date.Short()))
	b.WriteString("\n\n")

	b.WriteString(crypticClueStyle.Render(m.record.Cryptic.Text))
	b.WriteString("\n")

	for i, hint := range m.eng.UnlockedHints() {
		b.WriteString(hintStyle.Render(fmt.Sprintf("Hint %d: %s", i+1, hint)))
		b.WriteString("\n")
	}

	if m.eng.Status().Terminal() {
		if m.eng.Status() == game.StatusWon {
			b.WriteString(successStyle.Render(m.record.Cryptic.Answer))
			b.WriteString("\n")
		}
		b.WriteString(finishedBlock(m.eng, m.copied))
	} else {
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.moveMsg != "" {
			b.WriteString(hintStyle.Render(m.moveMsg))
			b.WriteString("\n")
		}
		b.WriteString(statusLine(m.eng))
		b.WriteString("\n")
		remaining := len(m.record.Cryptic.Hints) - len(m.eng.UnlockedHints())
		b.WriteString(helpStyle.Render(fmt.Sprintf("enter: check • ctrl+h: hint (%d left)", remaining)))
	}
	return b.String()
}
