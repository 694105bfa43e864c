package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quartetgames/quartet/internal/access"
	"github.com/quartetgames/quartet/internal/clipboard"
	"github.com/quartetgames/quartet/internal/engine"
	"github.com/quartetgames/quartet/internal/game"
	"github.com/quartetgames/quartet/internal/share"
	"github.com/quartetgames/quartet/internal/tui/views"
)

// ViewType identifies the active screen.
type ViewType int

const (
	ViewTandem ViewType = iota
	ViewMini
	ViewReel
	ViewCryptic
	ViewArchive
	ViewStats
)

// MenuItem is one sidebar entry.
type MenuItem struct {
	Label    string
	View     ViewType
	Kind     game.Kind // zero for non-game entries
	Shortcut string
}

// completedSession is a puzzle the player already finished; the result is
// write-once, so the shell shows the outcome instead of a board.
type completedSession struct {
	record *game.PuzzleRecord
	result game.Result
	copied bool
}

// AppModel is the main shell: sidebar navigation plus one sub-model per
// screen.
type AppModel struct {
	deps views.Deps

	width        int
	height       int
	sidebarWidth int
	ready        bool

	currentView   ViewType
	menuItems     []MenuItem
	selectedMenu  int
	sidebarActive bool
	showHelp      bool

	// Per-kind play state. playDates tracks which date each game view is
	// on (today until the archive says otherwise); loaded marks kinds
	// whose current date has been fetched.
	playDates map[game.Kind]game.Date
	loaded    map[game.Kind]bool
	completed map[game.Kind]*completedSession

	tandemView  views.TandemModel
	miniView    views.MiniModel
	reelView    views.ReelModel
	crypticView views.CrypticModel
	archiveView views.ArchiveModel
	statsView   views.StatsModel
}

// NewApp wires the shell to its stores.
func NewApp(deps views.Deps) AppModel {
	menuItems := []MenuItem{
		{Label: "Tandem", View: ViewTandem, Kind: game.Tandem, Shortcut: "1"},
		{Label: "Mini", View: ViewMini, Kind: game.Mini, Shortcut: "2"},
		{Label: "Reel", View: ViewReel, Kind: game.Reel, Shortcut: "3"},
		{Label: "Cryptic", View: ViewCryptic, Kind: game.Cryptic, Shortcut: "4"},
		{Label: "Archive", View: ViewArchive, Shortcut: "5"},
		{Label: "Stats", View: ViewStats, Shortcut: "6"},
	}

	today := game.Today()
	playDates := make(map[game.Kind]game.Date, len(game.Kinds))
	for _, k := range game.Kinds {
		playDates[k] = today
	}

	return AppModel{
		deps:         deps,
		sidebarWidth: 18,
		currentView:  ViewTandem,
		menuItems:    menuItems,
		playDates:    playDates,
		loaded:       make(map[game.Kind]bool),
		completed:    make(map[game.Kind]*completedSession),

		tandemView:  views.NewTandemModel(),
		miniView:    views.NewMiniModel(),
		reelView:    views.NewReelModel(),
		crypticView: views.NewCrypticModel(),
		archiveView: views.NewArchiveModel(deps),
		statsView:   views.NewStatsModel(deps),
	}
}

// NewAppAt opens the shell on a specific game and date, as deep links do.
func NewAppAt(deps views.Deps, kind game.Kind, date game.Date) AppModel {
	app := NewApp(deps)
	app.playDates[kind] = date
	for i, item := range app.menuItems {
		if item.Kind == kind {
			app.currentView = item.View
			app.selectedMenu = i
		}
	}
	return app
}

// Init loads the opening game and starts the clock ticker.
func (m AppModel) Init() tea.Cmd {
	kind, ok := m.kindFor(m.currentView)
	if !ok {
		kind = game.Tandem
	}
	return tea.Batch(
		textinput.Blink,
		views.Tick(),
		views.LoadPuzzle(m.deps, kind, m.playDates[kind]),
	)
}

// kindFor maps a game screen to its kind.
func (m AppModel) kindFor(v ViewType) (game.Kind, bool) {
	for _, item := range m.menuItems {
		if item.View == v && item.Kind != "" {
			return item.Kind, true
		}
	}
	return "", false
}

// switchTo changes screens, loading whatever the target needs.
func (m *AppModel) switchTo(v ViewType) tea.Cmd {
	m.currentView = v
	for i, item := range m.menuItems {
		if item.View == v {
			m.selectedMenu = i
		}
	}
	m.sidebarActive = false

	switch v {
	case ViewArchive:
		return m.archiveView.Refresh()
	case ViewStats:
		return m.statsView.Refresh()
	}
	if kind, ok := m.kindFor(v); ok && !m.loaded[kind] {
		return views.LoadPuzzle(m.deps, kind, m.playDates[kind])
	}
	return nil
}

// Update handles messages.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.sidebarActive {
				return m, tea.Quit
			}
			m.sidebarActive = true
			return m, nil
		case "1", "2", "3", "4", "5", "6":
			for _, item := range m.menuItems {
				if item.Shortcut == msg.String() {
					return m, m.switchTo(item.View)
				}
			}
		}

		if m.sidebarActive {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "?":
				m.showHelp = true
			case "j", "down":
				if m.selectedMenu < len(m.menuItems)-1 {
					m.selectedMenu++
				}
			case "k", "up":
				if m.selectedMenu > 0 {
					m.selectedMenu--
				}
			case "enter", "l", "right":
				return m, m.switchTo(m.menuItems[m.selectedMenu].View)
			}
			return m, nil
		}

		// A finished puzzle renders in the shell, not the game view.
		if kind, ok := m.kindFor(m.currentView); ok {
			if done := m.completed[kind]; done != nil {
				if msg.String() == "y" {
					done.copied = clipboard.Write(share.Format(done.result)) == nil
				}
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		contentWidth := m.width - m.sidebarWidth - 4
		contentHeight := m.height - 2
		m.tandemView.SetSize(contentWidth, contentHeight)
		m.miniView.SetSize(contentWidth, contentHeight)
		m.reelView.SetSize(contentWidth, contentHeight)
		m.crypticView.SetSize(contentWidth, contentHeight)
		m.archiveView.SetSize(contentWidth, contentHeight)
		m.statsView.SetSize(contentWidth, contentHeight)
		return m, nil

	case views.TickMsg:
		// Reschedule and fall through so the active game redraws its
		// clock (and the Mini hard-mode countdown advances).
		var cmd tea.Cmd
		m, cmd = m.routeToView(msg)
		return m, tea.Batch(views.Tick(), cmd)

	case views.PuzzleLoadedMsg:
		return m.handleLoaded(msg)

	case views.ShowGameMsg:
		return m.openFromArchive(msg)
	}

	if !m.sidebarActive {
		return m.routeToView(msg)
	}
	return m, nil
}

// routeToView delegates a message to the active sub-model.
func (m AppModel) routeToView(msg tea.Msg) (AppModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewTandem:
		m.tandemView, cmd = m.tandemView.Update(msg)
	case ViewMini:
		m.miniView, cmd = m.miniView.Update(msg)
	case ViewReel:
		m.reelView, cmd = m.reelView.Update(msg)
	case ViewCryptic:
		m.crypticView, cmd = m.crypticView.Update(msg)
	case ViewArchive:
		m.archiveView, cmd = m.archiveView.Update(msg)
	case ViewStats:
		m.statsView, cmd = m.statsView.Update(msg)
	}
	return m, cmd
}

// handleLoaded installs a fetched puzzle into the right game view,
// acquiring a session engine unless the puzzle is already finished.
func (m AppModel) handleLoaded(msg views.PuzzleLoadedMsg) (tea.Model, tea.Cmd) {
	// Stale loads can arrive after the archive moved the play date.
	if msg.Date != m.playDates[msg.Kind] {
		return m, nil
	}
	m.loaded[msg.Kind] = true
	delete(m.completed, msg.Kind)

	if msg.Err != nil {
		m.setViewError(msg.Kind, msg.Err)
		return m, nil
	}
	if msg.Denied != "" {
		m.setViewDenied(msg.Kind, msg.Denied)
		return m, nil
	}
	if msg.Entry != nil && msg.Entry.Result != nil {
		m.completed[msg.Kind] = &completedSession{record: msg.Record, result: *msg.Entry.Result}
		return m, nil
	}

	resumed := views.ResumableSnapshot(msg.Entry)
	eng, err := m.deps.Registry.Acquire(msg.Kind, msg.Date, func() (engine.Engine, error) {
		return m.buildEngine(msg.Record, resumed)
	})
	if err != nil && eng == nil {
		m.setViewError(msg.Kind, err)
		return m, nil
	}

	var cmd tea.Cmd
	switch msg.Kind {
	case game.Tandem:
		if e, ok := eng.(*engine.TandemEngine); ok {
			m.tandemView.SetSession(msg.Record, e)
		}
	case game.Mini:
		if e, ok := eng.(*engine.MiniEngine); ok {
			m.miniView.SetSession(msg.Record, e)
		}
	case game.Reel:
		if e, ok := eng.(*engine.ReelEngine); ok {
			m.reelView.SetSession(msg.Record, e)
		}
	case game.Cryptic:
		if e, ok := eng.(*engine.CrypticEngine); ok {
			m.crypticView.SetSession(msg.Record, e)
			cmd = m.crypticView.Focus()
		}
	}
	return m, cmd
}

// buildEngine constructs the kind-matched engine for a record.
func (m AppModel) buildEngine(record *game.PuzzleRecord, resumed *game.Snapshot) (engine.Engine, error) {
	switch record.Kind {
	case game.Tandem:
		return engine.NewTandem(record, resumed, m.deps.Saver)
	case game.Mini:
		return engine.NewMini(record, resumed, m.deps.Saver, m.deps.Settings.HardMode)
	case game.Reel:
		return engine.NewReel(record, resumed, m.deps.Saver)
	case game.Cryptic:
		return engine.NewCryptic(record, resumed, m.deps.Saver)
	}
	return nil, fmt.Errorf("no engine for kind %q", record.Kind)
}

// openFromArchive repoints a game view at an archive date.
func (m AppModel) openFromArchive(msg views.ShowGameMsg) (tea.Model, tea.Cmd) {
	// Park the old session; its partials are already persisted, and
	// releasing the key lets a later load resume it cleanly.
	if old, ok := m.deps.Registry.Live(msg.Kind, m.playDates[msg.Kind]); ok {
		old.Pause()
		m.deps.Registry.Release(msg.Kind, m.playDates[msg.Kind])
	}

	m.playDates[msg.Kind] = msg.Date
	m.loaded[msg.Kind] = false
	delete(m.completed, msg.Kind)

	var target ViewType
	switch msg.Kind {
	case game.Tandem:
		target = ViewTandem
	case game.Mini:
		target = ViewMini
	case game.Reel:
		target = ViewReel
	case game.Cryptic:
		target = ViewCryptic
	}
	switchCmd := m.switchTo(target)
	return m, tea.Batch(switchCmd, views.LoadPuzzle(m.deps, msg.Kind, msg.Date))
}

func (m *AppModel) setViewError(kind game.Kind, err error) {
	switch kind {
	case game.Tandem:
		m.tandemView.SetError(err)
	case game.Mini:
		m.miniView.SetError(err)
	case game.Reel:
		m.reelView.SetError(err)
	case game.Cryptic:
		m.crypticView.SetError(err)
	}
}

func (m *AppModel) setViewDenied(kind game.Kind, reason access.Reason) {
	switch kind {
	case game.Tandem:
		m.tandemView.SetDenied(reason)
	case game.Mini:
		m.miniView.SetDenied(reason)
	case game.Reel:
		m.reelView.SetDenied(reason)
	case game.Cryptic:
		m.crypticView.SetDenied(reason)
	}
}

// View renders the sidebar plus the active screen.
func (m AppModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	sidebar := m.renderSidebar()

	var content string
	if kind, ok := m.kindFor(m.currentView); ok && m.completed[kind] != nil {
		content = m.renderCompleted(m.completed[kind])
	} else {
		switch m.currentView {
		case ViewTandem:
			content = m.tandemView.View()
		case ViewMini:
			content = m.miniView.View()
		case ViewReel:
			content = m.reelView.View()
		case ViewCryptic:
			content = m.crypticView.View()
		case ViewArchive:
			content = m.archiveView.View()
		case ViewStats:
			content = m.statsView.View()
		}
	}

	contentWidth := m.width - m.sidebarWidth - 4
	mainContent := ContentStyle.
		Width(contentWidth).
		Height(m.height - 2).
		Render(content)

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, mainContent)
}

// renderCompleted shows a finished puzzle's outcome with its share text.
func (m AppModel) renderCompleted(done *completedSession) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).
		Render(fmt.Sprintf("%s #%d", done.record.Kind.DisplayName(), done.record.Number))

	var verdict string
	if done.result.Won {
		verdict = lipgloss.NewStyle().Bold(true).Foreground(ColorSuccess).Render("Solved!")
	} else {
		verdict = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary).Render("Better luck next time.")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSecondary).
		Padding(1, 2).
		Render(share.Format(done.result))

	footer := "y: copy share text"
	if done.copied {
		footer = "Copied to clipboard"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		lipgloss.NewStyle().Foreground(ColorSecondary).Render(done.record.Date.Short()),
		"",
		verdict,
		box,
		lipgloss.NewStyle().Foreground(ColorMuted).Render(footer),
	)
}

// completedToday reports whether a kind's current play date is finished,
// either in this run or in saved history.
func (m AppModel) completedToday(kind game.Kind) bool {
	if m.completed[kind] != nil {
		return true
	}
	if eng, ok := m.deps.Registry.Live(kind, m.playDates[kind]); ok {
		return eng.Status().Terminal()
	}
	return false
}

// renderSidebar renders the navigation column with completion marks.
func (m AppModel) renderSidebar() string {
	var items []string

	items = append(items, SidebarTitleStyle.Render("  QUARTET  "))
	items = append(items, "")

	for i, item := range m.menuItems {
		label := item.Shortcut + ". " + item.Label
		if item.Kind != "" && m.completedToday(item.Kind) {
			label += " ✓"
		}

		var style lipgloss.Style
		if i == m.selectedMenu {
			if m.sidebarActive {
				style = SidebarItemActiveStyle
			} else {
				style = SidebarItemStyle.Bold(true).Foreground(ColorSecondary)
			}
		} else if item.Kind != "" && m.completedToday(item.Kind) {
			style = SidebarDoneStyle
		} else {
			style = SidebarItemStyle
		}
		items = append(items, style.Render(label))
	}

	usedHeight := len(items) + 4
	if m.height > usedHeight {
		for i := 0; i < m.height-usedHeight-2; i++ {
			items = append(items, "")
		}
	}
	items = append(items, SidebarHelpStyle.Render("esc Menu  ? Help"))

	content := lipgloss.JoinVertical(lipgloss.Left, items...)
	return SidebarStyle.
		Width(m.sidebarWidth).
		Height(m.height - 2).
		Render(content)
}

// renderHelp renders the key reference overlay.
func (m AppModel) renderHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorSecondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(ColorAccent).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(ColorText)

	helpText := titleStyle.Render("Quartet") + "\n\n"

	helpText += sectionStyle.Render("Global") + "\n"
	helpText += keyStyle.Render("1-6") + descStyle.Render("Switch screens") + "\n"
	helpText += keyStyle.Render("esc") + descStyle.Render("Focus sidebar / quit") + "\n"
	helpText += keyStyle.Render("ctrl+c") + descStyle.Render("Quit") + "\n"

	helpText += sectionStyle.Render("Tandem") + "\n"
	helpText += keyStyle.Render("type") + descStyle.Render("Guess the word") + "\n"
	helpText += keyStyle.Render("enter") + descStyle.Render("Submit guess") + "\n"
	helpText += keyStyle.Render("ctrl+h") + descStyle.Render("Reveal a letter") + "\n"

	helpText += sectionStyle.Render("Mini") + "\n"
	helpText += keyStyle.Render("arrows") + descStyle.Render("Move cursor") + "\n"
	helpText += keyStyle.Render("space") + descStyle.Render("Across/down") + "\n"
	helpText += keyStyle.Render("^x ^w ^p") + descStyle.Render("Check square/word/puzzle") + "\n"
	helpText += keyStyle.Render("^r ^t ^g") + descStyle.Render("Reveal square/word/puzzle") + "\n"

	helpText += sectionStyle.Render("Reel") + "\n"
	helpText += keyStyle.Render("space") + descStyle.Render("Select movie") + "\n"
	helpText += keyStyle.Render("enter") + descStyle.Render("Submit four") + "\n"
	helpText += keyStyle.Render("s") + descStyle.Render("Shuffle") + "\n"

	helpText += sectionStyle.Render("Archive") + "\n"
	helpText += keyStyle.Render("[ ]") + descStyle.Render("Previous/next month") + "\n"
	helpText += keyStyle.Render("g") + descStyle.Render("Switch game") + "\n"
	helpText += keyStyle.Render("enter") + descStyle.Render("Play the day") + "\n"

	helpText += "\n" + lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		Render("Press any key to close")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSecondary).
		Padding(1, 2).
		Width(50)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, boxStyle.Render(helpText))
}
