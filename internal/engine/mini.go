package engine

import (
	"fmt"
	"sort"

	"github.com/quartetgames/quartet/internal/game"
)

// hardModeLimitMs is the Hard Mode countdown: 3 minutes of clock time.
const hardModeLimitMs = 180_000

// MiniEngine runs one 5x5 crossword play-through.
type MiniEngine struct {
	session

	grid            [game.MiniSize][game.MiniSize]byte // 0 = empty
	correctCells    map[game.Coord]bool
	revealedCells   map[game.Coord]bool
	markedIncorrect map[game.Coord]bool // Transient; cleared on next input to the cell
	selected        game.Coord
	direction       game.Direction
	checksUsed      int
	revealsUsed     int
	autoCheck       bool
	hardMode        bool
}

// NewMini builds an engine for a Mini record. hardMode enables the
// countdown and disables checks and reveals; it is ignored when resuming,
// where the snapshot's own flag wins.
func NewMini(record *game.PuzzleRecord, resumed *game.Snapshot, saver Saver, hardMode bool) (*MiniEngine, error) {
	if record.Mini == nil {
		return nil, fmt.Errorf("record %s/%s has no mini payload", record.Kind, record.Date)
	}
	e := &MiniEngine{
		session:         newSession(record, saver),
		correctCells:    make(map[game.Coord]bool),
		revealedCells:   make(map[game.Coord]bool),
		markedIncorrect: make(map[game.Coord]bool),
		direction:       game.Across,
		hardMode:        hardMode,
	}
	e.selected = e.firstEditable()
	if adoptable(record, resumed) && resumed.Mini != nil {
		e.adoptCommon(resumed)
		st := resumed.Mini
		for r := 0; r < game.MiniSize; r++ {
			for c := 0; c < game.MiniSize && c < len(st.UserGrid[r]); c++ {
				if ch := st.UserGrid[r][c]; ch >= 'A' && ch <= 'Z' {
					e.grid[r][c] = ch
				}
			}
		}
		for _, cc := range st.CorrectCells {
			e.correctCells[cc] = true
		}
		for _, rc := range st.RevealedCells {
			e.revealedCells[rc] = true
		}
		if !record.Mini.IsBlack(st.SelectedCell.Row, st.SelectedCell.Col) {
			e.selected = st.SelectedCell
		}
		if st.Direction == game.Down {
			e.direction = game.Down
		}
		e.checksUsed = st.ChecksUsed
		e.revealsUsed = st.RevealsUsed
		e.autoCheck = st.AutoCheck
		e.hardMode = st.HardMode
	}
	return e, nil
}

func (e *MiniEngine) firstEditable() game.Coord {
	for r := 0; r < game.MiniSize; r++ {
		for c := 0; c < game.MiniSize; c++ {
			if !e.record.Mini.IsBlack(r, c) {
				return game.Coord{Row: r, Col: c}
			}
		}
	}
	return game.Coord{}
}

// Selected returns the cursor cell and direction.
func (e *MiniEngine) Selected() (game.Coord, game.Direction) {
	return e.selected, e.direction
}

// Letter returns the player's letter at a cell, or 0.
func (e *MiniEngine) Letter(row, col int) byte {
	return e.grid[row][col]
}

// CellCorrect reports whether a cell was confirmed correct by a check.
func (e *MiniEngine) CellCorrect(c game.Coord) bool { return e.correctCells[c] }

// CellRevealed reports whether a cell's letter came from a reveal.
func (e *MiniEngine) CellRevealed(c game.Coord) bool { return e.revealedCells[c] }

// CellMarkedIncorrect reports the transient wrong-letter marker.
func (e *MiniEngine) CellMarkedIncorrect(c game.Coord) bool { return e.markedIncorrect[c] }

// HardMode reports whether the countdown variant is active.
func (e *MiniEngine) HardMode() bool { return e.hardMode }

// RemainingMs returns the Hard Mode countdown remainder, or a negative
// value outside Hard Mode.
func (e *MiniEngine) RemainingMs() int64 {
	if !e.hardMode {
		return -1
	}
	rem := int64(hardModeLimitMs) - e.clk.ElapsedMs()
	if rem < 0 {
		rem = 0
	}
	return rem
}

// Tick transitions a Hard Mode session to LOST once the countdown reaches
// zero. The shell calls it from its timer; every move also runs it first,
// so a late move lands on a finished session.
func (e *MiniEngine) Tick() {
	if e.hardMode && e.status == game.StatusPlaying && e.clk.ElapsedMs() >= hardModeLimitMs {
		e.finish(false, game.LossHardModeTimeout, 0, "")
	}
}

// locked reports whether a cell's letter must not change: confirmed
// correct or revealed.
func (e *MiniEngine) locked(c game.Coord) bool {
	return e.correctCells[c] || e.revealedCells[c]
}

// SelectCell moves the cursor. Selecting a black cell is a no-op.
func (e *MiniEngine) SelectCell(row, col int) error {
	e.Tick()
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if row < 0 || row >= game.MiniSize || col < 0 || col >= game.MiniSize {
		return invalidMove(CodeNoSuchTarget, "cell (%d,%d) is off the grid", row, col)
	}
	if e.record.Mini.IsBlack(row, col) {
		return nil
	}
	e.selected = game.Coord{Row: row, Col: col}
	return nil
}

// ToggleDirection flips between across and down entry.
func (e *MiniEngine) ToggleDirection() error {
	e.Tick()
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if e.direction == game.Across {
		e.direction = game.Down
	} else {
		e.direction = game.Across
	}
	return nil
}

// step returns the next editable cell from c in the current direction,
// hopping black cells, or c itself at the grid edge. Word membership is
// defined by the clue's cell list, not by step.
func (e *MiniEngine) step(c game.Coord, forward bool) game.Coord {
	dr, dc := 0, 1
	if e.direction == game.Down {
		dr, dc = 1, 0
	}
	if !forward {
		dr, dc = -dr, -dc
	}
	r, col := c.Row+dr, c.Col+dc
	for r >= 0 && r < game.MiniSize && col >= 0 && col < game.MiniSize {
		if !e.record.Mini.IsBlack(r, col) {
			return game.Coord{Row: r, Col: col}
		}
		r, col = r+dr, col+dc
	}
	return c
}

// EnterLetter writes an uppercased letter at the cursor and advances one
// step, staying put at the end of the line. With autocheck on, the cell
// is checked immediately.
func (e *MiniEngine) EnterLetter(ch rune) error {
	e.Tick()
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if ch >= 'a' && ch <= 'z' {
		ch -= 'a' - 'A'
	}
	if ch < 'A' || ch > 'Z' {
		return invalidMove(CodeNoSuchTarget, "%q is not a letter", string(ch))
	}
	cell := e.selected
	if !e.locked(cell) {
		e.grid[cell.Row][cell.Col] = byte(ch)
		delete(e.markedIncorrect, cell)
		if e.autoCheck {
			e.checkCell(cell)
		}
	}
	e.selected = e.step(cell, true)
	if e.solvedAll() {
		e.finish(true, "", 0, "")
		return nil
	}
	e.persist(e.Snapshot())
	return nil
}

// Backspace clears the cursor cell, or steps back and clears when the
// cursor cell is already empty. Locked cells are skipped over, not
// cleared.
func (e *MiniEngine) Backspace() error {
	e.Tick()
	if err := e.requirePlaying(); err != nil {
		return err
	}
	cell := e.selected
	if e.grid[cell.Row][cell.Col] == 0 || e.locked(cell) {
		cell = e.step(cell, false)
		e.selected = cell
	}
	if !e.locked(cell) {
		e.grid[cell.Row][cell.Col] = 0
		delete(e.markedIncorrect, cell)
	}
	e.persist(e.Snapshot())
	return nil
}

// clueIndex locates the clue containing the cursor in the current
// direction within the record's clue list.
func (e *MiniEngine) clueIndex() int {
	for i, clue := range e.record.Mini.Clues {
		if clue.Direction != e.direction {
			continue
		}
		for _, c := range clue.Cells {
			if c == e.selected {
				return i
			}
		}
	}
	return -1
}

// CurrentClue returns the clue under the cursor in the current direction.
func (e *MiniEngine) CurrentClue() *game.Clue {
	if i := e.clueIndex(); i >= 0 {
		return &e.record.Mini.Clues[i]
	}
	return nil
}

// NextClueInSection advances to the next clue in the current direction; at
// the end it wraps to the first clue of the other direction.
func (e *MiniEngine) NextClueInSection() error {
	e.Tick()
	if err := e.requirePlaying(); err != nil {
		return err
	}
	clues := e.record.Mini.Clues
	cur := e.clueIndex()
	// Scan forward for the next clue of the current direction.
	for i := cur + 1; i < len(clues); i++ {
		if clues[i].Direction == e.direction {
			e.selected = clues[i].Cells[0]
			return nil
		}
	}
	// Wrap to the first clue of the other direction.
	other := game.Down
	if e.direction == game.Down {
		other = game.Across
	}
	for i := range clues {
		if clues[i].Direction == other {
			e.direction = other
			e.selected = clues[i].Cells[0]
			return nil
		}
	}
	return nil
}

// checkCell compares one cell to the solution, recording a sticky correct
// mark or a transient incorrect one. Empty cells are left alone.
func (e *MiniEngine) checkCell(c game.Coord) {
	got := e.grid[c.Row][c.Col]
	if got == 0 {
		return
	}
	if got == e.record.Mini.Solution(c.Row, c.Col) {
		e.correctCells[c] = true
		delete(e.markedIncorrect, c)
	} else {
		e.markedIncorrect[c] = true
	}
}

func (e *MiniEngine) requireAssists() error {
	if e.hardMode {
		return invalidMove(CodeHintsDisabled, "checks and reveals are disabled in hard mode")
	}
	return nil
}

// CheckSquare checks the cursor cell.
func (e *MiniEngine) CheckSquare() error {
	return e.check(func() {
		e.checkCell(e.selected)
	})
}

// CheckWord checks every cell of the word under the cursor. The word is
// the current clue's cell list, so the walk never crosses a black cell
// into a neighboring word.
func (e *MiniEngine) CheckWord() error {
	return e.check(func() {
		if clue := e.CurrentClue(); clue != nil {
			for _, c := range clue.Cells {
				e.checkCell(c)
			}
		}
	})
}

// CheckPuzzle checks every editable cell.
func (e *MiniEngine) CheckPuzzle() error {
	return e.check(func() {
		for r := 0; r < game.MiniSize; r++ {
			for c := 0; c < game.MiniSize; c++ {
				if !e.record.Mini.IsBlack(r, c) {
					e.checkCell(game.Coord{Row: r, Col: c})
				}
			}
		}
	})
}

func (e *MiniEngine) check(run func()) error {
	e.Tick()
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if err := e.requireAssists(); err != nil {
		return err
	}
	run()
	e.checksUsed++
	e.persist(e.Snapshot())
	return nil
}

// revealCell writes the solution letter and marks the cell revealed.
// Revealed cells count toward completion but not toward correctCells.
func (e *MiniEngine) revealCell(c game.Coord) {
	e.grid[c.Row][c.Col] = e.record.Mini.Solution(c.Row, c.Col)
	e.revealedCells[c] = true
	delete(e.markedIncorrect, c)
	e.markHinted(fmt.Sprintf("%d,%d", c.Row, c.Col))
}

// RevealSquare reveals the cursor cell.
func (e *MiniEngine) RevealSquare() error {
	return e.reveal(func() {
		e.revealCell(e.selected)
	})
}

// RevealWord reveals the current clue's cells.
func (e *MiniEngine) RevealWord() error {
	return e.reveal(func() {
		if clue := e.CurrentClue(); clue != nil {
			for _, c := range clue.Cells {
				e.revealCell(c)
			}
		}
	})
}

func (e *MiniEngine) reveal(run func()) error {
	e.Tick()
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if err := e.requireAssists(); err != nil {
		return err
	}
	run()
	e.revealsUsed++
	e.hintsUsed++
	if e.solvedAll() {
		e.finish(true, "", 0, "")
		return nil
	}
	e.persist(e.Snapshot())
	return nil
}

// RevealPuzzle reveals the entire remaining grid. The session ends
// terminally but does not count as a win.
func (e *MiniEngine) RevealPuzzle() error {
	e.Tick()
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if err := e.requireAssists(); err != nil {
		return err
	}
	for r := 0; r < game.MiniSize; r++ {
		for c := 0; c < game.MiniSize; c++ {
			if !e.record.Mini.IsBlack(r, c) {
				e.revealCell(game.Coord{Row: r, Col: c})
			}
		}
	}
	e.revealsUsed++
	e.hintsUsed++
	e.finish(false, game.LossRevealed, 0, "")
	return nil
}

// SetAutoCheck toggles implicit checking after every entered letter.
func (e *MiniEngine) SetAutoCheck(on bool) error {
	e.Tick()
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if err := e.requireAssists(); err != nil {
		return err
	}
	e.autoCheck = on
	e.persist(e.Snapshot())
	return nil
}

// solvedAll reports whether every editable cell holds the solution letter.
func (e *MiniEngine) solvedAll() bool {
	for r := 0; r < game.MiniSize; r++ {
		for c := 0; c < game.MiniSize; c++ {
			if e.record.Mini.IsBlack(r, c) {
				continue
			}
			if e.grid[r][c] != e.record.Mini.Solution(r, c) {
				return false
			}
		}
	}
	return true
}

// Abandon ends the session without a Result.
func (e *MiniEngine) Abandon() {
	e.abandon(e.Snapshot)
}

// Snapshot serializes the full session state.
func (e *MiniEngine) Snapshot() game.Snapshot {
	snap := e.commonSnapshot()
	st := &game.MiniState{
		SelectedCell: e.selected,
		Direction:    e.direction,
		ChecksUsed:   e.checksUsed,
		RevealsUsed:  e.revealsUsed,
		AutoCheck:    e.autoCheck,
		HardMode:     e.hardMode,
	}
	for r := 0; r < game.MiniSize; r++ {
		row := make([]byte, game.MiniSize)
		for c := 0; c < game.MiniSize; c++ {
			switch {
			case e.record.Mini.IsBlack(r, c):
				row[c] = game.Black
			case e.grid[r][c] == 0:
				row[c] = '.'
			default:
				row[c] = e.grid[r][c]
			}
		}
		st.UserGrid[r] = string(row)
	}
	for c := range e.correctCells {
		st.CorrectCells = append(st.CorrectCells, c)
	}
	for c := range e.revealedCells {
		st.RevealedCells = append(st.RevealedCells, c)
	}
	sortCoords(st.CorrectCells)
	sortCoords(st.RevealedCells)
	snap.Mini = st
	return snap
}

func sortCoords(cs []game.Coord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Row != cs[j].Row {
			return cs[i].Row < cs[j].Row
		}
		return cs[i].Col < cs[j].Col
	})
}
