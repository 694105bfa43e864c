package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/quartetgames/quartet/internal/clock"
	"github.com/quartetgames/quartet/internal/game"
)

func startMini(t *testing.T, hardMode bool) *MiniEngine {
	t.Helper()
	eng, err := NewMini(miniRecord(t), nil, nil, hardMode)
	if err != nil {
		t.Fatal(err)
	}
	eng.Start()
	return eng
}

func TestMiniAutoCheck(t *testing.T) {
	e := startMini(t, false)
	if err := e.SetAutoCheck(true); err != nil {
		t.Fatal(err)
	}

	// Correct letter lands in correctCells.
	if err := e.EnterLetter('C'); err != nil {
		t.Fatal(err)
	}
	origin := game.Coord{Row: 0, Col: 0}
	if !e.CellCorrect(origin) {
		t.Fatal("correct letter not added to correctCells")
	}
	if e.CellMarkedIncorrect(origin) {
		t.Fatal("correct letter marked incorrect")
	}

	// Wrong letter gets the transient incorrect mark only.
	if err := e.EnterLetter('Z'); err != nil {
		t.Fatal(err)
	}
	second := game.Coord{Row: 0, Col: 1}
	if e.CellCorrect(second) {
		t.Fatal("wrong letter added to correctCells")
	}
	if !e.CellMarkedIncorrect(second) {
		t.Fatal("wrong letter not marked incorrect")
	}

	// Overwriting clears the transient mark.
	if err := e.SelectCell(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.EnterLetter('A'); err != nil {
		t.Fatal(err)
	}
	if e.CellMarkedIncorrect(second) {
		t.Fatal("incorrect mark survived new input")
	}
	if !e.CellCorrect(second) {
		t.Fatal("corrected letter not confirmed")
	}
}

func TestMiniCursorMovement(t *testing.T) {
	e := startMini(t, false)

	// Selecting a black cell is a no-op.
	before, _ := e.Selected()
	if err := e.SelectCell(3, 0); err != nil {
		t.Fatal(err)
	}
	if after, _ := e.Selected(); after != before {
		t.Fatal("cursor landed on a black cell")
	}

	// Typing advances across and stays put at the word end.
	if err := e.SelectCell(0, 3); err != nil {
		t.Fatal(err)
	}
	if err := e.EnterLetter('E'); err != nil {
		t.Fatal(err)
	}
	if sel, _ := e.Selected(); sel != (game.Coord{Row: 0, Col: 4}) {
		t.Fatalf("cursor = %v, want end of word", sel)
	}
	if err := e.EnterLetter('S'); err != nil {
		t.Fatal(err)
	}
	if sel, _ := e.Selected(); sel != (game.Coord{Row: 0, Col: 4}) {
		t.Fatalf("cursor moved past word end to %v", sel)
	}

	// Down entry skips nothing here but respects direction.
	if err := e.SelectCell(0, 2); err != nil {
		t.Fatal(err)
	}
	if err := e.ToggleDirection(); err != nil {
		t.Fatal(err)
	}
	if err := e.EnterLetter('F'); err != nil {
		t.Fatal(err)
	}
	if sel, _ := e.Selected(); sel != (game.Coord{Row: 1, Col: 2}) {
		t.Fatalf("down entry cursor = %v", sel)
	}
}

func TestMiniBackspace(t *testing.T) {
	e := startMini(t, false)

	if err := e.SelectCell(1, 0); err != nil {
		t.Fatal(err)
	}
	if err := e.EnterLetter('A'); err != nil {
		t.Fatal(err)
	}
	// Cursor advanced to (1,1); it is empty, so backspace steps back and
	// clears (1,0).
	if err := e.Backspace(); err != nil {
		t.Fatal(err)
	}
	if e.Letter(1, 0) != 0 {
		t.Fatalf("cell (1,0) = %q, want cleared", string(e.Letter(1, 0)))
	}
	if sel, _ := e.Selected(); sel != (game.Coord{Row: 1, Col: 0}) {
		t.Fatalf("cursor = %v after stepping back", sel)
	}

	// Non-empty current cell is cleared in place.
	if err := e.EnterLetter('A'); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectCell(1, 0); err != nil {
		t.Fatal(err)
	}
	if err := e.Backspace(); err != nil {
		t.Fatal(err)
	}
	if e.Letter(1, 0) != 0 {
		t.Fatal("cell not cleared in place")
	}
}

func TestMiniNextClueWrapsSections(t *testing.T) {
	e := startMini(t, false)

	// Walk through every across clue; the next advance wraps to downs.
	acrossCount := 0
	for _, c := range e.record.Mini.Clues {
		if c.Direction == game.Across {
			acrossCount++
		}
	}
	for i := 0; i < acrossCount-1; i++ {
		if err := e.NextClueInSection(); err != nil {
			t.Fatal(err)
		}
		if _, dir := e.Selected(); dir != game.Across {
			t.Fatalf("direction flipped early at clue %d", i)
		}
	}
	if err := e.NextClueInSection(); err != nil {
		t.Fatal(err)
	}
	sel, dir := e.Selected()
	if dir != game.Down {
		t.Fatal("did not wrap into the down section")
	}
	if sel != (game.Coord{Row: 0, Col: 0}) {
		t.Fatalf("wrapped to %v, want first down clue", sel)
	}
}

// fillSolution types the solution into the grid, leaving out any cells in
// skip.
func fillSolution(t *testing.T, e *MiniEngine, skip map[game.Coord]bool) {
	t.Helper()
	for r := 0; r < game.MiniSize; r++ {
		for c := 0; c < game.MiniSize; c++ {
			if e.record.Mini.IsBlack(r, c) || skip[game.Coord{Row: r, Col: c}] {
				continue
			}
			if e.Status() != game.StatusPlaying {
				return
			}
			if err := e.SelectCell(r, c); err != nil {
				t.Fatal(err)
			}
			if err := e.EnterLetter(rune(e.record.Mini.Solution(r, c))); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func TestMiniWinOnCompletion(t *testing.T) {
	e := startMini(t, false)
	fillSolution(t, e, nil)

	if e.Status() != game.StatusWon {
		t.Fatalf("status = %s, want won", e.Status())
	}
	res, err := e.Result()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Won || res.HintsUsed != 0 {
		t.Fatalf("result = %+v", res)
	}
}

func TestMiniWrongGridDoesNotWin(t *testing.T) {
	e := startMini(t, false)
	last := game.Coord{Row: 4, Col: 4}
	fillSolution(t, e, map[game.Coord]bool{last: true})
	if err := e.SelectCell(4, 4); err != nil {
		t.Fatal(err)
	}
	if err := e.EnterLetter('Z'); err != nil {
		t.Fatal(err)
	}
	if e.Status() != game.StatusPlaying {
		t.Fatalf("won with a wrong cell: status = %s", e.Status())
	}
}

func TestMiniRevealSquareCompletesAsWin(t *testing.T) {
	e := startMini(t, false)
	last := game.Coord{Row: 4, Col: 4}
	fillSolution(t, e, map[game.Coord]bool{last: true})

	if err := e.SelectCell(4, 4); err != nil {
		t.Fatal(err)
	}
	if err := e.RevealSquare(); err != nil {
		t.Fatal(err)
	}
	if e.Status() != game.StatusWon {
		t.Fatalf("status = %s, want won via reveal square", e.Status())
	}
	res, _ := e.Result()
	if res.HintsUsed != 1 {
		t.Fatalf("hintsUsed = %d, want 1 for the reveal", res.HintsUsed)
	}
	// Revealed cells never count as player-correct cells.
	if e.CellCorrect(last) {
		t.Fatal("revealed cell counted as correct")
	}
	if !e.CellRevealed(last) {
		t.Fatal("revealed cell not marked revealed")
	}
}

func TestMiniRevealPuzzleIsNotAWin(t *testing.T) {
	e := startMini(t, false)
	if err := e.RevealPuzzle(); err != nil {
		t.Fatal(err)
	}
	if e.Status() != game.StatusLost {
		t.Fatalf("status = %s, want lost", e.Status())
	}
	res, err := e.Result()
	if err != nil {
		t.Fatal(err)
	}
	if res.Won || res.LossMode != game.LossRevealed {
		t.Fatalf("result = %+v, want revealed loss", res)
	}
}

// splitRowGrid holds two across words on row 2 separated by a black
// cell, so word-scoped moves must not run through the whole line.
var splitRowGrid = [game.MiniSize]string{
	"GRABS",
	"EUROS",
	"GE#ES",
	"SLOSH",
	"STEMS",
}

func TestMiniWordOpsStopAtBlackCells(t *testing.T) {
	eng, err := NewMini(miniRecordFor(t, splitRowGrid), nil, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	eng.Start()

	// Revealing the second word on the split row leaves the first word
	// untouched.
	if err := eng.SelectCell(2, 3); err != nil {
		t.Fatal(err)
	}
	if err := eng.RevealWord(); err != nil {
		t.Fatal(err)
	}
	for _, c := range []game.Coord{{Row: 2, Col: 3}, {Row: 2, Col: 4}} {
		if !eng.CellRevealed(c) {
			t.Fatalf("cell %v not revealed", c)
		}
	}
	for _, c := range []game.Coord{{Row: 2, Col: 0}, {Row: 2, Col: 1}} {
		if eng.CellRevealed(c) || eng.Letter(c.Row, c.Col) != 0 {
			t.Fatalf("reveal crossed the black cell into %v", c)
		}
	}

	// A wrong letter in the first word stays unmarked when the second
	// word is checked.
	if err := eng.SelectCell(2, 0); err != nil {
		t.Fatal(err)
	}
	if err := eng.EnterLetter('Z'); err != nil {
		t.Fatal(err)
	}
	if err := eng.SelectCell(2, 3); err != nil {
		t.Fatal(err)
	}
	if err := eng.CheckWord(); err != nil {
		t.Fatal(err)
	}
	if eng.CellMarkedIncorrect(game.Coord{Row: 2, Col: 0}) {
		t.Fatal("check crossed the black cell into the neighboring word")
	}
}

func TestMiniCheckSquareStickyCorrect(t *testing.T) {
	e := startMini(t, false)

	if err := e.EnterLetter('C'); err != nil {
		t.Fatal(err)
	}
	if err := e.SelectCell(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := e.CheckSquare(); err != nil {
		t.Fatal(err)
	}
	origin := game.Coord{Row: 0, Col: 0}
	if !e.CellCorrect(origin) {
		t.Fatal("checked correct cell not recorded")
	}

	// A confirmed cell cannot be overwritten or cleared.
	if err := e.EnterLetter('X'); err != nil {
		t.Fatal(err)
	}
	if e.Letter(0, 0) != 'C' {
		t.Fatal("confirmed cell was overwritten")
	}
	if e.checksUsed != 1 {
		t.Fatalf("checksUsed = %d", e.checksUsed)
	}
}

func TestMiniHardModeTimeout(t *testing.T) {
	e := startMini(t, true)

	// Hard mode disables every assist.
	for name, move := range map[string]func() error{
		"CheckSquare":  e.CheckSquare,
		"CheckWord":    e.CheckWord,
		"CheckPuzzle":  e.CheckPuzzle,
		"RevealSquare": e.RevealSquare,
		"RevealWord":   e.RevealWord,
		"RevealPuzzle": e.RevealPuzzle,
	} {
		if err := move(); !IsInvalidMove(err, CodeHintsDisabled) {
			t.Fatalf("%s in hard mode = %v", name, err)
		}
	}
	if err := e.SetAutoCheck(true); !IsInvalidMove(err, CodeHintsDisabled) {
		t.Fatalf("SetAutoCheck in hard mode = %v", err)
	}

	// Drive the countdown with a controlled clock. Pausing pauses the
	// countdown.
	base := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	now := base
	e.clk = clock.NewWithSource(func() time.Time { return now })
	e.clk.Start()

	now = now.Add(100 * time.Second)
	e.Pause()
	now = now.Add(time.Hour)
	e.Resume()
	e.Tick()
	if e.Status() != game.StatusPlaying {
		t.Fatalf("timed out while paused: status = %s", e.Status())
	}
	if rem := e.RemainingMs(); rem != 80_000 {
		t.Fatalf("remaining = %d, want 80000", rem)
	}

	now = now.Add(81 * time.Second)
	if err := e.EnterLetter('C'); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("move after timeout = %v, want ErrNotPlaying", err)
	}
	if e.Status() != game.StatusLost {
		t.Fatalf("status = %s, want lost", e.Status())
	}
	res, err := e.Result()
	if err != nil {
		t.Fatal(err)
	}
	if res.LossMode != game.LossHardModeTimeout {
		t.Fatalf("lossMode = %q", res.LossMode)
	}
}

func TestMiniElapsedNonDecreasingAcrossSnapshots(t *testing.T) {
	e := startMini(t, false)

	prev := int64(0)
	letters := []rune{'C', 'A', 'F'}
	for _, ch := range letters {
		if err := e.EnterLetter(ch); err != nil {
			t.Fatal(err)
		}
		snap := e.Snapshot()
		if snap.AccumulatedMs < prev {
			t.Fatalf("elapsed decreased from %d to %d", prev, snap.AccumulatedMs)
		}
		prev = snap.AccumulatedMs
	}
}
