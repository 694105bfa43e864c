package engine

import (
	"testing"

	"github.com/quartetgames/quartet/internal/game"
)

func startReel(t *testing.T) *ReelEngine {
	t.Helper()
	eng, err := NewReel(reelRecord(t), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	eng.Start()
	return eng
}

func selectSet(t *testing.T, e *ReelEngine, ids ...string) {
	t.Helper()
	if err := e.Deselect(); err != nil {
		t.Fatal(err)
	}
	for _, id := range ids {
		if err := e.Toggle(id); err != nil {
			t.Fatalf("Toggle(%s): %v", id, err)
		}
	}
}

func TestReelOneAwayAndDuplicate(t *testing.T) {
	e := startReel(t)

	// Three from the easiest group plus one stray: a mistake with the
	// one-away signal.
	selectSet(t, e, "a1", "a2", "a3", "b1")
	out, err := e.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if out.Correct || !out.OneAway {
		t.Fatalf("outcome = %+v, want one-away miss", out)
	}
	if e.mistakes != 1 {
		t.Fatalf("mistakes = %d, want 1", e.mistakes)
	}

	// The identical set again (different selection order) is rejected
	// without a second mistake.
	selectSet(t, e, "b1", "a3", "a2", "a1")
	if _, err := e.Submit(); !IsInvalidMove(err, CodeDuplicateGuess) {
		t.Fatalf("duplicate submit = %v", err)
	}
	if e.mistakes != 1 {
		t.Fatalf("mistakes after duplicate = %d, want 1", e.mistakes)
	}

	// A correct set solves its group.
	selectSet(t, e, "b1", "b2", "b3", "b4")
	out, err = e.Submit()
	if err != nil {
		t.Fatal(err)
	}
	if !out.Correct || out.Group == nil || out.Group.ID != "sequels" {
		t.Fatalf("outcome = %+v, want sequels solved", out)
	}
	if got := e.SolvedGroups(); len(got) != 1 || got[0] != "sequels" {
		t.Fatalf("solvedGroups = %v", got)
	}
	if len(e.Selected()) != 0 {
		t.Fatal("selection not cleared after a solve")
	}
	if e.mistakes != 1 {
		t.Fatalf("mistakes = %d after correct submit", e.mistakes)
	}
}

func TestReelWinAndTieRule(t *testing.T) {
	e := startReel(t)

	solve := func(prefix string) {
		t.Helper()
		selectSet(t, e, prefix+"1", prefix+"2", prefix+"3", prefix+"4")
		if _, err := e.Submit(); err != nil {
			t.Fatal(err)
		}
	}

	solve("a")
	solve("b")
	for _, wrong := range [][]string{
		{"c1", "c2", "c3", "d1"},
		{"c1", "c2", "c3", "d2"},
		{"c1", "c2", "c3", "d3"},
	} {
		selectSet(t, e, wrong...)
		out, err := e.Submit()
		if err != nil {
			t.Fatal(err)
		}
		if out.Correct {
			t.Fatalf("set %v scored correct", wrong)
		}
	}
	if e.mistakes != 3 || e.Status() != game.StatusPlaying {
		t.Fatalf("mistakes=%d status=%s", e.mistakes, e.Status())
	}

	// Two correct submits finish the board; the final one lands on the
	// would-be fourth mistake and still wins.
	solve("c")
	solve("d")
	res, err := e.Result()
	if err != nil {
		t.Fatal(err)
	}
	if !res.Won || res.Mistakes != 3 || res.CorrectCount != 4 {
		t.Fatalf("result = %+v, want win with 3 mistakes", res)
	}
}

func TestReelLossRevealOrder(t *testing.T) {
	e := startReel(t)

	// Solve the medium group first.
	selectSet(t, e, "c1", "c2", "c3", "c4")
	if _, err := e.Submit(); err != nil {
		t.Fatal(err)
	}

	// Four distinct wrong guesses exhaust the mistakes.
	wrongs := [][]string{
		{"a1", "a2", "a3", "b1"},
		{"a1", "a2", "a3", "b2"},
		{"a1", "a2", "a3", "b3"},
		{"a1", "a2", "a3", "b4"},
	}
	for _, w := range wrongs {
		selectSet(t, e, w...)
		if _, err := e.Submit(); err != nil {
			t.Fatal(err)
		}
	}
	if e.Status() != game.StatusLost {
		t.Fatalf("status = %s, want lost", e.Status())
	}

	// Solved groups first in solve order, then remaining ascending by
	// difficulty.
	want := []string{"one-worders", "heists", "sequels", "palindromes"}
	got := e.RevealOrder()
	if len(got) != len(want) {
		t.Fatalf("reveal order = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reveal order = %v, want %v", got, want)
		}
	}

	res, err := e.Result()
	if err != nil {
		t.Fatal(err)
	}
	if res.Won || res.Mistakes != 4 || res.LossMode != game.LossMaxMistakes || res.CorrectCount != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestReelGuessHistoryDistinct(t *testing.T) {
	e := startReel(t)

	selectSet(t, e, "a1", "a2", "a3", "b1")
	if _, err := e.Submit(); err != nil {
		t.Fatal(err)
	}
	selectSet(t, e, "a1", "a2", "a3", "b2")
	if _, err := e.Submit(); err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]bool)
	for _, g := range e.guessHistory {
		key := g[0] + g[1] + g[2] + g[3]
		if seen[key] {
			t.Fatalf("duplicate canonical set %v in history", g)
		}
		seen[key] = true
	}
}

func TestReelShufflePreservesSelection(t *testing.T) {
	e := startReel(t)

	selectSet(t, e, "a1", "d4")
	if err := e.Shuffle(); err != nil {
		t.Fatal(err)
	}
	got := e.Selected()
	if len(got) != 2 || got[0] != "a1" || got[1] != "d4" {
		t.Fatalf("selection after shuffle = %v", got)
	}
	if len(e.Order()) != 16 {
		t.Fatalf("order lost movies: %v", e.Order())
	}
}

func TestReelToggleRules(t *testing.T) {
	e := startReel(t)

	// Selection caps at four; a fifth toggle is a quiet no-op.
	selectSet(t, e, "a1", "a2", "a3", "a4")
	if err := e.Toggle("b1"); err != nil {
		t.Fatal(err)
	}
	if got := e.Selected(); len(got) != 4 {
		t.Fatalf("selection = %v, want 4", got)
	}

	// Toggling a selected movie removes it.
	if err := e.Toggle("a2"); err != nil {
		t.Fatal(err)
	}
	if got := e.Selected(); len(got) != 3 || got[1] != "a3" {
		t.Fatalf("selection after removal = %v", got)
	}

	// Unknown movies are invalid; incomplete submits too.
	if err := e.Toggle("zz"); !IsInvalidMove(err, CodeNoSuchTarget) {
		t.Fatalf("unknown movie = %v", err)
	}
	if _, err := e.Submit(); !IsInvalidMove(err, CodeSelectionIncomplete) {
		t.Fatalf("incomplete submit = %v", err)
	}

	// Movies in solved groups cannot re-enter the selection.
	selectSet(t, e, "a1", "a2", "a3", "a4")
	if _, err := e.Submit(); err != nil {
		t.Fatal(err)
	}
	if err := e.Toggle("a1"); err != nil {
		t.Fatal(err)
	}
	if len(e.Selected()) != 0 {
		t.Fatal("solved movie entered the selection")
	}
}

func TestReelSingleHint(t *testing.T) {
	e := startReel(t)

	g, err := e.UseHint()
	if err != nil {
		t.Fatal(err)
	}
	if g.ID != "heists" || g.Difficulty != game.Easiest {
		t.Fatalf("hinted group = %+v, want the easiest", g)
	}
	if _, err := e.UseHint(); !IsInvalidMove(err, CodeHintExhausted) {
		t.Fatalf("second hint = %v", err)
	}
	if e.hintsUsed != 1 {
		t.Fatalf("hintsUsed = %d", e.hintsUsed)
	}
}

func TestReelHintSkipsSolvedGroups(t *testing.T) {
	e := startReel(t)

	selectSet(t, e, "a1", "a2", "a3", "a4")
	if _, err := e.Submit(); err != nil {
		t.Fatal(err)
	}
	g, err := e.UseHint()
	if err != nil {
		t.Fatal(err)
	}
	if g.ID != "sequels" {
		t.Fatalf("hinted %q, want next-easiest unsolved", g.ID)
	}
}
