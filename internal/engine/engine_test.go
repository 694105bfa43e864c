package engine

import (
	"errors"
	"testing"

	"github.com/quartetgames/quartet/internal/game"
)

// recorder is a Saver capturing persistence calls for assertions.
type recorder struct {
	partials []game.Snapshot
	results  []game.Result
	failSave error
}

func (r *recorder) SavePartial(snap game.Snapshot) {
	r.partials = append(r.partials, snap)
}

func (r *recorder) SaveResult(res game.Result) error {
	if r.failSave != nil {
		return r.failSave
	}
	r.results = append(r.results, res)
	return nil
}

func tandemRecord(t *testing.T) *game.PuzzleRecord {
	t.Helper()
	date := game.Tandem.LaunchDate().AddDays(100)
	rec := &game.PuzzleRecord{
		Kind:   game.Tandem,
		Date:   date,
		Number: game.Tandem.NumberFor(date),
		Tandem: &game.TandemPayload{
			Pairs: []game.Pair{
				{Emoji1: "🗺️", Emoji2: "📋", Answer: "PLAN", Hints: []string{"ahead"}},
				{Emoji1: "🌙", Emoji2: "🐄", Answer: "MOON"},
				{Emoji1: "⭐", Emoji2: "🎬", Answer: "STAR"},
				{Emoji1: "🐟", Emoji2: "🎣", Answer: "FISH"},
			},
			Theme:  "Night sky",
			Rating: game.RatingMedium,
		},
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("tandem fixture invalid: %v", err)
	}
	return rec
}

// miniGrid is the test solution. '#' marks black cells.
var miniGrid = [game.MiniSize]string{
	"CAFES",
	"ARENA",
	"TESLA",
	"##TEN",
	"##SOD",
}

func miniRecord(t *testing.T) *game.PuzzleRecord {
	t.Helper()
	return miniRecordFor(t, miniGrid)
}

// miniRecordFor builds a record for any solution grid, deriving one clue
// per maximal run in each direction.
func miniRecordFor(t *testing.T, grid [game.MiniSize]string) *game.PuzzleRecord {
	t.Helper()
	payload := &game.MiniPayload{Grid: grid}
	num := 1
	// Across clues: one per maximal horizontal run.
	for r := 0; r < game.MiniSize; r++ {
		c := 0
		for c < game.MiniSize {
			if payload.IsBlack(r, c) {
				c++
				continue
			}
			clue := game.Clue{Number: num, Direction: game.Across, Text: "across"}
			for ; c < game.MiniSize && !payload.IsBlack(r, c); c++ {
				clue.Cells = append(clue.Cells, game.Coord{Row: r, Col: c})
			}
			payload.Clues = append(payload.Clues, clue)
			num++
		}
	}
	// Down clues follow all across clues.
	for c := 0; c < game.MiniSize; c++ {
		r := 0
		for r < game.MiniSize {
			if payload.IsBlack(r, c) {
				r++
				continue
			}
			clue := game.Clue{Number: num, Direction: game.Down, Text: "down"}
			for ; r < game.MiniSize && !payload.IsBlack(r, c); r++ {
				clue.Cells = append(clue.Cells, game.Coord{Row: r, Col: c})
			}
			payload.Clues = append(payload.Clues, clue)
			num++
		}
	}
	date := game.Mini.LaunchDate().AddDays(50)
	rec := &game.PuzzleRecord{
		Kind:   game.Mini,
		Date:   date,
		Number: game.Mini.NumberFor(date),
		Mini:   payload,
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("mini fixture invalid: %v", err)
	}
	return rec
}

func reelRecord(t *testing.T) *game.PuzzleRecord {
	t.Helper()
	payload := &game.ReelPayload{}
	for i := 1; i <= 16; i++ {
		payload.Movies = append(payload.Movies, game.Movie{
			ID:    movieID(i),
			Title: "Movie " + movieID(i),
			Year:  1990 + i,
		})
	}
	diffs := []game.Difficulty{game.Easiest, game.Easy, game.Medium, game.Hardest}
	names := []string{"heists", "sequels", "one-worders", "palindromes"}
	for g := 0; g < 4; g++ {
		group := game.Group{
			ID:         names[g],
			Connection: "Connection: " + names[g],
			Difficulty: diffs[g],
		}
		for i := 0; i < 4; i++ {
			group.MovieIDs = append(group.MovieIDs, movieID(g*4+i+1))
		}
		payload.Groups = append(payload.Groups, group)
	}
	date := game.Reel.LaunchDate().AddDays(25)
	rec := &game.PuzzleRecord{
		Kind:   game.Reel,
		Date:   date,
		Number: game.Reel.NumberFor(date),
		Reel:   payload,
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("reel fixture invalid: %v", err)
	}
	return rec
}

func movieID(i int) string {
	return string(rune('a'+(i-1)/4)) + string(rune('0'+(i-1)%4+1))
}

func crypticRecord(t *testing.T) *game.PuzzleRecord {
	t.Helper()
	date := game.Cryptic.LaunchDate().AddDays(10)
	rec := &game.PuzzleRecord{
		Kind:   game.Cryptic,
		Date:   date,
		Number: game.Cryptic.NumberFor(date),
		Cryptic: &game.CrypticPayload{
			Text:   "Odd gales rent apart, making one distant (8)",
			Answer: "ESTRANGE",
			Hints:  []string{"Anagram", "Of 'gales rent' minus l... almost", "Starts with E"},
		},
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("cryptic fixture invalid: %v", err)
	}
	return rec
}

func TestRegistrySingleSessionPerPuzzle(t *testing.T) {
	reg := NewRegistry()
	rec := crypticRecord(t)

	first, err := reg.Acquire(rec.Kind, rec.Date, func() (Engine, error) {
		return NewCryptic(rec, nil, nil)
	})
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	second, err := reg.Acquire(rec.Kind, rec.Date, func() (Engine, error) {
		t.Fatal("construct called for a busy key")
		return nil, nil
	})
	if !errors.Is(err, ErrSessionBusy) {
		t.Fatalf("second acquire error = %v, want ErrSessionBusy", err)
	}
	if second != first {
		t.Fatal("second acquire did not return the existing engine")
	}

	reg.Release(rec.Kind, rec.Date)
	if _, err := reg.Acquire(rec.Kind, rec.Date, func() (Engine, error) {
		return NewCryptic(rec, nil, nil)
	}); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestResumeAdoption(t *testing.T) {
	rec := crypticRecord(t)

	eng, err := NewCryptic(rec, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	eng.Start()
	if err := eng.SetAnswer("estr"); err != nil {
		t.Fatal(err)
	}
	snap := eng.Snapshot()

	resumed, err := NewCryptic(rec, &snap, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resumed.Status() != game.StatusPlaying || resumed.Answer() != "estr" {
		t.Fatalf("resumed status=%s answer=%q", resumed.Status(), resumed.Answer())
	}

	// A terminal snapshot starts fresh.
	terminal := snap
	terminal.Status = game.StatusWon
	fresh, err := NewCryptic(rec, &terminal, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Status() != game.StatusIdle || fresh.Answer() != "" {
		t.Fatalf("fresh engine adopted terminal snapshot: status=%s", fresh.Status())
	}

	// A snapshot for a different date starts fresh too.
	other := snap
	other.Date = rec.Date.AddDays(1)
	fresh2, err := NewCryptic(rec, &other, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fresh2.Status() != game.StatusIdle {
		t.Fatalf("engine adopted snapshot for another puzzle")
	}
}

func TestMovesOutsidePlayingRejected(t *testing.T) {
	rec := crypticRecord(t)
	eng, err := NewCryptic(rec, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	// IDLE: moves rejected.
	if err := eng.SetAnswer("x"); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("SetAnswer while idle = %v, want ErrNotPlaying", err)
	}
	if _, err := eng.Result(); !errors.Is(err, ErrNoResult) {
		t.Fatalf("Result while idle = %v, want ErrNoResult", err)
	}

	eng.Start()
	if err := eng.SetAnswer("estranges"); err != nil {
		t.Fatal(err)
	}

	// Terminal: moves rejected, snapshot stable.
	eng.Abandon()
	if eng.Status() != game.StatusAbandoned {
		t.Fatalf("status after abandon = %s", eng.Status())
	}
	if err := eng.SetAnswer("y"); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("SetAnswer after abandon = %v, want ErrNotPlaying", err)
	}
	if _, err := eng.Result(); !errors.Is(err, ErrNoResult) {
		t.Fatal("abandoned session must not produce a Result")
	}
}

func TestResultSavedExactlyOnce(t *testing.T) {
	rec := crypticRecord(t)
	saver := &recorder{}
	eng, err := NewCryptic(rec, nil, saver)
	if err != nil {
		t.Fatal(err)
	}
	eng.Start()
	if err := eng.SetAnswer("estrange"); err != nil {
		t.Fatal(err)
	}
	if err := eng.CheckAnswer(); err != nil {
		t.Fatal(err)
	}
	if eng.Status() != game.StatusWon {
		t.Fatalf("status = %s, want won", eng.Status())
	}
	// Terminal triggers cannot re-fire: every move is now rejected.
	if err := eng.CheckAnswer(); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("CheckAnswer after win = %v", err)
	}
	if len(saver.results) != 1 {
		t.Fatalf("SaveResult called %d times, want 1", len(saver.results))
	}
	if len(saver.partials) == 0 {
		t.Fatal("no partial snapshots were persisted during play")
	}
}
