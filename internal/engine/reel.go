package engine

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/quartetgames/quartet/internal/game"
)

// reelMaxMistakes ends the session when reached before all groups solve.
const reelMaxMistakes = 4

// SubmitOutcome reports what a Reel submit did. OneAway is a transient
// signal for the shell; it never alters session state.
type SubmitOutcome struct {
	Correct bool
	Group   *game.Group // Solved group when Correct
	OneAway bool        // Exactly three of four shared a group
}

// ReelEngine runs one Reel Connections play-through.
type ReelEngine struct {
	session

	order        []string   // Presentation order of the 16 movie ids
	selected     []string   // Insertion order, len <= 4
	solvedGroups []string   // Group ids in the order solved
	guessHistory [][]string // Canonical (sorted) 4-id sets
	hintedGroup  string
	shuffleRand  *rand.Rand
}

// NewReel builds an engine for a Reel record, adopting resumed state when
// it references the same puzzle and is not terminal.
func NewReel(record *game.PuzzleRecord, resumed *game.Snapshot, saver Saver) (*ReelEngine, error) {
	if record.Reel == nil {
		return nil, fmt.Errorf("record %s/%s has no reel payload", record.Kind, record.Date)
	}
	e := &ReelEngine{
		session:     newSession(record, saver),
		shuffleRand: rand.New(rand.NewSource(rand.Int63())),
	}
	for _, m := range record.Reel.Movies {
		e.order = append(e.order, m.ID)
	}
	if adoptable(record, resumed) && resumed.Reel != nil {
		e.adoptCommon(resumed)
		st := resumed.Reel
		e.selected = append([]string(nil), st.Selected...)
		e.solvedGroups = append([]string(nil), st.SolvedGroups...)
		for _, g := range st.GuessHistory {
			e.guessHistory = append(e.guessHistory, append([]string(nil), g...))
		}
		e.hintedGroup = st.HintedGroup
		if len(st.Order) == len(e.order) {
			e.order = append([]string(nil), st.Order...)
		}
	}
	return e, nil
}

// Order returns the movies in presentation order, solved groups excluded.
func (e *ReelEngine) Order() []string {
	out := make([]string, 0, len(e.order))
	for _, id := range e.order {
		if !e.inSolvedGroup(id) {
			out = append(out, id)
		}
	}
	return out
}

// Selected returns the current selection in insertion order.
func (e *ReelEngine) Selected() []string {
	return append([]string(nil), e.selected...)
}

// SolvedGroups returns group ids in the order they were solved.
func (e *ReelEngine) SolvedGroups() []string {
	return append([]string(nil), e.solvedGroups...)
}

// HintedGroup returns the id of the group whose connection was revealed by
// the hint, or "".
func (e *ReelEngine) HintedGroup() string { return e.hintedGroup }

func (e *ReelEngine) inSolvedGroup(movieID string) bool {
	g := e.record.Reel.GroupOf(movieID)
	if g == nil {
		return false
	}
	for _, id := range e.solvedGroups {
		if id == g.ID {
			return true
		}
	}
	return false
}

// Toggle adds a movie to the selection (when room remains) or removes it.
// Movies in solved groups are ignored.
func (e *ReelEngine) Toggle(movieID string) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if e.record.Reel.GroupOf(movieID) == nil {
		return invalidMove(CodeNoSuchTarget, "no movie %q", movieID)
	}
	if e.inSolvedGroup(movieID) {
		return nil
	}
	for i, id := range e.selected {
		if id == movieID {
			e.selected = append(e.selected[:i], e.selected[i+1:]...)
			e.persist(e.Snapshot())
			return nil
		}
	}
	if len(e.selected) >= 4 {
		return nil
	}
	e.selected = append(e.selected, movieID)
	e.persist(e.Snapshot())
	return nil
}

// Deselect clears the selection.
func (e *ReelEngine) Deselect() error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	if len(e.selected) == 0 {
		return nil
	}
	e.selected = nil
	e.persist(e.Snapshot())
	return nil
}

// Shuffle permutes the presentation order without touching the selection.
func (e *ReelEngine) Shuffle() error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	e.shuffleRand.Shuffle(len(e.order), func(i, j int) {
		e.order[i], e.order[j] = e.order[j], e.order[i]
	})
	e.persist(e.Snapshot())
	return nil
}

// canonical returns the sorted copy of a 4-id selection.
func canonical(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

// Submit scores the current 4-movie selection. A repeat of an earlier
// guess is rejected without counting a mistake.
func (e *ReelEngine) Submit() (SubmitOutcome, error) {
	if err := e.requirePlaying(); err != nil {
		return SubmitOutcome{}, err
	}
	if len(e.selected) != 4 {
		return SubmitOutcome{}, invalidMove(CodeSelectionIncomplete, "selected %d of 4 movies", len(e.selected))
	}
	guess := canonical(e.selected)
	for _, prev := range e.guessHistory {
		if strings.Join(prev, "\x00") == strings.Join(guess, "\x00") {
			return SubmitOutcome{}, invalidMove(CodeDuplicateGuess, "this set was already guessed")
		}
	}
	e.guessHistory = append(e.guessHistory, guess)
	e.attempts++

	if g := e.matchGroup(guess); g != nil {
		e.solvedGroups = append(e.solvedGroups, g.ID)
		e.selected = nil
		// The winning submit never counts as a mistake, so reaching the
		// fourth solve on the would-be final mistake still wins.
		if len(e.solvedGroups) == len(e.record.Reel.Groups) {
			e.finish(true, "", len(e.solvedGroups), "")
		} else {
			e.persist(e.Snapshot())
		}
		return SubmitOutcome{Correct: true, Group: g}, nil
	}

	e.mistakes++
	out := SubmitOutcome{OneAway: e.oneAway(guess)}
	if e.mistakes >= reelMaxMistakes {
		e.finish(false, game.LossMaxMistakes, len(e.solvedGroups), "")
	} else {
		e.persist(e.Snapshot())
	}
	return out, nil
}

// matchGroup returns the group whose movie set equals the canonical guess.
func (e *ReelEngine) matchGroup(guess []string) *game.Group {
	for i := range e.record.Reel.Groups {
		g := &e.record.Reel.Groups[i]
		if strings.Join(canonical(g.MovieIDs), "\x00") == strings.Join(guess, "\x00") {
			return g
		}
	}
	return nil
}

// oneAway reports whether exactly three of the four guessed movies share a
// group.
func (e *ReelEngine) oneAway(guess []string) bool {
	counts := make(map[string]int, 4)
	for _, id := range guess {
		if g := e.record.Reel.GroupOf(id); g != nil {
			counts[g.ID]++
		}
	}
	for _, n := range counts {
		if n == 3 {
			return true
		}
	}
	return false
}

// UseHint reveals the connection text of the easiest unsolved group. At
// most one hint per session.
func (e *ReelEngine) UseHint() (*game.Group, error) {
	if err := e.requirePlaying(); err != nil {
		return nil, err
	}
	if e.hintedGroup != "" {
		return nil, invalidMove(CodeHintExhausted, "hint already used")
	}
	var target *game.Group
	for i := range e.record.Reel.Groups {
		g := &e.record.Reel.Groups[i]
		if e.solvedGroup(g.ID) {
			continue
		}
		if target == nil || g.Difficulty.Rank() < target.Difficulty.Rank() {
			target = g
		}
	}
	if target == nil {
		return nil, invalidMove(CodeHintExhausted, "no unsolved groups")
	}
	e.hintedGroup = target.ID
	e.hintsUsed++
	e.markHinted("group:" + target.ID)
	e.persist(e.Snapshot())
	return target, nil
}

func (e *ReelEngine) solvedGroup(id string) bool {
	for _, s := range e.solvedGroups {
		if s == id {
			return true
		}
	}
	return false
}

// RevealOrder returns the reveal-phase sequence after a loss: groups
// solved in play first, in solve order, then the remaining groups in
// ascending difficulty. The caller paces the animation; revealing does not
// alter the Result.
func (e *ReelEngine) RevealOrder() []string {
	out := append([]string(nil), e.solvedGroups...)
	var rest []*game.Group
	for i := range e.record.Reel.Groups {
		g := &e.record.Reel.Groups[i]
		if !e.solvedGroup(g.ID) {
			rest = append(rest, g)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		return rest[i].Difficulty.Rank() < rest[j].Difficulty.Rank()
	})
	for _, g := range rest {
		out = append(out, g.ID)
	}
	return out
}

// Abandon ends the session without a Result.
func (e *ReelEngine) Abandon() {
	e.abandon(e.Snapshot)
}

// Snapshot serializes the full session state.
func (e *ReelEngine) Snapshot() game.Snapshot {
	snap := e.commonSnapshot()
	st := &game.ReelState{
		Selected:     append([]string(nil), e.selected...),
		SolvedGroups: append([]string(nil), e.solvedGroups...),
		HintedGroup:  e.hintedGroup,
		Order:        append([]string(nil), e.order...),
	}
	for _, g := range e.guessHistory {
		st.GuessHistory = append(st.GuessHistory, append([]string(nil), g...))
	}
	snap.Reel = st
	return snap
}
