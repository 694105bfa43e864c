package engine

import (
	"fmt"

	"github.com/quartetgames/quartet/internal/game"
)

// tandemMaxMistakes ends the session when reached with pairs unsolved.
const tandemMaxMistakes = 4

// pairState tracks one emoji pair in play. The locked mask is append-only:
// once a position locks it stays locked until terminal.
type pairState struct {
	solved    bool
	locked    []bool
	userGuess string
	hintIndex int
}

// TandemEngine runs one Tandem play-through.
type TandemEngine struct {
	session
	pairs []pairState
}

// NewTandem builds an engine for a Tandem record, adopting resumed state
// when it references the same puzzle and is not terminal.
func NewTandem(record *game.PuzzleRecord, resumed *game.Snapshot, saver Saver) (*TandemEngine, error) {
	if record.Tandem == nil {
		return nil, fmt.Errorf("record %s/%s has no tandem payload", record.Kind, record.Date)
	}
	e := &TandemEngine{session: newSession(record, saver)}
	e.pairs = make([]pairState, len(record.Tandem.Pairs))
	for i, p := range record.Tandem.Pairs {
		e.pairs[i].locked = make([]bool, len(p.Answer))
	}
	if adoptable(record, resumed) && len(resumed.Tandem) == len(e.pairs) {
		e.adoptCommon(resumed)
		for i, ps := range resumed.Tandem {
			e.pairs[i].solved = ps.Solved
			e.pairs[i].userGuess = ps.UserGuess
			e.pairs[i].hintIndex = ps.HintIndex
			if len(ps.Locked) == len(e.pairs[i].locked) {
				copy(e.pairs[i].locked, ps.Locked)
			}
		}
	}
	return e, nil
}

// Theme returns the puzzle theme once every pair is solved, else "".
func (e *TandemEngine) Theme() string {
	if e.status == game.StatusWon {
		return e.record.Tandem.Theme
	}
	return ""
}

// Pair exposes read-only per-pair progress for rendering.
func (e *TandemEngine) Pair(i int) (solved bool, locked []bool, guess string) {
	p := &e.pairs[i]
	return p.solved, append([]bool(nil), p.locked...), p.userGuess
}

// SolvedCount returns the number of solved pairs.
func (e *TandemEngine) SolvedCount() int {
	n := 0
	for _, p := range e.pairs {
		if p.solved {
			n++
		}
	}
	return n
}

func (e *TandemEngine) pairAt(i int) (*pairState, string, error) {
	if i < 0 || i >= len(e.pairs) {
		return nil, "", invalidMove(CodeNoSuchTarget, "no pair %d", i)
	}
	return &e.pairs[i], e.record.Tandem.Pairs[i].Answer, nil
}

// SetGuess stages the working guess for a pair without submitting it.
func (e *TandemEngine) SetGuess(i int, guess string) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	p, _, err := e.pairAt(i)
	if err != nil {
		return err
	}
	if p.solved {
		return invalidMove(CodeAlreadySolved, "pair %d is already solved", i)
	}
	p.userGuess = guess
	e.persist(e.Snapshot())
	return nil
}

// SubmitGuess scores the staged guess against the answer. A full match
// solves the pair; anything else smart-locks every position that matched
// and counts a mistake. A submit that alters a locked position is rejected
// outright.
func (e *TandemEngine) SubmitGuess(i int) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	p, answer, err := e.pairAt(i)
	if err != nil {
		return err
	}
	if p.solved {
		return invalidMove(CodeAlreadySolved, "pair %d is already solved", i)
	}
	guess := game.Normalize(p.userGuess)
	if len(guess) != len(answer) {
		return invalidMove(CodeWrongLength, "guess %q has %d letters, answer has %d", guess, len(guess), len(answer))
	}
	for pos, locked := range p.locked {
		if locked && guess[pos] != answer[pos] {
			return invalidMove(CodeLockedPosition, "position %d is locked to %q", pos, string(answer[pos]))
		}
	}

	e.attempts++
	if guess == answer {
		p.solved = true
		for pos := range p.locked {
			p.locked[pos] = true
		}
	} else {
		for pos := range p.locked {
			if guess[pos] == answer[pos] {
				p.locked[pos] = true
			}
		}
		e.mistakes++
	}

	// A submit that solves the final pair on the would-be final mistake
	// still wins: the solving submit never counts as a mistake.
	if e.SolvedCount() == len(e.pairs) {
		e.finish(true, "", len(e.pairs), e.record.Tandem.Rating)
	} else if e.mistakes >= tandemMaxMistakes {
		e.finish(false, game.LossMaxMistakes, e.SolvedCount(), e.record.Tandem.Rating)
	} else {
		e.persist(e.Snapshot())
	}
	return nil
}

// UseHintOn locks the leftmost unlocked position of a pair, revealing its
// letter for the rest of the session.
func (e *TandemEngine) UseHintOn(i int) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	p, _, err := e.pairAt(i)
	if err != nil {
		return err
	}
	if p.solved {
		return invalidMove(CodeAlreadySolved, "pair %d is already solved", i)
	}
	pos := -1
	for j, locked := range p.locked {
		if !locked {
			pos = j
			break
		}
	}
	if pos < 0 {
		return invalidMove(CodeHintExhausted, "pair %d has no unrevealed letters", i)
	}
	p.locked[pos] = true
	p.hintIndex = pos + 1
	e.hintsUsed++
	e.markHinted(fmt.Sprintf("pair:%d", i))
	e.persist(e.Snapshot())
	return nil
}

// Abandon ends the session without a Result.
func (e *TandemEngine) Abandon() {
	e.abandon(e.Snapshot)
}

// Snapshot serializes the full session state.
func (e *TandemEngine) Snapshot() game.Snapshot {
	snap := e.commonSnapshot()
	snap.Tandem = make([]game.TandemPairState, len(e.pairs))
	for i, p := range e.pairs {
		snap.Tandem[i] = game.TandemPairState{
			Solved:    p.solved,
			Locked:    append([]bool(nil), p.locked...),
			UserGuess: p.userGuess,
			HintIndex: p.hintIndex,
		}
	}
	return snap
}
