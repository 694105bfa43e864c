package engine

import (
	"fmt"

	"github.com/quartetgames/quartet/internal/game"
)

// CrypticEngine runs one cryptic-clue play-through. There is no mistake
// limit; the only non-win terminal state is abandonment.
type CrypticEngine struct {
	session

	userAnswer    string
	unlockedHints int
}

// NewCryptic builds an engine for a Cryptic record, adopting resumed state
// when it references the same puzzle and is not terminal.
func NewCryptic(record *game.PuzzleRecord, resumed *game.Snapshot, saver Saver) (*CrypticEngine, error) {
	if record.Cryptic == nil {
		return nil, fmt.Errorf("record %s/%s has no cryptic payload", record.Kind, record.Date)
	}
	e := &CrypticEngine{session: newSession(record, saver)}
	if adoptable(record, resumed) && resumed.Cryptic != nil {
		e.adoptCommon(resumed)
		e.userAnswer = resumed.Cryptic.UserAnswer
		e.unlockedHints = resumed.Cryptic.UnlockedHints
	}
	return e, nil
}

// Answer returns the staged answer text.
func (e *CrypticEngine) Answer() string { return e.userAnswer }

// UnlockedHints returns the hints revealed so far, in order.
func (e *CrypticEngine) UnlockedHints() []string {
	hints := e.record.Cryptic.Hints
	if e.unlockedHints > len(hints) {
		return hints
	}
	return hints[:e.unlockedHints]
}

// SetAnswer stages the working answer without checking it.
func (e *CrypticEngine) SetAnswer(s string) error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	e.userAnswer = s
	e.persist(e.Snapshot())
	return nil
}

// CheckAnswer compares the staged answer to the solution. The normalized
// lengths must match before the check counts; a failed check counts a
// mistake but never ends the session.
func (e *CrypticEngine) CheckAnswer() error {
	if err := e.requirePlaying(); err != nil {
		return err
	}
	guess := game.Normalize(e.userAnswer)
	answer := e.record.Cryptic.Answer
	if len(guess) != len(answer) {
		return invalidMove(CodeWrongLength, "answer %q has %d letters, want %d", guess, len(guess), len(answer))
	}
	e.attempts++
	if guess == answer {
		e.finish(true, "", 0, "")
		return nil
	}
	e.mistakes++
	e.persist(e.Snapshot())
	return nil
}

// UseHint reveals the next hint from the clue's ordered list.
func (e *CrypticEngine) UseHint() (string, error) {
	if err := e.requirePlaying(); err != nil {
		return "", err
	}
	hints := e.record.Cryptic.Hints
	if e.unlockedHints >= len(hints) {
		return "", invalidMove(CodeHintExhausted, "all %d hints revealed", len(hints))
	}
	hint := hints[e.unlockedHints]
	e.unlockedHints++
	e.hintsUsed++
	e.markHinted(fmt.Sprintf("hint:%d", e.unlockedHints))
	e.persist(e.Snapshot())
	return hint, nil
}

// Abandon ends the session without a Result.
func (e *CrypticEngine) Abandon() {
	e.abandon(e.Snapshot)
}

// Snapshot serializes the full session state.
func (e *CrypticEngine) Snapshot() game.Snapshot {
	snap := e.commonSnapshot()
	snap.Cryptic = &game.CrypticState{
		UserAnswer:    e.userAnswer,
		UnlockedHints: e.unlockedHints,
	}
	return snap
}
