// Package engine implements the per-game session state machines. One
// engine instance owns one play-through; all four variants share the
// lifecycle contract (IDLE -> PLAYING -> WON/LOST/ABANDONED) and differ
// only in move semantics and win condition.
package engine

import (
	"time"

	"github.com/quartetgames/quartet/internal/clock"
	"github.com/quartetgames/quartet/internal/game"
)

// Saver receives session persistence events. Partials are fire-and-forget;
// the engine advances state immediately and the store owns durability.
type Saver interface {
	SavePartial(snap game.Snapshot)
	SaveResult(res game.Result) error
}

// Engine is the surface common to all four game variants. Kind-specific
// move methods live on the concrete types.
type Engine interface {
	Kind() game.Kind
	Date() game.Date
	Status() game.Status
	Start()
	Pause()
	Resume()
	Abandon()
	CurrentElapsedMs() int64
	Snapshot() game.Snapshot
	Result() (game.Result, error)
}

// session holds the state every variant shares. Concrete engines embed it.
type session struct {
	record *game.PuzzleRecord
	saver  Saver
	clk    *clock.Clock

	status    game.Status
	mistakes  int
	hintsUsed int
	hintedAt  []string
	attempts  int
	result    *game.Result
}

func newSession(record *game.PuzzleRecord, saver Saver) session {
	return session{
		record: record,
		saver:  saver,
		clk:    clock.New(),
		status: game.StatusIdle,
	}
}

// adoptCommon restores the shared fields from a resumed snapshot. The
// caller has already verified the snapshot matches the record and is not
// terminal.
func (s *session) adoptCommon(snap *game.Snapshot) {
	s.status = snap.Status
	s.mistakes = snap.Mistakes
	s.hintsUsed = snap.HintsUsed
	s.hintedAt = append([]string(nil), snap.HintedAt...)
	s.attempts = snap.Attempts
	s.clk.Preload(time.Duration(snap.AccumulatedMs) * time.Millisecond)
}

// adoptable reports whether a resumed snapshot may be adopted for a record:
// same puzzle, not yet terminal.
func adoptable(record *game.PuzzleRecord, snap *game.Snapshot) bool {
	return snap != nil &&
		snap.Kind == record.Kind &&
		snap.Date == record.Date &&
		(snap.Status == game.StatusIdle || snap.Status == game.StatusPlaying)
}

func (s *session) Kind() game.Kind     { return s.record.Kind }
func (s *session) Date() game.Date     { return s.record.Date }
func (s *session) Status() game.Status { return s.status }

// Start latches the clock. On an IDLE session it begins play; on a resumed
// PLAYING session it restarts timing; otherwise it is a no-op.
func (s *session) Start() {
	switch s.status {
	case game.StatusIdle:
		s.status = game.StatusPlaying
		s.clk.Start()
	case game.StatusPlaying:
		s.clk.Start()
	}
}

// Pause freezes the clock without changing status.
func (s *session) Pause() {
	if s.status == game.StatusPlaying {
		s.clk.Pause()
	}
}

// Resume unfreezes the clock.
func (s *session) Resume() {
	if s.status == game.StatusPlaying {
		s.clk.Resume()
	}
}

// CurrentElapsedMs returns the monotonic play time so far.
func (s *session) CurrentElapsedMs() int64 {
	return s.clk.ElapsedMs()
}

// Result returns the terminal outcome, or ErrNoResult before one exists.
func (s *session) Result() (game.Result, error) {
	if s.result == nil {
		return game.Result{}, ErrNoResult
	}
	return *s.result, nil
}

// requirePlaying gates every move.
func (s *session) requirePlaying() error {
	switch s.status {
	case game.StatusPlaying:
		return nil
	case game.StatusWon, game.StatusLost, game.StatusAbandoned:
		return ErrNotPlaying
	default:
		return ErrNotPlaying
	}
}

// markHinted records a kind-specific hint locator, once.
func (s *session) markHinted(locator string) {
	for _, h := range s.hintedAt {
		if h == locator {
			return
		}
	}
	s.hintedAt = append(s.hintedAt, locator)
}

// commonSnapshot fills the shared snapshot fields; the concrete engine
// attaches its per-kind state.
func (s *session) commonSnapshot() game.Snapshot {
	return game.Snapshot{
		Kind:          s.record.Kind,
		Date:          s.record.Date,
		Number:        s.record.Number,
		Status:        s.status,
		AccumulatedMs: s.clk.ElapsedMs(),
		Paused:        s.clk.Paused(),
		Mistakes:      s.mistakes,
		HintsUsed:     s.hintsUsed,
		HintedAt:      append([]string(nil), s.hintedAt...),
		Attempts:      s.attempts,
	}
}

// finish performs the single terminal transition: stop the clock, build the
// Result, hand it to the store. Repeated terminal triggers are ignored by
// the per-engine callers via requirePlaying.
func (s *session) finish(won bool, lossMode game.LossMode, correctCount int, rating game.Rating) {
	s.clk.Stop()
	if won {
		s.status = game.StatusWon
	} else {
		s.status = game.StatusLost
	}
	s.result = &game.Result{
		Kind:         s.record.Kind,
		Date:         s.record.Date,
		Number:       s.record.Number,
		Won:          won,
		ElapsedMs:    s.clk.ElapsedMs(),
		Mistakes:     s.mistakes,
		HintsUsed:    s.hintsUsed,
		HintedAt:     append([]string(nil), s.hintedAt...),
		LossMode:     lossMode,
		CorrectCount: correctCount,
		Rating:       rating,
		Timestamp:    time.Now(),
	}
	if s.saver != nil {
		// Persistence failures are the store's problem; the session result
		// stays valid in memory either way.
		_ = s.saver.SaveResult(*s.result)
	}
}

// abandon ends the session without a Result; the final partial persists so
// the archive can show an in-progress entry.
func (s *session) abandon(snapshot func() game.Snapshot) {
	if s.status.Terminal() {
		return
	}
	s.clk.Stop()
	s.status = game.StatusAbandoned
	if s.saver != nil {
		s.saver.SavePartial(snapshot())
	}
}

// persist pushes a partial snapshot after a mutating move.
func (s *session) persist(snap game.Snapshot) {
	if s.saver != nil {
		s.saver.SavePartial(snap)
	}
}
