package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by all engines. Game-rule errors are never
// retried, and a move that returns an error never mutates session state.
var (
	// ErrNotPlaying is returned when a move arrives outside PLAYING.
	ErrNotPlaying = errors.New("session is not in play")
	// ErrAlreadyTerminal is returned when a terminal trigger re-fires.
	ErrAlreadyTerminal = errors.New("session already finished")
	// ErrNoResult is returned by Result before a terminal transition.
	ErrNoResult = errors.New("session has no result yet")
	// ErrSessionBusy is returned when a second engine is requested for a
	// (kind, date) that already has a live one.
	ErrSessionBusy = errors.New("a session for this puzzle is already active")
)

// MoveCode classifies an InvalidMoveError.
type MoveCode string

const (
	CodeWrongLength         MoveCode = "wrong_length"
	CodeAlreadySolved       MoveCode = "already_solved"
	CodeLockedPosition      MoveCode = "locked_position"
	CodeDuplicateGuess      MoveCode = "duplicate_guess"
	CodeSelectionIncomplete MoveCode = "selection_incomplete"
	CodeHintExhausted       MoveCode = "hint_exhausted"
	CodeHintsDisabled       MoveCode = "hints_disabled"
	CodeNoSuchTarget        MoveCode = "no_such_target"
)

// InvalidMoveError reports a kind-specific precondition failure. The move
// is rejected without changing state and without counting a mistake.
type InvalidMoveError struct {
	Code MoveCode
	Msg  string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move (%s): %s", e.Code, e.Msg)
}

func invalidMove(code MoveCode, format string, args ...any) error {
	return &InvalidMoveError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// IsInvalidMove reports whether err is an InvalidMoveError, optionally of a
// given code.
func IsInvalidMove(err error, codes ...MoveCode) bool {
	var im *InvalidMoveError
	if !errors.As(err, &im) {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, c := range codes {
		if im.Code == c {
			return true
		}
	}
	return false
}
