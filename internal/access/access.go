// Package access decides which puzzles a player may load. It is the single
// place the archive-gating rules live; callers never interpret launch dates
// or subscription state themselves.
package access

import (
	"net/url"
	"strings"

	"github.com/quartetgames/quartet/internal/game"
)

// Reason explains an access decision.
type Reason string

const (
	ReasonNoPuzzle      Reason = "no_puzzle"      // Before the kind's launch date
	ReasonFuture        Reason = "future"         // After today
	ReasonTodayFree     Reason = "today_free"     // Today's puzzle, free for everyone
	ReasonArchiveSub    Reason = "archive_sub"    // Archive, unlocked by subscription
	ReasonArchiveLocked Reason = "archive_locked" // Archive, no subscription
)

// Decision is the outcome of an access check.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Decide applies the gating rules in order; the first matching rule wins.
// It is a pure function of its arguments.
func Decide(kind game.Kind, puzzleDate, today game.Date, subscribed bool) Decision {
	switch {
	case puzzleDate.Before(kind.LaunchDate()):
		return Decision{false, ReasonNoPuzzle}
	case puzzleDate.After(today):
		return Decision{false, ReasonFuture}
	case puzzleDate == today:
		return Decision{true, ReasonTodayFree}
	case subscribed:
		return Decision{true, ReasonArchiveSub}
	default:
		return Decision{false, ReasonArchiveLocked}
	}
}

// DeepLink builds the canonical archive deep link for a puzzle.
func DeepLink(kind game.Kind, date game.Date) string {
	return "/" + string(kind) + "?date=" + date.String()
}

// ParseDeepLink resolves a "/<game>?date=YYYY-MM-DD" link to a kind and
// date. An invalid or missing date means "load today". Future dates are not
// rejected here; that is Decide's job.
func ParseDeepLink(link string, today game.Date) (game.Kind, game.Date, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", game.Date{}, err
	}
	kind, err := game.ParseKind(strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return "", game.Date{}, err
	}
	date, err := game.ParseDate(u.Query().Get("date"))
	if err != nil {
		date = today
	}
	return kind, date, nil
}
