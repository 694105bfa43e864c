// Package game provides the core domain types for the Quartet daily-puzzle
// platform: game kinds, civil dates, puzzle records, session snapshots and
// results.
package game

import "fmt"

// Kind identifies one of the four daily games.
type Kind string

const (
	Tandem  Kind = "tandem"  // Emoji-tandem word game
	Mini    Kind = "mini"    // 5x5 mini crossword
	Reel    Kind = "reel"    // Reel Connections movie grouping
	Cryptic Kind = "cryptic" // Single cryptic clue
)

// Kinds lists all game kinds in display order.
var Kinds = []Kind{Tandem, Mini, Reel, Cryptic}

// launchDates is the first available puzzle date per kind.
var launchDates = map[Kind]Date{
	Tandem:  {Year: 2023, Month: 9, Day: 18},
	Mini:    {Year: 2024, Month: 2, Day: 5},
	Reel:    {Year: 2024, Month: 6, Day: 10},
	Cryptic: {Year: 2024, Month: 11, Day: 3},
}

// displayNames maps kinds to their user-facing names.
var displayNames = map[Kind]string{
	Tandem:  "Tandem",
	Mini:    "Mini",
	Reel:    "Reel Connections",
	Cryptic: "Cryptic",
}

// ParseKind converts a string (e.g. a URL path segment) to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Tandem, Mini, Reel, Cryptic:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown game kind %q", s)
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	_, ok := launchDates[k]
	return ok
}

// LaunchDate returns the date of puzzle #1 for the kind.
func (k Kind) LaunchDate() Date {
	return launchDates[k]
}

// DisplayName returns the user-facing game name.
func (k Kind) DisplayName() string {
	if n, ok := displayNames[k]; ok {
		return n
	}
	return string(k)
}

// NumberFor returns the puzzle number for a date, counting from 1 at the
// kind's launch date. The result is only meaningful for dates on or after
// the launch date.
func (k Kind) NumberFor(d Date) int {
	return 1 + k.LaunchDate().DaysUntil(d)
}
