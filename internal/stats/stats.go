// Package stats derives per-game aggregates from the result log. The
// aggregator is stateless over its inputs: a full recompute and the
// incrementally maintained value are always equal.
package stats

import (
	"sort"

	"github.com/quartetgames/quartet/internal/game"
)

// Aggregate is the rolled-up view of one game's results.
type Aggregate struct {
	Kind game.Kind `json:"kind"`

	Plays   int     `json:"plays"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"win_rate"`

	AvgWinMs  int64 `json:"avg_win_ms"`
	BestWinMs int64 `json:"best_win_ms"`

	HintsTotal         int     `json:"hints_total"`
	MistakesAvgPerPlay float64 `json:"mistakes_avg_per_play"`

	CurrentStreak int `json:"current_streak"`
	MaxStreak     int `json:"max_streak"`

	// DistributionByDifficulty counts plays per difficulty rating; only
	// populated for results that carry a rating (Tandem does).
	DistributionByDifficulty map[game.Rating]int `json:"distribution_by_difficulty,omitempty"`

	// Running sums and streak bookkeeping. Kept exported-free so the
	// JSON surface stays the derived values only.
	totalWinMs    int64
	totalMistakes int
	run           int       // consecutive win-dates ending at lastWin
	lastWin       game.Date // zero until the first win
	lastLoss      game.Date // zero until the first loss
	haveWin       bool
	haveLoss      bool
}

// NewAggregate returns an empty aggregate for one game.
func NewAggregate(kind game.Kind) *Aggregate {
	return &Aggregate{
		Kind:                     kind,
		DistributionByDifficulty: make(map[game.Rating]int),
	}
}

// Compute folds the full result log, ordered by date, into a fresh
// aggregate as of today. Results for other kinds are skipped.
func Compute(kind game.Kind, results []game.Result, today game.Date) *Aggregate {
	agg := NewAggregate(kind)
	for _, res := range results {
		agg.Add(res, today)
	}
	return agg
}

// Add folds one result in. Results must arrive in date order, which is
// what the progress store's AllResults guarantees.
func (a *Aggregate) Add(res game.Result, today game.Date) {
	if res.Kind != a.Kind {
		return
	}

	a.Plays++
	a.HintsTotal += res.HintsUsed
	a.totalMistakes += res.Mistakes
	if res.Rating != "" {
		a.DistributionByDifficulty[res.Rating]++
	}

	if res.Won {
		a.Wins++
		a.totalWinMs += res.ElapsedMs
		if a.BestWinMs == 0 || res.ElapsedMs < a.BestWinMs {
			a.BestWinMs = res.ElapsedMs
		}
		if a.haveWin && res.Date == a.lastWin.AddDays(1) {
			a.run++
		} else {
			a.run = 1
		}
		a.lastWin = res.Date
		a.haveWin = true
		if a.run > a.MaxStreak {
			a.MaxStreak = a.run
		}
	} else {
		a.lastLoss = res.Date
		a.haveLoss = true
	}

	a.WinRate = float64(a.Wins) / float64(a.Plays)
	a.MistakesAvgPerPlay = float64(a.totalMistakes) / float64(a.Plays)
	if a.Wins > 0 {
		a.AvgWinMs = a.totalWinMs / int64(a.Wins)
	}
	a.CurrentStreak = a.StreakAsOf(today)
}

// StreakAsOf evaluates the current streak against a reference date. The
// streak survives a today without a play; a loss today zeroes it; a last
// win older than yesterday means the chain has lapsed.
func (a *Aggregate) StreakAsOf(today game.Date) int {
	if a.haveLoss && a.lastLoss == today {
		return 0
	}
	if !a.haveWin {
		return 0
	}
	if a.lastWin == today || a.lastWin == today.AddDays(-1) {
		return a.run
	}
	return 0
}

// PlayerAggregate pairs a player handle with their aggregate for one
// game, as served by the leaderboard endpoint.
type PlayerAggregate struct {
	Handle    string     `json:"handle"`
	Aggregate *Aggregate `json:"aggregate"`
}

// Leaderboard orders players best-first: most wins, then win rate, then
// fastest average win, then handle for a stable tail.
func Leaderboard(players []PlayerAggregate) []PlayerAggregate {
	out := make([]PlayerAggregate, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Aggregate, out[j].Aggregate
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.WinRate != b.WinRate {
			return a.WinRate > b.WinRate
		}
		if a.AvgWinMs != b.AvgWinMs {
			if a.AvgWinMs == 0 {
				return false
			}
			if b.AvgWinMs == 0 {
				return true
			}
			return a.AvgWinMs < b.AvgWinMs
		}
		return out[i].Handle < out[j].Handle
	})
	return out
}
