// Package catalog fetches and caches puzzle records. A Store layers a
// read-through cache over ordered sources, typically a local YAML pack
// and the remote HTTP catalog, so offline play degrades to whatever the
// pack holds.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/quartetgames/quartet/internal/game"
)

// Source is one place puzzle records come from. A missing puzzle is
// (nil, nil), never an error.
type Source interface {
	ByDate(ctx context.Context, kind game.Kind, date game.Date) (*game.PuzzleRecord, error)
	MonthOf(ctx context.Context, kind game.Kind, year, month int) ([]game.PuzzleRecord, error)
}

type cacheKey struct {
	kind game.Kind
	date game.Date
}

// Store is a read-through cache over ordered sources. Cache keys carry
// the puzzle date, so "today" rolls over at midnight without any expiry
// bookkeeping; past entries never go stale.
type Store struct {
	sources []Source

	mu    sync.RWMutex
	cache map[cacheKey]*game.PuzzleRecord
}

// NewStore builds a store over the given sources, consulted in order.
func NewStore(sources ...Source) *Store {
	return &Store{
		sources: sources,
		cache:   make(map[cacheKey]*game.PuzzleRecord),
	}
}

// ByDate returns the puzzle for a (kind, date), or (nil, nil) when no
// source has it. A cancelled fetch leaves the cache untouched.
func (s *Store) ByDate(ctx context.Context, kind game.Kind, date game.Date) (*game.PuzzleRecord, error) {
	key := cacheKey{kind, date}
	s.mu.RLock()
	rec, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return rec, nil
	}

	var firstErr error
	for _, source := range s.sources {
		rec, err := source.ByDate(ctx, kind, date)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if rec == nil {
			continue
		}
		if err := checkRecord(rec, kind, date); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[key] = rec
		s.mu.Unlock()
		return rec, nil
	}
	return nil, firstErr
}

// ByNumber resolves a puzzle number to its date and loads that. Numbers
// and dates are bijective by construction, so no separate lookup path is
// needed.
func (s *Store) ByNumber(ctx context.Context, kind game.Kind, number int) (*game.PuzzleRecord, error) {
	if number < 1 {
		return nil, nil
	}
	return s.ByDate(ctx, kind, kind.LaunchDate().AddDays(number-1))
}

// MonthOf lists the month's puzzles, ascending by date, and warms the
// per-date cache as a side effect.
func (s *Store) MonthOf(ctx context.Context, kind game.Kind, year, month int) ([]game.PuzzleRecord, error) {
	var firstErr error
	for _, source := range s.sources {
		records, err := source.MonthOf(ctx, kind, year, month)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(records) == 0 {
			continue
		}
		s.mu.Lock()
		for i := range records {
			rec := records[i]
			if checkRecord(&rec, kind, rec.Date) == nil {
				s.cache[cacheKey{kind, rec.Date}] = &rec
			}
		}
		s.mu.Unlock()
		return records, nil
	}
	return nil, firstErr
}

// checkRecord rejects records whose number disagrees with the
// date-derived one, or whose payload fails validation. A catalog that
// serves such a record is broken, not merely empty.
func checkRecord(rec *game.PuzzleRecord, kind game.Kind, date game.Date) error {
	if rec.Kind != kind || rec.Date != date {
		return fmt.Errorf("catalog served %s/%s for a %s/%s request", rec.Kind, rec.Date, kind, date)
	}
	if want := kind.NumberFor(date); rec.Number != want {
		return fmt.Errorf("catalog number %d disagrees with date %s (want %d)", rec.Number, date, want)
	}
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("catalog served invalid puzzle %s/%s: %w", kind, date, err)
	}
	return nil
}
