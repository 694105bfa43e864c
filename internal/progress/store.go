// Package progress persists in-flight and finished puzzle sessions. It is
// the only component shared across game shells: engines write, the archive
// viewer and stats read.
package progress

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/quartetgames/quartet/internal/game"
)

// ErrAlreadyCompleted rejects a second result for a (kind, date): results
// are write-once.
var ErrAlreadyCompleted = errors.New("puzzle already has a result")

// ErrSchemaMismatch signals a durable tier whose on-disk schema is newer
// than this build understands. The caller continues in memory and surfaces
// the error for migration.
var ErrSchemaMismatch = errors.New("progress store schema version mismatch")

// Store is one persistence tier. Load returns (nil, nil) for an unknown
// key.
type Store interface {
	Load(ctx context.Context, kind game.Kind, date game.Date) (*game.HistoryEntry, error)
	SavePartial(ctx context.Context, snap game.Snapshot) error
	SaveResult(ctx context.Context, res game.Result) error
	CompletedDatesInRange(ctx context.Context, kind game.Kind, start, end game.Date) (map[game.Date]bool, error)
	AllResults(ctx context.Context, kind game.Kind) ([]game.Result, error)
	Close() error
}

// statusForResult maps an outcome onto the archive-facing status.
func statusForResult(res *game.Result) game.HistoryStatus {
	if res.Won {
		return game.HistoryCompleted
	}
	return game.HistoryFailed
}

// Memory is the volatile tier: a mutex-guarded map. Readers always get a
// private copy, never a view that a writer may tear.
type Memory struct {
	mu      sync.RWMutex
	entries map[progressKey]game.HistoryEntry
	now     func() time.Time // Injected in merge tests
}

type progressKey struct {
	kind game.Kind
	date game.Date
}

// NewMemory returns an empty volatile store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[progressKey]game.HistoryEntry), now: time.Now}
}

// Load implements Store.
func (m *Memory) Load(_ context.Context, kind game.Kind, date game.Date) (*game.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[progressKey{kind, date}]
	if !ok {
		return nil, nil
	}
	out := entry
	return &out, nil
}

// SavePartial implements Store. A partial never displaces a result.
func (m *Memory) SavePartial(_ context.Context, snap game.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := progressKey{snap.Kind, snap.Date}
	entry := m.entries[key]
	if entry.Result != nil {
		return nil
	}
	partial := snap
	m.entries[key] = game.HistoryEntry{
		Kind:      snap.Kind,
		Date:      snap.Date,
		Status:    game.HistoryInProgress,
		Partial:   &partial,
		UpdatedAt: m.now(),
	}
	return nil
}

// SaveResult implements Store: write-once per key.
func (m *Memory) SaveResult(_ context.Context, res game.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := progressKey{res.Kind, res.Date}
	if existing, ok := m.entries[key]; ok && existing.Result != nil {
		return ErrAlreadyCompleted
	}
	result := res
	m.entries[key] = game.HistoryEntry{
		Kind:      res.Kind,
		Date:      res.Date,
		Status:    statusForResult(&result),
		Result:    &result,
		UpdatedAt: m.now(),
	}
	return nil
}

// CompletedDatesInRange implements Store: O(entries), filtered to results.
func (m *Memory) CompletedDatesInRange(_ context.Context, kind game.Kind, start, end game.Date) (map[game.Date]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[game.Date]bool)
	for key, entry := range m.entries {
		if key.kind != kind || entry.Result == nil {
			continue
		}
		if key.date.Before(start) || key.date.After(end) {
			continue
		}
		out[key.date] = true
	}
	return out, nil
}

// AllResults implements Store, ordered by date.
func (m *Memory) AllResults(_ context.Context, kind game.Kind) ([]game.Result, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []game.Result
	for key, entry := range m.entries {
		if key.kind == kind && entry.Result != nil {
			out = append(out, *entry.Result)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Close implements Store.
func (m *Memory) Close() error { return nil }
