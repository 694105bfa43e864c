package progress

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/quartetgames/quartet/internal/game"
)

// writeRetries and writeBackoff govern transient-failure retries on the
// write path. Game-rule errors are never retried; ErrAlreadyCompleted and
// ErrSchemaMismatch pass straight through.
const writeRetries = 3

var writeBackoff = 25 * time.Millisecond

// Layered stacks persistence tiers, volatile first, cloud last. Reads
// merge by UpdatedAt, preferring a later tier only when it is strictly
// newer; a Result always beats a partial regardless of timestamps. Writes
// go through a single queue, so writes for one key can never reorder or
// run in parallel.
type Layered struct {
	tiers []Store
	jobs  chan func()
	done  chan struct{}
}

// NewLayered builds a layered store over the given tiers. The caller
// typically passes NewMemory(), an *SQLite, and optionally a cloud tier.
func NewLayered(tiers ...Store) *Layered {
	l := &Layered{
		tiers: tiers,
		jobs:  make(chan func(), 64),
		done:  make(chan struct{}),
	}
	go l.drain()
	return l
}

func (l *Layered) drain() {
	defer close(l.done)
	for job := range l.jobs {
		job()
	}
}

// withRetries runs a tier write, retrying transient failures with a flat
// backoff.
func withRetries(write func() error) error {
	var err error
	for attempt := 0; attempt <= writeRetries; attempt++ {
		err = write()
		if err == nil || errors.Is(err, ErrAlreadyCompleted) || errors.Is(err, ErrSchemaMismatch) {
			return err
		}
		time.Sleep(writeBackoff)
	}
	return err
}

// Load implements Store, merging the tiers' views of one key.
func (l *Layered) Load(ctx context.Context, kind game.Kind, date game.Date) (*game.HistoryEntry, error) {
	var best *game.HistoryEntry
	var firstErr error
	for _, tier := range l.tiers {
		entry, err := tier.Load(ctx, kind, date)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		best = mergeEntries(best, entry)
	}
	if best == nil && firstErr != nil {
		return nil, firstErr
	}
	return best, nil
}

// mergeEntries picks the authoritative entry: results are terminal and
// beat partials; otherwise the strictly newer UpdatedAt wins, and on a tie
// the earlier tier (a) keeps its claim.
func mergeEntries(a, b *game.HistoryEntry) *game.HistoryEntry {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case (a.Result != nil) != (b.Result != nil):
		if a.Result != nil {
			return a
		}
		return b
	case b.UpdatedAt.After(a.UpdatedAt):
		return b
	default:
		return a
	}
}

// SavePartial implements Store. The write is queued and coalesced with
// whatever order the engine produced; the call itself never blocks on
// I/O.
func (l *Layered) SavePartial(ctx context.Context, snap game.Snapshot) error {
	select {
	case l.jobs <- func() {
		for _, tier := range l.tiers {
			_ = withRetries(func() error { return tier.SavePartial(context.Background(), snap) })
		}
	}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SaveResult implements Store. Unlike partials it waits for the queue, so
// the terminal write is durable before the call returns and cannot race a
// trailing partial.
func (l *Layered) SaveResult(ctx context.Context, res game.Result) error {
	reply := make(chan error, 1)
	job := func() {
		var firstErr error
		for _, tier := range l.tiers {
			err := withRetries(func() error { return tier.SaveResult(context.Background(), res) })
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		reply <- firstErr
	}
	select {
	case l.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CompletedDatesInRange implements Store: the union of all tiers.
func (l *Layered) CompletedDatesInRange(ctx context.Context, kind game.Kind, start, end game.Date) (map[game.Date]bool, error) {
	out := make(map[game.Date]bool)
	var firstErr error
	for _, tier := range l.tiers {
		dates, err := tier.CompletedDatesInRange(ctx, kind, start, end)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for d := range dates {
			out[d] = true
		}
	}
	if len(out) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// AllResults implements Store: results are write-once, so a simple
// dedupe by date across tiers suffices.
func (l *Layered) AllResults(ctx context.Context, kind game.Kind) ([]game.Result, error) {
	byDate := make(map[game.Date]game.Result)
	var order []game.Date
	var firstErr error
	for _, tier := range l.tiers {
		results, err := tier.AllResults(ctx, kind)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		for _, res := range results {
			if _, seen := byDate[res.Date]; !seen {
				byDate[res.Date] = res
				order = append(order, res.Date)
			}
		}
	}
	if len(order) == 0 && firstErr != nil {
		return nil, firstErr
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })
	out := make([]game.Result, 0, len(order))
	for _, d := range order {
		out = append(out, byDate[d])
	}
	return out, nil
}

// Close flushes the write queue and closes every tier.
func (l *Layered) Close() error {
	close(l.jobs)
	<-l.done
	var firstErr error
	for _, tier := range l.tiers {
		if err := tier.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing tier: %w", err)
		}
	}
	return firstErr
}

// SessionSaver adapts a Store to the engines' fire-and-forget persistence
// interface.
type SessionSaver struct {
	Store Store
}

// SavePartial hands the snapshot to the store; the engine does not wait.
func (s SessionSaver) SavePartial(snap game.Snapshot) {
	_ = s.Store.SavePartial(context.Background(), snap)
}

// SaveResult records the terminal outcome.
func (s SessionSaver) SaveResult(res game.Result) error {
	return s.Store.SaveResult(context.Background(), res)
}
