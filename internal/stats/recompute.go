package stats

import (
	"context"
	"fmt"
	"sync"

	"github.com/quartetgames/quartet/internal/game"
)

// ResultSource is the slice of the progress store the recomputer needs.
type ResultSource interface {
	AllResults(ctx context.Context, kind game.Kind) ([]game.Result, error)
}

// Recomputer rebuilds aggregates from the result log in the background.
// Triggering a recompute for a kind cancels any in-flight recompute for
// the same kind; the newest trigger wins.
type Recomputer struct {
	source ResultSource

	mu      sync.Mutex
	cancels map[game.Kind]context.CancelFunc
	latest  map[game.Kind]*Aggregate
}

// NewRecomputer wraps a result source.
func NewRecomputer(source ResultSource) *Recomputer {
	return &Recomputer{
		source:  source,
		cancels: make(map[game.Kind]context.CancelFunc),
		latest:  make(map[game.Kind]*Aggregate),
	}
}

// Trigger starts a recompute for one kind and returns a channel that
// yields the aggregate, or nothing if a newer trigger superseded this
// one. The channel is buffered; the caller may drop it.
func (r *Recomputer) Trigger(ctx context.Context, kind game.Kind, today game.Date) <-chan *Aggregate {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	if prev, ok := r.cancels[kind]; ok {
		prev()
	}
	r.cancels[kind] = cancel
	r.mu.Unlock()

	out := make(chan *Aggregate, 1)
	go func() {
		defer close(out)
		results, err := r.source.AllResults(ctx, kind)
		if err != nil || ctx.Err() != nil {
			return
		}
		agg := Compute(kind, results, today)

		r.mu.Lock()
		defer r.mu.Unlock()
		// A newer trigger replaced our cancel func; discard this pass.
		if ctx.Err() != nil {
			return
		}
		r.latest[kind] = agg
		out <- agg
	}()
	return out
}

// Latest returns the most recently completed aggregate for a kind, or an
// error when none has finished yet.
func (r *Recomputer) Latest(kind game.Kind) (*Aggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg, ok := r.latest[kind]
	if !ok {
		return nil, fmt.Errorf("no aggregate computed yet for %s", kind)
	}
	return agg, nil
}

// Stop cancels all in-flight recomputes.
func (r *Recomputer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for kind, cancel := range r.cancels {
		cancel()
		delete(r.cancels, kind)
	}
}
