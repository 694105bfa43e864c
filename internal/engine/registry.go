package engine

import (
	"sync"

	"github.com/quartetgames/quartet/internal/game"
)

type sessionKey struct {
	kind game.Kind
	date game.Date
}

// Registry enforces that at most one live engine exists per (kind, date).
// The archive viewer and a game shell may race to open the same puzzle;
// the loser gets the existing engine back.
type Registry struct {
	mu   sync.Mutex
	live map[sessionKey]Engine
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[sessionKey]Engine)}
}

// Acquire registers an engine built by construct for the key. If one is
// already live, the existing engine is returned with ErrSessionBusy and
// construct is not called.
func (r *Registry) Acquire(kind game.Kind, date game.Date, construct func() (Engine, error)) (Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{kind, date}
	if existing, ok := r.live[key]; ok {
		return existing, ErrSessionBusy
	}
	eng, err := construct()
	if err != nil {
		return nil, err
	}
	r.live[key] = eng
	return eng, nil
}

// Release drops the live engine for a key, typically after a terminal
// transition or when the shell closes the game.
func (r *Registry) Release(kind game.Kind, date game.Date) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, sessionKey{kind, date})
}

// Live returns the live engine for a key, if any.
func (r *Registry) Live(kind game.Kind, date game.Date) (Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	eng, ok := r.live[sessionKey{kind, date}]
	return eng, ok
}
