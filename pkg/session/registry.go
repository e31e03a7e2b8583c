// Package session maps gateway session keys to bakery agent sessions.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// InitFunc initializes a downstream session under the given id. It must
// return nil only after the downstream has confirmed the session.
type InitFunc func(ctx context.Context, sessionID string) error

// Registry tracks which gateway session keys have a confirmed downstream
// session. Entries are created on first use and live until process exit;
// there is no eviction and no persistence.
type Registry struct {
	init   InitFunc
	logger zerolog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

// entry holds per-key state. While pending is true, initialization is in
// flight and ready is open; ready closes once the attempt settles either
// way.
type entry struct {
	downstreamID string
	pending      bool
	ready        chan struct{}
}

// NewRegistry returns an empty registry that initializes sessions via init.
func NewRegistry(init InitFunc, logger zerolog.Logger) *Registry {
	return &Registry{
		init:    init,
		logger:  logger,
		entries: make(map[string]*entry),
	}
}

// GetOrCreate returns the downstream session id for key, initializing the
// downstream session on first use. Concurrent first calls for the same key
// share one initialize; only the winner talks to the downstream and the
// rest wait for its outcome. A failed initialize leaves no entry behind, so
// a later call tries again.
func (r *Registry) GetOrCreate(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("session: empty session key")
	}

	for {
		r.mu.Lock()
		e, ok := r.entries[key]
		if ok && !e.pending {
			id := e.downstreamID
			r.mu.Unlock()
			return id, nil
		}
		if ok {
			ready := e.ready
			r.mu.Unlock()
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-ready:
			}
			// the in-flight attempt settled; re-check the map
			continue
		}

		e = &entry{pending: true, ready: make(chan struct{})}
		r.entries[key] = e
		r.mu.Unlock()

		err := r.init(ctx, key)

		r.mu.Lock()
		if err != nil {
			delete(r.entries, key)
		} else {
			e.pending = false
			e.downstreamID = key
		}
		close(e.ready)
		r.mu.Unlock()

		if err != nil {
			return "", fmt.Errorf("session: initialize %s: %w", key, err)
		}
		r.logger.Info().Str("session_id", key).Msg("downstream session established")
		return key, nil
	}
}

// Len reports how many confirmed sessions exist.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if !e.pending {
			n++
		}
	}
	return n
}
