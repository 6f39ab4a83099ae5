package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry tracks live interview sessions in memory. A janitor loop
// evicts sessions that have been inactive longer than the TTL so
// abandoned browsers don't pin controllers forever.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Interview
	ttl      time.Duration
	log      zerolog.Logger
}

// NewRegistry creates a Registry with the given inactivity TTL.
func NewRegistry(ttl time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Interview),
		ttl:      ttl,
		log:      log.With().Str("component", "interview_registry").Logger(),
	}
}

// Put registers a session.
func (r *Registry) Put(s *Interview) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

// Get returns the live session with the given ID, or nil.
func (r *Registry) Get(id uuid.UUID) *Interview {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// Remove closes and forgets a session. Safe to call for unknown IDs.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	s := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// StartJanitor launches the eviction loop. It returns when ctx is done.
func (r *Registry) StartJanitor(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.evictExpired()
		}
	}
}

func (r *Registry) evictExpired() {
	r.mu.Lock()
	var expired []*Interview
	for id, s := range r.sessions {
		if s.Expired(r.ttl) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
		r.log.Info().Str("session_id", s.ID().String()).Msg("Evicted idle session")
	}
}
