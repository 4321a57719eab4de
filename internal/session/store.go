package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pricingdesk/internal/cache"
)

// Store holds live sessions in memory, keyed by uuid, with an optional
// redis snapshot per session so a restarted replica can pick a session
// back up. Snapshots are best effort; the in-memory state is the source
// of truth while the process lives.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State

	cache *cache.Client
	ttl   time.Duration
	log   *zap.SugaredLogger
}

// NewStore builds the session store. cacheClient may be nil.
func NewStore(cacheClient *cache.Client, ttl time.Duration, log *zap.SugaredLogger) *Store {
	return &Store{
		sessions: make(map[string]*State),
		cache:    cacheClient,
		ttl:      ttl,
		log:      log,
	}
}

// Create registers a fresh session.
func (s *Store) Create() *State {
	state := &State{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.sessions[state.ID] = state
	s.mu.Unlock()
	return state
}

// Get returns the session for id, restoring it from the snapshot cache on
// a memory miss.
func (s *Store) Get(ctx context.Context, id string) (*State, bool) {
	s.mu.Lock()
	state, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return state, true
	}

	var restored State
	if err := s.cache.GetJSON(ctx, snapshotKey(id), &restored); err != nil {
		if !cache.IsMiss(err) {
			s.log.Warnw("session snapshot restore failed", "session", id, "error", err)
		}
		return nil, false
	}
	restored.Busy = false // a run cannot survive a restart

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[id]; ok {
		// lost the race against another restore
		return existing, true
	}
	s.sessions[id] = &restored
	s.log.Infow("session restored from snapshot", "session", id)
	return &restored, true
}

// Snapshot persists the session to the cache. Callers hold the session
// lock; the snapshot marshals the current state as-is.
func (s *Store) Snapshot(ctx context.Context, state *State) {
	if err := s.cache.SetJSON(ctx, snapshotKey(state.ID), state, s.ttl); err != nil {
		s.log.Warnw("session snapshot failed", "session", state.ID, "error", err)
	}
}

// Drop forgets the session and its snapshot.
func (s *Store) Drop(ctx context.Context, id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	if err := s.cache.Del(ctx, snapshotKey(id)); err != nil {
		s.log.Warnw("session snapshot delete failed", "session", id, "error", err)
	}
}

func snapshotKey(id string) string {
	return "pricingdesk:session:" + id
}
