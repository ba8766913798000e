package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/exam"
)

var errSessionNotFound = errors.New("exam session not found")

// liveSession serializes access to one exam.Session, which is not safe for
// concurrent use on its own. savedID is set once the result is stored; a
// request that was already waiting on mu at that point must not store it
// again.
type liveSession struct {
	mu       sync.Mutex
	id       string
	session  *exam.Session
	lastUsed time.Time
	savedID  string
}

// registry holds exam sessions between requests. Submitted sessions are
// removed once their result is stored.
type registry struct {
	mu       sync.Mutex
	sessions map[string]*liveSession
	clock    clock.Clock
	ttl      time.Duration
}

func newRegistry(clk clock.Clock, ttl time.Duration) *registry {
	return &registry{sessions: make(map[string]*liveSession), clock: clk, ttl: ttl}
}

func (r *registry) add(s *exam.Session) *liveSession {
	now := r.clock.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked(now)
	ls := &liveSession{id: uuid.NewString(), session: s, lastUsed: now}
	r.sessions[ls.id] = ls
	return ls
}

// get returns the session locked. The caller must unlock it.
func (r *registry) get(id string) (*liveSession, error) {
	r.mu.Lock()
	ls, ok := r.sessions[id]
	if ok {
		ls.lastUsed = r.clock.Now()
	}
	r.mu.Unlock()
	if !ok {
		return nil, errSessionNotFound
	}
	ls.mu.Lock()
	return ls, nil
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *registry) pruneLocked(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, ls := range r.sessions {
		if now.Sub(ls.lastUsed) > r.ttl {
			delete(r.sessions, id)
		}
	}
}
