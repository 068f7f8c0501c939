package colleges

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned when a session id is unknown or has expired.
var ErrSessionNotFound = errors.New("search session not found")

// SessionRepo stores live search sessions.
type SessionRepo interface {
	Put(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
}

// MemoryRepo is an in-memory SessionRepo. Sessions untouched for longer than
// the idle TTL are dropped; a non-positive TTL keeps them forever.
type MemoryRepo struct {
	mu      sync.Mutex
	data    map[string]*repoEntry
	idleTTL time.Duration
	now     func() time.Time
	swept   time.Time
}

type repoEntry struct {
	sess     *Session
	lastSeen time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo(idleTTL time.Duration) *MemoryRepo {
	return &MemoryRepo{
		data:    make(map[string]*repoEntry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Put stores sess under its id and sweeps idle sessions at most once per TTL.
func (r *MemoryRepo) Put(ctx context.Context, sess *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.data[sess.id] = &repoEntry{sess: sess, lastSeen: now}
	if r.idleTTL > 0 && now.Sub(r.swept) >= r.idleTTL {
		for id, entry := range r.data {
			if r.expired(entry, now) {
				delete(r.data, id)
			}
		}
		r.swept = now
	}
	return nil
}

// Get returns the session with id and marks it as recently used.
func (r *MemoryRepo) Get(ctx context.Context, id string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.data[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := r.now()
	if r.expired(entry, now) {
		delete(r.data, id)
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = now
	return entry.sess, nil
}

// Len reports how many sessions are held.
func (r *MemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

func (r *MemoryRepo) expired(entry *repoEntry, now time.Time) bool {
	return r.idleTTL > 0 && now.Sub(entry.lastSeen) > r.idleTTL
}
