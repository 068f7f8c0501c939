package advisor

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemorySessionRepo is an in-memory SessionRepo. Sessions idle for longer
// than the TTL are dropped; a non-positive TTL keeps them forever.
type MemorySessionRepo struct {
	mu      sync.Mutex
	data    map[string]*sessionEntry
	idleTTL time.Duration
	now     func() time.Time
	swept   time.Time
}

type sessionEntry struct {
	sess     *Session
	lastSeen time.Time
}

// NewMemorySessionRepo constructs a MemorySessionRepo.
func NewMemorySessionRepo(idleTTL time.Duration) *MemorySessionRepo {
	return &MemorySessionRepo{
		data:    make(map[string]*sessionEntry),
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Put stores sess under its id and sweeps idle sessions at most once per TTL.
func (r *MemorySessionRepo) Put(ctx context.Context, sess *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.data[sess.id] = &sessionEntry{sess: sess, lastSeen: now}
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
func (r *MemorySessionRepo) Get(ctx context.Context, id string) (*Session, error) {
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

func (r *MemorySessionRepo) expired(entry *sessionEntry, now time.Time) bool {
	return r.idleTTL > 0 && now.Sub(entry.lastSeen) > r.idleTTL
}

// MemoryRoadmapRepo is an in-memory RoadmapRepo.
type MemoryRoadmapRepo struct {
	mu   sync.RWMutex
	data map[string]SavedRoadmap
}

// NewMemoryRoadmapRepo constructs a MemoryRoadmapRepo.
func NewMemoryRoadmapRepo() *MemoryRoadmapRepo {
	return &MemoryRoadmapRepo{data: make(map[string]SavedRoadmap)}
}

// Create stores a saved roadmap.
func (r *MemoryRoadmapRepo) Create(ctx context.Context, saved SavedRoadmap) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[saved.ID] = saved
	return nil
}

// GetByID returns a saved roadmap by id.
func (r *MemoryRoadmapRepo) GetByID(ctx context.Context, id string) (SavedRoadmap, error) {
	if err := ctx.Err(); err != nil {
		return SavedRoadmap{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	saved, ok := r.data[id]
	if !ok {
		return SavedRoadmap{}, ErrNotFound
	}
	return saved, nil
}

// ListBySession returns the roadmaps saved from a session, newest first.
func (r *MemoryRoadmapRepo) ListBySession(ctx context.Context, sessionID string) ([]SavedRoadmap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []SavedRoadmap{}
	for _, saved := range r.data {
		if saved.SessionID == sessionID {
			out = append(out, saved)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
