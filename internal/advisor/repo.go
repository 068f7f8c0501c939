package advisor

import "context"

// SessionRepo stores live advisor sessions.
type SessionRepo interface {
	Put(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
}

// RoadmapRepo persists saved roadmaps.
type RoadmapRepo interface {
	Create(ctx context.Context, r SavedRoadmap) error
	GetByID(ctx context.Context, id string) (SavedRoadmap, error)
	ListBySession(ctx context.Context, sessionID string) ([]SavedRoadmap, error)
}
