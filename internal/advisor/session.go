package advisor

import (
	"sync"
	"time"
)

// Session is one advisor conversation. All fields are guarded by mu.
type Session struct {
	mu sync.Mutex

	id        string
	profile   Profile
	status    Status
	result    *Result
	lastErr   string
	createdAt time.Time
	updatedAt time.Time

	// epoch changes on reset so a generation started earlier cannot commit.
	epoch uint64
}

// SessionView is an immutable snapshot of a Session.
type SessionView struct {
	ID        string    `json:"id"`
	Profile   Profile   `json:"profile"`
	Status    Status    `json:"status"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		id:        id,
		status:    StatusIdle,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// View returns a snapshot of the session.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		ID:        s.id,
		Profile:   s.profile,
		Status:    s.status,
		Error:     s.lastErr,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
	if s.result != nil {
		r := *s.result
		v.Result = &r
	}
	return v
}
