package colleges

import (
	"context"
	"sync"
	"time"
)

// Session is the per-user search state owned by the Controller.
// All fields are guarded by mu; read them through View.
type Session struct {
	mu sync.Mutex

	id            string
	states        []string
	districts     []string
	selectedState string
	selectedCity  string
	query         string
	page          int
	result        ResultPage
	degraded      bool
	message       string
	createdAt     time.Time
	updatedAt     time.Time

	// generation increases with every dispatched search; only the holder of the
	// latest value may commit results.
	generation uint64
	cancel     context.CancelFunc
}

// SessionView is an immutable snapshot of a Session.
type SessionView struct {
	ID            string     `json:"id"`
	States        []string   `json:"states"`
	Districts     []string   `json:"districts"`
	SelectedState string     `json:"selectedState"`
	SelectedCity  string     `json:"selectedCity"`
	Query         string     `json:"query"`
	Page          int        `json:"page"`
	Result        ResultPage `json:"result"`
	Degraded      bool       `json:"degraded"`
	Message       string     `json:"message,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func newSession(id string, states []string, now time.Time) *Session {
	return &Session{
		id:        id,
		states:    states,
		districts: []string{},
		page:      1,
		result:    ResultPage{Items: []Institution{}},
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
	return s.viewLocked()
}

func (s *Session) viewLocked() SessionView {
	return SessionView{
		ID:            s.id,
		States:        append([]string(nil), s.states...),
		Districts:     append([]string{}, s.districts...),
		SelectedState: s.selectedState,
		SelectedCity:  s.selectedCity,
		Query:         s.query,
		Page:          s.page,
		Result: ResultPage{
			Items:       append([]Institution{}, s.result.Items...),
			TotalCount:  s.result.TotalCount,
			CurrentPage: s.result.CurrentPage,
			TotalPages:  s.result.TotalPages,
		},
		Degraded:  s.degraded,
		Message:   s.message,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}
