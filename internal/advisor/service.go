package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pathfinder-backend/internal/llm"
	"pathfinder-backend/internal/queue"
	"pathfinder-backend/internal/shared/apperr"
	"pathfinder-backend/internal/shared/metrics"
	"pathfinder-backend/internal/shared/storage/object"
	"pathfinder-backend/internal/shared/telemetry"
)

const (
	profileMessage  = "Please fill all fields"
	genericFailure  = "Failed to generate career path. Please try again."
	incompleteReply = "Incomplete response from text generator - missing required sections."
)

// Service runs advisor sessions.
type Service struct {
	Generator     llm.TextGenerator
	Sessions      SessionRepo
	Roadmaps      RoadmapRepo
	Store         object.ObjectStore
	Queue         queue.Client
	PromptVersion string

	now func() time.Time
}

// MentorRequest asks for a mentor introduction or an enrollment for a recommended course.
type MentorRequest struct {
	Course string `json:"course"`
	Kind   string `json:"kind"`
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// NewSession creates an idle session.
func (s *Service) NewSession(ctx context.Context) (*Session, error) {
	sess := newSession(uuid.NewString(), s.clock())
	if err := s.Sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// UpdateProfile replaces the session profile. It is rejected while a generation runs.
func (s *Service) UpdateProfile(sess *Session, p Profile) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.status == StatusGenerating {
		return ErrBusy
	}
	sess.profile = p
	sess.lastErr = ""
	sess.updatedAt = s.clock()
	return nil
}

// Generate asks the text generator for recommendations and a roadmap for the
// session profile. The session ends Ready with the parsed result or Failed with
// an error message; nothing from a failed reply is kept.
func (s *Service) Generate(ctx context.Context, sess *Session) (Result, error) {
	sess.mu.Lock()
	if sess.status == StatusGenerating {
		sess.mu.Unlock()
		return Result{}, ErrBusy
	}
	if missing := sess.profile.Missing(); len(missing) > 0 {
		sess.lastErr = profileMessage
		sess.updatedAt = s.clock()
		sess.mu.Unlock()
		return Result{}, apperr.Validation(strings.Join(missing, ","), profileMessage)
	}
	profile := sess.profile
	epoch := sess.epoch
	sess.status = StatusGenerating
	sess.result = nil
	sess.lastErr = ""
	sess.updatedAt = s.clock()
	sess.mu.Unlock()

	res, err := s.generate(ctx, profile)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.epoch != epoch {
		metrics.IncAdvisorGeneration(metrics.OutcomeDiscarded)
		telemetry.Warn("advisor.generate.discarded", map[string]any{"session_id": sess.id})
		return Result{}, ErrReset
	}
	sess.updatedAt = s.clock()
	if err != nil {
		sess.status = StatusFailed
		sess.lastErr = failureMessage(err)
		metrics.IncAdvisorGeneration(metrics.OutcomeFailed)
		telemetry.Error("advisor.generate.failed", map[string]any{"session_id": sess.id, "error": err})
		return Result{}, err
	}
	sess.status = StatusReady
	sess.result = &res
	metrics.IncAdvisorGeneration(metrics.OutcomeReady)
	telemetry.Info("advisor.generate.ready", map[string]any{
		"session_id":      sess.id,
		"recommendations": len(res.Recommendations),
		"nodes":           len(res.Roadmap.Nodes),
		"edges":           len(res.Roadmap.Edges),
	})
	return res, nil
}

func (s *Service) generate(ctx context.Context, profile Profile) (Result, error) {
	version := s.PromptVersion
	if version == "" {
		version = llm.DefaultPromptVersion
	}
	prompt, err := BuildPrompt(version, profile)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	raw, err := s.Generator.Complete(ctx, prompt)
	metrics.ObserveGenerationDuration(time.Since(start))
	if err != nil {
		if !apperr.IsTransport(err) {
			err = apperr.Transport("text-generator", "complete", err)
		}
		return Result{}, err
	}
	return Parse(raw)
}

func failureMessage(err error) string {
	var (
		format     *apperr.UpstreamFormatError
		incomplete *apperr.IncompleteResponseError
		roadmap    *apperr.InvalidRoadmapError
	)
	switch {
	case errors.As(err, &format):
		return format.Error()
	case errors.As(err, &incomplete):
		return incompleteReply
	case errors.As(err, &roadmap):
		return roadmap.Error()
	default:
		return genericFailure
	}
}

// Reset clears the profile and any results and returns the session to Idle.
// A generation still running when Reset is called will not commit.
func (s *Service) Reset(sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.epoch++
	sess.profile = Profile{}
	sess.result = nil
	sess.lastErr = ""
	sess.status = StatusIdle
	sess.updatedAt = s.clock()
}

// SaveRoadmap snapshots a Ready session into the object store and records it.
func (s *Service) SaveRoadmap(ctx context.Context, sess *Session) (SavedRoadmap, error) {
	view := sess.View()
	if view.Status != StatusReady || view.Result == nil {
		return SavedRoadmap{}, ErrNotReady
	}

	saved := SavedRoadmap{
		ID:        uuid.NewString(),
		SessionID: view.ID,
		Profile:   view.Profile,
		Result:    *view.Result,
		CreatedAt: s.clock(),
	}
	payload, err := json.Marshal(saved)
	if err != nil {
		return SavedRoadmap{}, fmt.Errorf("marshal roadmap: %w", err)
	}
	key, size, err := s.Store.Put(ctx, view.ID, "roadmap.json", "application/json", bytes.NewReader(payload))
	if err != nil {
		return SavedRoadmap{}, fmt.Errorf("store roadmap: %w", err)
	}
	saved.StorageKey = key

	if err := s.Roadmaps.Create(ctx, saved); err != nil {
		return SavedRoadmap{}, fmt.Errorf("record roadmap: %w", err)
	}
	telemetry.Info("advisor.roadmap.saved", map[string]any{
		"session_id":  view.ID,
		"roadmap_id":  saved.ID,
		"storage_key": key,
		"size_bytes":  size,
	})
	return saved, nil
}

// GetRoadmap returns a saved roadmap. Records that keep only the snapshot key
// are filled from the object store.
func (s *Service) GetRoadmap(ctx context.Context, id string) (SavedRoadmap, error) {
	saved, err := s.Roadmaps.GetByID(ctx, id)
	if err != nil {
		return SavedRoadmap{}, err
	}
	if !saved.Result.IsZero() || saved.StorageKey == "" {
		return saved, nil
	}
	snapshot, err := s.loadSnapshot(ctx, saved.StorageKey)
	if err != nil {
		return SavedRoadmap{}, err
	}
	saved.Result = snapshot.Result
	return saved, nil
}

// ListRoadmaps returns the roadmaps saved from a session, newest first.
func (s *Service) ListRoadmaps(ctx context.Context, sessionID string) ([]SavedRoadmap, error) {
	return s.Roadmaps.ListBySession(ctx, sessionID)
}

func (s *Service) loadSnapshot(ctx context.Context, key string) (SavedRoadmap, error) {
	rc, err := s.Store.Open(ctx, key)
	if errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("advisor.roadmap.snapshot_missing", map[string]any{"storage_key": key})
		return SavedRoadmap{}, ErrNotFound
	}
	if err != nil {
		return SavedRoadmap{}, fmt.Errorf("open roadmap snapshot: %w", err)
	}
	defer rc.Close()

	var snapshot SavedRoadmap
	if err := json.NewDecoder(rc).Decode(&snapshot); err != nil {
		return SavedRoadmap{}, fmt.Errorf("decode roadmap snapshot: %w", err)
	}
	return snapshot, nil
}

// RequestMentor enqueues a mentor or enrollment request for a recommended course.
func (s *Service) RequestMentor(ctx context.Context, sess *Session, req MentorRequest) (queue.Message, error) {
	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		kind = queue.TypeMentor
	}
	if kind != queue.TypeMentor && kind != queue.TypeEnroll {
		return queue.Message{}, apperr.Validation("kind", "kind must be mentor or enroll")
	}
	course := strings.TrimSpace(req.Course)
	if course == "" {
		return queue.Message{}, apperr.Validation("course", "course is required")
	}

	view := sess.View()
	if view.Status != StatusReady || view.Result == nil {
		return queue.Message{}, ErrNotReady
	}
	if !view.Result.HasCourse(course) {
		return queue.Message{}, apperr.Validation("course", "course is not among the recommendations")
	}

	msg := queue.Message{
		Type:       kind,
		SessionID:  view.ID,
		Course:     course,
		RequestID:  uuid.NewString(),
		EnqueuedAt: s.clock().Format(time.RFC3339),
		Version:    queue.CurrentVersion,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		return queue.Message{}, fmt.Errorf("enqueue mentor request: %w", err)
	}
	return msg, nil
}
