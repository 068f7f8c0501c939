package advisor

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathfinder-backend/internal/llm"
	"pathfinder-backend/internal/queue"
	"pathfinder-backend/internal/shared/apperr"
	"pathfinder-backend/internal/shared/storage/object/local"
)

var fullProfile = Profile{
	Interests: "coding, AI",
	Strengths: "problem solving",
	Goals:     "software engineer",
}

type countingGenerator struct {
	calls atomic.Int32
	reply string
	err   error
}

func (g *countingGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	return g.reply, g.err
}

func newTestService(gen llm.TextGenerator, store string) (*Service, *queue.MemoryClient) {
	q := queue.NewMemoryClient()
	return &Service{
		Generator: gen,
		Sessions:  NewMemorySessionRepo(0),
		Roadmaps:  NewMemoryRoadmapRepo(),
		Store:     local.New(store),
		Queue:     q,
	}, q
}

func readySession(t *testing.T, svc *Service) *Session {
	t.Helper()
	sess, err := svc.NewSession(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.UpdateProfile(sess, fullProfile))
	_, err = svc.Generate(context.Background(), sess)
	require.NoError(t, err)
	return sess
}

func TestGenerateRequiresFullProfile(t *testing.T) {
	gen := &countingGenerator{reply: validReply}
	svc, _ := newTestService(gen, t.TempDir())
	sess, err := svc.NewSession(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProfile(sess, Profile{Strengths: "x", Goals: "y"}))
	_, err = svc.Generate(context.Background(), sess)

	var verr *apperr.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "interests", verr.Field)
	assert.Zero(t, gen.calls.Load())
	view := sess.View()
	assert.Equal(t, StatusIdle, view.Status)
	assert.Equal(t, "Please fill all fields", view.Error)
}

func TestGenerateReady(t *testing.T) {
	gen := &countingGenerator{reply: "```json\n" + validReply + "\n```"}
	svc, _ := newTestService(gen, t.TempDir())
	sess := readySession(t, svc)

	view := sess.View()
	assert.Equal(t, StatusReady, view.Status)
	require.NotNil(t, view.Result)
	assert.Len(t, view.Result.Recommendations, 2)
	assert.Empty(t, view.Error)
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestGenerateIncompleteCommitsNothing(t *testing.T) {
	gen := &countingGenerator{reply: validReply}
	svc, _ := newTestService(gen, t.TempDir())
	sess := readySession(t, svc)

	gen.reply = `{"recommendations":[{"name":"X","explanation":"y"}],"careerParagraph":"p","roadmap":{"nodes":[]}}`
	_, err := svc.Generate(context.Background(), sess)

	var incomplete *apperr.IncompleteResponseError
	require.True(t, errors.As(err, &incomplete))
	view := sess.View()
	assert.Equal(t, StatusFailed, view.Status)
	assert.Nil(t, view.Result, "prior and partial results are cleared")
	assert.Equal(t, incompleteReply, view.Error)
}

func TestGenerateTransportFailure(t *testing.T) {
	gen := &countingGenerator{err: errors.New("dial tcp: refused")}
	svc, _ := newTestService(gen, t.TempDir())
	sess, _ := svc.NewSession(context.Background())
	require.NoError(t, svc.UpdateProfile(sess, fullProfile))

	_, err := svc.Generate(context.Background(), sess)
	assert.True(t, apperr.IsTransport(err))
	view := sess.View()
	assert.Equal(t, StatusFailed, view.Status)
	assert.Equal(t, genericFailure, view.Error)
}

func TestGenerateBusyAndResetDiscard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	gen := llm.GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		calls.Add(1)
		close(started)
		<-release
		return validReply, nil
	})
	svc, _ := newTestService(gen, t.TempDir())
	sess, _ := svc.NewSession(context.Background())
	require.NoError(t, svc.UpdateProfile(sess, fullProfile))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Generate(context.Background(), sess)
		done <- err
	}()
	<-started

	_, err := svc.Generate(context.Background(), sess)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, svc.UpdateProfile(sess, fullProfile), ErrBusy)
	assert.EqualValues(t, 1, calls.Load())

	svc.Reset(sess)
	close(release)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrReset)
	case <-time.After(time.Second):
		t.Fatal("generation did not return")
	}
	view := sess.View()
	assert.Equal(t, StatusIdle, view.Status)
	assert.Nil(t, view.Result)
	assert.Equal(t, Profile{}, view.Profile)
}

func TestResetIsIdempotent(t *testing.T) {
	gen := &countingGenerator{reply: validReply}
	svc, _ := newTestService(gen, t.TempDir())
	sess := readySession(t, svc)

	svc.Reset(sess)
	first := sess.View()
	svc.Reset(sess)
	second := sess.View()

	assert.Equal(t, StatusIdle, second.Status)
	assert.Equal(t, first.Profile, second.Profile)
	assert.Nil(t, second.Result)
	assert.Empty(t, second.Error)
}

func TestSaveRoadmap(t *testing.T) {
	gen := &countingGenerator{reply: validReply}
	svc, _ := newTestService(gen, t.TempDir())

	idle, _ := svc.NewSession(context.Background())
	_, err := svc.SaveRoadmap(context.Background(), idle)
	assert.ErrorIs(t, err, ErrNotReady)

	sess := readySession(t, svc)
	saved, err := svc.SaveRoadmap(context.Background(), sess)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.StorageKey)

	got, err := svc.GetRoadmap(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID(), got.SessionID)
	assert.Equal(t, fullProfile, got.Profile)

	rc, err := svc.Store.Open(context.Background(), saved.StorageKey)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Computer Science")

	_, err = svc.GetRoadmap(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// snapshotOnlyRepo drops results on write, the way the Postgres repo does
// when a snapshot key is present.
type snapshotOnlyRepo struct{ *MemoryRoadmapRepo }

func (r snapshotOnlyRepo) Create(ctx context.Context, saved SavedRoadmap) error {
	saved.Result = Result{}
	return r.MemoryRoadmapRepo.Create(ctx, saved)
}

func TestGetRoadmapLoadsSnapshot(t *testing.T) {
	svc, _ := newTestService(&countingGenerator{reply: validReply}, t.TempDir())
	svc.Roadmaps = snapshotOnlyRepo{NewMemoryRoadmapRepo()}

	sess := readySession(t, svc)
	saved, err := svc.SaveRoadmap(context.Background(), sess)
	require.NoError(t, err)

	got, err := svc.GetRoadmap(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Result.CareerParagraph, got.Result.CareerParagraph)
	assert.Equal(t, saved.Result.Recommendations, got.Result.Recommendations)
	assert.Len(t, got.Result.Roadmap.Nodes, len(saved.Result.Roadmap.Nodes))

	list, err := svc.ListRoadmaps(context.Background(), sess.ID())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
}

func TestGetRoadmapMissingSnapshotIsNotFound(t *testing.T) {
	svc, _ := newTestService(&countingGenerator{reply: validReply}, t.TempDir())
	require.NoError(t, svc.Roadmaps.Create(context.Background(), SavedRoadmap{
		ID:         "r1",
		SessionID:  "s1",
		StorageKey: "gone/roadmap.json",
	}))

	_, err := svc.GetRoadmap(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestMentor(t *testing.T) {
	gen := &countingGenerator{reply: validReply}
	svc, q := newTestService(gen, t.TempDir())
	sess := readySession(t, svc)

	msg, err := svc.RequestMentor(context.Background(), sess, MentorRequest{Course: " computer science "})
	require.NoError(t, err)
	assert.Equal(t, queue.TypeMentor, msg.Type)
	assert.Equal(t, "computer science", msg.Course)
	assert.NotEmpty(t, msg.RequestID)
	require.Len(t, q.Sent(), 1)
	assert.Equal(t, sess.ID(), q.Sent()[0].SessionID)

	_, err = svc.RequestMentor(context.Background(), sess, MentorRequest{Course: "Astrology"})
	assert.True(t, apperr.IsValidation(err))

	_, err = svc.RequestMentor(context.Background(), sess, MentorRequest{Course: "Data Science", Kind: "call"})
	assert.True(t, apperr.IsValidation(err))

	msg, err = svc.RequestMentor(context.Background(), sess, MentorRequest{Course: "Data Science", Kind: queue.TypeEnroll})
	require.NoError(t, err)
	assert.Equal(t, queue.TypeEnroll, msg.Type)
}

func TestRequestMentorQueueFailure(t *testing.T) {
	gen := &countingGenerator{reply: validReply}
	svc, _ := newTestService(gen, t.TempDir())
	sess := readySession(t, svc)
	boom := errors.New("sqs throttled")
	svc.Queue = queue.ClientFunc(func(context.Context, queue.Message) error { return boom })

	_, err := svc.RequestMentor(context.Background(), sess, MentorRequest{Course: "Data Science"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
