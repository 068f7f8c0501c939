package workerproc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pathfinder-backend/internal/queue"
)

func encode(t *testing.T, msg queue.Message) string {
	t.Helper()
	body, err := queue.EncodeMessage(msg)
	require.NoError(t, err)
	return string(body)
}

func validMessage() queue.Message {
	return queue.Message{
		Type:       queue.TypeMentor,
		SessionID:  "session-1",
		Course:     "B.Tech Computer Science",
		RequestID:  "req-1",
		EnqueuedAt: "2026-01-02T03:04:05Z",
		Version:    queue.CurrentVersion,
	}
}

func TestParseMessage(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr any
	}{
		{name: "empty", body: "  ", wantErr: &ErrEmptyBody{}},
		{name: "bad json", body: "{bad-json", wantErr: &ErrDecode{}},
		{name: "missing request id", body: `{"type":"mentor","sessionId":"s","course":"c"}`, wantErr: &ErrInvalid{}},
		{name: "unknown type", body: `{"type":"call","sessionId":"s","course":"c","requestId":"r"}`, wantErr: &ErrInvalid{}},
		{name: "future version", body: `{"type":"mentor","sessionId":"s","course":"c","requestId":"r","version":9}`, wantErr: &ErrInvalid{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseMessage(tc.body)
			require.Error(t, err)
			assert.ErrorAs(t, err, tc.wantErr)
			assert.True(t, Unrecoverable(err))
		})
	}
}

func TestParseMessageComputesMeta(t *testing.T) {
	body := encode(t, validMessage())
	msg, meta, err := ParseMessage(body)
	require.NoError(t, err)
	assert.Equal(t, "req-1", msg.RequestID)
	assert.Equal(t, len(body), meta.BodyLen)
	assert.Len(t, meta.BodySHA, 64)
}

func TestHandleMessageRecordsOnce(t *testing.T) {
	log := NewMemoryLog()
	body := encode(t, validMessage())

	_, recorded, err := HandleMessage(context.Background(), log, body)
	require.NoError(t, err)
	assert.True(t, recorded)

	_, recorded, err = HandleMessage(context.Background(), log, body)
	require.NoError(t, err)
	assert.False(t, recorded, "redelivery should not record twice")
	assert.Len(t, log.Recorded(), 1)
}

type failingLog struct{ err error }

func (f failingLog) Record(context.Context, queue.Message) (bool, error) { return false, f.err }

func TestHandleMessageWrapsRecordFailure(t *testing.T) {
	boom := errors.New("db down")
	_, _, err := HandleMessage(context.Background(), failingLog{err: boom}, encode(t, validMessage()))
	require.Error(t, err)

	var procErr ErrProcess
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "req-1", procErr.RequestID)
	assert.ErrorIs(t, err, boom)
	assert.False(t, Unrecoverable(err))
}

func TestHandleMessageRequiresLog(t *testing.T) {
	_, _, err := HandleMessage(context.Background(), nil, encode(t, validMessage()))
	require.Error(t, err)
}
