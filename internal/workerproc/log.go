package workerproc

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"pathfinder-backend/internal/queue"
)

// RequestLog durably records consumed mentor requests, keyed by request id.
type RequestLog interface {
	// Record stores msg and reports false when the request id was already recorded.
	Record(ctx context.Context, msg queue.Message) (bool, error)
}

// MemoryLog is an in-memory RequestLog.
type MemoryLog struct {
	mu   sync.Mutex
	data map[string]queue.Message
	ord  []string
}

// NewMemoryLog constructs a MemoryLog.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{data: make(map[string]queue.Message)}
}

// Record stores msg once per request id.
func (l *MemoryLog) Record(ctx context.Context, msg queue.Message) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.data[msg.RequestID]; ok {
		return false, nil
	}
	l.data[msg.RequestID] = msg
	l.ord = append(l.ord, msg.RequestID)
	return true, nil
}

// Recorded returns the recorded messages in arrival order.
func (l *MemoryLog) Recorded() []queue.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]queue.Message, 0, len(l.ord))
	for _, id := range l.ord {
		out = append(out, l.data[id])
	}
	return out
}

// PGLog implements RequestLog using Postgres.
type PGLog struct {
	DB *sql.DB
}

// Record inserts msg, ignoring redeliveries of an already recorded request.
func (l *PGLog) Record(ctx context.Context, msg queue.Message) (bool, error) {
	const query = `
INSERT INTO mentor_requests (
    request_id,
    session_id,
    kind,
    course,
    enqueued_at
) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (request_id) DO NOTHING`

	var enqueuedAt sql.NullTime
	if ts, err := time.Parse(time.RFC3339, msg.EnqueuedAt); err == nil {
		enqueuedAt = sql.NullTime{Time: ts.UTC(), Valid: true}
	}

	res, err := l.DB.ExecContext(ctx, query, msg.RequestID, msg.SessionID, msg.Type, msg.Course, enqueuedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
