package queue

import (
	"context"
	"sync"

	"pathfinder-backend/internal/shared/telemetry"
)

// MemoryClient records messages in process and logs them. It is used when no queue is configured.
type MemoryClient struct {
	mu   sync.Mutex
	sent []Message
}

// NewMemoryClient constructs a MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// Send records msg.
func (m *MemoryClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()

	telemetry.Info("queue.message.recorded", map[string]any{
		"type":       msg.Type,
		"session_id": msg.SessionID,
		"course":     msg.Course,
		"request_id": msg.RequestID,
	})
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MemoryClient) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

var _ Client = (*MemoryClient)(nil)
