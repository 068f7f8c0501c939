package queue

import (
	"encoding/json"
	"fmt"
)

// Message types.
const (
	TypeMentor = "mentor"
	TypeEnroll = "enroll"
)

// CurrentVersion is the schema version stamped on new messages.
const CurrentVersion = 1

// Message is a mentor-connect or enrollment request handed to downstream consumers.
type Message struct {
	Type       string `json:"type"`
	SessionID  string `json:"sessionId"`
	Course     string `json:"course"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// Validate checks the fields consumers rely on.
func (m Message) Validate() error {
	switch m.Type {
	case TypeMentor, TypeEnroll:
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	if m.SessionID == "" || m.Course == "" {
		return fmt.Errorf("sessionId and course are required")
	}
	return nil
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
