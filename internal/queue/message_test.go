package queue

import (
	"reflect"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		Type:       TypeMentor,
		SessionID:  "session-123",
		Course:     "Computer Science",
		RequestID:  "request-456",
		EnqueuedAt: "2026-01-30T22:00:00Z",
		Version:    CurrentVersion,
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr bool
	}{
		{name: "mentor", msg: Message{Type: TypeMentor, SessionID: "s", Course: "c"}},
		{name: "enroll", msg: Message{Type: TypeEnroll, SessionID: "s", Course: "c"}},
		{name: "unknown type", msg: Message{Type: "call", SessionID: "s", Course: "c"}, wantErr: true},
		{name: "missing course", msg: Message{Type: TypeMentor, SessionID: "s"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
