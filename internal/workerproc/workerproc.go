package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"pathfinder-backend/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrInvalid indicates a decoded message that consumers cannot act on.
type ErrInvalid struct {
	Meta      MessageMeta
	RequestID string
	Err       error
}

func (e ErrInvalid) Error() string { return "invalid message: " + e.Err.Error() }

func (e ErrInvalid) Unwrap() error { return e.Err }

// ErrProcess indicates recording failed after successful parsing.
type ErrProcess struct {
	RequestID string
	SessionID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "record mentor request"
	}
	return "record mentor request: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Unrecoverable reports whether err means the message can never succeed and should be dropped.
func Unrecoverable(err error) bool {
	var (
		empty   ErrEmptyBody
		decode  ErrDecode
		invalid ErrInvalid
	)
	return errors.As(err, &empty) || errors.As(err, &decode) || errors.As(err, &invalid)
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.RequestID) == "" {
		return msg, meta, ErrInvalid{Meta: meta, Err: errors.New("missing request id")}
	}
	if msg.Version > queue.CurrentVersion {
		return msg, meta, ErrInvalid{Meta: meta, RequestID: msg.RequestID, Err: errors.New("unsupported message version")}
	}
	if err := msg.Validate(); err != nil {
		return msg, meta, ErrInvalid{Meta: meta, RequestID: msg.RequestID, Err: err}
	}
	return msg, meta, nil
}

// HandleMessage parses a payload and records it. Redelivered requests are recorded once;
// recorded reports whether this delivery was the first.
func HandleMessage(ctx context.Context, log RequestLog, body string) (msg queue.Message, recorded bool, err error) {
	if log == nil {
		return queue.Message{}, false, errors.New("mentor request log not configured")
	}
	msg, _, err = ParseMessage(body)
	if err != nil {
		return msg, false, err
	}
	recorded, err = log.Record(ctx, msg)
	if err != nil {
		return msg, false, ErrProcess{RequestID: msg.RequestID, SessionID: msg.SessionID, Err: err}
	}
	return msg, recorded, nil
}
