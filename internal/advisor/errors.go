package advisor

import "errors"

var (
	// ErrBusy is returned when a generation is already running for the session.
	ErrBusy = errors.New("generation already in progress")
	// ErrReset is returned to a generation whose session was reset before the reply arrived.
	ErrReset = errors.New("session was reset during generation")
	// ErrNotReady is returned when an operation needs a completed generation.
	ErrNotReady = errors.New("no completed roadmap for this session")
	// ErrSessionNotFound is returned when an advisor session id is unknown.
	ErrSessionNotFound = errors.New("advisor session not found")
	// ErrNotFound is returned when a saved roadmap does not exist.
	ErrNotFound = errors.New("saved roadmap not found")
)
