package session

import "errors"

var (
	// ErrNotReady indicates that the session has not connected yet
	ErrNotReady = errors.New("session is not ready")

	// ErrAlreadyStarted indicates a second call to Start
	ErrAlreadyStarted = errors.New("session already started")
)
