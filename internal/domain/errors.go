package domain

import "errors"

var (
	// ErrContentUnavailable is returned when quiz content cannot be resolved to a usable question list.
	ErrContentUnavailable = errors.New("quiz content unavailable")
	// ErrContentNotFound indicates the loader has no content for the requested subject.
	ErrContentNotFound = errors.New("quiz content not found")
	// ErrSessionNotFound is returned when a quiz session does not exist.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrResultNotReady is returned when a result is requested before the session completes.
	ErrResultNotReady = errors.New("quiz result not ready")
)
