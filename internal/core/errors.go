package core

import "errors"

// Error codes for domain errors surfaced to clients.
const (
	ErrCodeBadRequest        = "bad_request"
	ErrCodeEmptyMessage      = "empty_message"
	ErrCodePersistenceFailed = "persistence_failed"
	ErrCodeRateLimited       = "rate_limited"
)

var (
	ErrEmptyMessage = errors.New("message has neither text nor image")
	ErrBadRequest   = errors.New("bad request")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
