package llm

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a provider failure for retry/escalation decisions.
type ErrorCode string

const (
	ErrInvalidRequest  ErrorCode = "LLM_INVALID_REQUEST"
	ErrUnauthorized    ErrorCode = "LLM_UNAUTHORIZED"
	ErrRateLimited     ErrorCode = "LLM_RATE_LIMITED"
	ErrContentFiltered ErrorCode = "LLM_CONTENT_FILTERED"
	ErrUpstreamTimeout ErrorCode = "LLM_UPSTREAM_TIMEOUT"
	ErrUpstreamError   ErrorCode = "LLM_UPSTREAM_ERROR"
)

// Error is the typed failure surfaced by a Provider. HTTPStatus is 0 when
// the failure never reached the wire (e.g. request marshaling).
type Error struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Retryable  bool
	Provider   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (provider=%s status=%d)", e.Code, e.Message, e.Provider, e.HTTPStatus)
}

// Retryable reports whether the wrapped error (if any) is a retryable
// *llm.Error. Non-Error failures are treated as non-retryable.
func Retryable(err error) bool {
	var lerr *Error
	return errors.As(err, &lerr) && lerr.Retryable
}
