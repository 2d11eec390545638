package llm

import (
	"context"
	"errors"
	"strings"
)

type ErrorType string

const (
	ErrorQuota     ErrorType = "quota"
	ErrorRate      ErrorType = "rate"
	ErrorTransient ErrorType = "transient"
	ErrorPermanent ErrorType = "permanent"
	ErrorContext   ErrorType = "context"
	ErrorCanceled  ErrorType = "canceled"
)

// ClassifyError buckets a provider error by how a caller should react to it.
// ErrorContext means the prompt exceeded the model's context window.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, context.Canceled):
		return ErrorCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTransient
	}
	e := strings.ToLower(err.Error())
	switch {
	case strings.Contains(e, "insufficient_quota"), strings.Contains(e, "quota"), strings.Contains(e, "credit balance"):
		return ErrorQuota
	case strings.Contains(e, "429"), strings.Contains(e, "rate limit"), strings.Contains(e, "rate_limit"), strings.Contains(e, "too many requests"):
		return ErrorRate
	case strings.Contains(e, "deadline exceeded"), strings.Contains(e, "timeout"), strings.Contains(e, "temporarily"),
		strings.Contains(e, "unavailable"), strings.Contains(e, "overloaded"), strings.Contains(e, "connection reset"),
		strings.Contains(e, "status 500"), strings.Contains(e, "status 502"), strings.Contains(e, "status 503"), strings.Contains(e, "status 504"),
		strings.Contains(e, "529"):
		return ErrorTransient
	case strings.Contains(e, "context length"), strings.Contains(e, "context_length"), strings.Contains(e, "context window"),
		strings.Contains(e, "too long"):
		return ErrorContext
	default:
		return ErrorPermanent
	}
}

// Retryable reports whether another attempt may succeed.
func Retryable(err error) bool {
	switch ClassifyError(err) {
	case ErrorRate, ErrorTransient:
		return true
	default:
		return false
	}
}
