package scenario

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeframe is returned by Simulate for projections shorter than a month.
var ErrInvalidTimeframe = errors.New("timeframe must be at least 1 month")

// InterpretErrorCode classifies AI interpretation failures.
type InterpretErrorCode string

const (
	ErrAIUnavailable       InterpretErrorCode = "AI_UNAVAILABLE"
	ErrAITimeout           InterpretErrorCode = "AI_TIMEOUT"
	ErrAIMalformedResponse InterpretErrorCode = "AI_MALFORMED_RESPONSE"
)

// InterpretError is a structured error for AI interpretation failures.
type InterpretError struct {
	Code      InterpretErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *InterpretError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *InterpretError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *InterpretError) IsRetryable() bool {
	return e.Retryable
}
