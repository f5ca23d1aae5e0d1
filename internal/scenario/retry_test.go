package scenario

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithBackoff(t *testing.T) {
	transient := &InterpretError{Code: ErrAIUnavailable, Message: "transient", Retryable: true}
	permanent := fmt.Errorf("parse: %w", &InterpretError{Code: ErrAIMalformedResponse, Message: "bad json"})

	tests := []struct {
		name         string
		failures     []error
		wantCalls    int
		wantErr      error
		wantSucceeds bool
	}{
		{name: "first call succeeds", wantCalls: 1, wantSucceeds: true},
		{name: "transient errors then success", failures: []error{transient, transient}, wantCalls: 3, wantSucceeds: true},
		{name: "plain errors count as transient", failures: []error{errors.New("reset")}, wantCalls: 2, wantSucceeds: true},
		{name: "permanent error stops at once", failures: []error{permanent}, wantCalls: 1, wantErr: permanent},
		{name: "attempts exhausted", failures: []error{transient, transient, transient, transient}, wantCalls: 3, wantErr: transient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			got, err := withBackoff(context.Background(), fastBackoff, func(context.Context) (int, error) {
				calls++
				if calls <= len(tt.failures) {
					return -1, tt.failures[calls-1]
				}
				return 42, nil
			})

			assert.Equal(t, tt.wantCalls, calls)
			if !tt.wantSucceeds {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 42, got)
		})
	}
}

func TestWithBackoffStopsWhenContextEnds(t *testing.T) {
	slow := Backoff{Attempts: 5, Base: 500 * time.Millisecond, Cap: 2 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	_, err := withBackoff(ctx, slow, func(context.Context) (string, error) {
		calls++
		return "", errors.New("generic error")
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}

func TestBackoffPause(t *testing.T) {
	b := Backoff{Base: 100 * time.Millisecond, Cap: time.Second}

	assert.Equal(t, 100*time.Millisecond, b.pause(0))
	assert.Equal(t, 400*time.Millisecond, b.pause(2))
	assert.Equal(t, time.Second, b.pause(4))
	assert.Equal(t, time.Second, b.pause(80))

	b.Jitter = 0.5
	for i := 0; i < 20; i++ {
		d := b.pause(1)
		assert.LessOrEqual(t, d, 200*time.Millisecond)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
	}
}

func TestInterpretError(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &InterpretError{Code: ErrAIUnavailable, Message: "model call failed", Retryable: true, Cause: cause}

	assert.Equal(t, "[AI_UNAVAILABLE] model call failed: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, err.IsRetryable())
	assert.True(t, retryable(err))
	assert.False(t, retryable(fmt.Errorf("wrapped: %w", &InterpretError{Code: ErrAITimeout})))
}
