package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
}

func TestWithRetry(t *testing.T) {
	errBusy := errors.New("database is locked")
	errFinal := errors.New("constraint failed")

	tests := []struct {
		wantErr   error
		failures  []error
		name      string
		wantCalls int
	}{
		{
			name:      "succeeds first time",
			wantCalls: 1,
		},
		{
			name:      "recovers from transient error",
			failures:  []error{Transient(errBusy)},
			wantCalls: 2,
		},
		{
			name:      "does not retry permanent error",
			failures:  []error{errFinal},
			wantErr:   errFinal,
			wantCalls: 1,
		},
		{
			name:      "gives up after max attempts",
			failures:  []error{Transient(errBusy), Transient(errBusy), Transient(errBusy)},
			wantErr:   ErrMaxRetries,
			wantCalls: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			}, fastRetry)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestWithRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return Transient(errors.New("busy"))
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Transient(errors.New("busy"))))
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.Nil(t, Transient(nil))
}

func TestUserError(t *testing.T) {
	err := NewUserError("import aborted", ErrNoOperator)

	assert.Equal(t, "import aborted: no authenticated operator", err.Error())
	assert.ErrorIs(t, err, ErrNoOperator)
	assert.Equal(t, "only message", (&UserError{UserMessage: "only message"}).Error())
}

func TestParseLevel_LoggerConfig(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, "WARN", lvl.String())

	_, err = ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewLogger(nil, lvl, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
