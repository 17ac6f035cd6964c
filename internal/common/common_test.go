package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryOptions {
	return RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		err          error
		name         string
		failures     int
		wantCalls    int
		wantErr      bool
		wantMaxRetry bool
	}{
		{name: "succeeds first time", wantCalls: 1},
		{name: "recovers from busy database", err: ErrDatabaseBusy, failures: 2, wantCalls: 3},
		{name: "gives up after max attempts", err: ErrDatabaseBusy, failures: 5, wantCalls: 3, wantErr: true, wantMaxRetry: true},
		{name: "does not retry conflicts", err: fmt.Errorf("apply: %w", ErrConflict), failures: 5, wantCalls: 1, wantErr: true},
		{name: "does not retry plain errors", err: errors.New("boom"), failures: 5, wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			}, fastRetry())

			assert.Equal(t, tt.wantCalls, calls)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMaxRetry, errors.Is(err, ErrMaxRetries))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := fastRetry()
	opts.InitialDelay = time.Hour
	opts.MaxDelay = time.Hour
	err := WithRetry(ctx, func() error { return ErrDatabaseBusy }, opts)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: ErrDatabaseBusy, Retryable: false}))
	assert.True(t, IsRetryable(fmt.Errorf("save: %w", ErrDatabaseBusy)))
	assert.False(t, IsRetryable(ErrConflict))
}

func TestUserError(t *testing.T) {
	err := NewUserError("Could not clear bill", ErrConflict)
	assert.Equal(t, "Could not clear bill: conflicting update", err.Error())
	assert.ErrorIs(t, err, ErrConflict)

	var ue *UserError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Could not clear bill", ue.UserMessage)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidConfig)
		} else {
			assert.NoError(t, err)
		}
	}
}

func TestSetupLoggerTo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, slog.LevelInfo, "json"))
	slog.Debug("hidden")
	slog.Info("Bill cleared", "bucket", "rent")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"bucket":"rent"`)

	assert.ErrorIs(t, SetupLoggerTo(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}
