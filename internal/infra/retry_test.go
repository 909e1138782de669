package infra_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"map-assistant/internal/infra"
)

func fastRetry() infra.RetryConfig {
	return infra.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry_RetriesRetryableErrors(t *testing.T) {
	attempts := 0
	err := infra.WithRetry(context.Background(), fastRetry(), func() error {
		attempts++
		if attempts < 3 {
			return infra.Retryable(errors.New("busy"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("bad request")
	attempts := 0
	err := infra.WithRetry(context.Background(), fastRetry(), func() error {
		attempts++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_GivesUp(t *testing.T) {
	attempts := 0
	err := infra.WithRetry(context.Background(), fastRetry(), func() error {
		attempts++
		return infra.StatusError("map", http.StatusBadGateway, []byte("down"))
	})

	var retryable *infra.RetryableError
	require.ErrorAs(t, err, &retryable)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "map API error 502: down")
}

func TestWithRetry_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastRetry()
	cfg.InitialDelay = time.Hour

	err := infra.WithRetry(ctx, cfg, func() error {
		cancel()
		return infra.Retryable(errors.New("busy"))
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusError(t *testing.T) {
	var retryable *infra.RetryableError

	assert.ErrorAs(t, infra.StatusError("x", http.StatusTooManyRequests, nil), &retryable)
	assert.False(t, errors.As(infra.StatusError("x", http.StatusUnauthorized, nil), &retryable))
}
