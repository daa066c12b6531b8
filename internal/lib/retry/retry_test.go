package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-platform/internal/lib/retry"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	var sleeps int
	p := retry.Policy{
		MaxAttempts: 5,
		Interval:    time.Second,
		Sleep: func(_ context.Context, _ time.Duration) error {
			sleeps++
			return nil
		},
	}

	calls := 0
	ok, err := p.Do(context.Background(), func(_ context.Context) (bool, error) {
		calls++
		return true, nil
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, sleeps)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var slept []time.Duration
	p := retry.Policy{
		MaxAttempts: 5,
		Interval:    time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		},
	}

	calls := 0
	ok, err := p.Do(context.Background(), func(_ context.Context) (bool, error) {
		calls++
		return false, nil
	})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 5, calls)
	// пауз ровно на одну меньше, чем попыток
	require.Len(t, slept, 4)
	for _, d := range slept {
		assert.Equal(t, time.Second, d)
	}
}

func TestDo_StopsOnError(t *testing.T) {
	p := retry.Policy{
		MaxAttempts: 5,
		Interval:    time.Second,
		Sleep: func(_ context.Context, _ time.Duration) error {
			t.Fatal("sleep should not be called after error")
			return nil
		},
	}

	wantErr := errors.New("storage unavailable")
	calls := 0
	ok, err := p.Do(context.Background(), func(_ context.Context) (bool, error) {
		calls++
		return false, wantErr
	})

	require.ErrorIs(t, err, wantErr)
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCanceledDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := retry.Policy{
		MaxAttempts: 5,
		Interval:    time.Second,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	ok, err := p.Do(ctx, func(_ context.Context) (bool, error) {
		return false, nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}
