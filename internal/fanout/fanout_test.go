package fanout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailsafe/trailsafe/internal/fanout"
)

func TestSettleAll_PreservesOrderAndIsolatesFailures(t *testing.T) {
	tasks := []fanout.Task[string]{
		func(_ context.Context) (string, error) {
			time.Sleep(20 * time.Millisecond)
			return "slow", nil
		},
		func(_ context.Context) (string, error) {
			return "", errors.New("feed down")
		},
		func(_ context.Context) (string, error) {
			return "fast", nil
		},
	}

	results := fanout.SettleAll(context.Background(), tasks)

	require.Len(t, results, 3)
	assert.Equal(t, "slow", results[0].Value)
	assert.Error(t, results[1].Err)
	assert.Equal(t, "fast", results[2].Value)
}

func TestSettleAll_RecoversPanics(t *testing.T) {
	tasks := []fanout.Task[int]{
		func(_ context.Context) (int, error) { panic("boom") },
		func(_ context.Context) (int, error) { return 7, nil },
	}

	results := fanout.SettleAll(context.Background(), tasks)

	require.Len(t, results, 2)
	assert.Error(t, results[0].Err)
	assert.Equal(t, 7, results[1].Value)
}

func TestBestOf_KeepsHighestScore(t *testing.T) {
	tasks := []fanout.Task[int]{
		func(_ context.Context) (int, error) { return 10, nil },
		func(_ context.Context) (int, error) { return 0, errors.New("down") },
		func(_ context.Context) (int, error) { return 30, nil },
	}

	best, ok := fanout.BestOf(context.Background(), tasks, func(v int) int { return v })

	require.True(t, ok)
	assert.Equal(t, 30, best)
}

func TestBestOf_AllFailed(t *testing.T) {
	tasks := []fanout.Task[int]{
		func(_ context.Context) (int, error) { return 0, errors.New("a") },
		func(_ context.Context) (int, error) { return 0, errors.New("b") },
	}

	_, ok := fanout.BestOf(context.Background(), tasks, func(v int) int { return v })
	assert.False(t, ok)
}

func TestBestOf_TiePrefersEarlierTask(t *testing.T) {
	tasks := []fanout.Task[string]{
		func(_ context.Context) (string, error) { return "preferred", nil },
		func(_ context.Context) (string, error) { return "fallback", nil },
	}

	best, ok := fanout.BestOf(context.Background(), tasks, func(string) int { return 5 })

	require.True(t, ok)
	assert.Equal(t, "preferred", best)
}
