package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianccgg/letranido-backend/logging"
)

func init() {
	logging.Log = logrus.New()
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, Linear(0), func(attempt int) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := make([]int, 0, 3)
	err := Do(context.Background(), 3, Linear(0), func(attempt int) error {
		attempts = append(attempts, attempt)
		if attempt < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDoReturnsLastErrorWhenExhausted(t *testing.T) {
	boom := errors.New("still failing")
	calls := 0
	err := Do(context.Background(), 3, Linear(0), func(attempt int) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls, "no fourth attempt")
}

func TestDoHonorsBackoffSchedule(t *testing.T) {
	waits := make([]time.Duration, 0, 2)
	backoff := func(attempt int) time.Duration {
		d := Linear(time.Millisecond)(attempt)
		waits = append(waits, d)
		return d
	}

	_ = Do(context.Background(), 3, backoff, func(attempt int) error {
		return errors.New("transient")
	})

	// Linear backoff: attempt index times the step, no wait after the
	// final attempt.
	assert.Equal(t, []time.Duration{time.Millisecond, 2 * time.Millisecond}, waits)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := Do(ctx, 3, Linear(time.Minute), func(attempt int) error {
		calls++
		cancel()
		return errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation aborts the backoff wait")
}

func TestSleep(t *testing.T) {
	t.Run("Happy path - zero duration returns immediately", func(t *testing.T) {
		assert.NoError(t, Sleep(context.Background(), 0))
	})

	t.Run("Unhappy path - cancelled context wins", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, Sleep(ctx, time.Minute), context.Canceled)
	})
}
