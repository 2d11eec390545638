package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestParse(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmptySchedule)

	_, err = Parse("0 9 * *")
	assert.Error(t, err)

	_, err = Parse("*/5 * * * * *")
	assert.Error(t, err, "seconds field is not accepted")

	_, err = Parse("0 9 * * 1-5")
	assert.NoError(t, err)
}

func TestNextFireTime(t *testing.T) {
	r, err := NewRunner("0 9 * * 1-5", time.UTC, nil)
	require.NoError(t, err)

	// Friday evening rolls over to Monday morning.
	fri := time.Date(2025, 1, 17, 18, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC), r.Next(fri))

	tue := time.Date(2025, 1, 14, 8, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC), r.Next(tue))
}

func TestNextHonorsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	r, err := NewRunner("0 9 * * *", loc, nil)
	require.NoError(t, err)

	now := time.Date(2025, 1, 14, 6, 0, 0, 0, time.UTC) // 08:00 local
	next := r.Next(now)
	assert.Equal(t, 9, next.Hour())
	assert.True(t, next.Equal(time.Date(2025, 1, 14, 7, 0, 0, 0, time.UTC)))
}

func TestRunInvokesJobUntilCanceled(t *testing.T) {
	r, err := NewRunner("* * * * *", time.UTC, zaptest.NewLogger(t))
	require.NoError(t, err)

	clock := time.Date(2025, 1, 14, 9, 0, 30, 0, time.UTC)
	var waits []time.Duration
	r.Now = func() time.Time { return clock }
	r.After = func(d time.Duration) <-chan time.Time {
		waits = append(waits, d)
		clock = clock.Add(d)
		ch := make(chan time.Time, 1)
		ch <- clock
		return ch
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	calls := 0
	err = r.Run(ctx, func(context.Context) error {
		calls++
		switch calls {
		case 1:
			return errors.New("transient")
		case 3:
			cancel()
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, calls, "a failing job must not stop the schedule")
	require.NotEmpty(t, waits)
	assert.Equal(t, 30*time.Second, waits[0])
}
