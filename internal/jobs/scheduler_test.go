package jobs

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSweeper struct {
	calls   int
	cleared int64
	err     error
	lastNow time.Time
}

func (s *stubSweeper) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	s.calls++
	s.lastNow = now
	return s.cleared, s.err
}

func TestSweepResetTokens(t *testing.T) {
	sweeper := &stubSweeper{cleared: 3}
	s := NewScheduler(sweeper, zerolog.New(io.Discard))

	s.sweepResetTokens()

	assert.Equal(t, 1, sweeper.calls)
	assert.WithinDuration(t, time.Now(), sweeper.lastNow, time.Second)
}

func TestSweepResetTokens_StoreError(t *testing.T) {
	sweeper := &stubSweeper{err: errors.New("store unavailable")}
	s := NewScheduler(sweeper, zerolog.New(io.Discard))

	// must not panic, only log
	s.sweepResetTokens()
	assert.Equal(t, 1, sweeper.calls)
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(&stubSweeper{}, zerolog.New(io.Discard))
	require.NoError(t, s.Start())
	s.Stop()
}
