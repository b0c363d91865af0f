package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingRecomputer struct {
	calls atomic.Int32
	err   error
}

func (c *countingRecomputer) RecomputeAll(ctx context.Context) (int, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("missing deadline")
	}
	return 0, c.err
}

func TestSchedulerRunsReconcile(t *testing.T) {
	rec := &countingRecomputer{}
	s := NewScheduler(rec, time.Second, zap.NewNop())
	require.NoError(t, s.Start("@every 1s"))

	assert.Eventually(t, func() bool { return rec.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(&countingRecomputer{}, time.Second, zap.NewNop())
	assert.Error(t, s.Start("every tuesday"))
}

func TestReconcileSurvivesFailure(t *testing.T) {
	rec := &countingRecomputer{err: errors.New("mongo down")}
	s := NewScheduler(rec, time.Second, zap.NewNop())
	s.reconcileRatings()
	assert.EqualValues(t, 1, rec.calls.Load())
}
