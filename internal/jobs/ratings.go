// Package jobs runs periodic maintenance in the background.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type RatingRecomputer interface {
	RecomputeAll(ctx context.Context) (int, error)
}

// Scheduler re-derives every provider's rating on a cron spec, healing
// summaries left stale by a failed recompute.
type Scheduler struct {
	cron    *cron.Cron
	ratings RatingRecomputer
	timeout time.Duration
	logger  *zap.Logger
}

func NewScheduler(ratings RatingRecomputer, timeout time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ratings: ratings,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.reconcileRatings); err != nil {
		return fmt.Errorf("invalid rating reconcile schedule %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("rating reconcile scheduled", zap.String("spec", spec))
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) reconcileRatings() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	failed, err := s.ratings.RecomputeAll(ctx)
	if err != nil {
		s.logger.Error("rating reconcile aborted", zap.Error(err))
		return
	}
	s.logger.Info("rating reconcile finished",
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)),
	)
}
