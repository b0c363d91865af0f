package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/joshua-takyi/glamour/internal/lock"
	"github.com/joshua-takyi/glamour/internal/metrics"
	"github.com/joshua-takyi/glamour/internal/models"
	"go.uber.org/zap"
)

// Summarize computes the mean of ratings rounded half away from zero to one
// decimal. Working on sum*10/count keeps x.x5 means from drifting in binary.
func Summarize(ratings []int) models.RatingSummary {
	if len(ratings) == 0 {
		return models.RatingSummary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	mean := math.Round(float64(sum*10)/float64(len(ratings))) / 10
	return models.RatingSummary{Rating: mean, ReviewsCount: len(ratings)}
}

type RatingAggregator struct {
	reviews   models.ReviewsRepo
	providers models.MUARepo
	locker    lock.Locker
	lockWait  time.Duration
	logger    *zap.Logger
}

func NewRatingAggregator(reviews models.ReviewsRepo, providers models.MUARepo, locker lock.Locker, lockWait time.Duration, logger *zap.Logger) *RatingAggregator {
	return &RatingAggregator{
		reviews:   reviews,
		providers: providers,
		locker:    locker,
		lockWait:  lockWait,
		logger:    logger,
	}
}

// Recompute rebuilds the stored summary of providerID from every review it has.
// It always starts from scratch, so calling it again is harmless.
func (a *RatingAggregator) Recompute(ctx context.Context, providerID string) (models.RatingSummary, error) {
	var summary models.RatingSummary
	err := withLock(ctx, a.locker, lock.ProviderKey(providerID), a.lockWait, func() error {
		ratings, err := a.reviews.ListRatingsByProvider(ctx, providerID)
		if err != nil {
			return models.Internal("failed to load ratings", err)
		}
		summary = Summarize(ratings)

		if err := a.providers.UpdateProviderRatingSummary(ctx, providerID, summary); err != nil {
			if errors.Is(err, models.ErrNoRecord) {
				return models.NotFound("mua not found")
			}
			return models.Internal("failed to store rating summary", err)
		}
		return nil
	})

	metrics.RecordRecompute(err == nil)
	if err != nil {
		a.logger.Error("rating recompute failed", zap.String("provider_id", providerID), zap.Error(err))
		return models.RatingSummary{}, err
	}
	a.logger.Info("rating recomputed",
		zap.String("provider_id", providerID),
		zap.Float64("rating", summary.Rating),
		zap.Int("reviews_count", summary.ReviewsCount),
	)
	return summary, nil
}

// RecomputeAll walks every provider page by page. It keeps going past
// individual failures and reports how many providers could not be refreshed.
func (a *RatingAggregator) RecomputeAll(ctx context.Context) (int, error) {
	const batch = 100
	failed := 0
	for offset := 0; ; offset += batch {
		muas, total, err := a.providers.ListMUAs(ctx, offset, batch)
		if err != nil {
			return failed, models.Internal("failed to list muas", err)
		}
		for _, m := range muas {
			if _, err := a.Recompute(ctx, m.ID); err != nil {
				failed++
			}
		}
		if len(muas) < batch || int64(offset+batch) >= total {
			return failed, nil
		}
	}
}
