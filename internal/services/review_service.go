package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/glamour/internal/lock"
	"github.com/joshua-takyi/glamour/internal/metrics"
	"github.com/joshua-takyi/glamour/internal/models"
	"go.uber.org/zap"
)

const maxCommentLength = 2000

type ReviewService struct {
	reviews    models.ReviewsRepo
	bookings   models.BookingRepo
	providers  models.MUARepo
	aggregator *RatingAggregator
	locker     lock.Locker
	lockWait   time.Duration
	logger     *zap.Logger
}

func NewReviewService(reviews models.ReviewsRepo, bookings models.BookingRepo, providers models.MUARepo, aggregator *RatingAggregator, locker lock.Locker, lockWait time.Duration, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		bookings:   bookings,
		providers:  providers,
		aggregator: aggregator,
		locker:     locker,
		lockWait:   lockWait,
		logger:     logger,
	}
}

// Submit admits a review for a completed booking. Checks run in a fixed order
// so callers always see the same error for the same state:
// not found, not the customer, not completed, already reviewed, bad rating.
func (rs *ReviewService) Submit(ctx context.Context, p models.Principal, in models.ReviewInput) (*models.Review, error) {
	if strings.TrimSpace(in.BookingID) == "" {
		return nil, rs.reject(models.InvalidInput("booking_id is required"))
	}

	var created *models.Review
	err := withLock(ctx, rs.locker, lock.BookingKey(in.BookingID), rs.lockWait, func() error {
		booking, err := rs.bookings.GetBookingByID(ctx, in.BookingID)
		if err != nil {
			if errors.Is(err, models.ErrNoRecord) {
				return models.NotFound("booking not found")
			}
			return models.Internal("failed to load booking", err)
		}
		if booking.CustomerID != p.ID {
			return models.Forbidden("only the customer who made the booking may review it")
		}
		if booking.Status != models.BookingCompleted {
			return models.PreconditionFailed("only completed bookings may be reviewed")
		}

		if _, err := rs.reviews.GetReviewByBooking(ctx, booking.ID); err == nil {
			return models.Conflict("booking already reviewed")
		} else if !errors.Is(err, models.ErrNoRecord) {
			return models.Internal("failed to check existing review", err)
		}

		if in.Rating != math.Trunc(in.Rating) || in.Rating < 1 || in.Rating > 5 {
			return models.InvalidInput("rating must be a whole number between 1 and 5")
		}
		comment := strings.TrimSpace(in.Comment)
		if len(comment) > maxCommentLength {
			return models.InvalidInput("comment is too long")
		}

		now := time.Now().UTC()
		review := &models.Review{
			ID:         uuid.NewString(),
			CustomerID: p.ID,
			ProviderID: booking.ProviderID,
			BookingID:  booking.ID,
			Rating:     int(in.Rating),
			Comment:    comment,
			IsApproved: true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		created, err = rs.reviews.CreateReview(ctx, review)
		if err != nil {
			// The unique index on booking_id catches writers on other instances.
			if errors.Is(err, models.ErrDuplicate) {
				return models.Conflict("booking already reviewed")
			}
			return models.Internal("failed to save review", err)
		}
		return nil
	})
	if err != nil {
		return nil, rs.reject(err)
	}

	metrics.RecordAdmission("admitted")
	rs.logger.Info("review admitted",
		zap.String("review_id", created.ID),
		zap.String("booking_id", created.BookingID),
		zap.String("provider_id", created.ProviderID),
		zap.Int("rating", created.Rating),
	)

	if _, err := rs.aggregator.Recompute(ctx, created.ProviderID); err != nil {
		return nil, models.Internal("review saved but rating refresh failed", err)
	}
	return created, nil
}

func (rs *ReviewService) reject(err error) error {
	metrics.RecordAdmission(string(models.KindOf(err)))
	return err
}

func (rs *ReviewService) ListForProvider(ctx context.Context, providerID string) ([]*models.Review, error) {
	exists, err := rs.providers.ProviderExists(ctx, providerID)
	if err != nil {
		return nil, models.Internal("failed to look up mua", err)
	}
	if !exists {
		return nil, models.NotFound("mua not found")
	}
	reviews, err := rs.reviews.ListApprovedReviewsByProvider(ctx, providerID)
	if err != nil {
		return nil, models.Internal("failed to list reviews", err)
	}
	return reviews, nil
}

// Admin surface ---------------------------------------------------------------

func (rs *ReviewService) AdminList(ctx context.Context, offset, limit int) ([]*models.Review, int64, error) {
	reviews, total, err := rs.reviews.ListReviews(ctx, offset, limit)
	if err != nil {
		return nil, 0, models.Internal("failed to list reviews", err)
	}
	return reviews, total, nil
}

func (rs *ReviewService) AdminGet(ctx context.Context, id string) (*models.Review, error) {
	review, err := rs.reviews.GetReviewByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return nil, models.NotFound("review not found")
		}
		return nil, models.Internal("failed to load review", err)
	}
	return review, nil
}

// SetApproval only changes visibility; every review counts toward the rating.
func (rs *ReviewService) SetApproval(ctx context.Context, id string, approved bool) (*models.Review, error) {
	review, err := rs.reviews.SetReviewApproval(ctx, id, approved)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return nil, models.NotFound("review not found")
		}
		return nil, models.Internal("failed to update review", err)
	}
	rs.logger.Info("review moderated", zap.String("review_id", id), zap.Bool("approved", approved))
	return review, nil
}

// AdminDelete removes a review and refreshes its provider's summary.
func (rs *ReviewService) AdminDelete(ctx context.Context, id string) error {
	deleted, err := rs.reviews.DeleteReview(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.NotFound("review not found")
		}
		return models.Internal("failed to delete review", err)
	}
	rs.logger.Info("review deleted", zap.String("review_id", id), zap.String("provider_id", deleted.ProviderID))

	if _, err := rs.aggregator.Recompute(ctx, deleted.ProviderID); err != nil {
		// A provider deleted before its reviews has nothing left to refresh.
		if models.KindOf(err) == models.KindNotFound {
			return nil
		}
		return models.Internal("review deleted but rating refresh failed", err)
	}
	return nil
}

func (rs *ReviewService) Count(ctx context.Context) (int64, error) {
	n, err := rs.reviews.CountReviews(ctx)
	if err != nil {
		return 0, models.Internal("failed to count reviews", err)
	}
	return n, nil
}
