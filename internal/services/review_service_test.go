package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joshua-takyi/glamour/internal/lock"
	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/joshua-takyi/glamour/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReviewAfterCompletedBooking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	b := h.completedBooking(t)

	review, err := h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: b.ID, Rating: 4, Comment: "lovely"})
	require.NoError(t, err)
	assert.Equal(t, providerID, review.ProviderID)
	assert.Equal(t, 4, review.Rating)
	assert.True(t, review.IsApproved)

	m := h.provider(t, providerID)
	assert.Equal(t, 4.0, m.Rating)
	assert.Equal(t, 1, m.ReviewsCount)

	_, err = h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: b.ID, Rating: 1})
	assert.Equal(t, models.KindConflict, models.KindOf(err))
	assert.Equal(t, "booking already reviewed", models.MessageOf(err))
}

func TestRatingTracksEveryAdmission(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ratings := []float64{5, 4, 4, 1, 3}
	sum := 0.0
	for i, r := range ratings {
		b := h.completedBooking(t)
		_, err := h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: b.ID, Rating: r})
		require.NoError(t, err)

		sum += r
		m := h.provider(t, providerID)
		assert.Equal(t, i+1, m.ReviewsCount)
		want := Summarize(intsOf(ratings[:i+1])).Rating
		assert.Equal(t, want, m.Rating)
		assert.InDelta(t, sum/float64(i+1), m.Rating, 0.05)
	}
}

func TestTwoReviewsAverage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, r := range []float64{5, 4} {
		b := h.completedBooking(t)
		_, err := h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: b.ID, Rating: r})
		require.NoError(t, err)
	}
	m := h.provider(t, providerID)
	assert.Equal(t, 4.5, m.Rating)
	assert.Equal(t, 2, m.ReviewsCount)
}

func TestReviewGateOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: "missing", Rating: 5})
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	pending := h.createBooking(t)
	// Not the customer beats not completed.
	_, err = h.reviews.Submit(ctx, stranger, models.ReviewInput{BookingID: pending.ID, Rating: 5})
	assert.Equal(t, models.KindForbidden, models.KindOf(err))

	_, err = h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: pending.ID, Rating: 5})
	assert.Equal(t, models.KindPreconditionFailed, models.KindOf(err))
	assert.Equal(t, "only completed bookings may be reviewed", models.MessageOf(err))

	// Not completed beats a bad rating.
	_, err = h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: pending.ID, Rating: 9})
	assert.Equal(t, models.KindPreconditionFailed, models.KindOf(err))

	confirmed, err := h.bookings.Transition(ctx, provider, pending.ID, models.BookingConfirmed)
	require.NoError(t, err)
	_, err = h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: confirmed.ID, Rating: 5})
	assert.Equal(t, models.KindPreconditionFailed, models.KindOf(err))

	done := h.completedBooking(t)
	for _, bad := range []float64{0, 6, 4.5, -1} {
		_, err = h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: done.ID, Rating: bad})
		assert.Equal(t, models.KindInvalidInput, models.KindOf(err), "rating %v", bad)
	}

	_, err = h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: done.ID, Rating: 3, Comment: strings.Repeat("x", maxCommentLength+1)})
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))

	_, err = h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: done.ID, Rating: 3})
	require.NoError(t, err)

	// Already reviewed beats a bad rating.
	_, err = h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: done.ID, Rating: 0})
	assert.Equal(t, models.KindConflict, models.KindOf(err))

	assert.Equal(t, 1, h.provider(t, providerID).ReviewsCount)
}

func TestConcurrentReviewsSameBooking(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	b := h.completedBooking(t)

	const n = 10
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: b.ID, Rating: float64(i%5 + 1)})
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		assert.Equal(t, models.KindConflict, models.KindOf(err))
	}
	assert.Equal(t, 1, admitted)
	assert.Equal(t, 1, h.provider(t, providerID).ReviewsCount)
}

func TestConcurrentReviewsSameProvider(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	const n = 12
	bookings := make([]*models.Booking, n)
	for i := range bookings {
		bookings[i] = h.completedBooking(t)
	}

	var wg sync.WaitGroup
	for i, b := range bookings {
		wg.Add(1)
		go func(rating float64, id string) {
			defer wg.Done()
			_, err := h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: id, Rating: rating})
			assert.NoError(t, err)
		}(float64(i%5+1), b.ID)
	}
	wg.Wait()

	ratings, err := h.store.ListRatingsByProvider(ctx, providerID)
	require.NoError(t, err)
	want := Summarize(ratings)

	m := h.provider(t, providerID)
	assert.Equal(t, n, m.ReviewsCount)
	assert.Equal(t, want.Rating, m.Rating)
}

func TestModerationKeepsRating(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	var ids []string
	for _, r := range []float64{5, 3} {
		b := h.completedBooking(t)
		review, err := h.reviews.Submit(ctx, customer, models.ReviewInput{BookingID: b.ID, Rating: r})
		require.NoError(t, err)
		ids = append(ids, review.ID)
	}

	_, err := h.reviews.SetApproval(ctx, ids[0], false)
	require.NoError(t, err)

	visible, err := h.reviews.ListForProvider(ctx, providerID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, ids[1], visible[0].ID)
	assert.Equal(t, 4.0, h.provider(t, providerID).Rating)

	require.NoError(t, h.reviews.AdminDelete(ctx, ids[0]))
	m := h.provider(t, providerID)
	assert.Equal(t, 3.0, m.Rating)
	assert.Equal(t, 1, m.ReviewsCount)

	require.NoError(t, h.reviews.AdminDelete(ctx, ids[1]))
	m = h.provider(t, providerID)
	assert.Zero(t, m.Rating)
	assert.Zero(t, m.ReviewsCount)

	assert.Equal(t, models.KindNotFound, models.KindOf(h.reviews.AdminDelete(ctx, ids[1])))

	_, err = h.reviews.ListForProvider(ctx, "missing")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func intsOf(fs []float64) []int {
	out := make([]int, len(fs))
	for i, f := range fs {
		out[i] = int(f)
	}
	return out
}

// flakySummaries fails rating summary writes while fail is set.
type flakySummaries struct {
	*memory.Store
	fail bool
}

func (f *flakySummaries) UpdateProviderRatingSummary(ctx context.Context, id string, summary models.RatingSummary) error {
	if f.fail {
		return errors.New("write timed out")
	}
	return f.Store.UpdateProviderRatingSummary(ctx, id, summary)
}

func TestSubmitSurfacesInternalWhenRecomputeFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	b := h.completedBooking(t)

	providers := &flakySummaries{Store: h.store, fail: true}
	locker := lock.NewLocal()
	aggregator := NewRatingAggregator(h.store, providers, locker, time.Second, zap.NewNop())
	reviews := NewReviewService(h.store, h.store, providers, aggregator, locker, time.Second, zap.NewNop())

	_, err := reviews.Submit(ctx, customer, models.ReviewInput{BookingID: b.ID, Rating: 4})
	require.Error(t, err)
	assert.Equal(t, models.KindInternal, models.KindOf(err))

	stored, err := h.store.GetReviewByBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Rating)

	mua := h.provider(t, providerID)
	assert.Zero(t, mua.Rating)
	assert.Zero(t, mua.ReviewsCount)

	providers.fail = false
	summary, err := aggregator.Recompute(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingSummary{Rating: 4, ReviewsCount: 1}, summary)

	summary, err = aggregator.Recompute(ctx, providerID)
	require.NoError(t, err)
	assert.Equal(t, models.RatingSummary{Rating: 4, ReviewsCount: 1}, summary)

	mua = h.provider(t, providerID)
	assert.Equal(t, 4.0, mua.Rating)
	assert.Equal(t, 1, mua.ReviewsCount)

	_, err = reviews.Submit(ctx, customer, models.ReviewInput{BookingID: b.ID, Rating: 5})
	assert.Equal(t, models.KindConflict, models.KindOf(err))
}
