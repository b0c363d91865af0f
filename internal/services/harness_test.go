package services

import (
	"context"
	"testing"
	"time"

	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/lock"
	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/joshua-takyi/glamour/internal/store/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	customerID  = "cust-1"
	otherUserID = "cust-2"
	muaUserID   = "mua-user-1"
	providerID  = "mua-1"
)

var (
	customer = models.Principal{ID: customerID, Role: models.RoleCustomer}
	stranger = models.Principal{ID: otherUserID, Role: models.RoleCustomer}
	provider = models.Principal{ID: muaUserID, Role: models.RoleMUA}
)

type harness struct {
	store      *memory.Store
	bookings   *BookingService
	reviews    *ReviewService
	aggregator *RatingAggregator
	admins     *AdminService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.New()
	locker := lock.NewLocal()
	logger := zap.NewNop()
	wait := time.Second

	aggregator := NewRatingAggregator(store, store, locker, wait, logger)
	h := &harness{
		store:      store,
		aggregator: aggregator,
		bookings:   NewBookingService(store, store, locker, wait, logger),
		reviews:    NewReviewService(store, store, store, aggregator, locker, wait, logger),
		admins: NewAdminService(AdminServiceDeps{
			Admins:   store,
			Users:    store,
			MUAs:     store,
			Bookings: store,
			Reviews:  store,
			Tokens:   helpers.NewHMACVerifier("test-secret-test-secret-test-secret", "glamour-test", helpers.AdminAudience),
			TokenTTL: time.Hour,
			Locker:   locker,
			LockWait: wait,
			Logger:   logger,
		}),
	}
	h.addProvider(t, providerID, muaUserID)
	return h
}

func (h *harness) addProvider(t *testing.T, id, ownerID string) {
	t.Helper()
	_, err := h.store.CreateMUA(context.Background(), &models.MUA{
		ID:        id,
		UserID:    ownerID,
		Name:      "Ama Glam",
		Location:  "Accra",
		Category:  models.CategoryBridalLuxury,
		Specialty: "Bridal",
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func bookingInput(providerID string, amount float64) *models.BookingInput {
	return &models.BookingInput{
		ProviderID:    providerID,
		ServiceName:   "Bridal makeup",
		ScheduledDate: time.Date(2026, 12, 5, 0, 0, 0, 0, time.UTC),
		ScheduledTime: "09:00",
		Location:      "East Legon",
		TotalAmount:   &amount,
	}
}

func (h *harness) createBooking(t *testing.T) *models.Booking {
	t.Helper()
	b, err := h.bookings.Create(context.Background(), customerID, bookingInput(providerID, 500000))
	require.NoError(t, err)
	return b
}

// completedBooking walks a fresh booking through confirm and complete.
func (h *harness) completedBooking(t *testing.T) *models.Booking {
	t.Helper()
	ctx := context.Background()
	b := h.createBooking(t)
	_, err := h.bookings.Transition(ctx, provider, b.ID, models.BookingConfirmed)
	require.NoError(t, err)
	done, err := h.bookings.Transition(ctx, provider, b.ID, models.BookingCompleted)
	require.NoError(t, err)
	return done
}

func (h *harness) provider(t *testing.T, id string) *models.MUA {
	t.Helper()
	m, err := h.store.GetMUAByID(context.Background(), id)
	require.NoError(t, err)
	return m
}
