package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/glamour/internal/lock"
	"github.com/joshua-takyi/glamour/internal/metrics"
	"github.com/joshua-takyi/glamour/internal/models"
	"go.uber.org/zap"
)

type BookingService struct {
	bookings  models.BookingRepo
	providers models.MUARepo
	locker    lock.Locker
	lockWait  time.Duration
	logger    *zap.Logger
}

func NewBookingService(bookings models.BookingRepo, providers models.MUARepo, locker lock.Locker, lockWait time.Duration, logger *zap.Logger) *BookingService {
	return &BookingService{
		bookings:  bookings,
		providers: providers,
		locker:    locker,
		lockWait:  lockWait,
		logger:    logger,
	}
}

func (bs *BookingService) Create(ctx context.Context, customerID string, in *models.BookingInput) (*models.Booking, error) {
	if err := models.Validate.Struct(in); err != nil {
		return nil, models.InvalidInput(fmt.Sprintf("invalid booking data provided: %v", err))
	}
	if in.ScheduledDate.IsZero() {
		return nil, models.InvalidInput("scheduled_date is required")
	}

	exists, err := bs.providers.ProviderExists(ctx, in.ProviderID)
	if err != nil {
		return nil, models.Internal("failed to look up mua", err)
	}
	if !exists {
		return nil, models.NotFound("mua not found")
	}

	now := time.Now().UTC()
	booking := &models.Booking{
		ID:            uuid.NewString(),
		CustomerID:    customerID,
		ProviderID:    in.ProviderID,
		ServiceName:   strings.TrimSpace(in.ServiceName),
		ScheduledDate: in.ScheduledDate.UTC(),
		ScheduledTime: strings.TrimSpace(in.ScheduledTime),
		Location:      strings.TrimSpace(in.Location),
		Notes:         strings.TrimSpace(in.Notes),
		TotalAmount:   *in.TotalAmount,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentUnpaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := bs.bookings.CreateBooking(ctx, booking)
	if err != nil {
		return nil, models.Internal("failed to create booking", err)
	}
	bs.logger.Info("booking created",
		zap.String("booking_id", created.ID),
		zap.String("customer_id", customerID),
		zap.String("provider_id", created.ProviderID),
	)
	return created, nil
}

// relationship resolves how p relates to booking. The provider side is looked
// up through the profile p owns, never through the role alone.
func (bs *BookingService) relationship(ctx context.Context, p models.Principal, booking *models.Booking) (Relationship, error) {
	rel := Relationship{IsOwner: booking.CustomerID == p.ID}
	providerID, err := bs.providers.ResolveProviderByOwner(ctx, p.ID)
	if err != nil {
		return rel, models.Internal("failed to resolve mua profile", err)
	}
	rel.IsProvider = providerID != "" && providerID == booking.ProviderID
	return rel, nil
}

func (bs *BookingService) load(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := bs.bookings.GetBookingByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return nil, models.NotFound("booking not found")
		}
		return nil, models.Internal("failed to load booking", err)
	}
	return booking, nil
}

// Transition moves a booking to target on behalf of p. Only status and
// updated_at change.
func (bs *BookingService) Transition(ctx context.Context, p models.Principal, bookingID string, target models.BookingStatus) (*models.Booking, error) {
	var updated *models.Booking
	err := withLock(ctx, bs.locker, lock.BookingKey(bookingID), bs.lockWait, func() error {
		booking, err := bs.load(ctx, bookingID)
		if err != nil {
			return err
		}
		rel, err := bs.relationship(ctx, p, booking)
		if err != nil {
			return err
		}
		if !rel.IsOwner && !rel.IsProvider {
			return models.Forbidden("access denied")
		}
		if !target.Valid() {
			return models.InvalidInput(fmt.Sprintf("invalid booking status %q", target))
		}
		if err := AuthorizeTransition(p, rel, booking, target); err != nil {
			return err
		}

		updated, err = bs.bookings.UpdateBookingStatus(ctx, bookingID, booking.Status, target)
		switch {
		case errors.Is(err, models.ErrNoRecord):
			return models.NotFound("booking not found")
		case errors.Is(err, models.ErrStaleWrite):
			return models.Conflict("booking was modified concurrently, reload and retry")
		case err != nil:
			return models.Internal("failed to update booking", err)
		}

		metrics.RecordTransition(string(booking.Status), string(target))
		bs.logger.Info("booking transitioned",
			zap.String("booking_id", bookingID),
			zap.String("principal_id", p.ID),
			zap.String("from", string(booking.Status)),
			zap.String("to", string(target)),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (bs *BookingService) Get(ctx context.Context, p models.Principal, bookingID string) (*models.Booking, error) {
	booking, err := bs.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	rel, err := bs.relationship(ctx, p, booking)
	if err != nil {
		return nil, err
	}
	if !rel.IsOwner && !rel.IsProvider {
		return nil, models.Forbidden("access denied")
	}
	return booking, nil
}

func (bs *BookingService) ListForCustomer(ctx context.Context, p models.Principal, customerID string) ([]*models.Booking, error) {
	if p.ID != customerID {
		return nil, models.Forbidden("access denied")
	}
	bookings, err := bs.bookings.ListBookingsByCustomer(ctx, customerID)
	if err != nil {
		return nil, models.Internal("failed to list bookings", err)
	}
	return bookings, nil
}

func (bs *BookingService) ListForProvider(ctx context.Context, p models.Principal, providerID string) ([]*models.Booking, error) {
	owned, err := bs.providers.ResolveProviderByOwner(ctx, p.ID)
	if err != nil {
		return nil, models.Internal("failed to resolve mua profile", err)
	}
	if owned == "" || owned != providerID {
		return nil, models.Forbidden("access denied")
	}
	bookings, err := bs.bookings.ListBookingsByProvider(ctx, providerID)
	if err != nil {
		return nil, models.Internal("failed to list bookings", err)
	}
	return bookings, nil
}

// Admin surface ---------------------------------------------------------------

func (bs *BookingService) AdminList(ctx context.Context, offset, limit int) ([]*models.Booking, int64, error) {
	bookings, total, err := bs.bookings.ListBookings(ctx, offset, limit)
	if err != nil {
		return nil, 0, models.Internal("failed to list bookings", err)
	}
	return bookings, total, nil
}

func (bs *BookingService) AdminGet(ctx context.Context, bookingID string) (*models.Booking, error) {
	return bs.load(ctx, bookingID)
}

// Override applies an administrator edit. Ownership is not checked, but a
// status change must still follow the state machine and the amount never moves.
func (bs *BookingService) Override(ctx context.Context, admin models.Principal, bookingID string, o models.BookingOverride) (*models.Booking, error) {
	if o.Empty() {
		return nil, models.InvalidInput("no fields to update")
	}
	if o.Status != nil && !o.Status.Valid() {
		return nil, models.InvalidInput(fmt.Sprintf("invalid booking status %q", *o.Status))
	}
	if o.PaymentStatus != nil && !o.PaymentStatus.Valid() {
		return nil, models.InvalidInput(fmt.Sprintf("invalid payment status %q", *o.PaymentStatus))
	}

	var updated *models.Booking
	err := withLock(ctx, bs.locker, lock.BookingKey(bookingID), bs.lockWait, func() error {
		booking, err := bs.load(ctx, bookingID)
		if err != nil {
			return err
		}

		from := booking.Status
		if o.Status != nil {
			if *o.Status == from {
				o.Status = nil
			} else if !models.CanTransition(from, *o.Status) {
				return models.InvalidTransition(fmt.Sprintf("cannot move booking from %s to %s", from, *o.Status))
			}
		}

		updated, err = bs.bookings.ApplyBookingOverride(ctx, bookingID, o)
		if err != nil {
			if errors.Is(err, models.ErrNoRecord) {
				return models.NotFound("booking not found")
			}
			return models.Internal("failed to update booking", err)
		}

		fields := []zap.Field{zap.String("booking_id", bookingID), zap.String("admin_id", admin.ID)}
		if o.Status != nil {
			metrics.RecordTransition(string(from), string(*o.Status))
			fields = append(fields, zap.String("from", string(from)), zap.String("to", string(*o.Status)))
		}
		bs.logger.Info("booking overridden by admin", fields...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (bs *BookingService) AdminDelete(ctx context.Context, bookingID string) error {
	return withLock(ctx, bs.locker, lock.BookingKey(bookingID), bs.lockWait, func() error {
		if err := bs.bookings.DeleteBooking(ctx, bookingID); err != nil {
			if errors.Is(err, models.ErrNoRecord) {
				return models.NotFound("booking not found")
			}
			return models.Internal("failed to delete booking", err)
		}
		return nil
	})
}

func (bs *BookingService) Count(ctx context.Context, status models.BookingStatus) (int64, error) {
	n, err := bs.bookings.CountBookings(ctx, status)
	if err != nil {
		return 0, models.Internal("failed to count bookings", err)
	}
	return n, nil
}
