package models

import (
	"context"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// bookingEdges is the whole state machine. Statuses without an entry are terminal.
var bookingEdges = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingRejected, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingRejected, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

func (s BookingStatus) Terminal() bool {
	return s.Valid() && len(bookingEdges[s]) == 0
}

// CanTransition reports whether from -> to is an edge of the booking state machine.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

type Booking struct {
	ID            string        `bson:"id" json:"id"`
	CustomerID    string        `bson:"customer_id" json:"customer_id"`
	ProviderID    string        `bson:"provider_id" json:"provider_id"`
	ServiceName   string        `bson:"service_name" json:"service_name"`
	ScheduledDate time.Time     `bson:"scheduled_date" json:"scheduled_date"`
	ScheduledTime string        `bson:"scheduled_time" json:"scheduled_time"`
	Location      string        `bson:"location" json:"location"`
	Notes         string        `bson:"notes" json:"notes"`
	TotalAmount   float64       `bson:"total_amount" json:"total_amount"`
	Status        BookingStatus `bson:"status" json:"status"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updated_at"`
}

// BookingInput is what a customer submits. TotalAmount is a pointer so that a
// missing amount and an amount of zero can be told apart.
type BookingInput struct {
	ProviderID    string    `json:"provider_id" validate:"required"`
	ServiceName   string    `json:"service_name" validate:"required"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
	ScheduledTime string    `json:"scheduled_time" validate:"required"`
	Location      string    `json:"location" validate:"required"`
	Notes         string    `json:"notes"`
	TotalAmount   *float64  `json:"total_amount" validate:"required,gte=0"`
}

// BookingOverride carries the fields an administrator may change. Nil means untouched.
type BookingOverride struct {
	Status        *BookingStatus `json:"status,omitempty"`
	Location      *string        `json:"location,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	PaymentStatus *PaymentStatus `json:"payment_status,omitempty"`
}

func (o BookingOverride) Empty() bool {
	return o.Status == nil && o.Location == nil && o.Notes == nil && o.PaymentStatus == nil
}

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id string) (*Booking, error)
	ListBookingsByCustomer(ctx context.Context, customerID string) ([]*Booking, error)
	ListBookingsByProvider(ctx context.Context, providerID string) ([]*Booking, error)
	// UpdateBookingStatus writes to only if the stored status is still from.
	// It returns ErrStaleWrite when the status moved underneath the caller.
	UpdateBookingStatus(ctx context.Context, id string, from, to BookingStatus) (*Booking, error)
	ApplyBookingOverride(ctx context.Context, id string, override BookingOverride) (*Booking, error)
	ListBookings(ctx context.Context, offset, limit int) ([]*Booking, int64, error)
	DeleteBooking(ctx context.Context, id string) error
	// CountBookings counts bookings in status, or all bookings when status is empty.
	CountBookings(ctx context.Context, status BookingStatus) (int64, error)
}
