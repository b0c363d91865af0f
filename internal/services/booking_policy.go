package services

import (
	"fmt"

	"github.com/joshua-takyi/glamour/internal/models"
)

// Relationship is how a principal relates to one booking.
type Relationship struct {
	IsOwner    bool // placed the booking
	IsProvider bool // owns the MUA profile the booking is for
}

// providerTargets are the statuses the assigned provider may ask for.
// Whether the edge exists from the current status is checked separately.
var providerTargets = map[models.BookingStatus]bool{
	models.BookingConfirmed: true,
	models.BookingRejected:  true,
	models.BookingCompleted: true,
	models.BookingCancelled: true,
}

// AuthorizeTransition decides whether p may move booking to target. The first
// matching rule wins; a permitted request must still be a legal edge.
func AuthorizeTransition(p models.Principal, rel Relationship, booking *models.Booking, target models.BookingStatus) error {
	switch p.Role {
	case models.RoleCustomer, models.RoleMUA:
	case models.RoleAdmin, models.RoleSuperAdmin:
		return models.Forbidden("administrators change bookings through the admin endpoints")
	default:
		return models.Forbidden("access denied")
	}

	if !rel.IsOwner && !rel.IsProvider {
		return models.Forbidden("access denied")
	}

	switch {
	case rel.IsOwner && target == models.BookingCancelled && booking.Status == models.BookingPending:
	case rel.IsProvider && providerTargets[target]:
	default:
		return models.Forbidden("only the provider may change booking status")
	}

	if !models.CanTransition(booking.Status, target) {
		return models.InvalidTransition(fmt.Sprintf("cannot move booking from %s to %s", booking.Status, target))
	}
	return nil
}
