package services

import (
	"testing"

	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAuthorizeTransition(t *testing.T) {
	owner := Relationship{IsOwner: true}
	assigned := Relationship{IsProvider: true}
	none := Relationship{}

	tests := []struct {
		name   string
		p      models.Principal
		rel    Relationship
		from   models.BookingStatus
		target models.BookingStatus
		want   models.ErrorKind // empty means allowed
	}{
		{"owner cancels pending", customer, owner, models.BookingPending, models.BookingCancelled, ""},
		{"owner cancels confirmed", customer, owner, models.BookingConfirmed, models.BookingCancelled, models.KindForbidden},
		{"owner confirms", customer, owner, models.BookingPending, models.BookingConfirmed, models.KindForbidden},
		{"owner completes", customer, owner, models.BookingConfirmed, models.BookingCompleted, models.KindForbidden},
		{"stranger cancels", stranger, none, models.BookingPending, models.BookingCancelled, models.KindForbidden},
		{"provider confirms pending", provider, assigned, models.BookingPending, models.BookingConfirmed, ""},
		{"provider rejects pending", provider, assigned, models.BookingPending, models.BookingRejected, ""},
		{"provider cancels pending", provider, assigned, models.BookingPending, models.BookingCancelled, ""},
		{"provider completes confirmed", provider, assigned, models.BookingConfirmed, models.BookingCompleted, ""},
		{"provider cancels confirmed", provider, assigned, models.BookingConfirmed, models.BookingCancelled, ""},
		{"provider completes pending", provider, assigned, models.BookingPending, models.BookingCompleted, models.KindInvalidTransition},
		{"provider completes rejected", provider, assigned, models.BookingRejected, models.BookingCompleted, models.KindInvalidTransition},
		{"provider reopens cancelled", provider, assigned, models.BookingCancelled, models.BookingConfirmed, models.KindInvalidTransition},
		{"provider moves back to pending", provider, assigned, models.BookingConfirmed, models.BookingPending, models.KindForbidden},
		{"unassigned provider", provider, none, models.BookingPending, models.BookingConfirmed, models.KindForbidden},
		{"admin on user path", models.Principal{ID: "a1", Role: models.RoleAdmin}, owner, models.BookingPending, models.BookingCancelled, models.KindForbidden},
		{"unknown role", models.Principal{ID: customerID, Role: "customer "}, owner, models.BookingPending, models.BookingCancelled, models.KindForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := &models.Booking{ID: "b1", CustomerID: customerID, ProviderID: providerID, Status: tt.from}
			err := AuthorizeTransition(tt.p, tt.rel, booking, tt.target)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, models.KindOf(err))
		})
	}
}

func TestAuthorizeTransitionOwnerMessage(t *testing.T) {
	booking := &models.Booking{CustomerID: customerID, Status: models.BookingConfirmed}
	err := AuthorizeTransition(customer, Relationship{IsOwner: true}, booking, models.BookingCancelled)
	assert.Equal(t, "only the provider may change booking status", models.MessageOf(err))
}

// A provider who also placed the booking keeps provider rights.
func TestAuthorizeTransitionOwnerAndProvider(t *testing.T) {
	booking := &models.Booking{CustomerID: muaUserID, ProviderID: providerID, Status: models.BookingConfirmed}
	err := AuthorizeTransition(provider, Relationship{IsOwner: true, IsProvider: true}, booking, models.BookingCompleted)
	assert.NoError(t, err)
}
