package models

import (
	"context"
	"time"
)

type MUACategory string

const (
	CategoryBridalTraditional MUACategory = "Bridal & Traditional"
	CategoryFashionEditorial  MUACategory = "Fashion & Editorial"
	CategoryBridalPhotoshoot  MUACategory = "Bridal & Photoshoot"
	CategoryPartyEvents       MUACategory = "Party & Events"
	CategoryNaturalDaily      MUACategory = "Natural & Daily"
	CategoryBridalLuxury      MUACategory = "Bridal & Luxury"
)

type Availability string

const (
	AvailabilityAvailable   Availability = "Available"
	AvailabilityBooked      Availability = "Booked"
	AvailabilityUnavailable Availability = "Unavailable"
)

// MUA is a makeup artist profile. Rating and ReviewsCount are derived from
// reviews and are only ever written by the rating aggregator.
type MUA struct {
	ID                    string       `bson:"id" json:"id"`
	UserID                string       `bson:"user_id" json:"user_id"`
	Name                  string       `bson:"name" json:"name" validate:"required"`
	Location              string       `bson:"location" json:"location" validate:"required"`
	Rating                float64      `bson:"rating" json:"rating"`
	ReviewsCount          int          `bson:"reviews_count" json:"reviews_count"`
	Category              MUACategory  `bson:"category" json:"category" validate:"required,oneof='Bridal & Traditional' 'Fashion & Editorial' 'Bridal & Photoshoot' 'Party & Events' 'Natural & Daily' 'Bridal & Luxury'"`
	MinPrice              float64      `bson:"min_price" json:"min_price" validate:"gte=0"`
	MaxPrice              float64      `bson:"max_price" json:"max_price" validate:"gtefield=MinPrice"`
	ProfilePhoto          string       `bson:"profile_photo" json:"profile_photo"`
	Portfolio             []string     `bson:"portfolio" json:"portfolio"`
	Specialty             string       `bson:"specialty" json:"specialty" validate:"required"`
	Availability          Availability `bson:"availability" json:"availability" validate:"omitempty,oneof=Available Booked Unavailable"`
	About                 string       `bson:"about" json:"about"`
	ExperienceYears       *int         `bson:"experience_years,omitempty" json:"experience_years,omitempty" validate:"omitempty,gte=0"`
	ExperienceDescription string       `bson:"experience_description" json:"experience_description"`
	Certifications        []string     `bson:"certifications" json:"certifications"`
	CreatedAt             time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time    `bson:"updated_at" json:"updated_at"`
}

// MUAFilter narrows the public directory listing. Zero values are ignored.
type MUAFilter struct {
	Location string
	Category MUACategory
	MinPrice *float64
	MaxPrice *float64
	Search   string
}

type MUARepo interface {
	// CreateMUA returns ErrDuplicate when the user already owns a profile.
	CreateMUA(ctx context.Context, mua *MUA) (*MUA, error)
	GetMUAByID(ctx context.Context, id string) (*MUA, error)
	GetMUAByUser(ctx context.Context, userID string) (*MUA, error)
	SearchMUAs(ctx context.Context, filter MUAFilter) ([]*MUA, error)
	ListMUAs(ctx context.Context, offset, limit int) ([]*MUA, int64, error)
	UpdateMUA(ctx context.Context, id string, fields map[string]interface{}) (*MUA, error)
	DeleteMUA(ctx context.Context, id string) error
	CountMUAs(ctx context.Context) (int64, error)

	ProviderExists(ctx context.Context, id string) (bool, error)
	// ResolveProviderByOwner returns the id of the profile owned by userID, or "" if none.
	ResolveProviderByOwner(ctx context.Context, userID string) (string, error)
	UpdateProviderRatingSummary(ctx context.Context, id string, summary RatingSummary) error
}

// MUAEditableFields are the profile fields an administrator may patch.
// Rating and reviews_count are absent on purpose: they are derived.
var MUAEditableFields = []string{
	"name", "location", "category", "min_price", "max_price", "profile_photo", "portfolio",
	"specialty", "availability", "about", "experience_years", "experience_description", "certifications",
}
