package models

import "time"

type Review struct {
	ID         string    `bson:"id" json:"id"`
	CustomerID string    `bson:"customer_id" json:"customer_id"`
	ProviderID string    `bson:"provider_id" json:"provider_id"`
	BookingID  string    `bson:"booking_id" json:"booking_id"`
	Rating     int       `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Comment    string    `bson:"comment" json:"comment"`
	IsApproved bool      `bson:"is_approved" json:"is_approved"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// ReviewInput keeps Rating as a float so that 4.5 can be rejected instead of truncated.
type ReviewInput struct {
	BookingID string  `json:"booking_id"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
}

// RatingSummary is the derived aggregate stored on a provider.
type RatingSummary struct {
	Rating       float64 `bson:"rating" json:"rating"`
	ReviewsCount int     `bson:"reviews_count" json:"reviews_count"`
}
