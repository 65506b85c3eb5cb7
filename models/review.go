package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a guest's rating of a dinner they attended
type Review struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ListingID primitive.ObjectID `json:"listingId" bson:"listingId"`
	GuestID   primitive.ObjectID `json:"guestId" bson:"guestId"`
	HostID    primitive.ObjectID `json:"hostId" bson:"hostId"`
	Rating    int                `json:"rating" bson:"rating"` // 1 to 5
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ReviewRequest is the body for posting a review
type ReviewRequest struct {
	ListingID string `json:"listingId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,max=500"`
}

// ReviewUpdateRequest changes the rating, the comment, or both
type ReviewUpdateRequest struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,min=1,max=500"`
}

// HostRating summarizes the reviews a host received
type HostRating struct {
	Average float64 `json:"average" bson:"average"`
	Count   int64   `json:"count" bson:"count"`
}

// ReviewsResponse model for multiple reviews
type ReviewsResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    []Review `json:"data"`
}
