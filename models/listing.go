// models/listing.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListingStatus is the availability state of a dinner listing
type ListingStatus string

const (
	ListingAvailable ListingStatus = "available"
	ListingFull      ListingStatus = "full"
	ListingCancelled ListingStatus = "cancelled"
)

// ListingLocation is where the dinner takes place
type ListingLocation struct {
	Address string `json:"address" bson:"address"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	State   string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
}

// MenuItem is one course served at a dinner
type MenuItem struct {
	Name        string `json:"name" bson:"name" validate:"required"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Listing model
type Listing struct {
	ID                  primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	HostID              primitive.ObjectID `json:"hostId" bson:"hostId"`
	Title               string             `json:"title" bson:"title"`
	Description         string             `json:"description" bson:"description"`
	Date                time.Time          `json:"date" bson:"date"`
	Time                string             `json:"time" bson:"time"`
	Price               float64            `json:"price" bson:"price"`
	MaxGuests           int                `json:"maxGuests" bson:"maxGuests"`
	CurrentGuests       int                `json:"currentGuests" bson:"currentGuests"`
	Status              ListingStatus      `json:"status" bson:"status"` // "available", "full", "cancelled"
	Location            ListingLocation    `json:"location" bson:"location"`
	Menu                []MenuItem         `json:"menu,omitempty" bson:"menu,omitempty"`
	Cuisine             string             `json:"cuisine" bson:"cuisine"`
	DietaryRestrictions []string           `json:"dietaryRestrictions,omitempty" bson:"dietaryRestrictions,omitempty"`
	CreatedAt           time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Remaining returns the number of seats still open
func (l *Listing) Remaining() int {
	if l.Status == ListingCancelled {
		return 0
	}
	if r := l.MaxGuests - l.CurrentGuests; r > 0 {
		return r
	}
	return 0
}

// OccupancyStatus derives the status implied by the seat counters.
// A cancelled listing stays cancelled.
func OccupancyStatus(current ListingStatus, currentGuests, maxGuests int) ListingStatus {
	if current == ListingCancelled {
		return ListingCancelled
	}
	if currentGuests >= maxGuests {
		return ListingFull
	}
	return ListingAvailable
}

// ListingRequest is the body for creating or updating a listing
type ListingRequest struct {
	Title               string          `json:"title" validate:"required,max=200"`
	Description         string          `json:"description" validate:"required"`
	Date                time.Time       `json:"date" validate:"required"`
	Time                string          `json:"time" validate:"required"`
	Price               float64         `json:"price" validate:"gte=0"`
	MaxGuests           int             `json:"maxGuests" validate:"required,min=1"`
	Location            ListingLocation `json:"location"`
	Menu                []MenuItem      `json:"menu" validate:"dive"`
	Cuisine             string          `json:"cuisine" validate:"required"`
	DietaryRestrictions []string        `json:"dietaryRestrictions"`
}

// ListingResponse model
type ListingResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    *Listing `json:"data,omitempty"`
}

// ListingsResponse model for multiple listings
type ListingsResponse struct {
	Status  int       `json:"status"`
	Message string    `json:"message"`
	Data    []Listing `json:"data"`
}

// ListingCascadeResponse reports the outcome of cancelling or deleting a listing
type ListingCascadeResponse struct {
	Status            int      `json:"status"`
	Message           string   `json:"message"`
	Data              *Listing `json:"data,omitempty"`
	BookingsCancelled int      `json:"bookingsCancelled"`
	NotificationsSent int      `json:"notificationsSent"`
}
