package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus is the lifecycle state of a booking
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// IsActive reports whether the booking still holds or requests seats
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

// BookingEvent is something that happens to a booking
type BookingEvent string

const (
	EventApprove       BookingEvent = "approve"
	EventReject        BookingEvent = "reject"
	EventCancel        BookingEvent = "cancel"
	EventAmend         BookingEvent = "amend"
	EventListingClosed BookingEvent = "listing_closed"
)

// ErrIllegalTransition is returned when an event is not allowed from the current status
var ErrIllegalTransition = errors.New("illegal booking transition")

// BookingTransitionRule is one allowed edge of the booking state machine
type BookingTransitionRule struct {
	From  BookingStatus
	Event BookingEvent
	To    BookingStatus
}

var bookingTransitions = []BookingTransitionRule{
	{From: BookingPending, Event: EventApprove, To: BookingConfirmed},
	{From: BookingPending, Event: EventReject, To: BookingRejected},
	{From: BookingPending, Event: EventCancel, To: BookingCancelled},
	{From: BookingPending, Event: EventAmend, To: BookingPending},
	{From: BookingPending, Event: EventListingClosed, To: BookingCancelled},

	// confirmed is cancellable by the guest or by the listing going away
	{From: BookingConfirmed, Event: EventCancel, To: BookingCancelled},
	{From: BookingConfirmed, Event: EventListingClosed, To: BookingCancelled},
}

// NextBookingStatus applies event to current and returns the resulting status
func NextBookingStatus(current BookingStatus, event BookingEvent) (BookingStatus, error) {
	for _, rule := range bookingTransitions {
		if rule.From == current && rule.Event == event {
			return rule.To, nil
		}
	}
	return current, ErrIllegalTransition
}

// BookingTransitions returns a copy of the transition table
func BookingTransitions() []BookingTransitionRule {
	out := make([]BookingTransitionRule, len(bookingTransitions))
	copy(out, bookingTransitions)
	return out
}

// Booking model
type Booking struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ListingID       primitive.ObjectID `json:"listingId" bson:"listingId"`
	GuestID         primitive.ObjectID `json:"guestId" bson:"guestId"`
	HostID          primitive.ObjectID `json:"hostId" bson:"hostId"` // copied from the listing at creation, never rewritten
	NumberOfGuests  int                `json:"numberOfGuests" bson:"numberOfGuests"`
	SpecialRequests string             `json:"specialRequests,omitempty" bson:"specialRequests,omitempty"`
	Status          BookingStatus      `json:"status" bson:"status"` // "pending", "confirmed", "rejected", "cancelled"
	TotalPrice      float64            `json:"totalPrice" bson:"totalPrice"`
	UnreadByHost    bool               `json:"unreadByHost" bson:"unreadByHost"`
	UnreadByGuest   bool               `json:"unreadByGuest" bson:"unreadByGuest"`
	Active          bool               `json:"-" bson:"active"`
	Version         int64              `json:"version" bson:"version"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// BookingRequest model
type BookingRequest struct {
	ListingID       string `json:"listingId" validate:"required"`
	NumberOfGuests  int    `json:"numberOfGuests"`
	SpecialRequests string `json:"specialRequests,omitempty" validate:"max=1000"`
}

// BookingUpdateRequest model for changing a pending booking
type BookingUpdateRequest struct {
	NumberOfGuests  int     `json:"numberOfGuests"`
	SpecialRequests *string `json:"specialRequests,omitempty"`
}

// BookingResponse model
type BookingResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	Data    *Booking `json:"data,omitempty"`
}

// BookingsResponse model for multiple bookings
type BookingsResponse struct {
	Status  int       `json:"status"`
	Message string    `json:"message"`
	Data    []Booking `json:"data"`
}
