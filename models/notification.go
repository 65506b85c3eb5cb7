package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType identifies the lifecycle event a notification reports
type NotificationType string

const (
	NotificationBookingRequest   NotificationType = "booking_request"
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationBookingRejected  NotificationType = "booking_rejected"
	NotificationDinnerCancelled  NotificationType = "dinner_cancelled"
	NotificationDinnerDeleted    NotificationType = "dinner_deleted"
	NotificationReview           NotificationType = "review"
	NotificationSystem           NotificationType = "system"
)

// Valid reports whether t is a known notification type
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationBookingRequest, NotificationBookingConfirmed, NotificationBookingCancelled,
		NotificationBookingRejected, NotificationDinnerCancelled, NotificationDinnerDeleted,
		NotificationReview, NotificationSystem:
		return true
	}
	return false
}

// Lifecycle reports whether t is raised only by booking and dinner changes
func (t NotificationType) Lifecycle() bool {
	return t.Valid() && t != NotificationReview && t != NotificationSystem
}

// DefaultTitle returns the title used when a caller does not provide one
func (t NotificationType) DefaultTitle() string {
	switch t {
	case NotificationBookingRequest:
		return "New Booking Request"
	case NotificationBookingConfirmed:
		return "Booking Confirmed"
	case NotificationBookingCancelled:
		return "Booking Cancelled"
	case NotificationBookingRejected:
		return "Booking Rejected"
	case NotificationDinnerCancelled:
		return "Dinner Cancelled"
	case NotificationDinnerDeleted:
		return "Dinner Deleted"
	case NotificationReview:
		return "New Review"
	case NotificationSystem:
		return "System Notification"
	default:
		return "Notification"
	}
}

// Notification model
type Notification struct {
	ID          primitive.ObjectID     `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID primitive.ObjectID     `json:"recipientId" bson:"recipientId"` // The user who receives the notification
	Type        NotificationType       `json:"type" bson:"type"`
	Title       string                 `json:"title" bson:"title"`
	Message     string                 `json:"message" bson:"message"`
	Data        map[string]interface{} `json:"data,omitempty" bson:"data,omitempty"`
	Read        bool                   `json:"read" bson:"read"`
	CreatedAt   time.Time              `json:"createdAt" bson:"createdAt"`
}

// CreateNotificationRequest represents the request body for posting a notification
type CreateNotificationRequest struct {
	RecipientID string                 `json:"recipient,omitempty"`
	Type        NotificationType       `json:"type" validate:"required"`
	Title       string                 `json:"title,omitempty" validate:"max=200"`
	Message     string                 `json:"message" validate:"required,max=2000"`
	Data        map[string]interface{} `json:"data,omitempty"`
}
