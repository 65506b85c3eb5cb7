package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/models"
)

var (
	// ErrNotFound is returned when no document matches the id
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a write collides with a unique index
	ErrDuplicate = errors.New("duplicate document")
	// ErrConditionFailed is returned when a conditional update matched nothing
	ErrConditionFailed = errors.New("update condition not met")
)

// ListingFilter narrows a listing query
type ListingFilter struct {
	HostID        *primitive.ObjectID
	Statuses      []models.ListingStatus
	ExcludeStatus models.ListingStatus
	From          *time.Time
	To            *time.Time
	Limit         int64
}

// ListingChanges carries the host-editable fields of a listing
type ListingChanges struct {
	Title               string
	Description         string
	Date                time.Time
	Time                string
	Price               float64
	MaxGuests           int
	Location            models.ListingLocation
	Menu                []models.MenuItem
	Cuisine             string
	DietaryRestrictions []string
}

// ListingStore persists dinner listings. Seat counters only change through
// ReserveSeats, ReleaseSeats and CloseListing, each evaluated atomically.
type ListingStore interface {
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListing(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]models.Listing, error)
	// UpdateListing applies changes unless the listing is cancelled or the
	// new capacity is below the seats already confirmed.
	UpdateListing(ctx context.Context, id primitive.ObjectID, changes ListingChanges) (*models.Listing, error)
	// ReserveSeats adds n confirmed seats only if the result stays within
	// maxGuests and the listing is not cancelled.
	ReserveSeats(ctx context.Context, id primitive.ObjectID, n int) (*models.Listing, error)
	// ReleaseSeats removes n confirmed seats, flooring at zero.
	ReleaseSeats(ctx context.Context, id primitive.ObjectID, n int) (*models.Listing, error)
	// CloseListing marks the listing cancelled and clears its seat counter.
	CloseListing(ctx context.Context, id primitive.ObjectID) (*models.Listing, error)
	DeleteListing(ctx context.Context, id primitive.ObjectID) error
}

// BookingFilter narrows a booking query
type BookingFilter struct {
	ListingID *primitive.ObjectID
	GuestID   *primitive.ObjectID
	HostID    *primitive.ObjectID
	Statuses  []models.BookingStatus
}

// BookingTransition is a compare-and-swap on a booking's status
type BookingTransition struct {
	From          models.BookingStatus
	Version       int64
	To            models.BookingStatus
	UnreadByHost  bool
	UnreadByGuest bool
}

// BookingAmendment is a compare-and-swap on a pending booking's seat count
type BookingAmendment struct {
	Version         int64
	NumberOfGuests  int
	TotalPrice      float64
	SpecialRequests *string
}

// BookingStore persists bookings
type BookingStore interface {
	// CreateBooking fails with ErrDuplicate when the guest already holds an
	// active booking on the same listing.
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	TransitionBooking(ctx context.Context, id primitive.ObjectID, t BookingTransition) (*models.Booking, error)
	AmendBooking(ctx context.Context, id primitive.ObjectID, a BookingAmendment) (*models.Booking, error)
}

// NotificationStore persists in-app notifications
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, recipientID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	DeleteNotification(ctx context.Context, id, recipientID primitive.ObjectID) error
}

// ProfileChanges carries the self-editable user fields; nil leaves a field alone
type ProfileChanges struct {
	Name     *string
	Phone    *string
	Bio      *string
	Location *string
}

// UserStore persists marketplace accounts
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// ListUsersByRole returns users granted role, ordered by name
	ListUsersByRole(ctx context.Context, role string) ([]models.User, error)
	UpdateRoles(ctx context.Context, id primitive.ObjectID, roles []string, activeRole string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, changes ProfileChanges) (*models.User, error)
	UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error
}

// ReviewFilter narrows a review query
type ReviewFilter struct {
	ListingID *primitive.ObjectID
	HostID    *primitive.ObjectID
}

// ReviewChanges carries an author's edit; nil leaves a field alone
type ReviewChanges struct {
	Rating  *int
	Comment *string
}

// ReviewStore persists dinner reviews
type ReviewStore interface {
	// CreateReview fails with ErrDuplicate when the guest already reviewed
	// the listing.
	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	// ListReviews returns matching reviews, newest first
	ListReviews(ctx context.Context, filter ReviewFilter) ([]models.Review, error)
	UpdateReview(ctx context.Context, id primitive.ObjectID, changes ReviewChanges) (*models.Review, error)
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
	HostRating(ctx context.Context, hostID primitive.ObjectID) (models.HostRating, error)
}

// Store bundles every collection the service needs
type Store interface {
	ListingStore
	BookingStore
	NotificationStore
	UserStore
	ReviewStore
}
