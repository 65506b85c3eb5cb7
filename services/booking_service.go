package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/logger"
	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/repositories"
)

// notifyTimeout bounds delivery of the notices one operation produced
const notifyTimeout = 15 * time.Second

// Notifier is the fire and forget notification collaborator
type Notifier interface {
	Notify(ctx context.Context, recipientID primitive.ObjectID, typ models.NotificationType, title, message string, data map[string]interface{}) bool
}

// BookingService owns every booking status change and the seat accounting
// on the listing it references. Changes to one listing are serialized
// through the ListingLocker and the store's conditional updates.
type BookingService struct {
	listings repositories.ListingStore
	bookings repositories.BookingStore
	notifier Notifier
	locker   ListingLocker
	now      func() time.Time
}

func NewBookingService(listings repositories.ListingStore, bookings repositories.BookingStore, notifier Notifier, locker ListingLocker) *BookingService {
	return &BookingService{
		listings: listings,
		bookings: bookings,
		notifier: notifier,
		locker:   locker,
		now:      time.Now,
	}
}

func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

// notice is a notification held back until the listing lock is released
type notice struct {
	recipient primitive.ObjectID
	typ       models.NotificationType
	message   string
	data      map[string]interface{}
}

// ListingCascade is the outcome of cancelling or deleting a listing
type ListingCascade struct {
	Listing           *models.Listing
	BookingsCancelled int
	NotificationsSent int
}

// Create records a pending booking request. No seats are reserved.
func (s *BookingService) Create(ctx context.Context, listingID, guestID primitive.ObjectID, numberOfGuests int, specialRequests string) (*models.Booking, error) {
	if numberOfGuests < 1 {
		return nil, newError(ErrValidation, "Number of guests must be at least 1")
	}

	var booking *models.Booking
	_, err := s.withListing(ctx, listingID, func() ([]notice, error) {
		listing, err := s.getListing(ctx, listingID)
		if err != nil {
			return nil, err
		}
		if listing.Status == models.ListingCancelled {
			return nil, newError(ErrInvalidState, "This dinner has been cancelled")
		}

		now := s.now()
		booking = &models.Booking{
			ListingID:       listing.ID,
			GuestID:         guestID,
			HostID:          listing.HostID,
			NumberOfGuests:  numberOfGuests,
			SpecialRequests: specialRequests,
			Status:          models.BookingPending,
			TotalPrice:      listing.Price * float64(numberOfGuests),
			UnreadByHost:    true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.bookings.CreateBooking(ctx, booking); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return nil, newError(ErrConflict, "You already have an active booking for this dinner")
			}
			return nil, err
		}

		return []notice{{
			recipient: booking.HostID,
			typ:       models.NotificationBookingRequest,
			message:   fmt.Sprintf("New booking request for %q (%d guests)", listing.Title, numberOfGuests),
			data:      bookingData(booking),
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// Approve confirms a pending booking and reserves its seats
func (s *BookingService) Approve(ctx context.Context, bookingID, hostID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.HostID != hostID {
		return nil, newError(ErrForbidden, "Not authorized to approve this booking")
	}
	if _, err := models.NextBookingStatus(booking.Status, models.EventApprove); err != nil {
		return nil, newError(ErrInvalidState, "Booking cannot be approved from status %s", booking.Status)
	}

	var confirmed *models.Booking
	_, err = s.withListing(ctx, booking.ListingID, func() ([]notice, error) {
		// state may have moved while we waited on the lock
		booking, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		next, err := models.NextBookingStatus(booking.Status, models.EventApprove)
		if err != nil {
			return nil, newError(ErrInvalidState, "Booking cannot be approved from status %s", booking.Status)
		}

		listing, err := s.getListing(ctx, booking.ListingID)
		if err != nil {
			return nil, err
		}
		if listing.Status == models.ListingCancelled {
			return nil, newError(ErrInvalidState, "This dinner has been cancelled")
		}
		if listing.CurrentGuests+booking.NumberOfGuests > listing.MaxGuests {
			return nil, capacityError(listing.Remaining())
		}

		listing, err = s.listings.ReserveSeats(ctx, booking.ListingID, booking.NumberOfGuests)
		if err != nil {
			return nil, s.reserveError(ctx, booking.ListingID, err)
		}

		confirmed, err = s.bookings.TransitionBooking(ctx, booking.ID, repositories.BookingTransition{
			From:          booking.Status,
			Version:       booking.Version,
			To:            next,
			UnreadByHost:  false,
			UnreadByGuest: true,
		})
		if err != nil {
			s.compensateReserve(booking)
			if errors.Is(err, repositories.ErrConditionFailed) {
				return nil, newError(ErrInvalidState, "Booking was modified by another request")
			}
			return nil, err
		}

		return []notice{{
			recipient: confirmed.GuestID,
			typ:       models.NotificationBookingConfirmed,
			message:   fmt.Sprintf("Your booking for %q has been confirmed", listing.Title),
			data:      bookingData(confirmed),
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// Reject declines a pending booking. No seats were held so none are released.
func (s *BookingService) Reject(ctx context.Context, bookingID, hostID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.HostID != hostID {
		return nil, newError(ErrForbidden, "Not authorized to reject this booking")
	}
	if _, err := models.NextBookingStatus(booking.Status, models.EventReject); err != nil {
		return nil, newError(ErrInvalidState, "Booking cannot be rejected from status %s", booking.Status)
	}

	var rejected *models.Booking
	_, err = s.withListing(ctx, booking.ListingID, func() ([]notice, error) {
		booking, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		next, err := models.NextBookingStatus(booking.Status, models.EventReject)
		if err != nil {
			return nil, newError(ErrInvalidState, "Booking cannot be rejected from status %s", booking.Status)
		}

		rejected, err = s.bookings.TransitionBooking(ctx, booking.ID, repositories.BookingTransition{
			From:          booking.Status,
			Version:       booking.Version,
			To:            next,
			UnreadByHost:  false,
			UnreadByGuest: true,
		})
		if err != nil {
			if errors.Is(err, repositories.ErrConditionFailed) {
				return nil, newError(ErrInvalidState, "Booking was modified by another request")
			}
			return nil, err
		}

		return []notice{{
			recipient: rejected.GuestID,
			typ:       models.NotificationBookingRejected,
			message:   fmt.Sprintf("Your booking for %q has been declined", s.listingTitle(ctx, rejected.ListingID)),
			data:      bookingData(rejected),
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// Cancel withdraws a guest's pending or confirmed booking. Seats held by a
// confirmed booking go back to the listing. The record is kept as history.
func (s *BookingService) Cancel(ctx context.Context, bookingID, guestID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != guestID {
		return nil, newError(ErrForbidden, "Not authorized")
	}
	if _, err := models.NextBookingStatus(booking.Status, models.EventCancel); err != nil {
		return nil, newError(ErrInvalidState, "Booking cannot be cancelled from status %s", booking.Status)
	}

	var cancelled *models.Booking
	_, err = s.withListing(ctx, booking.ListingID, func() ([]notice, error) {
		booking, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		next, err := models.NextBookingStatus(booking.Status, models.EventCancel)
		if err != nil {
			return nil, newError(ErrInvalidState, "Booking cannot be cancelled from status %s", booking.Status)
		}

		cancelled, err = s.bookings.TransitionBooking(ctx, booking.ID, repositories.BookingTransition{
			From:          booking.Status,
			Version:       booking.Version,
			To:            next,
			UnreadByHost:  true,
			UnreadByGuest: false,
		})
		if err != nil {
			if errors.Is(err, repositories.ErrConditionFailed) {
				return nil, newError(ErrInvalidState, "Booking was modified by another request")
			}
			return nil, err
		}

		title := "your dinner"
		if booking.Status == models.BookingConfirmed {
			listing, err := s.listings.ReleaseSeats(ctx, booking.ListingID, booking.NumberOfGuests)
			switch {
			case err == nil:
				title = listing.Title
			case errors.Is(err, repositories.ErrNotFound):
				// listing already removed, nothing to release
			default:
				s.compensateCancel(booking, cancelled)
				return nil, err
			}
		} else {
			title = s.listingTitle(ctx, booking.ListingID)
		}

		return []notice{{
			recipient: cancelled.HostID,
			typ:       models.NotificationBookingCancelled,
			message:   fmt.Sprintf("A guest cancelled their booking for %q", title),
			data:      bookingData(cancelled),
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// UpdateGuestCount changes the party size of a pending booking
func (s *BookingService) UpdateGuestCount(ctx context.Context, bookingID, guestID primitive.ObjectID, newCount int, specialRequests *string) (*models.Booking, error) {
	if newCount < 1 {
		return nil, newError(ErrValidation, "Number of guests must be at least 1")
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != guestID {
		return nil, newError(ErrForbidden, "Not authorized")
	}
	if _, err := models.NextBookingStatus(booking.Status, models.EventAmend); err != nil {
		return nil, newError(ErrInvalidState, "Only pending bookings can be updated")
	}

	var updated *models.Booking
	_, err = s.withListing(ctx, booking.ListingID, func() ([]notice, error) {
		booking, err := s.getBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if _, err := models.NextBookingStatus(booking.Status, models.EventAmend); err != nil {
			return nil, newError(ErrInvalidState, "Only pending bookings can be updated")
		}

		listing, err := s.getListing(ctx, booking.ListingID)
		if err != nil {
			return nil, err
		}
		if listing.Status == models.ListingCancelled {
			return nil, newError(ErrInvalidState, "This dinner has been cancelled")
		}
		if diff := newCount - booking.NumberOfGuests; diff > 0 && listing.CurrentGuests+diff > listing.MaxGuests {
			return nil, capacityError(listing.Remaining())
		}

		updated, err = s.bookings.AmendBooking(ctx, booking.ID, repositories.BookingAmendment{
			Version:         booking.Version,
			NumberOfGuests:  newCount,
			TotalPrice:      listing.Price * float64(newCount),
			SpecialRequests: specialRequests,
		})
		if err != nil {
			if errors.Is(err, repositories.ErrConditionFailed) {
				return nil, newError(ErrInvalidState, "Booking was modified by another request")
			}
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CancelListing closes a listing and cancels every active booking on it
func (s *BookingService) CancelListing(ctx context.Context, listingID, hostID primitive.ObjectID) (*ListingCascade, error) {
	listing, err := s.ownedListing(ctx, listingID, hostID)
	if err != nil {
		return nil, err
	}
	if listing.Status == models.ListingCancelled {
		return nil, newError(ErrInvalidState, "This dinner is already cancelled")
	}

	result := &ListingCascade{}
	sent, err := s.withListing(ctx, listingID, func() ([]notice, error) {
		closed, bookings, err := s.closeListing(ctx, listingID)
		if err != nil {
			return nil, err
		}
		result.Listing = closed
		result.BookingsCancelled = s.cancelBookings(ctx, closed, bookings)
		return cascadeNotices(closed, bookings, result.BookingsCancelled, models.NotificationDinnerCancelled,
			fmt.Sprintf("The dinner %q has been cancelled by the host", closed.Title)), nil
	})
	if err != nil {
		return nil, err
	}
	result.NotificationsSent = sent
	return result, nil
}

// DeleteListing cancels every active booking and removes the listing.
// Bookings stay behind as cancelled history.
func (s *BookingService) DeleteListing(ctx context.Context, listingID, hostID primitive.ObjectID) (*ListingCascade, error) {
	if _, err := s.ownedListing(ctx, listingID, hostID); err != nil {
		return nil, err
	}

	result := &ListingCascade{}
	sent, err := s.withListing(ctx, listingID, func() ([]notice, error) {
		closed, bookings, err := s.closeListing(ctx, listingID)
		if err != nil {
			return nil, err
		}
		result.Listing = closed
		result.BookingsCancelled = s.cancelBookings(ctx, closed, bookings)

		if err := s.listings.DeleteListing(ctx, listingID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		return cascadeNotices(closed, bookings, result.BookingsCancelled, models.NotificationDinnerDeleted,
			fmt.Sprintf("The dinner %q has been deleted by the host", closed.Title)), nil
	})
	if err != nil {
		return nil, err
	}
	result.NotificationsSent = sent
	return result, nil
}

// closeListing snapshots the bookings of a listing and marks it cancelled
func (s *BookingService) closeListing(ctx context.Context, listingID primitive.ObjectID) (*models.Listing, []models.Booking, error) {
	bookings, err := s.bookings.ListBookings(ctx, repositories.BookingFilter{ListingID: &listingID})
	if err != nil {
		return nil, nil, err
	}
	closed, err := s.listings.CloseListing(ctx, listingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, newError(ErrNotFound, "Dinner not found")
		}
		return nil, nil, err
	}
	return closed, bookings, nil
}

// cancelBookings moves the active bookings of a closed listing to cancelled
// and returns how many it changed
func (s *BookingService) cancelBookings(ctx context.Context, listing *models.Listing, bookings []models.Booking) int {
	cancelled := 0
	for _, b := range bookings {
		if !b.Status.IsActive() {
			continue
		}
		next, err := models.NextBookingStatus(b.Status, models.EventListingClosed)
		if err != nil {
			continue
		}
		_, err = s.bookings.TransitionBooking(ctx, b.ID, repositories.BookingTransition{
			From:          b.Status,
			Version:       b.Version,
			To:            next,
			UnreadByHost:  false,
			UnreadByGuest: true,
		})
		if err != nil {
			logger.ErrorLogger.WithFields(logrus.Fields{
				"booking": b.ID.Hex(),
				"listing": listing.ID.Hex(),
			}).WithError(err).Error("failed to cancel booking of closed listing")
			continue
		}
		cancelled++
	}
	return cancelled
}

// cascadeNotices addresses the host once and the guest of every booking that
// referenced the listing
func cascadeNotices(listing *models.Listing, bookings []models.Booking, cancelled int, typ models.NotificationType, message string) []notice {
	notices := make([]notice, 0, len(bookings)+1)
	notices = append(notices, notice{
		recipient: listing.HostID,
		typ:       typ,
		message:   fmt.Sprintf("%s. %d bookings were affected.", message, cancelled),
		data:      map[string]interface{}{"listingId": listing.ID.Hex()},
	})
	for i := range bookings {
		notices = append(notices, notice{
			recipient: bookings[i].GuestID,
			typ:       typ,
			message:   message,
			data:      bookingData(&bookings[i]),
		})
	}
	return notices
}

// GetBooking returns a booking visible to its guest or host
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actorID primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != actorID && booking.HostID != actorID {
		return nil, newError(ErrForbidden, "Not authorized")
	}
	return booking, nil
}

// GuestBookings lists the bookings made by guestID, newest first
func (s *BookingService) GuestBookings(ctx context.Context, guestID primitive.ObjectID) ([]models.Booking, error) {
	return s.bookings.ListBookings(ctx, repositories.BookingFilter{GuestID: &guestID})
}

// HostBookings lists the bookings on hostID's listings, optionally by status
func (s *BookingService) HostBookings(ctx context.Context, hostID primitive.ObjectID, statuses ...models.BookingStatus) ([]models.Booking, error) {
	return s.bookings.ListBookings(ctx, repositories.BookingFilter{HostID: &hostID, Statuses: statuses})
}

func (s *BookingService) lock(ctx context.Context, listingID primitive.ObjectID) (func(), error) {
	unlock, err := s.locker.Lock(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("lock listing %s: %w", listingID.Hex(), err)
	}
	return unlock, nil
}

// withListing runs fn while holding the listing lock. The notices fn returns
// are delivered after the lock is released; the count delivered is returned.
func (s *BookingService) withListing(ctx context.Context, listingID primitive.ObjectID, fn func() ([]notice, error)) (int, error) {
	unlock, err := s.lock(ctx, listingID)
	if err != nil {
		return 0, err
	}
	notices, err := func() ([]notice, error) {
		defer unlock()
		return fn()
	}()
	if err != nil {
		return 0, err
	}
	return s.send(ctx, notices), nil
}

// send delivers notices on a deadline of their own, detached from the
// request that produced them
func (s *BookingService) send(ctx context.Context, notices []notice) int {
	if len(notices) == 0 {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	sent := 0
	for _, n := range notices {
		if s.notifier.Notify(ctx, n.recipient, n.typ, "", n.message, n.data) {
			sent++
		}
	}
	return sent
}

func (s *BookingService) getBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(ErrNotFound, "Booking not found")
	}
	return booking, err
}

func (s *BookingService) getListing(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	listing, err := s.listings.GetListing(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(ErrNotFound, "Dinner not found")
	}
	return listing, err
}

func (s *BookingService) ownedListing(ctx context.Context, listingID, hostID primitive.ObjectID) (*models.Listing, error) {
	listing, err := s.getListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.HostID != hostID {
		return nil, newError(ErrForbidden, "Not authorized")
	}
	return listing, nil
}

func (s *BookingService) listingTitle(ctx context.Context, id primitive.ObjectID) string {
	listing, err := s.listings.GetListing(ctx, id)
	if err != nil {
		return "your dinner"
	}
	return listing.Title
}

// reserveError explains why the conditional seat reservation matched nothing
func (s *BookingService) reserveError(ctx context.Context, listingID primitive.ObjectID, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return newError(ErrNotFound, "Dinner not found")
	case errors.Is(err, repositories.ErrConditionFailed):
		listing, getErr := s.getListing(ctx, listingID)
		if getErr != nil {
			return getErr
		}
		if listing.Status == models.ListingCancelled {
			return newError(ErrInvalidState, "This dinner has been cancelled")
		}
		return capacityError(listing.Remaining())
	}
	return err
}

// compensateReserve hands back seats reserved for a booking whose status
// change lost the race
func (s *BookingService) compensateReserve(booking *models.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.listings.ReleaseSeats(ctx, booking.ListingID, booking.NumberOfGuests); err != nil {
		logger.ErrorLogger.WithFields(logrus.Fields{
			"booking": booking.ID.Hex(),
			"listing": booking.ListingID.Hex(),
			"seats":   booking.NumberOfGuests,
		}).WithError(err).Error("failed to release seats after lost approval")
	}
}

// compensateCancel restores a confirmed booking whose seats could not be released
func (s *BookingService) compensateCancel(before, after *models.Booking) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.bookings.TransitionBooking(ctx, after.ID, repositories.BookingTransition{
		From:          after.Status,
		Version:       after.Version,
		To:            before.Status,
		UnreadByHost:  before.UnreadByHost,
		UnreadByGuest: before.UnreadByGuest,
	})
	if err != nil {
		logger.ErrorLogger.WithFields(logrus.Fields{
			"booking": before.ID.Hex(),
			"listing": before.ListingID.Hex(),
		}).WithError(err).Error("failed to restore booking after seat release error")
	}
}

func bookingData(b *models.Booking) map[string]interface{} {
	return map[string]interface{}{
		"bookingId":      b.ID.Hex(),
		"listingId":      b.ListingID.Hex(),
		"status":         string(b.Status),
		"numberOfGuests": b.NumberOfGuests,
	}
}
