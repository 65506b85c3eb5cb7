package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/repositories"
)

// ReviewService lets guests rate dinners they had a confirmed seat at
type ReviewService struct {
	reviews  repositories.ReviewStore
	bookings repositories.BookingStore
	listings repositories.ListingStore
	notifier Notifier
	now      func() time.Time
}

func NewReviewService(reviews repositories.ReviewStore, bookings repositories.BookingStore, listings repositories.ListingStore, notifier Notifier) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		listings: listings,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *ReviewService) WithClock(now func() time.Time) *ReviewService {
	s.now = now
	return s
}

// Create records guestID's review of a dinner and tells the host about it
func (s *ReviewService) Create(ctx context.Context, guestID, listingID primitive.ObjectID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, newError(ErrValidation, "Rating must be between 1 and 5")
	}
	if comment == "" {
		return nil, newError(ErrValidation, "Comment is required")
	}

	confirmed, err := s.bookings.ListBookings(ctx, repositories.BookingFilter{
		ListingID: &listingID,
		GuestID:   &guestID,
		Statuses:  []models.BookingStatus{models.BookingConfirmed},
	})
	if err != nil {
		return nil, err
	}
	if len(confirmed) == 0 {
		return nil, newError(ErrInvalidState, "You can only review dinners you have attended")
	}

	now := s.now()
	review := &models.Review{
		ListingID: listingID,
		GuestID:   guestID,
		HostID:    confirmed[0].HostID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, newError(ErrConflict, "You have already reviewed this dinner")
		}
		return nil, err
	}

	title := "your dinner"
	if listing, err := s.listings.GetListing(ctx, listingID); err == nil {
		title = listing.Title
	}
	s.notifier.Notify(ctx, review.HostID, models.NotificationReview, "",
		fmt.Sprintf("New %d-star review for %q", rating, title),
		map[string]interface{}{"reviewId": review.ID.Hex(), "listingId": listingID.Hex()})
	return review, nil
}

func (s *ReviewService) ForListing(ctx context.Context, listingID primitive.ObjectID) ([]models.Review, error) {
	return s.reviews.ListReviews(ctx, repositories.ReviewFilter{ListingID: &listingID})
}

func (s *ReviewService) ForHost(ctx context.Context, hostID primitive.ObjectID) ([]models.Review, error) {
	return s.reviews.ListReviews(ctx, repositories.ReviewFilter{HostID: &hostID})
}

// Update edits a review. Only its author may change it.
func (s *ReviewService) Update(ctx context.Context, reviewID, guestID primitive.ObjectID, req models.ReviewUpdateRequest) (*models.Review, error) {
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, newError(ErrValidation, "Rating must be between 1 and 5")
	}
	if req.Comment != nil && *req.Comment == "" {
		return nil, newError(ErrValidation, "Comment cannot be empty")
	}
	if _, err := s.authored(ctx, reviewID, guestID, "Not authorized to update this review"); err != nil {
		return nil, err
	}

	review, err := s.reviews.UpdateReview(ctx, reviewID, repositories.ReviewChanges{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(ErrNotFound, "Review not found")
	}
	return review, err
}

// Delete removes a review. Only its author may delete it.
func (s *ReviewService) Delete(ctx context.Context, reviewID, guestID primitive.ObjectID) error {
	if _, err := s.authored(ctx, reviewID, guestID, "Not authorized to delete this review"); err != nil {
		return err
	}
	err := s.reviews.DeleteReview(ctx, reviewID)
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(ErrNotFound, "Review not found")
	}
	return err
}

func (s *ReviewService) authored(ctx context.Context, reviewID, guestID primitive.ObjectID, denied string) (*models.Review, error) {
	review, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Review not found")
		}
		return nil, err
	}
	if review.GuestID != guestID {
		return nil, newError(ErrForbidden, denied)
	}
	return review, nil
}
