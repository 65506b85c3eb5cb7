package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/repositories"
)

const (
	upcomingWindow = 30 * 24 * time.Hour
	featuredLimit  = 6
)

// ListingService handles host edits and public queries on listings.
// Cancelling and deleting go through BookingService since they cascade.
type ListingService struct {
	listings repositories.ListingStore
	locker   ListingLocker
	now      func() time.Time
}

func NewListingService(listings repositories.ListingStore, locker ListingLocker) *ListingService {
	return &ListingService{
		listings: listings,
		locker:   locker,
		now:      time.Now,
	}
}

func (s *ListingService) WithClock(now func() time.Time) *ListingService {
	s.now = now
	return s
}

func (s *ListingService) Create(ctx context.Context, hostID primitive.ObjectID, req models.ListingRequest) (*models.Listing, error) {
	if req.MaxGuests < 1 {
		return nil, newError(ErrValidation, "Maximum guests must be at least 1")
	}
	if req.Price < 0 {
		return nil, newError(ErrValidation, "Price cannot be negative")
	}

	now := s.now()
	listing := &models.Listing{
		HostID:              hostID,
		Title:               req.Title,
		Description:         req.Description,
		Date:                req.Date,
		Time:                req.Time,
		Price:               req.Price,
		MaxGuests:           req.MaxGuests,
		CurrentGuests:       0,
		Status:              models.ListingAvailable,
		Location:            req.Location,
		Menu:                req.Menu,
		Cuisine:             req.Cuisine,
		DietaryRestrictions: req.DietaryRestrictions,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.listings.CreateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) Get(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	listing, err := s.listings.GetListing(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(ErrNotFound, "Dinner not found")
	}
	return listing, err
}

// List returns every listing ordered by date
func (s *ListingService) List(ctx context.Context) ([]models.Listing, error) {
	return s.listings.ListListings(ctx, repositories.ListingFilter{})
}

// Upcoming returns listings in the next 30 days that are still on
func (s *ListingService) Upcoming(ctx context.Context) ([]models.Listing, error) {
	from := s.now()
	to := from.Add(upcomingWindow)
	return s.listings.ListListings(ctx, repositories.ListingFilter{
		ExcludeStatus: models.ListingCancelled,
		From:          &from,
		To:            &to,
	})
}

// Featured returns a handful of listings with open seats
func (s *ListingService) Featured(ctx context.Context) ([]models.Listing, error) {
	return s.listings.ListListings(ctx, repositories.ListingFilter{
		Statuses: []models.ListingStatus{models.ListingAvailable},
		Limit:    featuredLimit,
	})
}

// Mine returns the listings hosted by hostID
func (s *ListingService) Mine(ctx context.Context, hostID primitive.ObjectID) ([]models.Listing, error) {
	return s.listings.ListListings(ctx, repositories.ListingFilter{HostID: &hostID})
}

// Update replaces the editable fields of a listing. Capacity cannot drop
// below the seats already confirmed.
func (s *ListingService) Update(ctx context.Context, id, hostID primitive.ObjectID, req models.ListingRequest) (*models.Listing, error) {
	if req.MaxGuests < 1 {
		return nil, newError(ErrValidation, "Maximum guests must be at least 1")
	}

	listing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.HostID != hostID {
		return nil, newError(ErrForbidden, "Not authorized")
	}

	unlock, err := s.locker.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	updated, err := s.listings.UpdateListing(ctx, id, repositories.ListingChanges{
		Title:               req.Title,
		Description:         req.Description,
		Date:                req.Date,
		Time:                req.Time,
		Price:               req.Price,
		MaxGuests:           req.MaxGuests,
		Location:            req.Location,
		Menu:                req.Menu,
		Cuisine:             req.Cuisine,
		DietaryRestrictions: req.DietaryRestrictions,
	})
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, repositories.ErrConditionFailed) {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Dinner not found")
		}
		return nil, err
	}

	current, getErr := s.Get(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == models.ListingCancelled {
		return nil, newError(ErrInvalidState, "Cancelled dinners cannot be edited")
	}
	return nil, newError(ErrValidation, "Maximum guests cannot be lower than the %d guests already confirmed", current.CurrentGuests)
}
