package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/repositories"
)

// ProfileService serves account profiles and the public host directory
type ProfileService struct {
	users    repositories.UserStore
	listings repositories.ListingStore
	reviews  repositories.ReviewStore
}

func NewProfileService(users repositories.UserStore, listings repositories.ListingStore, reviews repositories.ReviewStore) *ProfileService {
	return &ProfileService{users: users, listings: listings, reviews: reviews}
}

func (s *ProfileService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	return user, err
}

// UpdateProfile applies the fields set in req to the caller's own account
func (s *ProfileService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req models.ProfileUpdateRequest) (*models.User, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, newError(ErrValidation, "Name cannot be empty")
	}
	user, err := s.users.UpdateProfile(ctx, userID, repositories.ProfileChanges{
		Name:     req.Name,
		Phone:    req.Phone,
		Bio:      req.Bio,
		Location: req.Location,
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	return user, err
}

func (s *ProfileService) Hosts(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsersByRole(ctx, models.RoleHost)
}

// Host returns a host's public profile with their dinners by date
func (s *ProfileService) Host(ctx context.Context, hostID primitive.ObjectID) (*models.HostProfile, error) {
	host, err := s.users.GetUser(ctx, hostID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Host not found")
		}
		return nil, err
	}
	if !host.HasRole(models.RoleHost) {
		return nil, newError(ErrNotFound, "Host not found")
	}

	dinners, err := s.listings.ListListings(ctx, repositories.ListingFilter{HostID: &hostID})
	if err != nil {
		return nil, err
	}
	rating, err := s.reviews.HostRating(ctx, hostID)
	if err != nil {
		return nil, err
	}
	return &models.HostProfile{Host: host, Rating: rating, Dinners: dinners}, nil
}

// UpdateHost edits a host profile. Hosts may only edit their own.
func (s *ProfileService) UpdateHost(ctx context.Context, actorID, hostID primitive.ObjectID, req models.ProfileUpdateRequest) (*models.User, error) {
	if actorID != hostID {
		return nil, newError(ErrForbidden, "Not authorized to update this profile")
	}
	return s.UpdateProfile(ctx, hostID, req)
}
