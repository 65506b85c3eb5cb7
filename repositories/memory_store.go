package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/models"
)

// MemoryStore keeps every collection in process. It mirrors the MongoDB
// guards (conditional seat updates, the active booking unique index) so it
// can stand in for Mongo in local runs and tests.
type MemoryStore struct {
	mu            sync.RWMutex
	listings      map[primitive.ObjectID]models.Listing
	bookings      map[primitive.ObjectID]models.Booking
	notifications map[primitive.ObjectID]models.Notification
	users         map[primitive.ObjectID]models.User
	reviews       map[primitive.ObjectID]models.Review
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		listings:      make(map[primitive.ObjectID]models.Listing),
		bookings:      make(map[primitive.ObjectID]models.Booking),
		notifications: make(map[primitive.ObjectID]models.Notification),
		users:         make(map[primitive.ObjectID]models.User),
		reviews:       make(map[primitive.ObjectID]models.Review),
		now:           time.Now,
	}
}

// Listings

func (s *MemoryStore) CreateListing(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	if _, ok := s.listings[listing.ID]; ok {
		return ErrDuplicate
	}
	s.listings[listing.ID] = copyListing(*listing)
	return nil
}

func (s *MemoryStore) GetListing(_ context.Context, id primitive.ObjectID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listing, ok := s.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyListing(listing)
	return &out, nil
}

func (s *MemoryStore) ListListings(_ context.Context, filter ListingFilter) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Listing{}
	for _, l := range s.listings {
		if filter.HostID != nil && l.HostID != *filter.HostID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsListingStatus(filter.Statuses, l.Status) {
			continue
		}
		if filter.ExcludeStatus != "" && l.Status == filter.ExcludeStatus {
			continue
		}
		if filter.From != nil && l.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && l.Date.After(*filter.To) {
			continue
		}
		out = append(out, copyListing(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	if filter.Limit > 0 && int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateListing(_ context.Context, id primitive.ObjectID, changes ListingChanges) (*models.Listing, error) {
	return s.mutateListing(id, func(l *models.Listing) bool {
		if l.Status == models.ListingCancelled || l.CurrentGuests > changes.MaxGuests {
			return false
		}
		l.Title = changes.Title
		l.Description = changes.Description
		l.Date = changes.Date
		l.Time = changes.Time
		l.Price = changes.Price
		l.MaxGuests = changes.MaxGuests
		l.Location = changes.Location
		l.Menu = append([]models.MenuItem(nil), changes.Menu...)
		l.Cuisine = changes.Cuisine
		l.DietaryRestrictions = append([]string(nil), changes.DietaryRestrictions...)
		return true
	})
}

func (s *MemoryStore) ReserveSeats(_ context.Context, id primitive.ObjectID, n int) (*models.Listing, error) {
	return s.mutateListing(id, func(l *models.Listing) bool {
		if l.Status == models.ListingCancelled || l.CurrentGuests+n > l.MaxGuests {
			return false
		}
		l.CurrentGuests += n
		return true
	})
}

func (s *MemoryStore) ReleaseSeats(_ context.Context, id primitive.ObjectID, n int) (*models.Listing, error) {
	return s.mutateListing(id, func(l *models.Listing) bool {
		l.CurrentGuests -= n
		if l.CurrentGuests < 0 {
			l.CurrentGuests = 0
		}
		return true
	})
}

func (s *MemoryStore) CloseListing(_ context.Context, id primitive.ObjectID) (*models.Listing, error) {
	return s.mutateListing(id, func(l *models.Listing) bool {
		l.Status = models.ListingCancelled
		l.CurrentGuests = 0
		return true
	})
}

func (s *MemoryStore) DeleteListing(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[id]; !ok {
		return ErrNotFound
	}
	delete(s.listings, id)
	return nil
}

// mutateListing applies fn under the write lock; fn returning false means
// the update guard did not hold and nothing is written.
func (s *MemoryStore) mutateListing(id primitive.ObjectID, fn func(l *models.Listing) bool) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.listings[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := copyListing(current)
	if !fn(&next) {
		return nil, ErrConditionFailed
	}
	next.Status = models.OccupancyStatus(next.Status, next.CurrentGuests, next.MaxGuests)
	next.UpdatedAt = s.now()
	s.listings[id] = next

	out := copyListing(next)
	return &out, nil
}

// Bookings

func (s *MemoryStore) CreateBooking(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.Active = booking.Status.IsActive()
	if booking.Active {
		for _, b := range s.bookings {
			if b.Active && b.GuestID == booking.GuestID && b.ListingID == booking.ListingID {
				return ErrDuplicate
			}
		}
	}
	s.bookings[booking.ID] = *booking
	return nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id primitive.ObjectID) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) ListBookings(_ context.Context, filter BookingFilter) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Booking{}
	for _, b := range s.bookings {
		if filter.ListingID != nil && b.ListingID != *filter.ListingID {
			continue
		}
		if filter.GuestID != nil && b.GuestID != *filter.GuestID {
			continue
		}
		if filter.HostID != nil && b.HostID != *filter.HostID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsBookingStatus(filter.Statuses, b.Status) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) TransitionBooking(_ context.Context, id primitive.ObjectID, t BookingTransition) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != t.From || b.Version != t.Version {
		return nil, ErrConditionFailed
	}
	b.Status = t.To
	b.Active = t.To.IsActive()
	b.UnreadByHost = t.UnreadByHost
	b.UnreadByGuest = t.UnreadByGuest
	b.Version++
	b.UpdatedAt = s.now()
	s.bookings[id] = b
	return &b, nil
}

func (s *MemoryStore) AmendBooking(_ context.Context, id primitive.ObjectID, a BookingAmendment) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != models.BookingPending || b.Version != a.Version {
		return nil, ErrConditionFailed
	}
	b.NumberOfGuests = a.NumberOfGuests
	b.TotalPrice = a.TotalPrice
	if a.SpecialRequests != nil {
		b.SpecialRequests = *a.SpecialRequests
	}
	b.UnreadByHost = true
	b.Version++
	b.UpdatedAt = s.now()
	s.bookings[id] = b
	return &b, nil
}

// Notifications

func (s *MemoryStore) CreateNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	s.notifications[n.ID] = *n
	return nil
}

func (s *MemoryStore) ListNotifications(_ context.Context, recipientID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inbox := []models.Notification{}
	for _, n := range s.notifications {
		if n.RecipientID == recipientID {
			inbox = append(inbox, n)
		}
	}
	sort.Slice(inbox, func(i, j int) bool {
		if inbox[i].CreatedAt.Equal(inbox[j].CreatedAt) {
			return inbox[i].ID.Hex() > inbox[j].ID.Hex()
		}
		return inbox[i].CreatedAt.After(inbox[j].CreatedAt)
	})

	total := int64(len(inbox))
	start := (page - 1) * limit
	if start >= total {
		return []models.Notification{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return inbox[start:end], total, nil
}

func (s *MemoryStore) CountUnread(_ context.Context, recipientID primitive.ObjectID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, id, recipientID primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return nil, ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return &n, nil
}

func (s *MemoryStore) MarkAllRead(_ context.Context, recipientID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for id, n := range s.notifications {
		if n.RecipientID == recipientID && !n.Read {
			n.Read = true
			s.notifications[id] = n
			modified++
		}
	}
	return modified, nil
}

func (s *MemoryStore) DeleteNotification(_ context.Context, id, recipientID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notifications[id]
	if !ok || n.RecipientID != recipientID {
		return ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	u := *user
	u.Roles = append([]string(nil), user.Roles...)
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Roles = append([]string(nil), u.Roles...)
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u.Roles = append([]string(nil), u.Roles...)
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateRoles(_ context.Context, id primitive.ObjectID, roles []string, activeRole string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Roles = append([]string(nil), roles...)
	u.ActiveRole = activeRole
	u.UpdatedAt = s.now()
	s.users[id] = u

	out := u
	out.Roles = append([]string(nil), u.Roles...)
	return &out, nil
}

func (s *MemoryStore) ListUsersByRole(_ context.Context, role string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.User{}
	for _, u := range s.users {
		if u.HasRole(role) {
			u.Roles = append([]string(nil), u.Roles...)
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id primitive.ObjectID, changes ProfileChanges) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if changes.Name != nil {
		u.Name = *changes.Name
	}
	if changes.Phone != nil {
		u.Phone = *changes.Phone
	}
	if changes.Bio != nil {
		u.Bio = *changes.Bio
	}
	if changes.Location != nil {
		u.Location = *changes.Location
	}
	u.UpdatedAt = s.now()
	s.users[id] = u

	out := u
	out.Roles = append([]string(nil), u.Roles...)
	return &out, nil
}

func (s *MemoryStore) UpdateFCMToken(_ context.Context, id primitive.ObjectID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.FCMToken = token
	s.users[id] = u
	return nil
}

// Reviews

func (s *MemoryStore) CreateReview(_ context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reviews {
		if r.GuestID == review.GuestID && r.ListingID == review.ListingID {
			return ErrDuplicate
		}
	}
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	s.reviews[review.ID] = *review
	return nil
}

func (s *MemoryStore) GetReview(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) ListReviews(_ context.Context, filter ReviewFilter) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Review{}
	for _, r := range s.reviews {
		if filter.ListingID != nil && r.ListingID != *filter.ListingID {
			continue
		}
		if filter.HostID != nil && r.HostID != *filter.HostID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) UpdateReview(_ context.Context, id primitive.ObjectID, changes ReviewChanges) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	if changes.Rating != nil {
		r.Rating = *changes.Rating
	}
	if changes.Comment != nil {
		r.Comment = *changes.Comment
	}
	r.UpdatedAt = s.now()
	s.reviews[id] = r
	return &r, nil
}

func (s *MemoryStore) DeleteReview(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *MemoryStore) HostRating(_ context.Context, hostID primitive.ObjectID) (models.HostRating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rating models.HostRating
	sum := 0
	for _, r := range s.reviews {
		if r.HostID == hostID {
			sum += r.Rating
			rating.Count++
		}
	}
	if rating.Count > 0 {
		rating.Average = float64(sum) / float64(rating.Count)
	}
	return rating, nil
}

func copyListing(l models.Listing) models.Listing {
	l.Menu = append([]models.MenuItem(nil), l.Menu...)
	l.DietaryRestrictions = append([]string(nil), l.DietaryRestrictions...)
	return l
}

func containsListingStatus(statuses []models.ListingStatus, s models.ListingStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

func containsBookingStatus(statuses []models.BookingStatus, s models.BookingStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}
