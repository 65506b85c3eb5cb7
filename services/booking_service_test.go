package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/repositories"
)

type sentNotification struct {
	Recipient primitive.ObjectID
	Type      models.NotificationType
	Message   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) Notify(_ context.Context, recipientID primitive.ObjectID, typ models.NotificationType, _, message string, _ map[string]interface{}) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{Recipient: recipientID, Type: typ, Message: message})
	return true
}

func (f *fakeNotifier) ofType(typ models.NotificationType) []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentNotification
	for _, n := range f.sent {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, primitive.ObjectID) (func(), error) {
	return func() {}, nil
}

type fixture struct {
	store    *repositories.MemoryStore
	notifier *fakeNotifier
	svc      *BookingService
	host     primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	notifier := &fakeNotifier{}
	return &fixture{
		store:    store,
		notifier: notifier,
		svc:      NewBookingService(store, store, notifier, NewKeyedLocker()),
		host:     primitive.NewObjectID(),
	}
}

func (f *fixture) listing(t *testing.T, maxGuests, currentGuests int) *models.Listing {
	t.Helper()
	l := &models.Listing{
		HostID:        f.host,
		Title:         "Homemade ramen night",
		Price:         25,
		MaxGuests:     maxGuests,
		CurrentGuests: currentGuests,
		Status:        models.OccupancyStatus(models.ListingAvailable, currentGuests, maxGuests),
		Date:          time.Now().Add(72 * time.Hour),
	}
	require.NoError(t, f.store.CreateListing(context.Background(), l))
	return l
}

func (f *fixture) book(t *testing.T, listingID primitive.ObjectID, guests int) *models.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), listingID, primitive.NewObjectID(), guests, "")
	require.NoError(t, err)
	return b
}

func (f *fixture) reload(t *testing.T, listingID primitive.ObjectID) *models.Listing {
	t.Helper()
	l, err := f.store.GetListing(context.Background(), listingID)
	require.NoError(t, err)
	return l
}

func (f *fixture) confirmedSeats(t *testing.T, listingID primitive.ObjectID) int {
	t.Helper()
	bookings, err := f.store.ListBookings(context.Background(), repositories.BookingFilter{
		ListingID: &listingID,
		Statuses:  []models.BookingStatus{models.BookingConfirmed},
	})
	require.NoError(t, err)
	sum := 0
	for _, b := range bookings {
		sum += b.NumberOfGuests
	}
	return sum
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 6, 0)
	guest := primitive.NewObjectID()

	b, err := f.svc.Create(ctx, l.ID, guest, 3, "vegetarian please")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, f.host, b.HostID)
	assert.Equal(t, 75.0, b.TotalPrice)
	assert.True(t, b.UnreadByHost)
	assert.Equal(t, 0, f.reload(t, l.ID).CurrentGuests)

	requests := f.notifier.ofType(models.NotificationBookingRequest)
	require.Len(t, requests, 1)
	assert.Equal(t, f.host, requests[0].Recipient)

	t.Run("duplicate active booking", func(t *testing.T) {
		_, err := f.svc.Create(ctx, l.ID, guest, 1, "")
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("rebook after cancel", func(t *testing.T) {
		_, err := f.svc.Cancel(ctx, b.ID, guest)
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, l.ID, guest, 2, "")
		assert.NoError(t, err)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.Create(ctx, l.ID, primitive.NewObjectID(), 0, "")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing listing", func(t *testing.T) {
		_, err := f.svc.Create(ctx, primitive.NewObjectID(), primitive.NewObjectID(), 1, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cancelled listing", func(t *testing.T) {
		closed := f.listing(t, 4, 0)
		_, err := f.svc.CancelListing(ctx, closed.ID, f.host)
		require.NoError(t, err)
		_, err = f.svc.Create(ctx, closed.ID, primitive.NewObjectID(), 1, "")
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestApproveFillsListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 4, 0)

	b := f.book(t, l.ID, 4)
	confirmed, err := f.svc.Approve(ctx, b.ID, f.host)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, confirmed.Status)
	assert.True(t, confirmed.UnreadByGuest)

	got := f.reload(t, l.ID)
	assert.Equal(t, 4, got.CurrentGuests)
	assert.Equal(t, models.ListingFull, got.Status)

	msgs := f.notifier.ofType(models.NotificationBookingConfirmed)
	require.Len(t, msgs, 1)
	assert.Equal(t, b.GuestID, msgs[0].Recipient)

	// a full listing still takes requests, approval is what fails
	second := f.book(t, l.ID, 1)
	_, err = f.svc.Approve(ctx, second.ID, f.host)
	require.ErrorIs(t, err, ErrCapacityExceeded)

	unchanged := f.reload(t, l.ID)
	assert.Equal(t, 4, unchanged.CurrentGuests)
	assert.Equal(t, models.ListingFull, unchanged.Status)

	pending, err := f.store.GetBooking(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, pending.Status)
}

func TestApproveCapacityMessageNamesRemainingSpots(t *testing.T) {
	f := newFixture(t)
	l := f.listing(t, 4, 3)
	b := f.book(t, l.ID, 2)

	_, err := f.svc.Approve(context.Background(), b.ID, f.host)
	var lerr *LifecycleError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 1, lerr.Remaining)
	assert.Contains(t, lerr.Message, "Only 1 spots remaining")
}

func TestApproveRequiresHostAndPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 4, 0)
	b := f.book(t, l.ID, 1)

	_, err := f.svc.Approve(ctx, b.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Approve(ctx, primitive.NewObjectID(), f.host)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Approve(ctx, b.ID, f.host)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, b.ID, f.host)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 1, f.reload(t, l.ID).CurrentGuests)
}

func TestConcurrentApprovalsSingleSeat(t *testing.T) {
	for name, locker := range map[string]ListingLocker{
		"keyed locker": NewKeyedLocker(),
		"store guard":  noopLocker{},
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			f.svc = NewBookingService(f.store, f.store, f.notifier, locker)
			l := f.listing(t, 1, 0)

			const n = 25
			bookings := make([]*models.Booking, n)
			for i := range bookings {
				bookings[i] = f.book(t, l.ID, 1)
			}

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
				overbook  int
			)
			start := make(chan struct{})
			for _, b := range bookings {
				wg.Add(1)
				go func(id primitive.ObjectID) {
					defer wg.Done()
					<-start
					_, err := f.svc.Approve(ctx, id, f.host)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						succeeded++
					case assert.ErrorIs(t, err, ErrCapacityExceeded):
						overbook++
					}
				}(b.ID)
			}
			close(start)
			wg.Wait()

			assert.Equal(t, 1, succeeded)
			assert.Equal(t, n-1, overbook)

			got := f.reload(t, l.ID)
			assert.Equal(t, 1, got.CurrentGuests)
			assert.Equal(t, models.ListingFull, got.Status)
			assert.Equal(t, got.CurrentGuests, f.confirmedSeats(t, l.ID))
		})
	}
}

func TestConcurrentMixedApprovalsKeepSeatSum(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 7, 0)

	var bookings []*models.Booking
	for i := 0; i < 15; i++ {
		bookings = append(bookings, f.book(t, l.ID, i%3+1))
	}

	var wg sync.WaitGroup
	for _, b := range bookings {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			f.svc.Approve(ctx, id, f.host)
		}(b.ID)
	}
	wg.Wait()

	got := f.reload(t, l.ID)
	assert.LessOrEqual(t, got.CurrentGuests, got.MaxGuests)
	assert.Equal(t, got.CurrentGuests, f.confirmedSeats(t, l.ID))
}

// stallingNotifier blocks confirmations until release is closed
type stallingNotifier struct {
	fakeNotifier
	entered chan struct{}
	release chan struct{}
	ctxErr  error
}

func (n *stallingNotifier) Notify(ctx context.Context, recipientID primitive.ObjectID, typ models.NotificationType, title, message string, data map[string]interface{}) bool {
	if typ == models.NotificationBookingConfirmed {
		close(n.entered)
		<-n.release
		n.ctxErr = ctx.Err()
	}
	return n.fakeNotifier.Notify(ctx, recipientID, typ, title, message, data)
}

func TestSlowDeliveryDoesNotHoldListingLock(t *testing.T) {
	f := newFixture(t)
	notifier := &stallingNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	f.svc = NewBookingService(f.store, f.store, notifier, NewKeyedLocker())
	l := f.listing(t, 6, 0)
	pending := f.book(t, l.ID, 2)

	reqCtx, cancelReq := context.WithCancel(context.Background())
	approved := make(chan error, 1)
	go func() {
		_, err := f.svc.Approve(reqCtx, pending.ID, f.host)
		approved <- err
	}()
	<-notifier.entered
	cancelReq()

	// the confirmation is still being delivered
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	b, err := f.svc.Create(ctx, l.ID, primitive.NewObjectID(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
	assert.Equal(t, 2, f.reload(t, l.ID).CurrentGuests)

	close(notifier.release)
	require.NoError(t, <-approved)
	assert.NoError(t, notifier.ctxErr, "delivery should outlive the request context")
	assert.Len(t, notifier.ofType(models.NotificationBookingConfirmed), 1)
}

func TestApproveThenCancelRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 10, 2)

	b := f.book(t, l.ID, 3)
	_, err := f.svc.Approve(ctx, b.ID, f.host)
	require.NoError(t, err)
	assert.Equal(t, 5, f.reload(t, l.ID).CurrentGuests)

	cancelled, err := f.svc.Cancel(ctx, b.ID, b.GuestID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.Equal(t, 2, f.reload(t, l.ID).CurrentGuests)

	// cancelled bookings are kept as history
	kept, err := f.store.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, kept.Status)
}

func TestCancelPendingLeavesListingAlone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 4, 1)
	b := f.book(t, l.ID, 2)

	cancelled, err := f.svc.Cancel(ctx, b.ID, b.GuestID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)

	got := f.reload(t, l.ID)
	assert.Equal(t, 1, got.CurrentGuests)
	assert.Equal(t, models.ListingAvailable, got.Status)

	msgs := f.notifier.ofType(models.NotificationBookingCancelled)
	require.Len(t, msgs, 1)
	assert.Equal(t, f.host, msgs[0].Recipient)
}

func TestCancelConfirmedReopensFullListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 4, 0)
	a := f.book(t, l.ID, 2)
	b := f.book(t, l.ID, 2)
	for _, bk := range []*models.Booking{a, b} {
		_, err := f.svc.Approve(ctx, bk.ID, f.host)
		require.NoError(t, err)
	}
	require.Equal(t, models.ListingFull, f.reload(t, l.ID).Status)

	_, err := f.svc.Cancel(ctx, a.ID, a.GuestID)
	require.NoError(t, err)

	got := f.reload(t, l.ID)
	assert.Equal(t, 2, got.CurrentGuests)
	assert.Equal(t, models.ListingAvailable, got.Status)
	assert.Equal(t, got.CurrentGuests, f.confirmedSeats(t, l.ID))
}

func TestCancelRequiresGuest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 4, 0)
	b := f.book(t, l.ID, 1)

	_, err := f.svc.Cancel(ctx, b.ID, f.host)
	var lerr *LifecycleError
	require.ErrorAs(t, err, &lerr)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "Not authorized", lerr.Message)

	_, err = f.svc.Cancel(ctx, b.ID, b.GuestID)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, b.ID, b.GuestID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRejectIsNotRepeatable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 4, 0)
	b := f.book(t, l.ID, 2)

	rejected, err := f.svc.Reject(ctx, b.ID, f.host)
	require.NoError(t, err)
	assert.Equal(t, models.BookingRejected, rejected.Status)

	_, err = f.svc.Reject(ctx, b.ID, f.host)
	assert.ErrorIs(t, err, ErrInvalidState)

	msgs := f.notifier.ofType(models.NotificationBookingRejected)
	require.Len(t, msgs, 1)
	assert.Equal(t, b.GuestID, msgs[0].Recipient)
	assert.Equal(t, 0, f.reload(t, l.ID).CurrentGuests)

	_, err = f.svc.Approve(ctx, b.ID, f.host)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRejectRequiresHost(t *testing.T) {
	f := newFixture(t)
	l := f.listing(t, 4, 0)
	b := f.book(t, l.ID, 2)

	_, err := f.svc.Reject(context.Background(), b.ID, b.GuestID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.notifier.ofType(models.NotificationBookingRejected))
}

func TestUpdateGuestCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 6, 3)
	b := f.book(t, l.ID, 1)

	note := "window seat"
	updated, err := f.svc.UpdateGuestCount(ctx, b.ID, b.GuestID, 4, &note)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.NumberOfGuests)
	assert.Equal(t, 100.0, updated.TotalPrice)
	assert.Equal(t, "window seat", updated.SpecialRequests)

	_, err = f.svc.UpdateGuestCount(ctx, b.ID, b.GuestID, 8, nil)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	shrunk, err := f.svc.UpdateGuestCount(ctx, b.ID, b.GuestID, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 50.0, shrunk.TotalPrice)
	assert.Equal(t, "window seat", shrunk.SpecialRequests)

	_, err = f.svc.UpdateGuestCount(ctx, b.ID, b.GuestID, 0, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.UpdateGuestCount(ctx, b.ID, f.host, 2, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Approve(ctx, b.ID, f.host)
	require.NoError(t, err)
	_, err = f.svc.UpdateGuestCount(ctx, b.ID, b.GuestID, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelListingCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 6, 0)

	pending := f.book(t, l.ID, 1)
	confirmed := f.book(t, l.ID, 2)
	rejected := f.book(t, l.ID, 1)
	_, err := f.svc.Approve(ctx, confirmed.ID, f.host)
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, rejected.ID, f.host)
	require.NoError(t, err)

	_, err = f.svc.CancelListing(ctx, l.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrForbidden)

	result, err := f.svc.CancelListing(ctx, l.ID, f.host)
	require.NoError(t, err)
	assert.Equal(t, 2, result.BookingsCancelled)
	assert.Equal(t, 4, result.NotificationsSent)
	assert.Equal(t, models.ListingCancelled, result.Listing.Status)
	assert.Equal(t, 0, result.Listing.CurrentGuests)

	for id, want := range map[primitive.ObjectID]models.BookingStatus{
		pending.ID:   models.BookingCancelled,
		confirmed.ID: models.BookingCancelled,
		rejected.ID:  models.BookingRejected,
	} {
		b, err := f.store.GetBooking(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, b.Status)
	}
	assert.Equal(t, f.reload(t, l.ID).CurrentGuests, f.confirmedSeats(t, l.ID))

	msgs := f.notifier.ofType(models.NotificationDinnerCancelled)
	require.Len(t, msgs, 4)
	assert.Equal(t, f.host, msgs[0].Recipient)

	_, err = f.svc.CancelListing(ctx, l.ID, f.host)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.Cancel(ctx, confirmed.ID, confirmed.GuestID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteListingCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 4, 0)
	b := f.book(t, l.ID, 2)
	_, err := f.svc.Approve(ctx, b.ID, f.host)
	require.NoError(t, err)

	result, err := f.svc.DeleteListing(ctx, l.ID, f.host)
	require.NoError(t, err)
	assert.Equal(t, 1, result.BookingsCancelled)
	assert.Equal(t, 2, result.NotificationsSent)

	_, err = f.store.GetListing(ctx, l.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	kept, err := f.store.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, kept.Status)
	assert.Len(t, f.notifier.ofType(models.NotificationDinnerDeleted), 2)

	_, err = f.svc.DeleteListing(ctx, l.ID, f.host)
	assert.ErrorIs(t, err, ErrNotFound)
}

// losingStore loses every booking status race
type losingStore struct {
	*repositories.MemoryStore
}

func (losingStore) TransitionBooking(context.Context, primitive.ObjectID, repositories.BookingTransition) (*models.Booking, error) {
	return nil, repositories.ErrConditionFailed
}

func TestApproveReleasesSeatsWhenStatusRaceIsLost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 4, 0)
	b := f.book(t, l.ID, 3)

	lossy := losingStore{f.store}
	svc := NewBookingService(lossy, lossy, f.notifier, NewKeyedLocker())

	_, err := svc.Approve(ctx, b.ID, f.host)
	assert.ErrorIs(t, err, ErrInvalidState)

	got := f.reload(t, l.ID)
	assert.Equal(t, 0, got.CurrentGuests)
	assert.Equal(t, models.ListingAvailable, got.Status)
	assert.Empty(t, f.notifier.ofType(models.NotificationBookingConfirmed))
}

func TestGetBookingVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	l := f.listing(t, 4, 0)
	b := f.book(t, l.ID, 1)

	_, err := f.svc.GetBooking(ctx, b.ID, b.GuestID)
	assert.NoError(t, err)
	_, err = f.svc.GetBooking(ctx, b.ID, f.host)
	assert.NoError(t, err)
	_, err = f.svc.GetBooking(ctx, b.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrForbidden)

	mine, err := f.svc.GuestBookings(ctx, b.GuestID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	hosted, err := f.svc.HostBookings(ctx, f.host, models.BookingPending)
	require.NoError(t, err)
	assert.Len(t, hosted, 1)
}
