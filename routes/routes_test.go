package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homelyeats/homelyeats_backend/controllers"
	"github.com/homelyeats/homelyeats_backend/models"
	"github.com/homelyeats/homelyeats_backend/repositories"
	"github.com/homelyeats/homelyeats_backend/services"
	"github.com/homelyeats/homelyeats_backend/utils"
	"github.com/homelyeats/homelyeats_backend/websocket"
)

const testSecret = "routes-test-secret"

type envelope struct {
	Status            int             `json:"status"`
	Message           string          `json:"message"`
	Data              json.RawMessage `json:"data"`
	BookingsCancelled int             `json:"bookingsCancelled"`
	NotificationsSent int             `json:"notificationsSent"`
}

type api struct {
	t     *testing.T
	e     *echo.Echo
	store *repositories.MemoryStore
}

func newAPI(t *testing.T) *api {
	store := repositories.NewMemoryStore()
	locker := services.NewKeyedLocker()
	hub := websocket.NewHub()
	go hub.Run()

	notifications := services.NewNotificationService(store, store).WithRealtime(hub)
	bookings := services.NewBookingService(store, store, notifications, locker)
	listings := services.NewListingService(store, locker)
	reviews := services.NewReviewService(store, store, store, notifications)
	profiles := services.NewProfileService(store, store, store)

	e := echo.New()
	e.Validator = utils.NewCustomValidator()
	SetupRoutes(e, testSecret, Controllers{
		Auth:          controllers.NewAuthController(store, testSecret),
		Listings:      controllers.NewListingController(listings, bookings),
		Bookings:      controllers.NewBookingController(bookings),
		Notifications: controllers.NewNotificationController(notifications, store, hub),
		Reviews:       controllers.NewReviewController(reviews),
		Profiles:      controllers.NewProfileController(profiles),
	})
	return &api{t: t, e: e, store: store}
}

func (a *api) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func (a *api) register(email, role string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Test " + role,
		"email":    email,
		"password": "secret123",
		"role":     role,
	})
	require.Equal(a.t, http.StatusCreated, code, env.Message)

	var auth models.AuthResponse
	require.NoError(a.t, json.Unmarshal(env.Data, &auth))
	return auth.Token
}

func (a *api) createListing(hostToken string, maxGuests int) models.Listing {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/listings", hostToken, map[string]interface{}{
		"title":       "Sunday lasagne",
		"description": "Family recipe",
		"date":        time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"time":        "19:30",
		"price":       25,
		"maxGuests":   maxGuests,
		"cuisine":     "Italian",
		"location":    map[string]string{"address": "1 Main St", "city": "Beirut"},
	})
	require.Equal(a.t, http.StatusCreated, code, env.Message)

	var listing models.Listing
	require.NoError(a.t, json.Unmarshal(env.Data, &listing))
	return listing
}

func (a *api) book(guestToken string, listingID string, guests int) (int, envelope, models.Booking) {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/bookings", guestToken, map[string]interface{}{
		"listingId":      listingID,
		"numberOfGuests": guests,
	})
	var booking models.Booking
	if code == http.StatusCreated {
		require.NoError(a.t, json.Unmarshal(env.Data, &booking))
	}
	return code, env, booking
}

func (a *api) listing(id string) models.Listing {
	a.t.Helper()
	code, env := a.do(http.MethodGet, "/api/listings/"+id, "", nil)
	require.Equal(a.t, http.StatusOK, code)

	var listing models.Listing
	require.NoError(a.t, json.Unmarshal(env.Data, &listing))
	return listing
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	a := newAPI(t)
	host := a.register("host@example.com", models.RoleHost)
	ana := a.register("ana@example.com", models.RoleUser)
	bob := a.register("bob@example.com", models.RoleUser)

	listing := a.createListing(host, 4)
	assert.Equal(t, models.ListingAvailable, listing.Status)

	code, _, first := a.book(ana, listing.ID.Hex(), 3)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, models.BookingPending, first.Status)
	assert.Equal(t, 75.0, first.TotalPrice)

	code, _, second := a.book(bob, listing.ID.Hex(), 2)
	require.Equal(t, http.StatusCreated, code)

	// pending requests hold no seats
	assert.Equal(t, 0, a.listing(listing.ID.Hex()).CurrentGuests)

	code, _ = a.do(http.MethodGet, "/api/bookings/"+first.ID.Hex()+"/ticket", ana, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := a.do(http.MethodPatch, "/api/bookings/"+first.ID.Hex()+"/approve", host, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, 3, a.listing(listing.ID.Hex()).CurrentGuests)

	code, env = a.do(http.MethodGet, "/api/bookings/"+first.ID.Hex()+"/ticket", ana, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Contains(t, string(env.Data), "data:image/png;base64,")

	code, env = a.do(http.MethodPatch, "/api/bookings/"+second.ID.Hex()+"/approve", host, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Not enough spots available. Only 1 spots remaining.", env.Message)
	assert.JSONEq(t, `{"remainingSpots":1}`, string(env.Data))

	code, _ = a.do(http.MethodDelete, "/api/bookings/"+first.ID.Hex(), ana, nil)
	require.Equal(t, http.StatusOK, code)

	after := a.listing(listing.ID.Hex())
	assert.Equal(t, 0, after.CurrentGuests)
	assert.Equal(t, models.ListingAvailable, after.Status)

	code, env = a.do(http.MethodPatch, "/api/bookings/"+second.ID.Hex()+"/approve", host, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, 2, a.listing(listing.ID.Hex()).CurrentGuests)
}

func TestFullListingStillAcceptsRequests(t *testing.T) {
	a := newAPI(t)
	host := a.register("host@example.com", models.RoleHost)
	ana := a.register("ana@example.com", models.RoleUser)
	bob := a.register("bob@example.com", models.RoleUser)

	listing := a.createListing(host, 2)
	_, _, first := a.book(ana, listing.ID.Hex(), 2)
	code, _ := a.do(http.MethodPatch, "/api/bookings/"+first.ID.Hex()+"/approve", host, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.ListingFull, a.listing(listing.ID.Hex()).Status)

	code, _, _ = a.book(bob, listing.ID.Hex(), 1)
	assert.Equal(t, http.StatusCreated, code)
}

func TestBookingAuthorization(t *testing.T) {
	a := newAPI(t)
	host := a.register("host@example.com", models.RoleHost)
	ana := a.register("ana@example.com", models.RoleUser)
	eve := a.register("eve@example.com", models.RoleUser)

	listing := a.createListing(host, 4)
	_, _, booking := a.book(ana, listing.ID.Hex(), 1)
	path := "/api/bookings/" + booking.ID.Hex()

	// guests are not acting as hosts
	code, _ := a.do(http.MethodPatch, path+"/approve", ana, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodGet, path, eve, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodDelete, path, eve, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.do(http.MethodPost, "/api/listings", ana, map[string]string{})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodGet, "/api/bookings/not-an-id", ana, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDuplicateAndInvalidBookings(t *testing.T) {
	a := newAPI(t)
	host := a.register("host@example.com", models.RoleHost)
	ana := a.register("ana@example.com", models.RoleUser)
	listing := a.createListing(host, 4)

	code, _, _ := a.book(ana, listing.ID.Hex(), 1)
	require.Equal(t, http.StatusCreated, code)

	code, env, _ := a.book(ana, listing.ID.Hex(), 2)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "You already have an active booking for this dinner", env.Message)

	code, _, _ = a.book(ana, listing.ID.Hex(), 0)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = a.book(ana, "", 1)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = a.book(ana, "64b7f0c2a1b2c3d4e5f60718", 1)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUpdatePendingBooking(t *testing.T) {
	a := newAPI(t)
	host := a.register("host@example.com", models.RoleHost)
	ana := a.register("ana@example.com", models.RoleUser)
	listing := a.createListing(host, 4)
	_, _, booking := a.book(ana, listing.ID.Hex(), 1)

	code, env := a.do(http.MethodPatch, "/api/bookings/"+booking.ID.Hex(), ana, map[string]interface{}{
		"numberOfGuests":  3,
		"specialRequests": "vegetarian",
	})
	require.Equal(t, http.StatusOK, code, env.Message)

	var updated models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 3, updated.NumberOfGuests)
	assert.Equal(t, 75.0, updated.TotalPrice)
	assert.Equal(t, "vegetarian", updated.SpecialRequests)

	bob := a.register("bob@example.com", models.RoleUser)
	_, _, other := a.book(bob, listing.ID.Hex(), 2)
	code, _ = a.do(http.MethodPatch, "/api/bookings/"+other.ID.Hex()+"/approve", host, nil)
	require.Equal(t, http.StatusOK, code)

	// 2 confirmed plus 3 more requested exceeds 4 seats
	code, env = a.do(http.MethodPatch, "/api/bookings/"+booking.ID.Hex(), ana, map[string]interface{}{"numberOfGuests": 6})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Not enough spots available. Only 2 spots remaining.", env.Message)

	code, _ = a.do(http.MethodPatch, "/api/bookings/"+other.ID.Hex(), bob, map[string]interface{}{"numberOfGuests": 1})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCancelListingCascades(t *testing.T) {
	a := newAPI(t)
	host := a.register("host@example.com", models.RoleHost)
	ana := a.register("ana@example.com", models.RoleUser)
	bob := a.register("bob@example.com", models.RoleUser)

	listing := a.createListing(host, 6)
	_, _, first := a.book(ana, listing.ID.Hex(), 2)
	a.book(bob, listing.ID.Hex(), 1)
	code, _ := a.do(http.MethodPatch, "/api/bookings/"+first.ID.Hex()+"/approve", host, nil)
	require.Equal(t, http.StatusOK, code)

	code, env := a.do(http.MethodPatch, "/api/listings/"+listing.ID.Hex()+"/cancel", host, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, 2, env.BookingsCancelled)
	assert.Equal(t, 3, env.NotificationsSent)

	cancelled := a.listing(listing.ID.Hex())
	assert.Equal(t, models.ListingCancelled, cancelled.Status)
	assert.Equal(t, 0, cancelled.CurrentGuests)

	code, _ = a.do(http.MethodPatch, "/api/listings/"+listing.ID.Hex()+"/cancel", host, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _, _ = a.book(ana, listing.ID.Hex(), 1)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListingQueries(t *testing.T) {
	a := newAPI(t)
	host := a.register("host@example.com", models.RoleHost)
	for i := 0; i < 3; i++ {
		a.createListing(host, 4)
	}

	for _, path := range []string{"/api/listings", "/api/listings/upcoming", "/api/listings/featured"} {
		code, env := a.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, code, path)
		var listings []models.Listing
		require.NoError(t, json.Unmarshal(env.Data, &listings))
		assert.Len(t, listings, 3, path)
	}

	code, env := a.do(http.MethodGet, "/api/listings/mine", host, nil)
	require.Equal(t, http.StatusOK, code)
	var mine []models.Listing
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 3)

	code, _ = a.do(http.MethodGet, "/api/listings/64b7f0c2a1b2c3d4e5f60718", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNotificationInboxOverHTTP(t *testing.T) {
	a := newAPI(t)
	host := a.register("host@example.com", models.RoleHost)
	listing := a.createListing(host, 10)
	for i := 0; i < 3; i++ {
		guest := a.register(fmt.Sprintf("guest%d@example.com", i), models.RoleUser)
		code, _, _ := a.book(guest, listing.ID.Hex(), 1)
		require.Equal(t, http.StatusCreated, code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/notifications?page=1&limit=2", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+host)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page models.PagedResponse
	var items []models.Notification
	page.Data = &items
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, items, 2)
	assert.Equal(t, models.NotificationBookingRequest, items[0].Type)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, int64(2), page.Pagination.Pages)

	code, env := a.do(http.MethodGet, "/api/notifications/unread/count", host, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":3}`, string(env.Data))

	code, _ = a.do(http.MethodPut, "/api/notifications/"+items[0].ID.Hex()+"/read", host, nil)
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodPut, "/api/notifications/read/all", host, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"modified":2}`, string(env.Data))

	code, _ = a.do(http.MethodDelete, "/api/notifications/"+items[1].ID.Hex(), host, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(http.MethodDelete, "/api/notifications/"+items[1].ID.Hex(), host, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRoleSwitching(t *testing.T) {
	a := newAPI(t)
	ana := a.register("ana@example.com", models.RoleUser)

	code, _ := a.do(http.MethodPost, "/api/auth/switch-role", ana, map[string]string{"role": models.RoleHost})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := a.do(http.MethodPost, "/api/auth/become-host", ana, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.Equal(t, models.RoleHost, auth.User.ActiveRole)

	a.createListing(auth.Token, 2)

	code, env = a.do(http.MethodPost, "/api/auth/switch-role", auth.Token, map[string]string{"role": models.RoleUser})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	assert.Equal(t, models.RoleUser, auth.User.ActiveRole)

	code, _ = a.do(http.MethodGet, "/api/listings/mine", auth.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestLoginAndVerify(t *testing.T) {
	a := newAPI(t)
	a.register("ana@example.com", models.RoleUser)

	code, _ := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Again", "email": "ANA@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, code)
	var auth models.AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &auth))

	code, env = a.do(http.MethodGet, "/api/auth/verify", auth.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var user models.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Empty(t, user.Password)
}

func (a *api) profile(token string) models.User {
	a.t.Helper()
	code, env := a.do(http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(a.t, http.StatusOK, code, env.Message)

	var user models.User
	require.NoError(a.t, json.Unmarshal(env.Data, &user))
	return user
}

func TestReviewsOverHTTP(t *testing.T) {
	a := newAPI(t)
	host := a.register("host@example.com", models.RoleHost)
	ana := a.register("ana@example.com", models.RoleUser)
	bob := a.register("bob@example.com", models.RoleUser)
	hostID := a.profile(host).ID.Hex()

	listing := a.createListing(host, 4)
	_, _, booking := a.book(ana, listing.ID.Hex(), 2)

	review := map[string]interface{}{"listingId": listing.ID.Hex(), "rating": 5, "comment": "Wonderful evening"}
	code, _ := a.do(http.MethodPost, "/api/reviews", ana, review)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(http.MethodPatch, "/api/bookings/"+booking.ID.Hex()+"/approve", host, nil)
	require.Equal(t, http.StatusOK, code)

	code, env := a.do(http.MethodPost, "/api/reviews", ana, review)
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created models.Review
	require.NoError(t, json.Unmarshal(env.Data, &created))

	code, _ = a.do(http.MethodPost, "/api/reviews", ana, review)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(http.MethodPost, "/api/reviews", bob, map[string]interface{}{"listingId": listing.ID.Hex(), "rating": 9, "comment": "x"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = a.do(http.MethodGet, "/api/reviews/listing/"+listing.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, code)
	var reviews []models.Review
	require.NoError(t, json.Unmarshal(env.Data, &reviews))
	require.Len(t, reviews, 1)

	code, env = a.do(http.MethodGet, "/api/reviews/host/"+hostID, "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &reviews))
	require.Len(t, reviews, 1)

	code, _ = a.do(http.MethodPut, "/api/reviews/"+created.ID.Hex(), bob, map[string]interface{}{"rating": 1})
	assert.Equal(t, http.StatusForbidden, code)
	code, env = a.do(http.MethodPut, "/api/reviews/"+created.ID.Hex(), ana, map[string]interface{}{"rating": 4})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = a.do(http.MethodGet, "/api/hosts/"+hostID, "", nil)
	require.Equal(t, http.StatusOK, code)
	var profile models.HostProfile
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, int64(1), profile.Rating.Count)
	assert.InDelta(t, 4.0, profile.Rating.Average, 0.001)
	require.Len(t, profile.Dinners, 1)

	code, env = a.do(http.MethodGet, "/api/notifications", host, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"type":"review"`)

	code, _ = a.do(http.MethodDelete, "/api/reviews/"+created.ID.Hex(), bob, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodDelete, "/api/reviews/"+created.ID.Hex(), ana, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestProfileAndHostDirectory(t *testing.T) {
	a := newAPI(t)
	host := a.register("host@example.com", models.RoleHost)
	other := a.register("other@example.com", models.RoleHost)
	ana := a.register("ana@example.com", models.RoleUser)
	hostID := a.profile(host).ID.Hex()

	code, _ := a.do(http.MethodGet, "/api/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := a.do(http.MethodPatch, "/api/users/profile", ana, map[string]string{"bio": "I love dumplings", "location": "Beirut"})
	require.Equal(t, http.StatusOK, code, env.Message)
	me := a.profile(ana)
	assert.Equal(t, "I love dumplings", me.Bio)
	assert.Equal(t, "Beirut", me.Location)

	code, env = a.do(http.MethodGet, "/api/hosts", "", nil)
	require.Equal(t, http.StatusOK, code)
	var hosts []models.User
	require.NoError(t, json.Unmarshal(env.Data, &hosts))
	assert.Len(t, hosts, 2)

	code, _ = a.do(http.MethodGet, "/api/hosts/"+me.ID.Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPut, "/api/hosts/"+hostID, other, map[string]string{"bio": "hijacked"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodPut, "/api/hosts/"+hostID, ana, map[string]string{"bio": "hijacked"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(http.MethodPut, "/api/hosts/"+hostID, host, map[string]string{"bio": "Family recipes"})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, "Family recipes", a.profile(host).Bio)
}

func TestPostNotificationOnlyToOwnInbox(t *testing.T) {
	a := newAPI(t)
	ana := a.register("ana@example.com", models.RoleUser)
	bob := a.register("bob@example.com", models.RoleUser)
	bobID := a.profile(bob).ID.Hex()

	code, _ := a.do(http.MethodPost, "/api/notifications", ana, map[string]string{
		"recipient": bobID, "type": "system", "message": "Your account is locked",
	})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = a.do(http.MethodPost, "/api/notifications", ana, map[string]string{
		"type": "booking_confirmed", "message": "You are in",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := a.do(http.MethodPost, "/api/notifications", ana, map[string]string{
		"type": "system", "message": "Reminder to self",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = a.do(http.MethodGet, "/api/notifications/unread/count", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"count":0}`, string(env.Data))
}
