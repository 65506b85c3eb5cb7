package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/homelyeats/homelyeats_backend/models"
)

type BookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{
		collection: db.Collection("bookings"),
	}
}

func (r *BookingRepository) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.Active = booking.Status.IsActive()

	_, err := r.collection.InsertOne(ctx, booking)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *BookingRepository) GetBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListBookings(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	query := bson.M{}
	if filter.ListingID != nil {
		query["listingId"] = *filter.ListingID
	}
	if filter.GuestID != nil {
		query["guestId"] = *filter.GuestID
	}
	if filter.HostID != nil {
		query["hostId"] = *filter.HostID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) TransitionBooking(ctx context.Context, id primitive.ObjectID, t BookingTransition) (*models.Booking, error) {
	filter := bson.M{
		"_id":     id,
		"status":  t.From,
		"version": t.Version,
	}
	update := bson.M{
		"$set": bson.M{
			"status":        t.To,
			"active":        t.To.IsActive(),
			"unreadByHost":  t.UnreadByHost,
			"unreadByGuest": t.UnreadByGuest,
			"updatedAt":     time.Now(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.findAndUpdate(ctx, id, filter, update)
}

func (r *BookingRepository) AmendBooking(ctx context.Context, id primitive.ObjectID, a BookingAmendment) (*models.Booking, error) {
	filter := bson.M{
		"_id":     id,
		"status":  models.BookingPending,
		"version": a.Version,
	}
	set := bson.M{
		"numberOfGuests": a.NumberOfGuests,
		"totalPrice":     a.TotalPrice,
		"unreadByHost":   true,
		"updatedAt":      time.Now(),
	}
	if a.SpecialRequests != nil {
		set["specialRequests"] = *a.SpecialRequests
	}
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	return r.findAndUpdate(ctx, id, filter, update)
}

func (r *BookingRepository) findAndUpdate(ctx context.Context, id primitive.ObjectID, filter, update interface{}) (*models.Booking, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if _, err := r.GetBooking(ctx, id); err != nil {
		return nil, err
	}
	return nil, ErrConditionFailed
}
