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

type ListingRepository struct {
	collection *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{
		collection: db.Collection("listings"),
	}
}

func (r *ListingRepository) CreateListing(ctx context.Context, listing *models.Listing) error {
	if listing.ID.IsZero() {
		listing.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, listing)
	return err
}

func (r *ListingRepository) GetListing(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	var listing models.Listing
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &listing, nil
}

func (r *ListingRepository) ListListings(ctx context.Context, filter ListingFilter) ([]models.Listing, error) {
	query := bson.M{}
	if filter.HostID != nil {
		query["hostId"] = *filter.HostID
	}
	status := bson.M{}
	if len(filter.Statuses) > 0 {
		status["$in"] = filter.Statuses
	}
	if filter.ExcludeStatus != "" {
		status["$ne"] = filter.ExcludeStatus
	}
	if len(status) > 0 {
		query["status"] = status
	}
	date := bson.M{}
	if filter.From != nil {
		date["$gte"] = *filter.From
	}
	if filter.To != nil {
		date["$lte"] = *filter.To
	}
	if len(date) > 0 {
		query["date"] = date
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	listings := []models.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *ListingRepository) UpdateListing(ctx context.Context, id primitive.ObjectID, changes ListingChanges) (*models.Listing, error) {
	filter := bson.M{
		"_id":           id,
		"status":        bson.M{"$ne": models.ListingCancelled},
		"currentGuests": bson.M{"$lte": changes.MaxGuests},
	}
	// user supplied values go through $literal so a leading "$" is never read as a field path
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "title", Value: literal(changes.Title)},
			{Key: "description", Value: literal(changes.Description)},
			{Key: "date", Value: literal(changes.Date)},
			{Key: "time", Value: literal(changes.Time)},
			{Key: "price", Value: literal(changes.Price)},
			{Key: "maxGuests", Value: literal(changes.MaxGuests)},
			{Key: "location", Value: literal(changes.Location)},
			{Key: "menu", Value: literal(changes.Menu)},
			{Key: "cuisine", Value: literal(changes.Cuisine)},
			{Key: "dietaryRestrictions", Value: literal(changes.DietaryRestrictions)},
			{Key: "updatedAt", Value: literal(time.Now())},
		}}},
		occupancyStage(),
	}
	return r.findAndUpdate(ctx, id, filter, update)
}

func (r *ListingRepository) ReserveSeats(ctx context.Context, id primitive.ObjectID, n int) (*models.Listing, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$ne": models.ListingCancelled},
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$currentGuests", n}},
			"$maxGuests",
		}},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "currentGuests", Value: bson.M{"$add": bson.A{"$currentGuests", n}}},
			{Key: "updatedAt", Value: literal(time.Now())},
		}}},
		occupancyStage(),
	}
	return r.findAndUpdate(ctx, id, filter, update)
}

func (r *ListingRepository) ReleaseSeats(ctx context.Context, id primitive.ObjectID, n int) (*models.Listing, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "currentGuests", Value: bson.M{"$max": bson.A{
				0,
				bson.M{"$subtract": bson.A{"$currentGuests", n}},
			}}},
			{Key: "updatedAt", Value: literal(time.Now())},
		}}},
		occupancyStage(),
	}
	return r.findAndUpdate(ctx, id, bson.M{"_id": id}, update)
}

func (r *ListingRepository) CloseListing(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	update := bson.M{"$set": bson.M{
		"status":        models.ListingCancelled,
		"currentGuests": 0,
		"updatedAt":     time.Now(),
	}}
	return r.findAndUpdate(ctx, id, bson.M{"_id": id}, update)
}

func (r *ListingRepository) DeleteListing(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// findAndUpdate runs a conditional update and tells a missing listing apart
// from one whose guard did not hold.
func (r *ListingRepository) findAndUpdate(ctx context.Context, id primitive.ObjectID, filter interface{}, update interface{}) (*models.Listing, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var listing models.Listing
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&listing)
	if err == nil {
		return &listing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrConditionFailed
}

// occupancyStage recomputes status from the seat counters, leaving cancelled alone
func occupancyStage() bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: bson.M{"$switch": bson.M{
			"branches": bson.A{
				bson.M{
					"case": bson.M{"$eq": bson.A{"$status", string(models.ListingCancelled)}},
					"then": string(models.ListingCancelled),
				},
				bson.M{
					"case": bson.M{"$gte": bson.A{"$currentGuests", "$maxGuests"}},
					"then": string(models.ListingFull),
				},
			},
			"default": string(models.ListingAvailable),
		}}},
	}}}
}

func literal(v interface{}) bson.M {
	return bson.M{"$literal": v}
}
