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

type ReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection("reviews"),
	}
}

func (r *ReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, review)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *ReviewRepository) GetReview(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ListReviews(ctx context.Context, filter ReviewFilter) ([]models.Review, error) {
	query := bson.M{}
	if filter.ListingID != nil {
		query["listingId"] = *filter.ListingID
	}
	if filter.HostID != nil {
		query["hostId"] = *filter.HostID
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *ReviewRepository) UpdateReview(ctx context.Context, id primitive.ObjectID, changes ReviewChanges) (*models.Review, error) {
	set := bson.M{"updatedAt": time.Now()}
	if changes.Rating != nil {
		set["rating"] = *changes.Rating
	}
	if changes.Comment != nil {
		set["comment"] = *changes.Comment
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var review models.Review
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// HostRating averages every review a host received
func (r *ReviewRepository) HostRating(ctx context.Context, hostID primitive.ObjectID) (models.HostRating, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"hostId": hostID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return models.HostRating{}, err
	}
	defer cursor.Close(ctx)

	var rating models.HostRating
	if cursor.Next(ctx) {
		if err := cursor.Decode(&rating); err != nil {
			return models.HostRating{}, err
		}
	}
	return rating, cursor.Err()
}
