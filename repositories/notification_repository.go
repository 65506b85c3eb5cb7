package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/homelyeats/homelyeats_backend/models"
)

type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

func (r *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// ListNotifications returns one page of a recipient's inbox, newest first, and the inbox size
func (r *NotificationRepository) ListNotifications(ctx context.Context, recipientID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error) {
	filter := bson.M{"recipientId": recipientID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipientId": recipientID, "read": false})
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) (*models.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "recipientId": recipientID},
		bson.M{"$set": bson.M{"read": true}},
		opts,
	).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"recipientId": recipientID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) DeleteNotification(ctx context.Context, id, recipientID primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "recipientId": recipientID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
