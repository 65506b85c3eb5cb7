package repositories

import "go.mongodb.org/mongo-driver/mongo"

// MongoStore backs every store interface with MongoDB collections
type MongoStore struct {
	*ListingRepository
	*BookingRepository
	*NotificationRepository
	*UserRepository
	*ReviewRepository
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		ListingRepository:      NewListingRepository(db),
		BookingRepository:      NewBookingRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		UserRepository:         NewUserRepository(db),
		ReviewRepository:       NewReviewRepository(db),
	}
}
