package notifRepo

import (
	"context"
	"fmt"
	"time"

	"townhall/database"
	"townhall/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoNotificationRepo implements NotificationRepository using MongoDB.
type MongoNotificationRepo struct {
	coll *mongo.Collection
}

// NewMongoNotificationRepo creates a new NotificationRepository using MongoDB.
func NewMongoNotificationRepo() NotificationRepository {
	coll := database.Collection(database.CollNotifications)
	repo := &MongoNotificationRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to create notification indexes", zap.Error(err))
	}
	return repo
}

// MongoScheduledRepo implements ScheduledNotificationRepository using MongoDB.
type MongoScheduledRepo struct {
	coll      *mongo.Collection
	notifColl *mongo.Collection
}

// NewMongoScheduledRepo creates a new ScheduledNotificationRepository.
// The immediate-notification collection is needed for the promotion
// transaction.
func NewMongoScheduledRepo() ScheduledNotificationRepository {
	repo := &MongoScheduledRepo{
		coll:      database.Collection(database.CollScheduledNotifications),
		notifColl: database.Collection(database.CollNotifications),
	}

	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to create scheduled notification indexes", zap.Error(err))
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoNotificationRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoScheduledRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isSent", Value: 1}, {Key: "scheduledFor", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
