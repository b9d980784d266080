package deviceRepo

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

// MongoDeviceTokenRepo implements DeviceTokenRepository using MongoDB.
type MongoDeviceTokenRepo struct {
	coll *mongo.Collection
}

// NewMongoDeviceTokenRepo creates a new DeviceTokenRepository using MongoDB.
func NewMongoDeviceTokenRepo() DeviceTokenRepository {
	coll := database.Collection(database.CollDeviceTokens)
	repo := &MongoDeviceTokenRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		utils.GetLogger().Warn("failed to create device token indexes", zap.Error(err))
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoDeviceTokenRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
