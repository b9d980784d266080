package deviceRepo

import (
	"fmt"
	"time"

	"townhall/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Register inserts a device token document.
func (r *MongoDeviceTokenRepo) Register(token *models.DeviceToken) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("failed to register device token: %w", err)
	}
	return nil
}

// GetByUser retrieves all device-token documents of a user.
func (r *MongoDeviceTokenRepo) GetByUser(uid string) ([]models.DeviceToken, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"userId": uid})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch device tokens for user %s: %w", uid, err)
	}
	defer cursor.Close(ctx)

	var tokens []models.DeviceToken
	if err := cursor.All(ctx, &tokens); err != nil {
		return nil, fmt.Errorf("failed to decode device tokens: %w", err)
	}
	return tokens, nil
}

// GetTokensByUser retrieves the raw token strings of a user.
func (r *MongoDeviceTokenRepo) GetTokensByUser(uid string) ([]string, error) {
	records, err := r.GetByUser(uid)
	if err != nil {
		return nil, err
	}

	tokens := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Token != "" {
			tokens = append(tokens, rec.Token)
		}
	}
	return tokens, nil
}

// Delete removes one token string registered by a user.
func (r *MongoDeviceTokenRepo) Delete(uid, token string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteMany(ctx, bson.M{"userId": uid, "token": token})
	if err != nil {
		return fmt.Errorf("failed to delete device token for user %s: %w", uid, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("device token not found for user %s", uid)
	}
	return nil
}
