package notifRepo

import (
	"fmt"
	"time"

	"townhall/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new notification document.
func (r *MongoNotificationRepo) Create(n *models.Notification) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByID retrieves a notification by its unique ID.
func (r *MongoNotificationRepo) GetByID(id string) (*models.Notification, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var n models.Notification
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch notification with id %s: %w", id, err)
	}
	return &n, nil
}

// MarkRead flips the read flag to true on one notification document.
func (r *MongoNotificationRepo) MarkRead(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"read": true}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark notification %s as read: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification with id %s not found", id)
	}
	return nil
}

// Delete removes a notification document by its ID.
func (r *MongoNotificationRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete notification with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("notification with id %s not found", id)
	}
	return nil
}

// DeleteAllForRecipient removes every notification of one recipient.
func (r *MongoNotificationRepo) DeleteAllForRecipient(uid string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"userId": uid}); err != nil {
		return fmt.Errorf("failed to clear notifications for user %s: %w", uid, err)
	}
	return nil
}

// Create inserts a new scheduled notification document.
func (r *MongoScheduledRepo) Create(s *models.ScheduledNotification) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}

	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create scheduled notification: %w", err)
	}
	return nil
}
