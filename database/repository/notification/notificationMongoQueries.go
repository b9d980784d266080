package notifRepo

import (
	"fmt"
	"time"

	"townhall/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetByRecipient retrieves the recipient's notifications ordered by creation
// instant descending, limited to the given page size.
func (r *MongoNotificationRepo) GetByRecipient(uid string, limit int64) ([]models.Notification, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"userId": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications for user %s: %w", uid, err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread counts the recipient's notifications with read == false.
func (r *MongoNotificationRepo) CountUnread(uid string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"userId": uid, "read": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications for user %s: %w", uid, err)
	}
	return count, nil
}

// GetDue retrieves scheduled notifications whose trigger instant has passed
// and which have not been sent. Sent records are inert and never reselected.
func (r *MongoScheduledRepo) GetDue(now time.Time) ([]models.ScheduledNotification, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{
		"scheduledFor": bson.M{"$lte": now},
		"isSent":       false,
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due scheduled notifications: %w", err)
	}
	defer cursor.Close(ctx)

	var due []models.ScheduledNotification
	if err := cursor.All(ctx, &due); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled notifications: %w", err)
	}
	return due, nil
}
