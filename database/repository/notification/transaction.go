package notifRepo

import (
	"context"
	"fmt"
	"time"

	"townhall/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Promote converts a due scheduled notification into an immediate one inside
// a single transaction: insert the immediate record, flip isSent on the
// source. The flip filters on isSent == false, so a drain invocation that
// raced another one loses the claim and the whole transaction aborts with
// ErrAlreadySent — no duplicate immediate record is inserted.
func (r *MongoScheduledRepo) Promote(sched *models.ScheduledNotification, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		filter := bson.M{"id": sched.ID, "isSent": false}
		update := bson.M{"$set": bson.M{"isSent": true}}

		res, err := r.coll.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("claim scheduled notification failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrAlreadySent
		}

		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		if _, err := r.notifColl.InsertOne(sc, n); err != nil {
			return fmt.Errorf("insert promoted notification failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrAlreadySent {
			return err
		}
		return fmt.Errorf("promotion transaction failed: %w", err)
	}

	return nil
}
