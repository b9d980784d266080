package notifRepo

import (
	"errors"
	"time"

	"townhall/models"
)

// ErrAlreadySent is returned by Promote when the scheduled record was
// already claimed by another drain invocation.
var ErrAlreadySent = errors.New("scheduled notification already sent")

// NotificationRepository defines methods for the immediate notification feed.
type NotificationRepository interface {
	// Create inserts a new notification record.
	Create(n *models.Notification) error
	// GetByID retrieves a notification by its ID, nil when absent.
	GetByID(id string) (*models.Notification, error)
	// GetByRecipient retrieves the recipient's notifications, newest first.
	GetByRecipient(uid string, limit int64) ([]models.Notification, error)
	// CountUnread counts the recipient's unread notifications.
	CountUnread(uid string) (int64, error)
	// MarkRead flips the read flag to true on one record.
	MarkRead(id string) error
	// Delete removes one notification record.
	Delete(id string) error
	// DeleteAllForRecipient removes every notification of a recipient.
	DeleteAllForRecipient(uid string) error
}

// ScheduledNotificationRepository defines methods for deferred reminders.
type ScheduledNotificationRepository interface {
	// Create inserts a new scheduled notification record.
	Create(s *models.ScheduledNotification) error
	// GetDue retrieves records with scheduledFor <= now and isSent == false.
	GetDue(now time.Time) ([]models.ScheduledNotification, error)
	// Promote atomically inserts the immediate notification and flips the
	// source record's isSent flag. The flip is conditional on isSent still
	// being false; a lost claim returns ErrAlreadySent and inserts nothing.
	Promote(sched *models.ScheduledNotification, n *models.Notification) error
}
