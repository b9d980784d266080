package notification

import (
	"context"
	"sync"
	"time"

	"townhall/database"
	deviceRepo "townhall/database/repository/device"
	notifRepo "townhall/database/repository/notification"
	"townhall/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Controller maintains a live, ordered view of one identity's most recent
// notifications. One instance per session: construct on session start, call
// Unsubscribe on session end. Local state mutates only after the remote
// write resolves — there is no optimistic mutation.
type Controller struct {
	repo      notifRepo.NotificationRepository
	scheduled notifRepo.ScheduledNotificationRepository
	devices   deviceRepo.DeviceTokenRepository
	push      PushSender
	feed      database.ChangeFeed
	logger    *zap.Logger
	pageSize  int64

	mu          sync.Mutex
	userID      string
	items       []models.Notification
	unread      int
	loading     bool
	lastErr     string
	pushEnabled bool
	sub         *database.Subscription
}

// NewController builds a controller for one session. pageSize caps the live
// view (20 in the deployed configuration).
func NewController(
	repo notifRepo.NotificationRepository,
	scheduled notifRepo.ScheduledNotificationRepository,
	devices deviceRepo.DeviceTokenRepository,
	push PushSender,
	feed database.ChangeFeed,
	logger *zap.Logger,
	pageSize int64,
) *Controller {
	if pageSize <= 0 {
		pageSize = 20
	}
	c := &Controller{
		repo:      repo,
		scheduled: scheduled,
		devices:   devices,
		push:      push,
		feed:      feed,
		logger:    logger,
		pageSize:  pageSize,
	}
	return c
}

// LoadNotifications attaches the controller to the given identity's feed.
// Safe to call repeatedly: the prior subscription is always released before
// a new one is attached, so listeners never accumulate.
func (c *Controller) LoadNotifications(uid string) {
	c.mu.Lock()
	if c.sub != nil {
		c.sub.Cancel()
		c.sub = nil
	}
	c.userID = uid
	c.loading = true
	c.mu.Unlock()

	c.refresh(uid)

	sub := c.feed.Subscribe(database.CollNotifications, func(ev database.ChangeEvent) {
		if eventConcernsUser(ev, uid) {
			c.refresh(uid)
		}
	})

	c.mu.Lock()
	if c.userID != uid {
		// A later LoadNotifications call won the race; discard ours.
		c.mu.Unlock()
		sub.Cancel()
		return
	}
	if c.sub != nil {
		c.sub.Cancel()
	}
	c.sub = sub
	c.mu.Unlock()
}

// Unsubscribe releases the live subscription. Safe when none is active.
func (c *Controller) Unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub != nil {
		c.sub.Cancel()
		c.sub = nil
	}
}

// refresh replaces the full in-memory sequence with the newest page and
// recomputes the unread count from it.
func (c *Controller) refresh(uid string) {
	items, err := c.repo.GetByRecipient(uid, c.pageSize)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID != uid {
		return
	}
	c.loading = false
	if err != nil {
		c.lastErr = err.Error()
		c.logger.Error("notification controller: refresh failed", zap.Error(err))
		return
	}
	c.lastErr = ""
	c.items = items
	c.unread = countUnread(items)
}

func countUnread(items []models.Notification) int {
	n := 0
	for _, item := range items {
		if !item.Read {
			n++
		}
	}
	return n
}

func eventConcernsUser(ev database.ChangeEvent, uid string) bool {
	for _, doc := range []any{ev.After, ev.Before} {
		switch n := doc.(type) {
		case *models.Notification:
			if n != nil && n.UserID == uid {
				return true
			}
		case models.Notification:
			if n.UserID == uid {
				return true
			}
		}
	}
	return false
}

// MarkAsRead persists read == true for one record, then mirrors it locally.
// Calling it on an already-read record changes nothing; the unread count
// never goes negative.
func (c *Controller) MarkAsRead(id string) error {
	if err := c.repo.MarkRead(id); err != nil {
		c.setError(err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
	for i := range c.items {
		if c.items[i].ID == id {
			if !c.items[i].Read {
				c.items[i].Read = true
				if c.unread > 0 {
					c.unread--
				}
			}
			break
		}
	}
	return nil
}

// DeleteNotification removes one record remotely and locally. The unread
// count is recomputed from the remaining set, not blindly decremented, so it
// stays correct when the deleted record was already read.
func (c *Controller) DeleteNotification(id string) error {
	var deleted *models.Notification
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id {
			cp := c.items[i]
			deleted = &cp
			break
		}
	}
	c.mu.Unlock()

	if err := c.repo.Delete(id); err != nil {
		c.setError(err)
		return err
	}

	c.mu.Lock()
	c.lastErr = ""
	// Fresh allocation: c.items may alias a slice the repository returned,
	// so compacting in place would corrupt the producer's data.
	kept := make([]models.Notification, 0, len(c.items))
	for _, item := range c.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.unread = countUnread(c.items)
	c.mu.Unlock()

	if c.feed != nil && deleted != nil {
		c.feed.EmitDelete(database.CollNotifications, deleted)
	}
	return nil
}

// ClearAll removes every notification of the current identity.
func (c *Controller) ClearAll() error {
	c.mu.Lock()
	uid := c.userID
	c.mu.Unlock()

	if err := c.repo.DeleteAllForRecipient(uid); err != nil {
		c.setError(err)
		return err
	}

	c.mu.Lock()
	c.lastErr = ""
	c.items = nil
	c.unread = 0
	c.mu.Unlock()
	return nil
}

// SendNotification writes an immediate notification directly, the client-side
// twin of the server-triggered insert. Used for test/diagnostic sends; both
// paths existing means duplicates are possible and accepted.
func (c *Controller) SendNotification(n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if err := c.repo.Create(n); err != nil {
		c.setError(err)
		return err
	}
	c.clearError()
	if c.feed != nil {
		c.feed.EmitCreate(database.CollNotifications, n)
	}
	return nil
}

// ScheduleNotification writes a deferred reminder directly, bypassing the
// server trigger.
func (c *Controller) ScheduleNotification(n *models.Notification, when time.Time) error {
	sched := &models.ScheduledNotification{
		ID:            uuid.NewString(),
		UserID:        n.UserID,
		Title:         n.Title,
		Message:       n.Message,
		Type:          n.Type,
		AppointmentID: n.AppointmentID,
		ScheduledFor:  when,
		Sent:          false,
		CreatedAt:     time.Now(),
	}
	if err := c.scheduled.Create(sched); err != nil {
		c.setError(err)
		return err
	}
	c.clearError()
	return nil
}

// SetupPushNotifications runs the push-enrollment stages: provider
// availability, token validity, registry persistence. Every stage fails
// independently and only logs; pushEnabled stays false on any blocking
// failure.
func (c *Controller) SetupPushNotifications(ctx context.Context, token, platform string) bool {
	c.mu.Lock()
	uid := c.userID
	c.mu.Unlock()

	if !c.push.Available() {
		c.logger.Warn("push setup: provider unavailable")
		c.setPushEnabled(false)
		return false
	}
	if token == "" {
		c.logger.Warn("push setup: empty device token")
		c.setPushEnabled(false)
		return false
	}
	if uid == "" {
		c.logger.Warn("push setup: no active identity")
		c.setPushEnabled(false)
		return false
	}

	record := &models.DeviceToken{
		ID:        uuid.NewString(),
		UserID:    uid,
		Token:     token,
		Platform:  platform,
		CreatedAt: time.Now(),
	}
	if err := c.devices.Register(record); err != nil {
		c.logger.Error("push setup: token registration failed", zap.Error(err))
		c.setPushEnabled(false)
		return false
	}

	c.setPushEnabled(true)
	return true
}

// CheckNotificationPermission reports whether push delivery is currently
// possible and mirrors the answer into the push-enabled flag.
func (c *Controller) CheckNotificationPermission() bool {
	available := c.push.Available()
	c.setPushEnabled(available)
	return available
}

// Notifications returns a copy of the current live view, newest first.
func (c *Controller) Notifications() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// UnreadCount returns the count of records with read == false in the view.
func (c *Controller) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Loading reports whether the initial load is still in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// LastError returns the last operation error, empty when none. Errors are
// exposed here instead of thrown so the UI can render them directly.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// PushEnabled reports whether push enrollment completed.
func (c *Controller) PushEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pushEnabled
}

func (c *Controller) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err.Error()
	c.logger.Error("notification controller: operation failed", zap.Error(err))
}

func (c *Controller) clearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = ""
}

func (c *Controller) setPushEnabled(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushEnabled = v
}
