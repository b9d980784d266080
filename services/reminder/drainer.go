package reminder

import (
	"context"
	"errors"
	"time"

	"townhall/database"
	deviceRepo "townhall/database/repository/device"
	notifRepo "townhall/database/repository/notification"
	"townhall/models"
	"townhall/services/notification"

	"go.uber.org/zap"
)

// Drainer promotes due scheduled notifications into immediate ones and
// attempts a best-effort push for each promoted record.
type Drainer struct {
	Scheduled notifRepo.ScheduledNotificationRepository
	Devices   deviceRepo.DeviceTokenRepository
	Push      notification.PushSender
	Feed      database.ChangeFeed
	Logger    *zap.Logger
}

// promotedID derives the immediate notification's id from the scheduled
// record's id, so overlapping drain invocations cannot insert two copies
// of the same reminder.
func promotedID(schedID string) string {
	return "rem-" + schedID
}

// DrainDueReminders runs one drain cycle and returns the number of records
// promoted. Database errors abort the cycle with a log line only — no retry,
// no backoff; the next interval picks up whatever is still due. Push errors
// are isolated per record and never abort the cycle.
func (d *Drainer) DrainDueReminders(ctx context.Context) int {
	due, err := d.Scheduled.GetDue(time.Now())
	if err != nil {
		d.Logger.Error("drainer: due query failed", zap.Error(err))
		return 0
	}

	drained := 0
	for i := range due {
		sched := &due[i]

		notif := &models.Notification{
			ID:            promotedID(sched.ID),
			UserID:        sched.UserID,
			Title:         sched.Title,
			Message:       sched.Message,
			Type:          sched.Type,
			AppointmentID: sched.AppointmentID,
			CreatedAt:     time.Now(),
		}

		if err := d.Scheduled.Promote(sched, notif); err != nil {
			if errors.Is(err, notifRepo.ErrAlreadySent) {
				d.Logger.Debug("drainer: reminder claimed by a concurrent drain",
					zap.String("scheduledId", sched.ID))
				continue
			}
			d.Logger.Error("drainer: promotion failed, aborting cycle",
				zap.String("scheduledId", sched.ID), zap.Error(err))
			return drained
		}
		drained++

		if d.Feed != nil {
			d.Feed.EmitCreate(database.CollNotifications, notif)
		}

		d.pushReminder(ctx, notif)
	}

	if drained > 0 {
		d.Logger.Info("drainer: cycle complete", zap.Int("drained", drained))
	}
	return drained
}

// pushReminder attempts one multicast push for a promoted reminder. The
// promotion already committed; nothing here rolls it back.
func (d *Drainer) pushReminder(ctx context.Context, notif *models.Notification) {
	tokens, err := d.Devices.GetTokensByUser(notif.UserID)
	if err != nil {
		d.Logger.Error("drainer: device token lookup failed",
			zap.String("userId", notif.UserID), zap.Error(err))
		return
	}
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{
		"appointmentId": notif.AppointmentID,
		"type":          notif.Type,
	}
	if _, err := d.Push.SendMulticast(ctx, tokens, notif.Title, notif.Message, data); err != nil {
		d.Logger.Error("drainer: reminder push failed",
			zap.String("notificationId", notif.ID), zap.Error(err))
	}
}
