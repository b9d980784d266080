package notifier

import (
	"context"
	"fmt"
	"time"

	"townhall/database"
	deviceRepo "townhall/database/repository/device"
	notifRepo "townhall/database/repository/notification"
	userRepo "townhall/database/repository/user"
	"townhall/models"
	"townhall/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReminderLead is how long before the appointment the reminder fires.
const ReminderLead = time.Hour

// Result is returned to the trigger host. It is never surfaced to end
// users; transient delivery failures are reported here instead of raised,
// so the host does not re-deliver the event.
type Result struct {
	Success   bool
	PushCount int
	Reason    string
}

// EventNotifier reacts to appointment creations and status changes with
// notification side effects: an in-app record, a best-effort multicast push
// and, on creation, a deferred reminder.
type EventNotifier struct {
	Users         userRepo.UserRepository
	Notifications notifRepo.NotificationRepository
	Scheduled     notifRepo.ScheduledNotificationRepository
	Devices       deviceRepo.DeviceTokenRepository
	Push          notification.PushSender
	Feed          database.ChangeFeed
	Logger        *zap.Logger
}

// Register attaches the notifier to the appointments change feed.
func (n *EventNotifier) Register(feed database.ChangeFeed) {
	feed.OnCreate(database.CollAppointments, func(doc any) {
		if appt, ok := doc.(*models.Appointment); ok {
			n.HandleAppointmentCreated(context.Background(), appt)
		}
	})
	feed.OnUpdate(database.CollAppointments, func(before, after any) {
		b, okB := before.(*models.Appointment)
		a, okA := after.(*models.Appointment)
		if okB && okA {
			n.HandleAppointmentUpdated(context.Background(), b, a)
		}
	})
}

// HandleAppointmentCreated runs on every appointment creation. Not
// idempotent against event redelivery: a redelivered creation duplicates
// the records it writes.
func (n *EventNotifier) HandleAppointmentCreated(ctx context.Context, appt *models.Appointment) Result {
	assignee, err := n.Users.GetByID(appt.AssignedToUID)
	if err != nil {
		n.Logger.Error("notifier: assignee lookup failed",
			zap.String("appointmentId", appt.ID), zap.Error(err))
		return Result{Reason: "assignee lookup failed"}
	}
	if assignee == nil {
		n.Logger.Warn("notifier: assignee profile not found, skipping",
			zap.String("appointmentId", appt.ID), zap.String("assignedToUid", appt.AssignedToUID))
		return Result{Reason: "assignee profile not found"}
	}

	notif := &models.Notification{
		ID:            uuid.NewString(),
		UserID:        assignee.ID,
		Title:         "New Appointment",
		Message:       fmt.Sprintf("%q has been scheduled for %s", appt.Title, appt.When.Format("Jan 2, 2006 at 15:04")),
		Type:          models.NotificationTypeAppointmentCreated,
		AppointmentID: appt.ID,
		CreatedAt:     time.Now(),
	}
	if err := n.Notifications.Create(notif); err != nil {
		n.Logger.Error("notifier: failed to write creation notification",
			zap.String("appointmentId", appt.ID), zap.Error(err))
		return Result{Reason: "notification write failed"}
	}
	if n.Feed != nil {
		n.Feed.EmitCreate(database.CollNotifications, notif)
	}

	pushCount := n.sendPush(ctx, assignee.ID, notif.Title, notif.Message, map[string]string{
		"appointmentId": appt.ID,
		"type":          models.NotificationTypeAppointmentCreated,
	})

	// Reminders are only scheduled while the reminder instant is still in
	// the future; a past instant schedules nothing at all.
	reminderAt := appt.When.Add(-ReminderLead)
	if reminderAt.After(time.Now()) {
		sched := &models.ScheduledNotification{
			ID:            uuid.NewString(),
			UserID:        assignee.ID,
			Title:         "Appointment Reminder",
			Message:       fmt.Sprintf("%q starts in one hour", appt.Title),
			Type:          models.NotificationTypeAppointmentReminder,
			AppointmentID: appt.ID,
			ScheduledFor:  reminderAt,
			Sent:          false,
			CreatedAt:     time.Now(),
		}
		if err := n.Scheduled.Create(sched); err != nil {
			n.Logger.Error("notifier: failed to schedule reminder",
				zap.String("appointmentId", appt.ID), zap.Error(err))
		}
	}

	return Result{Success: true, PushCount: pushCount}
}

// HandleAppointmentUpdated runs on every appointment update and reacts only
// to status changes. The in-app record is written regardless of device-token
// presence, so in-app visibility does not depend on push capability.
func (n *EventNotifier) HandleAppointmentUpdated(ctx context.Context, before, after *models.Appointment) Result {
	if before.Status == after.Status {
		return Result{Success: true, Reason: "status unchanged"}
	}

	notif := &models.Notification{
		ID:            uuid.NewString(),
		UserID:        after.AssignedToUID,
		Title:         "Appointment Status Updated",
		Message:       fmt.Sprintf("%q is now %s", after.Title, after.Status),
		Type:          models.NotificationTypeStatusChanged,
		AppointmentID: after.ID,
		CreatedAt:     time.Now(),
	}
	if err := n.Notifications.Create(notif); err != nil {
		n.Logger.Error("notifier: failed to write status notification",
			zap.String("appointmentId", after.ID), zap.Error(err))
		return Result{Reason: "notification write failed"}
	}
	if n.Feed != nil {
		n.Feed.EmitCreate(database.CollNotifications, notif)
	}

	pushCount := n.sendPush(ctx, after.AssignedToUID, notif.Title, notif.Message, map[string]string{
		"appointmentId": after.ID,
		"type":          models.NotificationTypeStatusChanged,
		"status":        after.Status,
		"title":         after.Title,
	})

	return Result{Success: true, PushCount: pushCount}
}

// sendPush resolves the recipient's device tokens and attempts one multicast
// push. Failures are logged and never propagate; the in-app record already
// landed by the time this runs.
func (n *EventNotifier) sendPush(ctx context.Context, uid, title, body string, data map[string]string) int {
	tokens, err := n.Devices.GetTokensByUser(uid)
	if err != nil {
		n.Logger.Error("notifier: device token lookup failed",
			zap.String("userId", uid), zap.Error(err))
		return 0
	}
	if len(tokens) == 0 {
		return 0
	}

	report, err := n.Push.SendMulticast(ctx, tokens, title, body, data)
	if err != nil {
		n.Logger.Error("notifier: multicast push failed",
			zap.String("userId", uid), zap.Int("tokens", len(tokens)), zap.Error(err))
		return 0
	}
	if report.FailureCount > 0 {
		n.Logger.Warn("notifier: some push deliveries failed",
			zap.String("userId", uid),
			zap.Int("success", report.SuccessCount),
			zap.Int("failure", report.FailureCount))
	}
	return report.SuccessCount
}
