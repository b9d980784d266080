package models

import "time"

// Notification types mirrored into push payloads.
const (
	NotificationTypeAppointmentCreated  = "appointment_created"
	NotificationTypeAppointmentReminder = "appointment_reminder"
	NotificationTypeStatusChanged       = "status_changed"
	NotificationTypeGeneral             = "general"
	NotificationTypeTest                = "test"
)

// Notification is a persisted in-app notification record (the immediate feed).
type Notification struct {
	ID            string    `bson:"id" json:"id"`
	UserID        string    `bson:"userId" json:"userId"`
	Title         string    `bson:"title" json:"title"`
	Message       string    `bson:"message" json:"message"`
	Type          string    `bson:"type" json:"type"`
	AppointmentID string    `bson:"appointmentId,omitempty" json:"appointmentId,omitempty"`
	Read          bool      `bson:"read" json:"read"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}

// ScheduledNotification is a deferred reminder awaiting its trigger instant.
// Once Sent flips to true the record is inert; the drainer filters it out.
type ScheduledNotification struct {
	ID            string    `bson:"id" json:"id"`
	UserID        string    `bson:"userId" json:"userId"`
	Title         string    `bson:"title" json:"title"`
	Message       string    `bson:"message" json:"message"`
	Type          string    `bson:"type" json:"type"`
	AppointmentID string    `bson:"appointmentId,omitempty" json:"appointmentId,omitempty"`
	ScheduledFor  time.Time `bson:"scheduledFor" json:"scheduledFor"`
	Sent          bool      `bson:"isSent" json:"isSent"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
}
