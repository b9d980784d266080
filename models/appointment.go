package models

import "time"

// Appointment statuses. No transition rules are enforced server-side;
// any status may follow any other (last write wins).
const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusDone      = "done"
	AppointmentStatusCancelled = "cancelled"
)

type Appointment struct {
	ID            string    `bson:"id" json:"id"`
	Title         string    `bson:"title" json:"title"`
	Description   string    `bson:"description" json:"description"`
	When          time.Time `bson:"when" json:"when"`
	Status        string    `bson:"status" json:"status"`
	CreatedByUID  string    `bson:"createdByUid" json:"createdByUid"`
	AssignedToUID string    `bson:"assignedToUid" json:"assignedToUid"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}
