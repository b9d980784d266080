package models

import "time"

// DeviceToken maps a user to one push-capable device. A user may hold any
// number of tokens (multi-device); tokens are never deduplicated or expired.
type DeviceToken struct {
	ID        string    `bson:"id" json:"id"`
	UserID    string    `bson:"userId" json:"userId"`
	Token     string    `bson:"token" json:"token"`
	Platform  string    `bson:"platform" json:"platform"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
