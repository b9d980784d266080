package models

import "time"

// User roles. Role gating happens in route middleware only; repository
// writes perform no role checks, matching the document-store rule model.
const (
	RoleAdmin     = "admin"
	RoleSecretary = "secretary"
	RoleMayor     = "mayor"
)

type User struct {
	ID           string    `bson:"id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	FullName     string    `bson:"fullName" json:"fullName"`
	Role         string    `bson:"role" json:"role"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
