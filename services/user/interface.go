package user

import (
	"context"

	"townhall/models"
)

// UserService defines identity operations: authentication and the admin
// user-management surface.
type UserService interface {
	// Authenticate verifies credentials and returns the user plus a signed
	// session token.
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
	// SignOut revokes the given session token.
	SignOut(ctx context.Context, token string) error
	// Create registers a new user with the given plaintext password.
	Create(ctx context.Context, u *models.User, password string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
