package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	userRepo "townhall/database/repository/user"
	"townhall/models"
	"townhall/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const sessionDuration = 24 * time.Hour

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike, so the response does not leak which one failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo   userRepo.UserRepository
	Logger *zap.Logger
}

func (s *DefaultUserService) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := s.Repo.GetByEmail(email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}
	if u == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(u.ID, u.Email, u.Role, sessionDuration)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return u, token, nil
}

// SignOut revokes the token until its natural expiry.
func (s *DefaultUserService) SignOut(ctx context.Context, token string) error {
	if err := utils.RevokeToken(ctx, utils.HashToken(token), sessionDuration); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *DefaultUserService) Create(ctx context.Context, u *models.User, password string) (*models.User, error) {
	if u.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	switch u.Role {
	case models.RoleAdmin, models.RoleSecretary, models.RoleMayor:
	default:
		return nil, fmt.Errorf("unknown role %q", u.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u.ID = uuid.NewString()
	u.PasswordHash = string(hash)
	if err := s.Repo.Create(u); err != nil {
		return nil, err
	}
	s.Logger.Info("user created", zap.String("id", u.ID), zap.String("role", u.Role))
	return u, nil
}

func (s *DefaultUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.GetByID(id)
}

func (s *DefaultUserService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.Repo.GetAll()
}

func (s *DefaultUserService) Update(ctx context.Context, u *models.User) (*models.User, error) {
	existing, err := s.Repo.GetByID(u.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("user with id %s not found", u.ID)
	}

	// Password hash is never replaced through this path.
	u.PasswordHash = existing.PasswordHash
	u.CreatedAt = existing.CreatedAt
	if err := s.Repo.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *DefaultUserService) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(id)
}
