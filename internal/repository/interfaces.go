package repository

import (
	"context"

	"jwt_auth/internal/domain/models"
)

// UserRepository is the account store keyed by email. It enforces no uniqueness:
// SaveUser overwrites, last write wins.
type UserRepository interface {
	// User returns storage.ErrUserNotFound when nothing is stored under email.
	User(ctx context.Context, email string) (models.User, error)
	SaveUser(ctx context.Context, email string, user models.User) error
	// DeleteUser succeeds when nothing is stored under email.
	DeleteUser(ctx context.Context, email string) error
}
