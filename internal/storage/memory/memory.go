package memory

import (
	"context"
	"fmt"

	"jwt_auth/internal/domain/models"
	"jwt_auth/internal/storage"

	"github.com/patrickmn/go-cache"
)

// Storage keeps accounts in process memory. Records never expire.
type Storage struct {
	c *cache.Cache
}

func New() *Storage {
	return &Storage{
		c: cache.New(cache.NoExpiration, 0),
	}
}

func (s *Storage) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.memory.User"

	if err := ctx.Err(); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	v, ok := s.c.Get(email)
	if !ok {
		return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return v.(models.User), nil
}

func (s *Storage) SaveUser(ctx context.Context, email string, user models.User) error {
	const op = "storage.memory.SaveUser"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.c.Set(email, user, cache.NoExpiration)

	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, email string) error {
	const op = "storage.memory.DeleteUser"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.c.Delete(email)

	return nil
}

func (s *Storage) Close() error {
	s.c.Flush()

	return nil
}
