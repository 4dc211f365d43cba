package repository

import (
	"context"
	"fmt"

	"jwt_auth/internal/config"
	"jwt_auth/internal/storage/memory"
	"jwt_auth/internal/storage/postgresql"
	redisapp "jwt_auth/internal/storage/redis"
)

type Repository struct {
	User  UserRepository
	close func() error
}

// NewRepository opens the account store selected by cfg.Storage.Driver.
func NewRepository(ctx context.Context, cfg *config.Config) (*Repository, error) {
	const op = "repository.NewRepository"

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		s := memory.New()

		return &Repository{User: s, close: s.Close}, nil

	case config.DriverRedis:
		client := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		if err := client.HealthCheck(ctx); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("%s: redis: %w", op, err)
		}

		return &Repository{User: NewRedisUserRepo(client), close: client.Close}, nil

	case config.DriverPostgres:
		s, err := postgresql.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return &Repository{User: s, close: s.Close}, nil

	default:
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Storage.Driver)
	}
}

func (r *Repository) Close() error {
	if r.close == nil {
		return nil
	}

	return r.close()
}
