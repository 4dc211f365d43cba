package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jwt_auth/internal/domain/models"
	"jwt_auth/internal/storage"
	redisapp "jwt_auth/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

type RedisUserRepo struct {
	Client *redisapp.Client
}

func NewRedisUserRepo(client *redisapp.Client) *RedisUserRepo {
	return &RedisUserRepo{Client: client}
}

func (r *RedisUserRepo) User(ctx context.Context, email string) (models.User, error) {
	const op = "repository.user_repository.User"

	val, err := r.Client.Get(ctx, userKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var user models.User
	if err := json.Unmarshal(val, &user); err != nil {
		return models.User{}, fmt.Errorf("%s: decode: %w", op, err)
	}

	return user, nil
}

func (r *RedisUserRepo) SaveUser(ctx context.Context, email string, user models.User) error {
	const op = "repository.user_repository.SaveUser"

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	if err := r.Client.Set(ctx, userKey(email), data, 0).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisUserRepo) DeleteUser(ctx context.Context, email string) error {
	const op = "repository.user_repository.DeleteUser"

	if err := r.Client.Del(ctx, userKey(email)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func userKey(email string) string {
	return "user:" + email
}
