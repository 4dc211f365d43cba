// Package identity turns a bearer access token into the account it was issued for.
//
// Every token failure and a missing account collapse into ErrUnauthenticated so
// callers cannot tell which check failed. The account store is read once per
// call and nothing is cached, so a deleted account stops resolving immediately.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jwt_auth/internal/domain/models"
	"jwt_auth/internal/lib/logger/sl"
	"jwt_auth/internal/metrics"
	"jwt_auth/internal/storage"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type AccessTokenParser interface {
	ParseAccess(token string) (models.TokenClaims, error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
}

type Resolver struct {
	log    *slog.Logger
	tokens AccessTokenParser
	users  UserProvider
}

func New(log *slog.Logger, tokens AccessTokenParser, users UserProvider) *Resolver {
	return &Resolver{
		log:    log,
		tokens: tokens,
		users:  users,
	}
}

// Resolve returns the public record of the account the access token was issued for.
// Store failures other than not-found are returned wrapped, never as a success.
func (r *Resolver) Resolve(ctx context.Context, accessToken string) (models.UserOut, error) {
	const op = "identity.Resolve"

	log := r.log.With(slog.String("op", op))

	if accessToken == "" {
		metrics.ObserveAuth("resolve", metrics.ResultFailure)

		return models.UserOut{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	claims, err := r.tokens.ParseAccess(accessToken)
	if err != nil {
		log.Debug("token rejected", sl.Err(err))
		metrics.ObserveAuth("resolve", metrics.ResultFailure)

		return models.UserOut{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
	}

	user, err := r.users.User(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Debug("token subject no longer exists", slog.String("email", claims.Subject))
			metrics.ObserveAuth("resolve", metrics.ResultFailure)

			return models.UserOut{}, fmt.Errorf("%s: %w", op, ErrUnauthenticated)
		}

		log.Error("failed to get user", sl.Err(err))
		metrics.ObserveAuth("resolve", metrics.ResultError)

		return models.UserOut{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ObserveAuth("resolve", metrics.ResultSuccess)

	return user.Public(), nil
}
