package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"jwt_auth/internal/domain/models"
	"jwt_auth/internal/lib/logger/sl"
	"jwt_auth/internal/services/identity"
	"jwt_auth/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

const UserContextKey = "user"

type IdentityResolver interface {
	Resolve(ctx context.Context, accessToken string) (models.UserOut, error)
}

// Authenticate resolves the bearer access token and stores the caller under UserContextKey.
func Authenticate(log *slog.Logger, resolver IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			const op = "middleware.Authenticate"

			token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthenticated(c)
			}

			user, err := resolver.Resolve(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, identity.ErrUnauthenticated) {
					return unauthenticated(c)
				}

				log.Error("failed to resolve identity", slog.String("op", op), sl.Err(err))

				return c.JSON(http.StatusInternalServerError, response.ErrInternal)
			}

			c.Set(UserContextKey, user)

			return next(c)
		}
	}
}

// CurrentUser returns the caller stored by Authenticate.
func CurrentUser(c echo.Context) (models.UserOut, bool) {
	user, ok := c.Get(UserContextKey).(models.UserOut)
	return user, ok
}

// BearerToken extracts the credentials of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

func unauthenticated(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, response.ErrUnauthenticated)
}
