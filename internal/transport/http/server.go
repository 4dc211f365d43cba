package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"jwt_auth/internal/domain/models"
	"jwt_auth/internal/lib/logger/sl"
	"jwt_auth/internal/middleware"
	"jwt_auth/internal/services/auth"
	"jwt_auth/internal/transport/http/dto"
	"jwt_auth/internal/transport/http/dto/request"
	"jwt_auth/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

type AuthService interface {
	RegisterNewUser(ctx context.Context, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	ResetEmail(ctx context.Context, email, newEmail, password, newPassword string) (models.User, error)
}

type Routers struct {
	log         *slog.Logger
	AuthService AuthService
}

func NewRouter(log *slog.Logger, authService AuthService) *Routers {
	return &Routers{
		log:         log,
		AuthService: authService,
	}
}

// Docs redirects the root path to the Swagger UI.
func (r *Routers) Docs(c echo.Context) error {
	return c.Redirect(http.StatusTemporaryRedirect, "/docs/index.html")
}

func (r *Routers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Response{Status: "ok"})
}

// Signup godoc
// @Summary Create new user
// @Description Creates an account for the email. The password must be 5 to 24 characters.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.UserAuth true "Email and password"
// @Success 200 {object} models.UserOut
// @Failure 400 {object} response.ErrorResponse "Invalid request"
// @Failure 409 {object} response.ErrorResponse "User already exists"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /signup [post]
func (r *Routers) Signup(c echo.Context) error {
	const op = "http.routers.Signup"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.UserAuth

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRegisterRequest)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRegisterRequest.WithDetails(err.Error()))
	}

	user, err := r.AuthService.RegisterNewUser(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExist) {
			return c.JSON(http.StatusConflict, response.ErrUserAlreadyExists)
		}

		log.Error("registration failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, user.Public())
}

// Login godoc
// @Summary Create access and refresh tokens for user
// @Description OAuth2 password grant. The username is the account email.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Account email"
// @Param password formData string true "Password"
// @Param grant_type formData string false "Must be password when set"
// @Success 200 {object} models.TokenPair
// @Failure 400 {object} response.ErrorResponse "Incorrect email or password"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("username", req.Username))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	tokens, err := r.AuthService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusBadRequest, response.ErrInvalidCredentials)
		}

		log.Error("login failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, tokens)
}

// Me godoc
// @Summary Get details of currently logged in user
// @Tags auth
// @Produce json
// @Success 200 {object} models.UserOut
// @Failure 401 {object} response.ErrorResponse "Could not validate credentials"
// @Security OAuth2Password
// @Router /me [get]
func (r *Routers) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return c.JSON(http.StatusUnauthorized, response.ErrUnauthenticated)
	}

	return c.JSON(http.StatusOK, user)
}

// ResetEmail godoc
// @Summary Reset user's email address
// @Description Moves the account to a new email and sets a new password. The account id is kept.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Current email"
// @Param new_email formData string true "New email"
// @Param password formData string true "Current password"
// @Param new_password formData string true "New password"
// @Success 200 {object} models.UserOut
// @Failure 400 {object} response.ErrorResponse "Incorrect email or password"
// @Failure 409 {object} response.ErrorResponse "New email already in use"
// @Failure 500 {object} response.ErrorResponse "Internal error"
// @Router /reset_email [post]
func (r *Routers) ResetEmail(c echo.Context) error {
	const op = "http.routers.ResetEmail"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.ResetEmailRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat.WithDetails(err.Error()))
	}

	user, err := r.AuthService.ResetEmail(c.Request().Context(), req.Email, req.NewEmail, req.Password, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, response.ErrInvalidCredentials)
		case errors.Is(err, auth.ErrUserExist):
			return c.JSON(http.StatusConflict, response.ErrUserAlreadyExists)
		}

		log.Error("reset email failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, user.Public())
}
