package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jwt_auth/internal/domain/models"
	"jwt_auth/internal/lib/logger/sl"
	"jwt_auth/internal/metrics"
	"jwt_auth/internal/storage"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExist          = errors.New("user already exist")
)

type Auth struct {
	log         *slog.Logger
	usrProvider UserProvider
	hasher      PasswordHasher
	tokens      TokenIssuer
}

// UserProvider is the account store; see repository.UserRepository.
type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
	SaveUser(ctx context.Context, email string, user models.User) error
	DeleteUser(ctx context.Context, email string) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type TokenIssuer interface {
	GenerateTokens(subject string) (*models.TokenPair, error)
}

func New(log *slog.Logger, userProvider UserProvider, hasher PasswordHasher, tokens TokenIssuer) *Auth {
	return &Auth{
		log:         log,
		usrProvider: userProvider,
		hasher:      hasher,
		tokens:      tokens,
	}
}

// RegisterNewUser stores a new account. The email must not be taken.
func (a *Auth) RegisterNewUser(ctx context.Context, email, pass string) (models.User, error) {
	const op = "auth.RegisterNewUser"

	log := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("register user")

	exists, err := a.exists(ctx, email)
	if err != nil {
		log.Error("failed to get user", sl.Err(err))
		metrics.ObserveAuth("signup", metrics.ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if exists {
		log.Warn("user already exist")
		metrics.ObserveAuth("signup", metrics.ResultFailure)

		return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExist)
	}

	passHash, err := a.hasher.Hash(pass)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		metrics.ObserveAuth("signup", metrics.ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passHash,
	}

	if err := a.usrProvider.SaveUser(ctx, email, user); err != nil {
		log.Error("failed to save user", sl.Err(err))
		metrics.ObserveAuth("signup", metrics.ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	metrics.ObserveAuth("signup", metrics.ResultSuccess)

	return user, nil
}

// Login checks credentials and issues an access/refresh pair for the email.
// Unknown email and wrong password both yield ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	const op = "auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", email),
	)

	log.Info("attempting to login user")

	user, err := a.checkCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Info("invalid credentials")
			metrics.ObserveAuth("login", metrics.ResultFailure)
		} else {
			log.Error("failed to get user", sl.Err(err))
			metrics.ObserveAuth("login", metrics.ResultError)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokens, err := a.tokens.GenerateTokens(user.Email)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))
		metrics.ObserveAuth("login", metrics.ResultError)

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully")
	metrics.ObserveAuth("login", metrics.ResultSuccess)

	return tokens, nil
}

// ResetEmail moves an account to newEmail and sets newPassword, keeping its ID.
// Tokens issued for the old email stop resolving.
func (a *Auth) ResetEmail(ctx context.Context, email, newEmail, password, newPassword string) (models.User, error) {
	const op = "auth.ResetEmail"

	log := a.log.With(
		slog.String("op", op),
		slog.String("email", email),
		slog.String("new_email", newEmail),
	)

	log.Info("resetting email")

	user, err := a.checkCredentials(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Info("invalid credentials")
			metrics.ObserveAuth("reset_email", metrics.ResultFailure)
		} else {
			log.Error("failed to get user", sl.Err(err))
			metrics.ObserveAuth("reset_email", metrics.ResultError)
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if newEmail != email {
		taken, err := a.exists(ctx, newEmail)
		if err != nil {
			log.Error("failed to get user", sl.Err(err))
			metrics.ObserveAuth("reset_email", metrics.ResultError)

			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}

		if taken {
			log.Warn("new email already taken")
			metrics.ObserveAuth("reset_email", metrics.ResultFailure)

			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExist)
		}
	}

	passHash, err := a.hasher.Hash(newPassword)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		metrics.ObserveAuth("reset_email", metrics.ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	updated := models.User{
		ID:           user.ID,
		Email:        newEmail,
		PasswordHash: passHash,
	}

	if err := a.usrProvider.SaveUser(ctx, newEmail, updated); err != nil {
		log.Error("failed to save user", sl.Err(err))
		metrics.ObserveAuth("reset_email", metrics.ResultError)

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if newEmail != email {
		if err := a.usrProvider.DeleteUser(ctx, email); err != nil {
			log.Error("failed to delete old record", sl.Err(err))
			metrics.ObserveAuth("reset_email", metrics.ResultError)

			// undo the new record so the account stays under the old email only
			if rbErr := a.usrProvider.DeleteUser(ctx, newEmail); rbErr != nil {
				log.Error("failed to roll back new record", sl.Err(rbErr))
			}

			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	log.Info("email reset", slog.String("user_id", updated.ID.String()))
	metrics.ObserveAuth("reset_email", metrics.ResultSuccess)

	return updated, nil
}

func (a *Auth) checkCredentials(ctx context.Context, email, password string) (models.User, error) {
	user, err := a.usrProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}

		return models.User{}, err
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (a *Auth) exists(ctx context.Context, email string) (bool, error) {
	_, err := a.usrProvider.User(ctx, email)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, storage.ErrUserNotFound) {
		return false, nil
	}

	return false, err
}
