package services

import (
	"errors"
	"fmt"
	"time"

	"jwt_auth/internal/domain/models"
	"jwt_auth/internal/lib/jwt"
)

var ErrSameSecret = errors.New("access and refresh secrets must differ")

// Purpose is decided by which secret verifies a token, never by a claim.
type Secrets struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type TokenService struct {
	codec   *jwt.Codec
	secrets Secrets
}

func NewTokenService(codec *jwt.Codec, secrets Secrets) (*TokenService, error) {
	const op = "services.token_service.NewTokenService"

	if len(secrets.AccessSecret) == 0 || len(secrets.RefreshSecret) == 0 {
		return nil, fmt.Errorf("%s: %w", op, jwt.ErrEmptySecret)
	}

	if string(secrets.AccessSecret) == string(secrets.RefreshSecret) {
		return nil, fmt.Errorf("%s: %w", op, ErrSameSecret)
	}

	return &TokenService{
		codec:   codec,
		secrets: secrets,
	}, nil
}

func (s *TokenService) GenerateTokens(subject string) (*models.TokenPair, error) {
	const op = "services.token_service.GenerateTokens"

	accessToken, err := s.codec.Encode(subject, s.secrets.AccessSecret, s.secrets.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: access: %w", op, err)
	}

	refreshToken, err := s.codec.Encode(subject, s.secrets.RefreshSecret, s.secrets.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: refresh: %w", op, err)
	}

	return &models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *TokenService) ParseAccess(token string) (models.TokenClaims, error) {
	return s.codec.Decode(token, s.secrets.AccessSecret)
}

func (s *TokenService) ParseRefresh(token string) (models.TokenClaims, error) {
	return s.codec.Decode(token, s.secrets.RefreshSecret)
}
