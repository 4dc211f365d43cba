package jwt

import (
	"errors"
	"fmt"
	"time"

	"jwt_auth/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed            = errors.New("malformed token")
	ErrInvalidSignature     = errors.New("invalid token signature")
	ErrExpired              = errors.New("token expired")
	ErrEmptySecret          = errors.New("empty signing secret")
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
)

const DefaultAlgorithm = "HS256"

// Codec signs and verifies HMAC session tokens carrying only sub and exp.
type Codec struct {
	method *jwt.SigningMethodHMAC
	now    func() time.Time
}

type Option func(*Codec)

// WithClock replaces time.Now for both issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(algorithm string, opts ...Option) (*Codec, error) {
	const op = "jwt.NewCodec"

	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnsupportedAlgorithm, algorithm)
	}

	c := &Codec{
		method: method,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MustCodec is NewCodec for algorithms already checked by config validation.
func MustCodec(algorithm string, opts ...Option) *Codec {
	c, err := NewCodec(algorithm, opts...)
	if err != nil {
		panic(err)
	}

	return c
}

func (c *Codec) Algorithm() string {
	return c.method.Alg()
}

// Encode issues a token for subject expiring ttl from now. A ttl <= 0 gives a token that is already expired.
func (c *Codec) Encode(subject string, secret []byte, ttl time.Duration) (string, error) {
	const op = "jwt.Encode"

	if len(secret) == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	// NumericDate truncates to whole seconds, so exp never lands after now+ttl.
	token := jwt.NewWithClaims(c.method, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(c.now().Add(ttl)),
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Decode verifies the signature first and only then validates and returns the claims.
func (c *Codec) Decode(tokenString string, secret []byte) (models.TokenClaims, error) {
	const op = "jwt.Decode"

	if len(secret) == 0 {
		return models.TokenClaims{}, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}

	claims := &jwt.RegisteredClaims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return models.TokenClaims{}, fmt.Errorf("%s: %w", op, classify(err))
	}

	if !token.Valid {
		return models.TokenClaims{}, fmt.Errorf("%s: %w", op, ErrInvalidSignature)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return models.TokenClaims{}, fmt.Errorf("%s: %w", op, ErrMalformed)
	}

	return models.TokenClaims{
		Subject:   claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return ErrMalformed
	}
}
