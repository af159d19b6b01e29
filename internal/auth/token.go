package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/db/models"
)

// Claims carried by a session token. The subject is the user id.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: subject %q is not a user id", ErrTokenMalformed, c.Subject)
	}

	return id, nil
}

// TokenService issues and verifies stateless HS512 session tokens.
// There is no revocation, a token is valid until it expires.
type TokenService struct {
	key    []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService returns a token service for cfg.
func NewTokenService(cfg config.Token) (*TokenService, error) {
	if len(cfg.Key) < config.MinTokenKeyLen {
		return nil, ErrTokenKeyTooShort
	}

	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = config.DefaultTokenExpiry
	}

	return &TokenService{
		key:    []byte(cfg.Key),
		expiry: expiry,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// SetClock replaces the time source, used by tests.
func (s *TokenService) SetClock(now func() time.Time) {
	s.now = now
}

// Expiry returns the absolute lifetime of issued tokens.
func (s *TokenService) Expiry() time.Duration {
	return s.expiry
}

// Issue signs a token for id expiring after the configured lifetime.
func (s *TokenService) Issue(id Identity) (string, error) {
	roleName := id.RoleName
	if roleName == "" {
		roleName = models.DefaultRoleName
	}

	now := s.now()

	claims := Claims{
		Name: id.Username,
		Role: roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(id.UserID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the claims.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}

	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	_, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return s.key, nil
	}, opts...)

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	default:
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}

	if _, err = claims.UserID(); err != nil {
		return nil, err
	}

	return claims, nil
}
