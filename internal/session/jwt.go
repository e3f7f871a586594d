package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"
)

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTManager keeps the whole session in an HMAC-signed token. Revoke is a
// no-op; the cookie is dropped by the caller.
type JWTManager struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(secret, issuer string, ttl time.Duration) (*JWTManager, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("session secret must be at least 16 bytes")
	}
	return &JWTManager{
		key:    []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (m *JWTManager) Issue(_ context.Context, id Identity) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(id.StudentID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return signed, nil
}

func (m *JWTManager) Resolve(_ context.Context, tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if !errors.Is(err, jwt.ErrTokenExpired) {
			logger.Debug.Printf("Rejected session token: %v", err)
		}
		return nil, ErrUnauthenticated
	}

	studentID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || studentID <= 0 {
		return nil, ErrUnauthenticated
	}

	return &Identity{StudentID: studentID, Email: c.Email}, nil
}

func (m *JWTManager) Revoke(context.Context, string) error {
	return nil
}

func (m *JWTManager) Close() error {
	return nil
}
