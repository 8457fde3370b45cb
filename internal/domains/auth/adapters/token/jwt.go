// Package token signs session bearer tokens as HS256 JWTs.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/shroombros/shroom-api/internal/domains/auth/domain"
	"github.com/shroombros/shroom-api/internal/domains/auth/ports"
)

const Issuer = "shroom-api"

var ErrEmptySecret = errors.New("jwt secret is required")

var _ ports.TokenIssuer = (*JWTIssuer)(nil)

type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewJWTIssuer(secret string) (*JWTIssuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &JWTIssuer{secret: []byte(secret), now: time.Now}, nil
}

// WithClock sets the time used to validate expiry.
func (i *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	if now != nil {
		i.now = now
	}
	return i
}

// Issue signs a token whose jti is the session id and whose subject is the user id.
func (i *JWTIssuer) Issue(session *domain.Session) (string, error) {
	if session == nil {
		return "", errors.New("session is nil")
	}
	claims := jwt.RegisteredClaims{
		ID:        session.ID.String(),
		Subject:   session.UserID.String(),
		Issuer:    Issuer,
		IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (i *JWTIssuer) Verify(raw string) (*ports.Claims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrInvalidToken, err)
	}
	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad jti", ports.ErrInvalidToken)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ports.ErrInvalidToken)
	}
	return &ports.Claims{SessionID: sessionID, UserID: userID, ExpiresAt: claims.ExpiresAt.Time}, nil
}
