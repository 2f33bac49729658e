// Package jwttoken issues and verifies the HS256 session tokens that identify
// the acting user on collective requests.
package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
	authmw "opencollective/pkg/platform/middleware/auth"
)

type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

type Config struct {
	SigningKey string
	Issuer     string
	Audience   string
}

// Service signs and verifies tokens for one issuer and audience.
type Service struct {
	key    []byte
	cfg    Config
	parser *jwt.Parser
	now    func() time.Time
}

func New(cfg Config) *Service {
	return &Service{
		key: []byte(cfg.SigningKey),
		cfg: cfg,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}
}

// Issue signs a token for userID valid for ttl.
func (s *Service) Issue(userID id.UserID, sessionID id.SessionID, ttl time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    userID.String(),
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(s.key)
}

// Parse verifies signature, issuer, audience and expiry. Every failure is
// CodeUnauthorized.
func (s *Service) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
	case err != nil:
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if _, err := id.ParseUserID(claims.UserID); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// ValidateToken satisfies authmw.JWTValidator.
func (s *Service) ValidateToken(raw string) (*authmw.JWTClaims, error) {
	claims, err := s.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{UserID: claims.UserID, SessionID: claims.SessionID, JTI: claims.ID}, nil
}
