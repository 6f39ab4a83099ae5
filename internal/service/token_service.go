package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/intervue/intervue-backend/internal/config"
)

// Common token errors.
var (
	ErrTokenInvalid = errors.New("invalid session token")
)

// SessionKind distinguishes interview vs quiz tokens.
type SessionKind string

const (
	SessionKindInterview SessionKind = "interview"
	SessionKindQuiz      SessionKind = "quiz"
)

// Claims extends JWT standard claims with the session reference. A token
// addresses exactly one live session; there are no user accounts.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string      `json:"session_id"`
	Kind      SessionKind `json:"kind"`
}

// TokenService mints and validates per-session tokens.
type TokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{cfg: cfg}
}

// GenerateSessionToken creates a JWT bound to one session.
func (s *TokenService) GenerateSessionToken(sessionID uuid.UUID, kind SessionKind) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   sessionID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
		},
		SessionID: sessionID.String(),
		Kind:      kind,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token.
func (s *TokenService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
