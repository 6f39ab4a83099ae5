package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intervue/intervue-backend/internal/config"
)

func newTokenService(ttl time.Duration) *TokenService {
	return NewTokenService(&config.Config{
		JWTSecret:  "test-secret",
		SessionTTL: ttl,
	})
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := newTokenService(time.Hour)
	sessionID := uuid.New()

	token, err := svc.GenerateSessionToken(sessionID, SessionKindInterview)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, SessionKindInterview, claims.Kind)
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	token, err := newTokenService(time.Hour).GenerateSessionToken(uuid.New(), SessionKindQuiz)
	require.NoError(t, err)

	other := NewTokenService(&config.Config{JWTSecret: "different", SessionTTL: time.Hour})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	svc := newTokenService(-time.Minute)
	token, err := svc.GenerateSessionToken(uuid.New(), SessionKindInterview)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestSessionTokenRejectsGarbage(t *testing.T) {
	_, err := newTokenService(time.Hour).ValidateToken("not.a.token")
	assert.Error(t, err)
}
