package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/grams-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-secret-that-is-long-enough-for-testing",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
}

func newTestService(t *testing.T, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newHMACJWTService(testAuthConfig(), func() time.Time { return now })
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(testAuthConfig())
	assert.NoError(t, err)

	short := testAuthConfig()
	short.JWTSecret = "too-short"
	_, err = NewJWTService(short)
	assert.ErrorContains(t, err, "at least 32 characters")

	zero := testAuthConfig()
	zero.TokenLifetimeMinutes = 0
	_, err = NewJWTService(zero)
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, fixedTime)
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	issuer := newTestService(t, fixedTime)
	access, err := issuer.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	otherKey := testAuthConfig()
	otherKey.JWTSecret = "wrong-secret-that-is-long-enough-for-testing"
	forger, err := newHMACJWTService(otherKey, func() time.Time { return fixedTime })
	require.NoError(t, err)
	forged, err := forger.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"uid": userID.String()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		token   string
		wantErr error
	}{
		{name: "valid", now: fixedTime, token: access},
		{name: "within clock skew", now: fixedTime.Add(time.Hour + time.Minute), token: access},
		{name: "expired", now: fixedTime.Add(time.Hour + 3*time.Minute), token: access, wantErr: ErrExpiredToken},
		{name: "wrong signature", now: fixedTime, token: forged, wantErr: ErrInvalidToken},
		{name: "malformed", now: fixedTime, token: "not.a.jwt", wantErr: ErrInvalidToken},
		{name: "unsigned", now: fixedTime, token: noneToken, wantErr: ErrInvalidToken},
		{name: "refresh token used as access", now: fixedTime, token: refresh, wantErr: ErrWrongTokenType},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, tt.now)
			claims, err := svc.ValidateToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	issuer := newTestService(t, fixedTime)
	access, err := issuer.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		now     time.Time
		token   string
		wantErr error
	}{
		{name: "valid", now: fixedTime.Add(23 * time.Hour), token: refresh},
		{name: "expired", now: fixedTime.Add(25 * time.Hour), token: refresh, wantErr: ErrExpiredRefreshToken},
		{name: "access token used as refresh", now: fixedTime, token: access, wantErr: ErrWrongTokenType},
		{name: "garbage", now: fixedTime, token: "garbage", wantErr: ErrInvalidRefreshToken},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := newTestService(t, tt.now).ValidateRefreshToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, TokenTypeRefresh, claims.TokenType)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
