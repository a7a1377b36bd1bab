package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/security"
)

func TestLocalAuthService(t *testing.T) {
	ctx := context.Background()
	hash, err := security.HashPassword("correct-horse")
	require.NoError(t, err)

	svc := NewLocalAuthService(
		[]config.AdminAccount{{ID: "admin-1", Email: "Ops@DriveEasy.test", DisplayName: "Ops", PasswordHash: hash}},
		security.NewTokenManager("test-secret", time.Hour),
		security.NewMemoryRevocationList(),
	)

	t.Run("Wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ops@driveeasy.test", "nope")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "ghost@driveeasy.test", "correct-horse")
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("Login, authenticate, logout", func(t *testing.T) {
		token, session, err := svc.Login(ctx, " ops@driveeasy.test", "correct-horse")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "admin-1", session.Admin.ID)
		assert.Equal(t, "Ops@DriveEasy.test", session.Admin.Email)

		got, err := svc.Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)

		require.NoError(t, svc.Logout(ctx, got))
		_, err = svc.Authenticate(ctx, token)
		assert.ErrorIs(t, err, security.ErrRevokedToken)
		assert.True(t, IsAuthError(err))
	})

	t.Run("Garbage token", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})
}

func TestFirebaseAuthService(t *testing.T) {
	ctx := context.Background()
	client := new(MockFirebaseAuth)
	svc := NewFirebaseAuthService(client)

	_, _, err := svc.Login(ctx, "a@b.co", "pw")
	assert.ErrorIs(t, err, domain.ErrLoginNotSupported)

	t.Run("Admin claim", func(t *testing.T) {
		client.On("VerifyIDTokenAndCheckRevoked", ctx, "admin-token").Return(&auth.Token{
			UID:     "uid-1",
			Expires: testNow.Unix(),
			Claims:  map[string]interface{}{"admin": true, "email": "boss@driveeasy.test"},
		}, nil).Once()

		session, err := svc.Authenticate(ctx, "admin-token")
		require.NoError(t, err)
		assert.Equal(t, "uid-1", session.ID)
		assert.Equal(t, "boss@driveeasy.test", session.Admin.Email)
		assert.Equal(t, testNow.Unix(), session.ExpiresAt.Unix())
	})

	t.Run("Email looked up when absent from claims", func(t *testing.T) {
		client.On("VerifyIDTokenAndCheckRevoked", ctx, "bare-token").Return(&auth.Token{
			UID:    "uid-2",
			Claims: map[string]interface{}{"admin": true},
		}, nil).Once()
		client.On("GetUser", ctx, "uid-2").Return(&auth.UserRecord{
			UserInfo: &auth.UserInfo{Email: "second@driveeasy.test", DisplayName: "Second"},
		}, nil).Once()

		session, err := svc.Authenticate(ctx, "bare-token")
		require.NoError(t, err)
		assert.Equal(t, "second@driveeasy.test", session.Admin.Email)
		assert.Equal(t, "Second", session.Admin.DisplayName)
	})

	t.Run("Not an admin", func(t *testing.T) {
		client.On("VerifyIDTokenAndCheckRevoked", ctx, "user-token").Return(&auth.Token{
			UID: "uid-3", Claims: map[string]interface{}{},
		}, nil).Once()
		_, err := svc.Authenticate(ctx, "user-token")
		assert.ErrorIs(t, err, security.ErrNotAdmin)
	})

	t.Run("Invalid token", func(t *testing.T) {
		client.On("VerifyIDTokenAndCheckRevoked", ctx, "bad").Return(nil, errors.New("malformed")).Once()
		_, err := svc.Authenticate(ctx, "bad")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("Logout revokes refresh tokens", func(t *testing.T) {
		client.On("RevokeRefreshTokens", mock.Anything, "uid-1").Return(nil).Once()
		require.NoError(t, svc.Logout(ctx, &Session{ID: "uid-1"}))
		assert.ErrorIs(t, svc.Logout(ctx, nil), security.ErrInvalidToken)
	})

	client.AssertExpectations(t)
}
