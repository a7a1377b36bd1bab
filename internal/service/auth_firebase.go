package service

import (
	"context"
	"time"

	"firebase.google.com/go/v4/auth"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/security"
)

// FirebaseAuthClient is the part of *auth.Client the dashboard needs.
type FirebaseAuthClient interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

const adminClaim = "admin"

type firebaseAuthService struct {
	client FirebaseAuthClient
}

// NewFirebaseAuthService accepts Firebase ID tokens whose custom claims mark the
// user as an admin. Sign-in itself happens in the browser.
func NewFirebaseAuthService(client FirebaseAuthClient) AuthService {
	return &firebaseAuthService{client: client}
}

func (s *firebaseAuthService) Login(ctx context.Context, email, password string) (string, *Session, error) {
	return "", nil, domain.ErrLoginNotSupported
}

func (s *firebaseAuthService) Authenticate(ctx context.Context, idToken string) (*Session, error) {
	logger.ExternalServiceCall("firebase-auth", "VerifyIDTokenAndCheckRevoked")
	token, err := s.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		logger.ExternalServiceResult("firebase-auth", "VerifyIDTokenAndCheckRevoked", err)
		if auth.IsIDTokenRevoked(err) {
			return nil, security.ErrRevokedToken
		}
		if auth.IsIDTokenExpired(err) {
			return nil, security.ErrExpiredToken
		}
		return nil, security.ErrInvalidToken
	}
	if isAdmin, _ := token.Claims[adminClaim].(bool); !isAdmin {
		return nil, security.ErrNotAdmin
	}

	admin := domain.AdminUser{ID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		admin.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		admin.DisplayName = name
	}
	if admin.Email == "" {
		user, err := s.client.GetUser(ctx, token.UID)
		if err != nil {
			logger.Warn("Failed to load Firebase user", "uid", token.UID, "error", err)
		} else if user.UserInfo != nil {
			admin.Email = user.Email
			admin.DisplayName = user.DisplayName
		}
	}

	return &Session{Admin: admin, ID: token.UID, ExpiresAt: time.Unix(token.Expires, 0)}, nil
}

// Logout revokes every refresh token of the user, signing them out everywhere.
func (s *firebaseAuthService) Logout(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return security.ErrInvalidToken
	}
	logger.ExternalServiceCall("firebase-auth", "RevokeRefreshTokens", "uid", session.ID)
	err := s.client.RevokeRefreshTokens(ctx, session.ID)
	logger.ExternalServiceResult("firebase-auth", "RevokeRefreshTokens", err)
	return err
}
