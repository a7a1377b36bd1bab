package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/security"
)

// Compared against when the email is unknown so both paths cost one bcrypt run.
const dummyPasswordHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3ZEZzRY6zGZQ9vSxK7nG3dO"

type localAuthService struct {
	admins  map[string]config.AdminAccount
	tokens  security.TokenManager
	revoked security.RevocationList
}

// NewLocalAuthService authenticates against the admin accounts in config.
func NewLocalAuthService(admins []config.AdminAccount, tokens security.TokenManager, revoked security.RevocationList) AuthService {
	byEmail := make(map[string]config.AdminAccount, len(admins))
	for _, a := range admins {
		byEmail[strings.ToLower(strings.TrimSpace(a.Email))] = a
	}
	return &localAuthService{admins: byEmail, tokens: tokens, revoked: revoked}
}

func (s *localAuthService) Login(ctx context.Context, email, password string) (string, *Session, error) {
	logger.EnterMethod("localAuthService.Login", "email", email)
	account, ok := s.admins[strings.ToLower(strings.TrimSpace(email))]
	hash := dummyPasswordHash
	if ok {
		hash = account.PasswordHash
	}
	if !security.CheckPassword(hash, password) || !ok {
		logger.Warn("Admin login rejected", "email", email)
		return "", nil, domain.ErrInvalidCredentials
	}

	admin := domain.AdminUser{ID: account.ID, Email: account.Email, DisplayName: account.DisplayName}
	if admin.ID == "" {
		admin.ID = account.Email
	}
	token, claims, err := s.tokens.GenerateSessionToken(admin)
	if err != nil {
		logger.ExitMethodWithError("localAuthService.Login", err)
		return "", nil, err
	}

	logger.ExitMethod("localAuthService.Login", "adminID", admin.ID)
	return token, sessionFromClaims(claims), nil
}

func (s *localAuthService) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, security.ErrRevokedToken
	}
	return sessionFromClaims(claims), nil
}

func (s *localAuthService) Logout(ctx context.Context, session *Session) error {
	if session == nil || session.ID == "" {
		return security.ErrInvalidToken
	}
	logger.Info("Admin logged out", "admin_id", session.Admin.ID)
	return s.revoked.Revoke(ctx, session.ID, session.ExpiresAt)
}

func sessionFromClaims(claims *security.AdminClaims) *Session {
	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return &Session{Admin: claims.Admin(), ID: claims.ID, ExpiresAt: expires}
}

// IsAuthError reports whether err means the caller presented bad credentials.
func IsAuthError(err error) bool {
	return errors.Is(err, security.ErrInvalidToken) ||
		errors.Is(err, security.ErrExpiredToken) ||
		errors.Is(err, security.ErrRevokedToken) ||
		errors.Is(err, domain.ErrInvalidCredentials)
}
