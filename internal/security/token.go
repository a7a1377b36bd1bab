package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"driveeasy-rental-backend/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")
	ErrNotAdmin     = errors.New("account is not an administrator")
)

const (
	issuer        = "driveeasy-auth"
	adminAudience = "driveeasy-admin"
	RoleAdmin     = "admin"
)

// AdminClaims are carried by dashboard session tokens
type AdminClaims struct {
	Email       string   `json:"email"`
	DisplayName string   `json:"name,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

func (c *AdminClaims) IsAdmin() bool {
	for _, r := range c.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

func (c *AdminClaims) Admin() domain.AdminUser {
	return domain.AdminUser{ID: c.Subject, Email: c.Email, DisplayName: c.DisplayName}
}

type TokenManager interface {
	GenerateSessionToken(admin domain.AdminUser) (string, *AdminClaims, error)
	ValidateToken(tokenString string) (*AdminClaims, error)
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *tokenManager) GenerateSessionToken(admin domain.AdminUser) (string, *AdminClaims, error) {
	now := m.now()
	claims := &AdminClaims{
		Email:       admin.Email,
		DisplayName: admin.DisplayName,
		Roles:       []string{RoleAdmin},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   admin.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{adminAudience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

func (m *tokenManager) ValidateToken(tokenString string) (*AdminClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(adminAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AdminClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return claims, nil
}
