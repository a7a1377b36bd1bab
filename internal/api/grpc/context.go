package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"driveeasy-rental-backend/internal/service"
)

type sessionKey struct{}

// WithSession attaches the authenticated admin session to ctx.
func WithSession(ctx context.Context, s *service.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session set by the auth interceptor.
func SessionFromContext(ctx context.Context) (*service.Session, error) {
	s, ok := ctx.Value(sessionKey{}).(*service.Session)
	if !ok || s == nil {
		return nil, status.Error(codes.Unauthenticated, "no admin session")
	}
	return s, nil
}
