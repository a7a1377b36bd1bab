package interceptor

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	apigrpc "driveeasy-rental-backend/internal/api/grpc"
	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/security"
	"driveeasy-rental-backend/internal/service"
)

type AuthInterceptor struct {
	authSvc service.AuthService
}

func NewAuthInterceptor(authSvc service.AuthService) *AuthInterceptor {
	return &AuthInterceptor{authSvc: authSvc}
}

// Unary returns a server interceptor function to authenticate and authorize unary RPCs
func (i *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		newCtx, err := i.authorize(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(newCtx, req)
	}
}

// Stream applies the same checks to streaming RPCs.
func (i *AuthInterceptor) Stream() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		newCtx, err := i.authorize(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &contextStream{ServerStream: ss, ctx: newCtx})
	}
}

func (i *AuthInterceptor) authorize(ctx context.Context, method string) (context.Context, error) {
	// Public endpoint - skip auth
	if config.GetSecurityLevel(method) == config.SecurityPublic {
		return ctx, nil
	}

	token, err := extractToken(ctx)
	if err != nil {
		return nil, err
	}

	session, err := i.authSvc.Authenticate(ctx, token)
	if err != nil {
		logger.Warn("Rejected admin call", "method", method, "error", err)
		if errors.Is(err, security.ErrNotAdmin) {
			return nil, status.Error(codes.PermissionDenied, err.Error())
		}
		return nil, status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}
	return apigrpc.WithSession(ctx, session), nil
}

func extractToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "metadata is not provided")
	}

	authHeader := md["authorization"]
	if len(authHeader) == 0 {
		return "", status.Error(codes.Unauthenticated, "authorization token is not provided")
	}

	token := authHeader[0]
	// Remove Bearer prefix if present
	if len(token) > 7 && strings.ToUpper(token[0:7]) == "BEARER " {
		token = token[7:]
	}
	if token == "" {
		return "", status.Error(codes.Unauthenticated, "authorization token is empty")
	}
	return token, nil
}

// contextStream overrides the context seen by stream handlers.
type contextStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *contextStream) Context() context.Context {
	return s.ctx
}
