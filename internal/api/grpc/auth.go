package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"driveeasy-rental-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token, session, err := h.authSvc.Login(ctx, stringField(req, "email"), stringField(req, "password"))
	if err != nil {
		return nil, toStatus(err)
	}
	fields := mapSession(session)
	fields["token"] = str(token)
	return obj(fields), nil
}

func (h *AuthHandler) Logout(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := h.authSvc.Logout(ctx, session); err != nil {
		return nil, toStatus(err)
	}
	return obj(map[string]*structpb.Value{"success": flag(true)}), nil
}

func (h *AuthHandler) CurrentUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	session, err := SessionFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return obj(mapSession(session)), nil
}
