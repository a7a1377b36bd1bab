package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"driveeasy-rental-backend/internal/service"
)

type ContactHandler struct {
	contactSvc service.ContactService
}

func NewContactHandler(contactSvc service.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

func (h *ContactHandler) SendMessage(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := h.contactSvc.SendMessage(ctx, MapStructToContactMessage(req)); err != nil {
		return nil, toStatus(err)
	}
	return obj(map[string]*structpb.Value{"success": flag(true)}), nil
}
