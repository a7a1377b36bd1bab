package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"driveeasy-rental-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

func (h *RentalHandler) SubmitRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rental, err := h.rentalSvc.SubmitRental(ctx, MapStructToRentalRequest(req))
	if err != nil {
		return nil, toStatus(err)
	}
	return obj(map[string]*structpb.Value{
		"rental": structpb.NewStructValue(MapRentalToCustomerStruct(*rental)),
	}), nil
}

func (h *RentalHandler) GetRental(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rental, remaining, err := h.rentalSvc.GetRental(ctx, stringField(req, "rentalId"))
	if err != nil {
		return nil, toStatus(err)
	}
	return obj(map[string]*structpb.Value{
		"rental":        structpb.NewStructValue(MapRentalToCustomerStruct(*rental)),
		"timeRemaining": structpb.NewStructValue(MapTimeRemainingToStruct(remaining)),
	}), nil
}
