package grpc

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/security"
	"driveeasy-rental-backend/internal/service"
)

// toStatus maps service errors onto gRPC status codes. Domain errors win over
// any status they wrap; other errors that carry a status pass through.
func toStatus(err error) error {
	if err == nil {
		return nil
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return validationStatus(ve)
	}
	var pe *domain.PersistenceError
	if errors.As(err, &pe) {
		return status.Error(codes.Unavailable, pe.Error())
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrCarUnavailable),
		errors.Is(err, domain.ErrCarHasActiveRental),
		errors.Is(err, domain.ErrConfirmationRequired),
		errors.Is(err, domain.ErrRentalCarMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken),
		errors.Is(err, security.ErrRevokedToken):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, security.ErrNotAdmin):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, service.ErrDeliveryFailed):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, domain.ErrLoginNotSupported):
		return status.Error(codes.Unimplemented, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	logger.Error("Unhandled service error", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func validationStatus(ve *domain.ValidationError) error {
	st := status.New(codes.InvalidArgument, ve.Error())
	br := &errdetails.BadRequest{}
	for _, v := range ve.Violations {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       v.Field,
			Description: v.Message,
		})
	}
	detailed, err := st.WithDetails(br)
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}

func invalidField(field, rule, msg string) error {
	return validationStatus(&domain.ValidationError{Violations: []domain.FieldViolation{{Field: field, Rule: rule, Message: msg}}})
}
