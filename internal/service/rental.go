package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/events"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/metrics"
	"driveeasy-rental-backend/internal/repository"
	"driveeasy-rental-backend/internal/tracing"
	"driveeasy-rental-backend/internal/validation"
)

type rentalService struct {
	store     repository.Store
	emailSvc  EmailService
	publisher events.Publisher
	now       func() time.Time
}

func NewRentalService(store repository.Store, emailSvc EmailService, publisher events.Publisher, now func() time.Time) RentalService {
	if now == nil {
		now = time.Now
	}
	return &rentalService{
		store:     store,
		emailSvc:  emailSvc,
		publisher: publisher,
		now:       now,
	}
}

func (s *rentalService) SubmitRental(ctx context.Context, req domain.RentalRequest) (*domain.Rental, error) {
	ctx, span := tracing.Tracer().Start(ctx, "RentalService.SubmitRental")
	defer span.End()
	span.SetAttributes(attribute.String("car.id", req.CarID), attribute.Int("rental.days", int(req.RentalDays)))
	logger.EnterMethod("rentalService.SubmitRental", "carID", req.CarID)

	now := s.now().UTC()
	if err := validation.RentalRequest(req, now); err != nil {
		recordViolations("rental", err)
		logger.ExitMethod("rentalService.SubmitRental", "result", "invalid")
		return nil, err
	}

	var rental domain.Rental
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		car, err := tx.Cars().GetByID(ctx, req.CarID)
		if err != nil {
			return err
		}
		active, err := tx.Rentals().ListActiveByCar(ctx, car.ID)
		if err != nil {
			return err
		}
		if !car.Available || len(active) > 0 {
			return fmt.Errorf("%w: %s", domain.ErrCarUnavailable, car.Name)
		}

		rental = domain.NewActiveRental(req, *car, now)
		if err := tx.Rentals().Create(ctx, &rental); err != nil {
			return err
		}

		rentalID := rental.ID
		car.Available = false
		car.RentalID = &rentalID
		return tx.Cars().Update(ctx, car)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ExitMethodWithError("rentalService.SubmitRental", err, "carID", req.CarID)
		return nil, err
	}

	metrics.RentalsSubmitted.Inc()
	metrics.RentalRevenueCents.Add(float64(rental.TotalPriceCents))
	span.SetAttributes(attribute.String("rental.id", rental.ID))
	logger.InfoContext(ctx, "Rental started", "rental_id", rental.ID, "car_id", rental.CarID,
		"days", rental.RentalDays, "total_cents", rental.TotalPriceCents)

	if err := s.emailSvc.SendRentalConfirmation(ctx, rental); err != nil {
		logger.Error("Failed to send rental confirmation", "rental_id", rental.ID, "error", err)
	}
	s.publish(ctx, domain.EventRentalStarted, rental)

	logger.ExitMethod("rentalService.SubmitRental", "rentalID", rental.ID)
	return &rental, nil
}

func (s *rentalService) GetRental(ctx context.Context, id string) (*domain.Rental, domain.TimeRemaining, error) {
	rental, err := s.store.Rentals().GetByID(ctx, id)
	if err != nil {
		return nil, domain.TimeRemaining{}, err
	}
	remaining := domain.TimeRemaining{Expired: true}
	if rental.Status == domain.RentalStatusActive {
		remaining = domain.RemainingUntil(rental.EndTime, s.now())
	}
	return rental, remaining, nil
}

func (s *rentalService) CompleteRental(ctx context.Context, rentalID, carID string) (*domain.Rental, error) {
	ctx, span := tracing.Tracer().Start(ctx, "RentalService.CompleteRental")
	defer span.End()
	span.SetAttributes(attribute.String("rental.id", rentalID))
	logger.EnterMethod("rentalService.CompleteRental", "rentalID", rentalID, "carID", carID)

	rental, err := s.finish(ctx, rentalID, carID, domain.RentalStatusCompleted)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ExitMethodWithError("rentalService.CompleteRental", err, "rentalID", rentalID)
		return nil, err
	}

	if err := s.emailSvc.SendRentalCompleted(ctx, *rental); err != nil {
		logger.Error("Failed to send completion email", "rental_id", rental.ID, "error", err)
	}
	s.publish(ctx, domain.EventRentalCompleted, *rental)

	logger.ExitMethod("rentalService.CompleteRental", "rentalID", rentalID)
	return rental, nil
}

func (s *rentalService) CancelRental(ctx context.Context, rentalID string) (*domain.Rental, error) {
	ctx, span := tracing.Tracer().Start(ctx, "RentalService.CancelRental")
	defer span.End()
	span.SetAttributes(attribute.String("rental.id", rentalID))
	logger.EnterMethod("rentalService.CancelRental", "rentalID", rentalID)

	rental, err := s.finish(ctx, rentalID, "", domain.RentalStatusCancelled)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ExitMethodWithError("rentalService.CancelRental", err, "rentalID", rentalID)
		return nil, err
	}

	if err := s.emailSvc.SendRentalCancelled(ctx, *rental); err != nil {
		logger.Error("Failed to send cancellation email", "rental_id", rental.ID, "error", err)
	}
	s.publish(ctx, domain.EventRentalCancelled, *rental)

	logger.ExitMethod("rentalService.CancelRental", "rentalID", rentalID)
	return rental, nil
}

// finish moves a rental to a terminal status and releases its car in the same
// transaction. A second call on an already-finished rental fails with
// ErrIllegalTransition and writes nothing.
func (s *rentalService) finish(ctx context.Context, rentalID, carID string, to domain.RentalStatus) (*domain.Rental, error) {
	now := s.now()
	var rental *domain.Rental
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		rental, err = tx.Rentals().GetByID(ctx, rentalID)
		if err != nil {
			return err
		}
		if carID != "" && carID != rental.CarID {
			return fmt.Errorf("%w: rental %s is for car %s, not %s", domain.ErrRentalCarMismatch, rentalID, rental.CarID, carID)
		}

		car, err := tx.Cars().GetByID(ctx, rental.CarID)
		if errors.Is(err, domain.ErrNotFound) {
			car = nil
		} else if err != nil {
			return err
		}

		held := rental.Status.Holds()
		if err := rental.Transition(to, now); err != nil {
			return err
		}
		if err := tx.Rentals().Update(ctx, rental); err != nil {
			return err
		}

		if car == nil {
			logger.Warn("Finished rental references a missing car", "rental_id", rental.ID, "car_id", rental.CarID)
			return nil
		}
		if !held || (car.RentalID != nil && *car.RentalID != rental.ID) {
			return nil
		}
		car.Available = true
		car.RentalID = nil
		return tx.Cars().Update(ctx, car)
	})
	if err != nil {
		return nil, err
	}

	metrics.RentalTransitions.WithLabelValues(string(to)).Inc()
	logger.InfoContext(ctx, "Rental finished", "rental_id", rental.ID, "car_id", rental.CarID, "status", rental.Status)
	return rental, nil
}

func (s *rentalService) publish(ctx context.Context, typ domain.EventType, rental domain.Rental) {
	ev := domain.Event{
		ID:         uuid.NewString(),
		Type:       typ,
		CarID:      rental.CarID,
		RentalID:   rental.ID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.Error("Failed to publish event", "type", typ, "rental_id", rental.ID, "error", err)
	}
}

func recordViolations(form string, err error) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return
	}
	for _, field := range ve.Fields() {
		metrics.ValidationFailures.WithLabelValues(form, field).Inc()
	}
}
