package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/events"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/repository"
	"driveeasy-rental-backend/internal/validation"
)

type adminService struct {
	store     repository.Store
	publisher events.Publisher
	now       func() time.Time
}

func NewAdminService(store repository.Store, publisher events.Publisher, now func() time.Time) AdminService {
	if now == nil {
		now = time.Now
	}
	return &adminService{store: store, publisher: publisher, now: now}
}

func (s *adminService) GetDashboard(ctx context.Context, tab domain.CarTab) (*domain.Dashboard, error) {
	cars, err := s.store.Cars().List(ctx)
	if err != nil {
		return nil, err
	}
	rentals, err := s.store.Rentals().List(ctx, "")
	if err != nil {
		return nil, err
	}
	return &domain.Dashboard{
		Stats: domain.ComputeStats(cars, rentals),
		Tab:   tab,
		Cars:  domain.SelectTab(cars, tab),
	}, nil
}

func (s *adminService) CreateCar(ctx context.Context, in domain.CarInput) (*domain.Car, error) {
	logger.EnterMethod("adminService.CreateCar", "name", in.Name)
	in = normalizeCarInput(in)
	if err := validation.Car(in); err != nil {
		recordViolations("car", err)
		logger.ExitMethod("adminService.CreateCar", "result", "invalid")
		return nil, err
	}

	car := &domain.Car{Available: true}
	in.Apply(car)
	if err := s.store.Cars().Create(ctx, car); err != nil {
		logger.ExitMethodWithError("adminService.CreateCar", err)
		return nil, err
	}

	s.publish(ctx, domain.EventCarCreated, car.ID)
	logger.ExitMethod("adminService.CreateCar", "carID", car.ID)
	return car, nil
}

func (s *adminService) UpdateCar(ctx context.Context, id string, in domain.CarInput) (*domain.Car, error) {
	logger.EnterMethod("adminService.UpdateCar", "carID", id)
	in = normalizeCarInput(in)
	if err := validation.Car(in); err != nil {
		recordViolations("car", err)
		logger.ExitMethod("adminService.UpdateCar", "result", "invalid")
		return nil, err
	}

	// Read and write in one transaction: Update rewrites available/rentalId.
	var car *domain.Car
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		c, err := tx.Cars().GetByID(ctx, id)
		if err != nil {
			return err
		}
		in.Apply(c)
		if err := tx.Cars().Update(ctx, c); err != nil {
			return err
		}
		car = c
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("adminService.UpdateCar", err, "carID", id)
		return nil, err
	}

	s.publish(ctx, domain.EventCarUpdated, car.ID)
	logger.ExitMethod("adminService.UpdateCar", "carID", id)
	return car, nil
}

// DeleteCar removes a car that no active rental holds.
func (s *adminService) DeleteCar(ctx context.Context, id string) error {
	logger.EnterMethod("adminService.DeleteCar", "carID", id)
	err := s.store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		car, err := tx.Cars().GetByID(ctx, id)
		if err != nil {
			return err
		}
		active, err := tx.Rentals().ListActiveByCar(ctx, id)
		if err != nil {
			return err
		}
		if len(active) > 0 || !car.Available {
			return fmt.Errorf("%w: %s", domain.ErrCarHasActiveRental, car.Name)
		}
		return tx.Cars().Delete(ctx, id)
	})
	if err != nil {
		logger.ExitMethodWithError("adminService.DeleteCar", err, "carID", id)
		return err
	}

	s.publish(ctx, domain.EventCarDeleted, id)
	logger.ExitMethod("adminService.DeleteCar", "carID", id)
	return nil
}

func (s *adminService) ListRentals(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	return s.store.Rentals().List(ctx, status)
}

func (s *adminService) WatchRentals(ctx context.Context) (<-chan []domain.Rental, error) {
	return s.store.WatchRentals(ctx)
}

func (s *adminService) publish(ctx context.Context, typ domain.EventType, carID string) {
	ev := domain.Event{
		ID:         uuid.NewString(),
		Type:       typ,
		CarID:      carID,
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.Error("Failed to publish event", "type", typ, "car_id", carID, "error", err)
	}
}

func normalizeCarInput(in domain.CarInput) domain.CarInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	features := make([]string, 0, len(in.Features))
	for _, f := range in.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}
	in.Features = features
	return in
}
