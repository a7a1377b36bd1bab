package service

import (
	"context"

	"driveeasy-rental-backend/internal/catalog"
	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/repository"
)

type catalogService struct {
	store repository.Store
}

func NewCatalogService(store repository.Store) CatalogService {
	return &catalogService{store: store}
}

func (s *catalogService) ListCars(ctx context.Context, query string, sort catalog.SortKey) ([]domain.Car, error) {
	cars, err := s.store.Cars().List(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Search(cars, query, sort), nil
}

func (s *catalogService) GetCar(ctx context.Context, id string) (*domain.Car, error) {
	return s.store.Cars().GetByID(ctx, id)
}

func (s *catalogService) WatchCars(ctx context.Context, query string, sort catalog.SortKey) (<-chan []domain.Car, error) {
	src, err := s.store.WatchCars(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan []domain.Car, 1)
	go func() {
		defer close(out)
		for cars := range src {
			view := catalog.Search(cars, query, sort)
			select {
			case out <- view:
			case <-ctx.Done():
				return
			}
		}
		logger.Debug("Catalog watch closed", "query", query)
	}()
	return out, nil
}
