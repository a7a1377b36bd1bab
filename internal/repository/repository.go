package repository

import (
	"context"

	"driveeasy-rental-backend/internal/domain"
)

const (
	CarsCollection    = "cars"
	RentalsCollection = "rentals"
)

type CarRepository interface {
	List(ctx context.Context) ([]domain.Car, error)
	GetByID(ctx context.Context, id string) (*domain.Car, error)
	// Create assigns car.ID and the timestamps.
	Create(ctx context.Context, car *domain.Car) error
	Update(ctx context.Context, car *domain.Car) error
	Delete(ctx context.Context, id string) error
}

type RentalRepository interface {
	// List returns every rental when status is empty.
	List(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error)
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	ListActiveByCar(ctx context.Context, carID string) ([]domain.Rental, error)
	Create(ctx context.Context, rental *domain.Rental) error
	Update(ctx context.Context, rental *domain.Rental) error
}

// Tx exposes the repositories bound to one unit of work.
type Tx interface {
	Cars() CarRepository
	Rentals() RentalRepository
}

// Store is the System of Record for cars and rentals. Outside a transaction the
// embedded Tx methods run each call on its own.
type Store interface {
	Tx
	// WithinTransaction runs fn atomically. Any error from fn rolls back every
	// write fn made. fn may be retried by backends with optimistic concurrency,
	// so it must not have side effects outside tx.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WatchCars emits the full car list now and after every change, until ctx
	// is done. Slow readers only see the latest snapshot.
	WatchCars(ctx context.Context) (<-chan []domain.Car, error)
	WatchRentals(ctx context.Context) (<-chan []domain.Rental, error)
	Close() error
}
