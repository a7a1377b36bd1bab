// Package firestore keeps cars and rentals in two Cloud Firestore collections,
// the layout the storefront has always used.
package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/repository"
)

type Store struct {
	client *firestore.Client
	now    func() time.Time
}

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client, now: time.Now}
}

func (s *Store) Cars() repository.CarRepository {
	return &carRepository{s: s}
}

func (s *Store) Rentals() repository.RentalRepository {
	return &rentalRepository{s: s}
}

type txRepos struct {
	s  *Store
	tx *firestore.Transaction
}

func (t txRepos) Cars() repository.CarRepository       { return &carRepository{s: t.s, tx: t.tx} }
func (t txRepos) Rentals() repository.RentalRepository { return &rentalRepository{s: t.s, tx: t.tx} }

// WithinTransaction runs fn in a Firestore transaction. Firestore requires all
// reads to happen before the first write, and retries fn on contention.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		return fn(ctx, txRepos{s: s, tx: tx})
	})
	return classify("transaction", "", "", err)
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) cars() *firestore.CollectionRef {
	return s.client.Collection(repository.CarsCollection)
}

func (s *Store) rentals() *firestore.CollectionRef {
	return s.client.Collection(repository.RentalsCollection)
}

// classify leaves domain errors untouched and wraps transport errors.
func classify(op, kind, id string, err error) error {
	if err == nil {
		return nil
	}
	var (
		nf *domain.NotFoundError
		ve *domain.ValidationError
		te *domain.TransitionError
		pe *domain.PersistenceError
	)
	switch {
	case errors.As(err, &nf), errors.As(err, &ve), errors.As(err, &te), errors.As(err, &pe),
		errors.Is(err, domain.ErrCarUnavailable), errors.Is(err, domain.ErrCarHasActiveRental),
		errors.Is(err, domain.ErrRentalCarMismatch):
		return err
	}
	if status.Code(err) == codes.NotFound && kind != "" {
		return domain.NewNotFound(kind, id)
	}
	return domain.NewPersistenceError(op, err)
}
