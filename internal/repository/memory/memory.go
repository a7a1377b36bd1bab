// Package memory is an in-process Store used for local development and as the
// fake System of Record in tests.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/repository"
)

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

type Store struct {
	mu      sync.Mutex
	cars    map[string]domain.Car
	rentals map[string]domain.Rental
	failing map[string]error

	carSubs    map[int]chan []domain.Car
	rentalSubs map[int]chan []domain.Rental
	nextSub    int
	closed     bool

	now   func() time.Time
	newID func() string
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		cars:       make(map[string]domain.Car),
		rentals:    make(map[string]domain.Rental),
		failing:    make(map[string]error),
		carSubs:    make(map[int]chan []domain.Car),
		rentalSubs: make(map[int]chan []domain.Rental),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailOn makes every later call of op return err until cleared with a nil err.
// Ops are named "cars.create", "cars.update", "cars.delete", "rentals.create"
// and "rentals.update".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failing, op)
		return
	}
	s.failing[op] = err
}

func (s *Store) Cars() repository.CarRepository {
	return &carRepo{s: s}
}

func (s *Store) Rentals() repository.RentalRepository {
	return &rentalRepo{s: s}
}

type tx struct {
	s *Store
}

func (t tx) Cars() repository.CarRepository       { return &carRepo{s: t.s, locked: true} }
func (t tx) Rentals() repository.RentalRepository { return &rentalRepo{s: t.s, locked: true} }

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cars := make(map[string]domain.Car, len(s.cars))
	for k, v := range s.cars {
		cars[k] = repository.CloneCar(v)
	}
	rentals := make(map[string]domain.Rental, len(s.rentals))
	for k, v := range s.rentals {
		rentals[k] = repository.CloneRental(v)
	}
	rollback := func() {
		s.cars = cars
		s.rentals = rentals
	}

	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx{s: s}); err != nil {
		rollback()
		return err
	}
	s.publishLocked()
	return nil
}

func (s *Store) checkFail(op string) error {
	if err, ok := s.failing[op]; ok {
		return domain.NewPersistenceError(op, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.carSubs {
		close(ch)
		delete(s.carSubs, id)
	}
	for id, ch := range s.rentalSubs {
		close(ch)
		delete(s.rentalSubs, id)
	}
	return nil
}

var errClosed = errors.New("memory store is closed")
