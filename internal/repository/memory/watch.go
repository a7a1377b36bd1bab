package memory

import (
	"context"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/repository"
)

func (s *Store) carsLocked() []domain.Car {
	out := make([]domain.Car, 0, len(s.cars))
	for _, c := range s.cars {
		out = append(out, repository.CloneCar(c))
	}
	repository.SortCars(out)
	return out
}

func (s *Store) rentalsLocked() []domain.Rental {
	out := make([]domain.Rental, 0, len(s.rentals))
	for _, r := range s.rentals {
		out = append(out, repository.CloneRental(r))
	}
	repository.SortRentals(out)
	return out
}

func (s *Store) WatchCars(ctx context.Context) (<-chan []domain.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan []domain.Car, 1)
	ch <- s.carsLocked()
	s.carSubs[id] = ch

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.carSubs[id]; ok {
			delete(s.carSubs, id)
			close(c)
		}
	}()
	return ch, nil
}

func (s *Store) WatchRentals(ctx context.Context) (<-chan []domain.Rental, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errClosed
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan []domain.Rental, 1)
	ch <- s.rentalsLocked()
	s.rentalSubs[id] = ch

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.rentalSubs[id]; ok {
			delete(s.rentalSubs, id)
			close(c)
		}
	}()
	return ch, nil
}

func (s *Store) publishLocked() {
	if len(s.carSubs) > 0 {
		cars := s.carsLocked()
		for _, ch := range s.carSubs {
			replaceLatest(ch, cars)
		}
	}
	if len(s.rentalSubs) > 0 {
		rentals := s.rentalsLocked()
		for _, ch := range s.rentalSubs {
			replaceLatest(ch, rentals)
		}
	}
}

// replaceLatest drops any snapshot the reader has not picked up yet.
func replaceLatest[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
