package memory

import (
	"context"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/repository"
)

type rentalRepo struct {
	s      *Store
	locked bool
}

func (r *rentalRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *rentalRepo) commit() {
	if !r.locked {
		r.s.publishLocked()
	}
}

func (r *rentalRepo) List(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	defer r.lock()()
	all := r.s.rentalsLocked()
	if status == "" {
		return all, nil
	}
	out := all[:0]
	for _, rt := range all {
		if rt.Status == status {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r *rentalRepo) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	defer r.lock()()
	rt, ok := r.s.rentals[id]
	if !ok {
		return nil, domain.NewNotFound("rental", id)
	}
	rt = repository.CloneRental(rt)
	return &rt, nil
}

func (r *rentalRepo) ListActiveByCar(ctx context.Context, carID string) ([]domain.Rental, error) {
	defer r.lock()()
	var out []domain.Rental
	for _, rt := range r.s.rentalsLocked() {
		if rt.CarID == carID && rt.Status == domain.RentalStatusActive {
			out = append(out, rt)
		}
	}
	return out, nil
}

func (r *rentalRepo) Create(ctx context.Context, rental *domain.Rental) error {
	defer r.lock()()
	if err := r.s.checkFail("rentals.create"); err != nil {
		return err
	}
	now := r.s.now().UTC()
	if rental.ID == "" {
		rental.ID = r.s.newID()
	}
	if rental.CreatedAt.IsZero() {
		rental.CreatedAt = now
	}
	rental.UpdatedAt = now
	r.s.rentals[rental.ID] = repository.CloneRental(*rental)
	r.commit()
	return nil
}

func (r *rentalRepo) Update(ctx context.Context, rental *domain.Rental) error {
	defer r.lock()()
	if err := r.s.checkFail("rentals.update"); err != nil {
		return err
	}
	if _, ok := r.s.rentals[rental.ID]; !ok {
		return domain.NewNotFound("rental", rental.ID)
	}
	rental.UpdatedAt = r.s.now().UTC()
	r.s.rentals[rental.ID] = repository.CloneRental(*rental)
	r.commit()
	return nil
}
