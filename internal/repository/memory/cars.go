package memory

import (
	"context"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/repository"
)

type carRepo struct {
	s      *Store
	locked bool
}

func (r *carRepo) lock() func() {
	if r.locked {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

// commit notifies watchers for writes made outside a transaction.
func (r *carRepo) commit() {
	if !r.locked {
		r.s.publishLocked()
	}
}

func (r *carRepo) List(ctx context.Context) ([]domain.Car, error) {
	defer r.lock()()
	return r.s.carsLocked(), nil
}

func (r *carRepo) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	defer r.lock()()
	c, ok := r.s.cars[id]
	if !ok {
		return nil, domain.NewNotFound("car", id)
	}
	c = repository.CloneCar(c)
	return &c, nil
}

func (r *carRepo) Create(ctx context.Context, car *domain.Car) error {
	defer r.lock()()
	if err := r.s.checkFail("cars.create"); err != nil {
		return err
	}
	now := r.s.now().UTC()
	if car.ID == "" {
		car.ID = r.s.newID()
	}
	car.CreatedAt = now
	car.UpdatedAt = now
	r.s.cars[car.ID] = repository.CloneCar(*car)
	r.commit()
	return nil
}

func (r *carRepo) Update(ctx context.Context, car *domain.Car) error {
	defer r.lock()()
	if err := r.s.checkFail("cars.update"); err != nil {
		return err
	}
	old, ok := r.s.cars[car.ID]
	if !ok {
		return domain.NewNotFound("car", car.ID)
	}
	car.CreatedAt = old.CreatedAt
	car.UpdatedAt = r.s.now().UTC()
	r.s.cars[car.ID] = repository.CloneCar(*car)
	r.commit()
	return nil
}

func (r *carRepo) Delete(ctx context.Context, id string) error {
	defer r.lock()()
	if err := r.s.checkFail("cars.delete"); err != nil {
		return err
	}
	if _, ok := r.s.cars[id]; !ok {
		return domain.NewNotFound("car", id)
	}
	delete(r.s.cars, id)
	r.commit()
	return nil
}
