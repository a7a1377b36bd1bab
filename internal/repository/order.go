package repository

import (
	"slices"
	"strings"

	"driveeasy-rental-backend/internal/domain"
)

// SortCars puts cars in catalog order: oldest first, ties broken by id.
func SortCars(cars []domain.Car) {
	slices.SortStableFunc(cars, func(a, b domain.Car) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// SortRentals puts the newest rental first.
func SortRentals(rentals []domain.Rental) {
	slices.SortStableFunc(rentals, func(a, b domain.Rental) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func CloneCar(c domain.Car) domain.Car {
	c.Features = slices.Clone(c.Features)
	if c.RentalID != nil {
		id := *c.RentalID
		c.RentalID = &id
	}
	return c
}

func CloneRental(r domain.Rental) domain.Rental {
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		r.CompletedAt = &t
	}
	if r.CancelledAt != nil {
		t := *r.CancelledAt
		r.CancelledAt = &t
	}
	return r
}
