package firestore

import (
	"context"

	"cloud.google.com/go/firestore"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/repository"
)

type rentalRepository struct {
	s  *Store
	tx *firestore.Transaction
}

func (r *rentalRepository) documents(ctx context.Context, q firestore.Query) *firestore.DocumentIterator {
	if r.tx != nil {
		return r.tx.Documents(q)
	}
	return q.Documents(ctx)
}

func (r *rentalRepository) query(ctx context.Context, op string, q firestore.Query) ([]domain.Rental, error) {
	logger.StoreCall(op, repository.RentalsCollection)
	docs, err := r.documents(ctx, q).GetAll()
	if err != nil {
		logger.StoreResult(op, 0, err)
		return nil, classify(op, "", "", err)
	}
	rentals := decodeRentals(docs)
	logger.StoreResult(op, len(rentals), nil)
	return rentals, nil
}

func decodeRentals(docs []*firestore.DocumentSnapshot) []domain.Rental {
	rentals := make([]domain.Rental, 0, len(docs))
	for _, doc := range docs {
		rt, err := rentalFromDoc(doc.Ref.ID, doc.Data())
		if err != nil {
			logger.Warn("Skipping malformed rental document", "id", doc.Ref.ID, "error", err)
			continue
		}
		rentals = append(rentals, rt)
	}
	repository.SortRentals(rentals)
	return rentals
}

func (r *rentalRepository) List(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	q := r.s.rentals().Query
	if status != "" {
		q = q.Where("status", "==", string(status))
	}
	return r.query(ctx, "rentals.list", q)
}

func (r *rentalRepository) ListActiveByCar(ctx context.Context, carID string) ([]domain.Rental, error) {
	q := r.s.rentals().
		Where("carId", "==", carID).
		Where("status", "==", string(domain.RentalStatusActive))
	return r.query(ctx, "rentals.list_active_by_car", q)
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	ref := r.s.rentals().Doc(id)
	var (
		doc *firestore.DocumentSnapshot
		err error
	)
	if r.tx != nil {
		doc, err = r.tx.Get(ref)
	} else {
		doc, err = ref.Get(ctx)
	}
	if err != nil {
		return nil, classify("rentals.get", "rental", id, err)
	}
	rt, err := rentalFromDoc(doc.Ref.ID, doc.Data())
	if err != nil {
		return nil, domain.NewPersistenceError("rentals.get", err)
	}
	return &rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rental *domain.Rental) error {
	ref := r.s.rentals().NewDoc()
	now := r.s.now().UTC()
	rental.ID = ref.ID
	if rental.CreatedAt.IsZero() {
		rental.CreatedAt = now
	}
	rental.UpdatedAt = now

	logger.StoreCall("rentals.create", repository.RentalsCollection, "id", rental.ID, "car_id", rental.CarID)
	var err error
	if r.tx != nil {
		err = r.tx.Create(ref, rentalToDoc(*rental))
	} else {
		_, err = ref.Create(ctx, rentalToDoc(*rental))
	}
	logger.StoreResult("rentals.create", 1, err)
	return classify("rentals.create", "", "", err)
}

func (r *rentalRepository) Update(ctx context.Context, rental *domain.Rental) error {
	ref := r.s.rentals().Doc(rental.ID)
	rental.UpdatedAt = r.s.now().UTC()
	updates := []firestore.Update{
		{Path: "status", Value: string(rental.Status)},
		{Path: "completedAt", Value: timeOrNil(rental.CompletedAt)},
		{Path: "cancelledAt", Value: timeOrNil(rental.CancelledAt)},
		{Path: "updatedAt", Value: rental.UpdatedAt},
	}

	logger.StoreCall("rentals.update", repository.RentalsCollection, "id", rental.ID)
	var err error
	if r.tx != nil {
		err = r.tx.Update(ref, updates)
	} else {
		_, err = ref.Update(ctx, updates)
	}
	logger.StoreResult("rentals.update", 1, err)
	return classify("rentals.update", "rental", rental.ID, err)
}
