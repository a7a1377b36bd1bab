package firestore

import (
	"context"

	"cloud.google.com/go/firestore"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/repository"
)

type carRepository struct {
	s  *Store
	tx *firestore.Transaction
}

func (r *carRepository) List(ctx context.Context) ([]domain.Car, error) {
	logger.StoreCall("cars.list", repository.CarsCollection)
	var it *firestore.DocumentIterator
	if r.tx != nil {
		it = r.tx.Documents(r.s.cars())
	} else {
		it = r.s.cars().Documents(ctx)
	}
	docs, err := it.GetAll()
	if err != nil {
		logger.StoreResult("cars.list", 0, err)
		return nil, classify("cars.list", "", "", err)
	}
	cars := decodeCars(docs)
	logger.StoreResult("cars.list", len(cars), nil)
	return cars, nil
}

func decodeCars(docs []*firestore.DocumentSnapshot) []domain.Car {
	cars := make([]domain.Car, 0, len(docs))
	for _, doc := range docs {
		c, err := carFromDoc(doc.Ref.ID, doc.Data())
		if err != nil {
			logger.Warn("Skipping malformed car document", "id", doc.Ref.ID, "error", err)
			continue
		}
		cars = append(cars, c)
	}
	repository.SortCars(cars)
	return cars
}

func (r *carRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	ref := r.s.cars().Doc(id)
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
		return nil, classify("cars.get", "car", id, err)
	}
	c, err := carFromDoc(doc.Ref.ID, doc.Data())
	if err != nil {
		return nil, domain.NewPersistenceError("cars.get", err)
	}
	return &c, nil
}

func (r *carRepository) Create(ctx context.Context, car *domain.Car) error {
	ref := r.s.cars().NewDoc()
	if car.ID != "" {
		ref = r.s.cars().Doc(car.ID)
	}
	now := r.s.now().UTC()
	car.ID = ref.ID
	car.CreatedAt = now
	car.UpdatedAt = now

	logger.StoreCall("cars.create", repository.CarsCollection, "id", car.ID)
	var err error
	if r.tx != nil {
		err = r.tx.Create(ref, carToDoc(*car))
	} else {
		_, err = ref.Create(ctx, carToDoc(*car))
	}
	logger.StoreResult("cars.create", 1, err)
	return classify("cars.create", "", "", err)
}

// Update overwrites the known fields and keeps any others on the document.
func (r *carRepository) Update(ctx context.Context, car *domain.Car) error {
	ref := r.s.cars().Doc(car.ID)
	car.UpdatedAt = r.s.now().UTC()
	doc := carToDoc(*car)
	if car.CreatedAt.IsZero() {
		delete(doc, "createdAt")
	}

	logger.StoreCall("cars.update", repository.CarsCollection, "id", car.ID)
	var err error
	if r.tx != nil {
		err = r.tx.Set(ref, doc, firestore.MergeAll)
	} else {
		_, err = ref.Set(ctx, doc, firestore.MergeAll)
	}
	logger.StoreResult("cars.update", 1, err)
	return classify("cars.update", "car", car.ID, err)
}

func (r *carRepository) Delete(ctx context.Context, id string) error {
	ref := r.s.cars().Doc(id)
	logger.StoreCall("cars.delete", repository.CarsCollection, "id", id)

	var err error
	if r.tx != nil {
		err = r.tx.Delete(ref, firestore.Exists)
	} else {
		_, err = ref.Delete(ctx, firestore.Exists)
	}
	logger.StoreResult("cars.delete", 1, err)
	return classify("cars.delete", "car", id, err)
}
