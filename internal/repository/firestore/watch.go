package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/repository"
)

func (s *Store) WatchCars(ctx context.Context) (<-chan []domain.Car, error) {
	return watch(ctx, s.cars().Query, repository.CarsCollection, decodeCars), nil
}

func (s *Store) WatchRentals(ctx context.Context) (<-chan []domain.Rental, error) {
	return watch(ctx, s.rentals().Query, repository.RentalsCollection, decodeRentals), nil
}

// watch follows a snapshot listener on q. The first snapshot carries the whole
// collection; each later one is decoded in full as well.
func watch[T any](ctx context.Context, q firestore.Query, collection string, decode func([]*firestore.DocumentSnapshot) T) <-chan T {
	out := make(chan T, 1)
	log := logger.WithComponent("firestore.listener").With("collection", collection)

	go func() {
		defer close(out)
		it := q.Snapshots(ctx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
					return
				}
				log.Error("Snapshot listener stopped", "error", err)
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Error("Failed to read snapshot", "error", err)
				continue
			}
			v := decode(docs)
			select {
			case <-out:
			default:
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
