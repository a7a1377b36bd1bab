package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
)

const (
	carsChannel    = "cars_changed"
	rentalsChannel = "rentals_changed"

	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPing         = 90 * time.Second
)

var errWatchDisabled = errors.New("postgres store has no listen dsn configured")

func (s *Store) WatchCars(ctx context.Context) (<-chan []domain.Car, error) {
	return watch(ctx, s.dsn, carsChannel, s.CarRepository.List)
}

func (s *Store) WatchRentals(ctx context.Context) (<-chan []domain.Rental, error) {
	return watch(ctx, s.dsn, rentalsChannel, func(ctx context.Context) ([]domain.Rental, error) {
		return s.RentalRepository.List(ctx, "")
	})
}

// watch re-reads the table every time the change trigger fires on channel and
// after every reconnect, since notifications sent while disconnected are lost.
func watch[T any](ctx context.Context, dsn, channel string, load func(context.Context) (T, error)) (<-chan T, error) {
	if dsn == "" {
		return nil, errWatchDisabled
	}
	log := logger.WithComponent("postgres.listener").With("channel", channel)

	listener := pq.NewListener(dsn, listenerMinReconnect, listenerMaxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Warn("Listener event", "event", ev, "error", err)
		}
	})
	if err := listener.Listen(channel); err != nil {
		listener.Close()
		return nil, domain.NewPersistenceError("listen", err)
	}

	first, err := load(ctx)
	if err != nil {
		listener.Close()
		return nil, err
	}

	out := make(chan T, 1)
	out <- first

	go func() {
		defer close(out)
		defer listener.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-listener.Notify:
				// A nil notification signals a reconnect; reload either way.
			case <-time.After(listenerPing):
				if err := listener.Ping(); err != nil {
					log.Warn("Listener ping failed", "error", err)
				}
				continue
			}
			snap, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error("Failed to reload snapshot", "error", err)
				continue
			}
			select {
			case <-out:
			default:
			}
			out <- snap
		}
	}()
	return out, nil
}
