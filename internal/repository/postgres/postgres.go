package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/repository"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
	repository.CarRepository
	repository.RentalRepository
}

// NewStore wraps db. dsn is used to open the LISTEN connection behind the
// Watch methods; leave it empty to disable watching.
func NewStore(db *sql.DB, dsn string) *Store {
	return &Store{
		db:               db,
		dsn:              dsn,
		CarRepository:    NewCarRepository(db),
		RentalRepository: NewRentalRepository(db),
	}
}

func (s *Store) Cars() repository.CarRepository       { return s.CarRepository }
func (s *Store) Rentals() repository.RentalRepository { return s.RentalRepository }

// Migrate creates the tables, indexes and change triggers if missing.
func (s *Store) Migrate(ctx context.Context) error {
	logger.StoreCall("migrate", "schema")
	_, err := s.db.ExecContext(ctx, schema)
	logger.StoreResult("migrate", 0, err)
	return err
}

type txRepos struct {
	cars    *carRepository
	rentals *rentalRepository
}

func (t txRepos) Cars() repository.CarRepository       { return t.cars }
func (t txRepos) Rentals() repository.RentalRepository { return t.rentals }

func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewPersistenceError("tx.begin", err)
	}
	repos := txRepos{
		cars:    &carRepository{q: tx, forUpdate: true},
		rentals: &rentalRepository{q: tx, forUpdate: true},
	}
	if err := fn(ctx, repos); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.NewPersistenceError("tx.commit", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// storeErr classifies a driver error for op on the entity kind/id.
func storeErr(op, kind, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewNotFound(kind, id)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation && pqErr.Constraint == "rentals_one_active_per_car" {
		return fmt.Errorf("%w: car %s", domain.ErrCarUnavailable, id)
	}
	return domain.NewPersistenceError(op, err)
}
