package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/repository"
)

const carColumns = `id, name, type, brand, year, price_per_day_cents, description, image_url, features, available, rental_id, created_at, updated_at`

type carRepository struct {
	q querier
	// forUpdate locks fetched rows until the surrounding transaction ends.
	forUpdate bool
}

func NewCarRepository(db *sql.DB) repository.CarRepository {
	return &carRepository{q: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCar(row rowScanner) (domain.Car, error) {
	var c domain.Car
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.Brand, &c.Year, &c.PricePerDayCents, &c.Description, &c.ImageURL,
		pq.Array(&c.Features), &c.Available, &c.RentalID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *carRepository) List(ctx context.Context) ([]domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars ORDER BY created_at, id`
	logger.StoreCall("cars.list", "cars")
	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		logger.StoreResult("cars.list", 0, err)
		return nil, storeErr("cars.list", "car", "", err)
	}
	defer rows.Close()

	var cars []domain.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, storeErr("cars.list", "car", "", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("cars.list", "car", "", err)
	}
	logger.StoreResult("cars.list", len(cars), nil)
	return cars, nil
}

func (r *carRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	c, err := scanCar(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, storeErr("cars.get", "car", id, err)
	}
	return &c, nil
}

func (r *carRepository) Create(ctx context.Context, c *domain.Car) error {
	query := `INSERT INTO cars (name, type, brand, year, price_per_day_cents, description, image_url, features, available, rental_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id, created_at, updated_at`
	logger.StoreCall("cars.create", "cars", "name", c.Name)
	err := r.q.QueryRowContext(ctx, query, c.Name, c.Type, c.Brand, c.Year, c.PricePerDayCents, c.Description, c.ImageURL,
		pq.Array(c.Features), c.Available, c.RentalID).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	logger.StoreResult("cars.create", 1, err)
	return storeErr("cars.create", "car", c.ID, err)
}

func (r *carRepository) Update(ctx context.Context, c *domain.Car) error {
	query := `UPDATE cars SET name=$1, type=$2, brand=$3, year=$4, price_per_day_cents=$5, description=$6, image_url=$7,
	          features=$8, available=$9, rental_id=$10, updated_at=now() WHERE id=$11 RETURNING updated_at`
	logger.StoreCall("cars.update", "cars", "id", c.ID)
	err := r.q.QueryRowContext(ctx, query, c.Name, c.Type, c.Brand, c.Year, c.PricePerDayCents, c.Description, c.ImageURL,
		pq.Array(c.Features), c.Available, c.RentalID, c.ID).Scan(&c.UpdatedAt)
	logger.StoreResult("cars.update", 1, err)
	return storeErr("cars.update", "car", c.ID, err)
}

func (r *carRepository) Delete(ctx context.Context, id string) error {
	logger.StoreCall("cars.delete", "cars", "id", id)
	res, err := r.q.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		logger.StoreResult("cars.delete", 0, err)
		return storeErr("cars.delete", "car", id, err)
	}
	n, _ := res.RowsAffected()
	logger.StoreResult("cars.delete", int(n), nil)
	if n == 0 {
		return domain.NewNotFound("car", id)
	}
	return nil
}
