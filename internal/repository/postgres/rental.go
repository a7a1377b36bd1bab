package postgres

import (
	"context"
	"database/sql"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/repository"
)

const rentalColumns = `id, car_id, car_name, car_type, customer_name, email, phone, id_number, license_number, rental_days,
	start_date, start_time, end_time, daily_rate_cents, total_price_cents, status, id_file_url, license_file_url,
	completed_at, cancelled_at, created_at, updated_at`

type rentalRepository struct {
	q querier
	// forUpdate locks the fetched rental so concurrent completions serialize
	// on it and the loser sees the committed status.
	forUpdate bool
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{q: db}
}

func scanRental(row rowScanner) (domain.Rental, error) {
	var rt domain.Rental
	err := row.Scan(&rt.ID, &rt.CarID, &rt.CarName, &rt.CarType, &rt.CustomerName, &rt.Email, &rt.Phone, &rt.IDNumber,
		&rt.LicenseNumber, &rt.RentalDays, &rt.StartDate, &rt.StartTime, &rt.EndTime, &rt.DailyRateCents,
		&rt.TotalPriceCents, &rt.Status, &rt.IDFileURL, &rt.LicenseFileURL, &rt.CompletedAt, &rt.CancelledAt,
		&rt.CreatedAt, &rt.UpdatedAt)
	return rt, err
}

func (r *rentalRepository) query(ctx context.Context, op, query string, args ...any) ([]domain.Rental, error) {
	logger.StoreCall(op, "rentals")
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		logger.StoreResult(op, 0, err)
		return nil, storeErr(op, "rental", "", err)
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, storeErr(op, "rental", "", err)
		}
		rentals = append(rentals, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, "rental", "", err)
	}
	logger.StoreResult(op, len(rentals), nil)
	return rentals, nil
}

func (r *rentalRepository) List(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	if status == "" {
		return r.query(ctx, "rentals.list", `SELECT `+rentalColumns+` FROM rentals ORDER BY created_at DESC, id`)
	}
	return r.query(ctx, "rentals.list", `SELECT `+rentalColumns+` FROM rentals WHERE status = $1 ORDER BY created_at DESC, id`, status)
}

func (r *rentalRepository) ListActiveByCar(ctx context.Context, carID string) ([]domain.Rental, error) {
	return r.query(ctx, "rentals.list_active_by_car",
		`SELECT `+rentalColumns+` FROM rentals WHERE car_id = $1 AND status = $2 ORDER BY created_at DESC, id`,
		carID, domain.RentalStatusActive)
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	if r.forUpdate {
		query += ` FOR UPDATE`
	}
	rt, err := scanRental(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, storeErr("rentals.get", "rental", id, err)
	}
	return &rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (car_id, car_name, car_type, customer_name, email, phone, id_number, license_number,
	          rental_days, start_date, start_time, end_time, daily_rate_cents, total_price_cents, status, id_file_url, license_file_url)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	          RETURNING id, created_at, updated_at`
	logger.StoreCall("rentals.create", "rentals", "car_id", rt.CarID)
	err := r.q.QueryRowContext(ctx, query, rt.CarID, rt.CarName, rt.CarType, rt.CustomerName, rt.Email, rt.Phone,
		rt.IDNumber, rt.LicenseNumber, rt.RentalDays, rt.StartDate, rt.StartTime, rt.EndTime, rt.DailyRateCents,
		rt.TotalPriceCents, rt.Status, rt.IDFileURL, rt.LicenseFileURL).Scan(&rt.ID, &rt.CreatedAt, &rt.UpdatedAt)
	logger.StoreResult("rentals.create", 1, err)
	return storeErr("rentals.create", "rental", rt.CarID, err)
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET status=$1, completed_at=$2, cancelled_at=$3, updated_at=now() WHERE id=$4 RETURNING updated_at`
	logger.StoreCall("rentals.update", "rentals", "id", rt.ID)
	err := r.q.QueryRowContext(ctx, query, rt.Status, rt.CompletedAt, rt.CancelledAt, rt.ID).Scan(&rt.UpdatedAt)
	logger.StoreResult("rentals.update", 1, err)
	return storeErr("rentals.update", "rental", rt.ID, err)
}
