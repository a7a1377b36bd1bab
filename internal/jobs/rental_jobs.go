package jobs

import (
	"context"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/metrics"
)

// ReportExpiredRentals emails operations the active rentals whose end time
// has passed. Rentals are never completed automatically; an admin still has
// to confirm the return.
func (jr *JobRunner) ReportExpiredRentals() error {
	return jr.runWithRecovery("ReportExpiredRentals", func(ctx context.Context) error {
		now := jr.now()
		active, err := jr.store.Rentals().List(ctx, domain.RentalStatusActive)
		if err != nil {
			return err
		}

		var expired []domain.Rental
		for _, r := range active {
			if r.Expired(now) {
				expired = append(expired, r)
			}
		}
		metrics.ExpiredActiveRentals.Set(float64(len(expired)))

		if len(expired) == 0 {
			logger.Info("No expired rentals to report")
			return nil
		}
		logger.Info("Reporting expired rentals", "count", len(expired))
		return jr.emailSvc.SendExpiredRentalsReport(ctx, expired, now)
	})
}

// SendFleetSummary emails the dashboard counters to operations.
func (jr *JobRunner) SendFleetSummary() error {
	return jr.runWithRecovery("SendFleetSummary", func(ctx context.Context) error {
		cars, err := jr.store.Cars().List(ctx)
		if err != nil {
			return err
		}
		rentals, err := jr.store.Rentals().List(ctx, "")
		if err != nil {
			return err
		}
		stats := domain.ComputeStats(cars, rentals)
		logger.Info("Fleet summary", "cars", stats.TotalCars, "rented", stats.RentedCars, "active_rentals", stats.ActiveRentals)
		return jr.emailSvc.SendFleetSummary(ctx, stats, jr.now())
	})
}
