package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/repository/memory"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRentalConfirmation(ctx context.Context, r domain.Rental) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockEmailService) SendRentalCompleted(ctx context.Context, r domain.Rental) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockEmailService) SendRentalCancelled(ctx context.Context, r domain.Rental) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockEmailService) SendContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *MockEmailService) SendExpiredRentalsReport(ctx context.Context, rentals []domain.Rental, now time.Time) error {
	return m.Called(ctx, rentals, now).Error(0)
}
func (m *MockEmailService) SendFleetSummary(ctx context.Context, stats domain.DashboardStats, now time.Time) error {
	return m.Called(ctx, stats, now).Error(0)
}

var jobNow = time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)

func seed(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	for i, end := range []time.Time{jobNow.Add(-time.Hour), jobNow.Add(time.Hour)} {
		car := domain.Car{Name: "Car", Type: "Sedan", PricePerDayCents: 1000}
		require.NoError(t, store.Cars().Create(ctx, &car))
		r := domain.Rental{
			CarID: car.ID, CarName: car.Name, CustomerName: "Customer",
			RentalDays: int32(i + 1), EndTime: end, Status: domain.RentalStatusActive,
		}
		require.NoError(t, store.Rentals().Create(ctx, &r))
	}
	return store
}

func TestReportExpiredRentals(t *testing.T) {
	store := seed(t)
	emailSvc := new(MockEmailService)
	jr := NewJobRunner(store, emailSvc, &config.Config{})
	jr.now = func() time.Time { return jobNow }

	emailSvc.On("SendExpiredRentalsReport", mock.Anything, mock.MatchedBy(func(rs []domain.Rental) bool {
		return len(rs) == 1 && rs[0].RentalDays == 1
	}), jobNow).Return(nil).Once()

	require.NoError(t, jr.ReportExpiredRentals())
	emailSvc.AssertExpectations(t)

	// Reports never touch the rentals.
	active, err := store.Rentals().List(context.Background(), domain.RentalStatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestReportExpiredRentals_NothingExpired(t *testing.T) {
	emailSvc := new(MockEmailService)
	jr := NewJobRunner(memory.NewStore(), emailSvc, &config.Config{})
	require.NoError(t, jr.ReportExpiredRentals())
	emailSvc.AssertNotCalled(t, "SendExpiredRentalsReport", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendFleetSummary(t *testing.T) {
	store := seed(t)
	emailSvc := new(MockEmailService)
	jr := NewJobRunner(store, emailSvc, &config.Config{})
	jr.now = func() time.Time { return jobNow }

	emailSvc.On("SendFleetSummary", mock.Anything, domain.DashboardStats{
		TotalCars: 2, RentedCars: 2, TotalRentals: 2, ActiveRentals: 2,
	}, jobNow).Return(errors.New("smtp down")).Once()

	assert.EqualError(t, jr.SendFleetSummary(), "smtp down")
}

func TestRunWithRecovery_Panics(t *testing.T) {
	jr := NewJobRunner(memory.NewStore(), new(MockEmailService), &config.Config{})
	err := jr.runWithRecovery("Explode", func(ctx context.Context) error { panic("boom") })
	assert.ErrorContains(t, err, "boom")
}
