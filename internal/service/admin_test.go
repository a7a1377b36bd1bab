package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"driveeasy-rental-backend/internal/catalog"
	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/repository"
	"driveeasy-rental-backend/internal/repository/memory"
)

func seedCars(t *testing.T, store *memory.Store, cars ...domain.Car) []domain.Car {
	t.Helper()
	out := make([]domain.Car, 0, len(cars))
	for _, c := range cars {
		c := c
		require.NoError(t, store.Cars().Create(context.Background(), &c))
		out = append(out, c)
	}
	return out
}

func TestAdminService_CreateCar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	publisher := new(MockPublisher)
	svc := NewAdminService(store, publisher, func() time.Time { return testNow })

	t.Run("Success", func(t *testing.T) {
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(ev domain.Event) bool {
			return ev.Type == domain.EventCarCreated
		})).Return(nil).Once()

		car, err := svc.CreateCar(ctx, domain.CarInput{
			Name: " Model 3 ", Type: "Electric", Brand: "Tesla", Year: 2023,
			PricePerDayCents: 12000, Features: []string{" Autopilot", "", "GPS "},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, car.ID)
		assert.Equal(t, "Model 3", car.Name)
		assert.True(t, car.Available)
		assert.Equal(t, []string{"Autopilot", "GPS"}, car.Features)
		publisher.AssertExpectations(t)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := svc.CreateCar(ctx, domain.CarInput{Type: "SUV"})
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.ElementsMatch(t, []string{"name", "price"}, ve.Fields())
	})

	t.Run("Store failure is surfaced verbatim", func(t *testing.T) {
		store.FailOn("cars.create", errors.New("permission denied on cars"))
		defer store.FailOn("cars.create", nil)
		_, err := svc.CreateCar(ctx, domain.CarInput{Name: "A", Type: "B", PricePerDayCents: 1})
		require.Error(t, err)
		assert.Equal(t, "permission denied on cars", err.Error())
	})
}

func TestAdminService_UpdateCar_KeepsAvailability(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	svc := NewAdminService(store, publisher, nil)

	rentalID := "r-1"
	cars := seedCars(t, store, domain.Car{Name: "Golf", Type: "Hatch", PricePerDayCents: 3000, Available: false, RentalID: &rentalID})

	updated, err := svc.UpdateCar(ctx, cars[0].ID, domain.CarInput{Name: "Golf GTI", Type: "Hatch", PricePerDayCents: 3500})
	require.NoError(t, err)
	assert.Equal(t, "Golf GTI", updated.Name)
	assert.False(t, updated.Available)
	require.NotNil(t, updated.RentalID)
	assert.Equal(t, "r-1", *updated.RentalID)

	_, err = svc.UpdateCar(ctx, "missing", domain.CarInput{Name: "X", Type: "Y", PricePerDayCents: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// interleavingStore runs onRead the first time UpdateCar-style code reads a
// car, letting a test slip another operation between the read and the write.
type interleavingStore struct {
	*memory.Store
	once   sync.Once
	onRead func(inTx bool)
}

func (s *interleavingStore) Cars() repository.CarRepository {
	return &interleavingCars{CarRepository: s.Store.Cars(), s: s}
}

func (s *interleavingStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return s.Store.WithinTransaction(ctx, func(ctx context.Context, tx repository.Tx) error {
		return fn(ctx, interleavingTx{Tx: tx, s: s})
	})
}

type interleavingTx struct {
	repository.Tx
	s *interleavingStore
}

func (t interleavingTx) Cars() repository.CarRepository {
	return &interleavingCars{CarRepository: t.Tx.Cars(), s: t.s, inTx: true}
}

type interleavingCars struct {
	repository.CarRepository
	s    *interleavingStore
	inTx bool
}

func (c *interleavingCars) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	car, err := c.CarRepository.GetByID(ctx, id)
	c.s.once.Do(func() { c.s.onRead(c.inTx) })
	return car, err
}

func TestAdminService_UpdateCar_ConcurrentRentalIsNotUndone(t *testing.T) {
	ctx := context.Background()
	f := newRentalFixture(t)
	f.emailSvc.On("SendRentalConfirmation", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	type result struct {
		rental *domain.Rental
		err    error
	}
	submitted := make(chan result, 1)
	store := &interleavingStore{Store: f.store}
	store.onRead = func(inTx bool) {
		submit := func() {
			r, err := f.svc.SubmitRental(ctx, validRequest(f.car.ID))
			submitted <- result{r, err}
		}
		if inTx {
			// The rental has to wait for the edit to commit.
			go submit()
			return
		}
		submit()
	}

	svc := NewAdminService(store, f.publisher, nil)
	updated, err := svc.UpdateCar(ctx, f.car.ID, domain.CarInput{Name: "Civic Sport", Type: "Sedan", PricePerDayCents: 5000})
	require.NoError(t, err)
	assert.Equal(t, "Civic Sport", updated.Name)

	var res result
	select {
	case res = <-submitted:
	case <-time.After(5 * time.Second):
		t.Fatal("rental submission never finished")
	}
	require.NoError(t, res.err)

	car, err := f.store.Cars().GetByID(ctx, f.car.ID)
	require.NoError(t, err)
	assert.Equal(t, "Civic Sport", car.Name)
	assert.False(t, car.Available)
	require.NotNil(t, car.RentalID)
	assert.Equal(t, res.rental.ID, *car.RentalID)

	active, err := f.store.Rentals().ListActiveByCar(ctx, f.car.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestAdminService_DeleteCar(t *testing.T) {
	ctx := context.Background()
	f := newRentalFixture(t)
	f.emailSvc.On("SendRentalConfirmation", mock.Anything, mock.Anything).Return(nil)
	f.emailSvc.On("SendRentalCompleted", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	svc := NewAdminService(f.store, f.publisher, nil)

	rental, err := f.svc.SubmitRental(ctx, validRequest(f.car.ID))
	require.NoError(t, err)

	err = svc.DeleteCar(ctx, f.car.ID)
	assert.ErrorIs(t, err, domain.ErrCarHasActiveRental)

	_, err = f.svc.CompleteRental(ctx, rental.ID, f.car.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCar(ctx, f.car.ID))
	_, err = f.store.Cars().GetByID(ctx, f.car.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteCar(ctx, f.car.ID), domain.ErrNotFound)
}

func TestAdminService_GetDashboard(t *testing.T) {
	ctx := context.Background()
	f := newRentalFixture(t)
	f.emailSvc.On("SendRentalConfirmation", mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	seedCars(t, f.store,
		domain.Car{Name: "Yaris", Type: "Compact", PricePerDayCents: 2500, Available: true},
		domain.Car{Name: "X5", Type: "SUV", PricePerDayCents: 9000, Available: true},
	)
	_, err := f.svc.SubmitRental(ctx, validRequest(f.car.ID))
	require.NoError(t, err)

	svc := NewAdminService(f.store, f.publisher, nil)
	dash, err := svc.GetDashboard(ctx, domain.CarTabRented)
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardStats{
		TotalCars: 3, AvailableCars: 2, RentedCars: 1,
		TotalRentals: 1, ActiveRentals: 1,
	}, dash.Stats)
	require.Len(t, dash.Cars, 1)
	assert.Equal(t, f.car.ID, dash.Cars[0].ID)

	dash, err = svc.GetDashboard(ctx, domain.CarTabAvailable)
	require.NoError(t, err)
	assert.Len(t, dash.Cars, 2)

	active, err := svc.ListRentals(ctx, domain.RentalStatusActive)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	completed, err := svc.ListRentals(ctx, domain.RentalStatusCompleted)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestCatalogService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedCars(t, store,
		domain.Car{Name: "Corolla", Type: "Sedan", Brand: "Toyota", Year: 2021, PricePerDayCents: 4000, Available: true},
		domain.Car{Name: "RAV4", Type: "SUV", Brand: "Toyota", Year: 2023, PricePerDayCents: 6000, Available: true},
		domain.Car{Name: "Model Y", Type: "SUV", Brand: "Tesla", Year: 2024, PricePerDayCents: 9000, Available: true, Features: []string{"Autopilot"}},
	)
	svc := NewCatalogService(store)

	cars, err := svc.ListCars(ctx, "toyota", catalog.SortPriceDesc)
	require.NoError(t, err)
	require.Len(t, cars, 2)
	assert.Equal(t, "RAV4", cars[0].Name)

	cars, err = svc.ListCars(ctx, "autopilot", "")
	require.NoError(t, err)
	require.Len(t, cars, 1)

	t.Run("Watch re-applies the query on every change", func(t *testing.T) {
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()
		ch, err := svc.WatchCars(wctx, "suv", catalog.SortName)
		require.NoError(t, err)

		first := <-ch
		require.Len(t, first, 2)
		assert.Equal(t, "Model Y", first[0].Name)

		seedCars(t, store, domain.Car{Name: "Bronco", Type: "SUV", PricePerDayCents: 7000, Available: true})
		require.Eventually(t, func() bool {
			select {
			case next := <-ch:
				return len(next) == 3 && next[0].Name == "Bronco"
			default:
				return false
			}
		}, time.Second, 10*time.Millisecond)
	})
}
