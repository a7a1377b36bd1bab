package service

import (
	"context"
	"time"

	"driveeasy-rental-backend/internal/catalog"
	"driveeasy-rental-backend/internal/domain"
)

type CatalogService interface {
	ListCars(ctx context.Context, query string, sort catalog.SortKey) ([]domain.Car, error)
	GetCar(ctx context.Context, id string) (*domain.Car, error)
	// WatchCars streams the filtered and sorted catalog after every change.
	WatchCars(ctx context.Context, query string, sort catalog.SortKey) (<-chan []domain.Car, error)
}

type RentalService interface {
	SubmitRental(ctx context.Context, req domain.RentalRequest) (*domain.Rental, error)
	GetRental(ctx context.Context, id string) (*domain.Rental, domain.TimeRemaining, error)
	// CompleteRental returns the car of an active rental to the fleet. carID may
	// be empty; when set it must match the rental's car.
	CompleteRental(ctx context.Context, rentalID, carID string) (*domain.Rental, error)
	CancelRental(ctx context.Context, rentalID string) (*domain.Rental, error)
}

type AdminService interface {
	GetDashboard(ctx context.Context, tab domain.CarTab) (*domain.Dashboard, error)
	CreateCar(ctx context.Context, in domain.CarInput) (*domain.Car, error)
	UpdateCar(ctx context.Context, id string, in domain.CarInput) (*domain.Car, error)
	DeleteCar(ctx context.Context, id string) error
	ListRentals(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error)
	WatchRentals(ctx context.Context) (<-chan []domain.Rental, error)
}

// Session is an authenticated admin request context.
type Session struct {
	Admin     domain.AdminUser
	ID        string // token id, or the Firebase uid
	ExpiresAt time.Time
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (token string, session *Session, err error)
	Authenticate(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, session *Session) error
}

type ImageService interface {
	GetUploadURL(ctx context.Context, carID, fileName, contentType string) (*ImageUpload, error)
}

type ImageUpload struct {
	Key         string
	UploadURL   string
	DownloadURL string
	ExpiresAt   time.Time
}

type ContactService interface {
	SendMessage(ctx context.Context, msg domain.ContactMessage) error
}

type EmailService interface {
	SendRentalConfirmation(ctx context.Context, rental domain.Rental) error
	SendRentalCompleted(ctx context.Context, rental domain.Rental) error
	SendRentalCancelled(ctx context.Context, rental domain.Rental) error
	SendContactMessage(ctx context.Context, msg domain.ContactMessage) error

	// Operations reports
	SendExpiredRentalsReport(ctx context.Context, rentals []domain.Rental, now time.Time) error
	SendFleetSummary(ctx context.Context, stats domain.DashboardStats, now time.Time) error
}
