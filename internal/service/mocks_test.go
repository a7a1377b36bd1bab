package service

import (
	"context"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/mock"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/mailer"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendRentalConfirmation(ctx context.Context, rental domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockEmailService) SendRentalCompleted(ctx context.Context, rental domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockEmailService) SendRentalCancelled(ctx context.Context, rental domain.Rental) error {
	args := m.Called(ctx, rental)
	return args.Error(0)
}
func (m *MockEmailService) SendContactMessage(ctx context.Context, msg domain.ContactMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
func (m *MockEmailService) SendExpiredRentalsReport(ctx context.Context, rentals []domain.Rental, now time.Time) error {
	args := m.Called(ctx, rentals, now)
	return args.Error(0)
}
func (m *MockEmailService) SendFleetSummary(ctx context.Context, stats domain.DashboardStats, now time.Time) error {
	args := m.Called(ctx, stats, now)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, ev domain.Event) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockFirebaseAuth struct {
	mock.Mock
}

func (m *MockFirebaseAuth) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}
func (m *MockFirebaseAuth) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}
func (m *MockFirebaseAuth) GetUser(ctx context.Context, uid string) (*auth.UserRecord, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.UserRecord), args.Error(1)
}

type mockImageStore struct {
	mock.Mock
}

func (m *mockImageStore) UploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, contentType, expiresIn)
	return args.String(0), args.Error(1)
}
func (m *mockImageStore) DownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
func (m *mockImageStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}
func (m *mockImageStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}
