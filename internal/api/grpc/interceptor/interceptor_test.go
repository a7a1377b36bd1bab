package interceptor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	apigrpc "driveeasy-rental-backend/internal/api/grpc"
	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/security"
	"driveeasy-rental-backend/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*service.Session), args.Error(2)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*service.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, session *service.Session) error {
	return m.Called(ctx, session).Error(0)
}

func withAuth(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
}

func TestAuthInterceptor_Unary(t *testing.T) {
	authSvc := new(MockAuthService)
	unary := NewAuthInterceptor(authSvc).Unary()
	adminInfo := &grpc.UnaryServerInfo{FullMethod: config.AdminServicePrefix + "GetDashboard"}

	echoSession := func(ctx context.Context, req interface{}) (interface{}, error) {
		s, err := apigrpc.SessionFromContext(ctx)
		if err != nil {
			return nil, err
		}
		return s.Admin.ID, nil
	}

	t.Run("Public method skips auth", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{FullMethod: config.CatalogServicePrefix + "ListCars"}
		resp, err := unary(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	})

	t.Run("Missing token", func(t *testing.T) {
		_, err := unary(context.Background(), nil, adminInfo, echoSession)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Valid token injects the session", func(t *testing.T) {
		authSvc.On("Authenticate", mock.Anything, "good").Return(&service.Session{
			Admin: domain.AdminUser{ID: "admin-1"}, ID: "jti",
		}, nil).Once()
		resp, err := unary(withAuth("good"), nil, adminInfo, echoSession)
		require.NoError(t, err)
		assert.Equal(t, "admin-1", resp)
	})

	t.Run("Revoked token", func(t *testing.T) {
		authSvc.On("Authenticate", mock.Anything, "revoked").Return(nil, security.ErrRevokedToken).Once()
		_, err := unary(withAuth("revoked"), nil, adminInfo, echoSession)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Not an admin", func(t *testing.T) {
		authSvc.On("Authenticate", mock.Anything, "user").Return(nil, security.ErrNotAdmin).Once()
		_, err := unary(withAuth("user"), nil, adminInfo, echoSession)
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("Unknown methods require admin", func(t *testing.T) {
		info := &grpc.UnaryServerInfo{FullMethod: "/carrental.v1.AdminService/Unlisted"}
		_, err := unary(context.Background(), nil, info, echoSession)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	authSvc.AssertExpectations(t)
}

func TestIdempotencyInterceptor(t *testing.T) {
	unary := NewIdempotencyInterceptor(NewMemoryIdempotencyStore(), time.Hour).Unary()
	info := &grpc.UnaryServerInfo{FullMethod: config.RentalServicePrefix + "SubmitRental"}
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(IdempotencyKeyHeader, "k-1"))

	calls := 0
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		calls++
		return structpb.NewStruct(map[string]interface{}{"call": float64(calls)})
	}

	t.Run("Replays the first response", func(t *testing.T) {
		first, err := unary(ctx, nil, info, handler)
		require.NoError(t, err)
		second, err := unary(ctx, nil, info, handler)
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.Equal(t, float64(1), second.(*structpb.Struct).Fields["call"].GetNumberValue())
		assert.Equal(t, first.(*structpb.Struct).Fields["call"].GetNumberValue(), second.(*structpb.Struct).Fields["call"].GetNumberValue())
	})

	t.Run("Without a key every call runs", func(t *testing.T) {
		calls = 0
		_, _ = unary(context.Background(), nil, info, handler)
		_, _ = unary(context.Background(), nil, info, handler)
		assert.Equal(t, 2, calls)
	})

	t.Run("Failures release the key", func(t *testing.T) {
		failCtx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(IdempotencyKeyHeader, "k-2"))
		attempts := 0
		flaky := func(ctx context.Context, req interface{}) (interface{}, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("boom")
			}
			return &structpb.Struct{}, nil
		}
		_, err := unary(failCtx, nil, info, flaky)
		require.Error(t, err)
		_, err = unary(failCtx, nil, info, flaky)
		require.NoError(t, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("Concurrent duplicate is aborted", func(t *testing.T) {
		store := NewMemoryIdempotencyStore()
		_, err := store.Reserve(context.Background(), idempotencyPrefix+info.FullMethod+":busy")
		require.NoError(t, err)

		u := NewIdempotencyInterceptor(store, time.Hour).Unary()
		busyCtx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(IdempotencyKeyHeader, "busy"))
		_, err = u(busyCtx, nil, info, handler)
		assert.Equal(t, codes.Aborted, status.Code(err))
	})

	t.Run("Non-idempotent methods are untouched", func(t *testing.T) {
		calls = 0
		other := &grpc.UnaryServerInfo{FullMethod: config.CatalogServicePrefix + "ListCars"}
		_, _ = unary(ctx, nil, other, handler)
		_, _ = unary(ctx, nil, other, handler)
		assert.Equal(t, 2, calls)
	})
}
