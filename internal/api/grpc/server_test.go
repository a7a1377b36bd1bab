package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	apigrpc "driveeasy-rental-backend/internal/api/grpc"
	"driveeasy-rental-backend/internal/api/grpc/interceptor"
	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/events"
	"driveeasy-rental-backend/internal/mailer"
	"driveeasy-rental-backend/internal/repository/memory"
	"driveeasy-rental-backend/internal/security"
	"driveeasy-rental-backend/internal/service"
	"driveeasy-rental-backend/internal/storage"
)

const (
	adminEmail    = "ops@driveeasy.test"
	adminPassword = "correct-horse"
)

type testServer struct {
	conn  *gogrpc.ClientConn
	store *memory.Store
	car   domain.Car
}

func startServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	publisher := events.NewNoopPublisher()
	emailSvc := service.NewEmailService(mailer.NewLogMailer(), "concierge@driveeasy.test", "ops@driveeasy.test")

	hash, err := security.HashPassword(adminPassword)
	require.NoError(t, err)
	authSvc := service.NewLocalAuthService(
		[]config.AdminAccount{{ID: "admin-1", Email: adminEmail, PasswordHash: hash}},
		security.NewTokenManager("test-secret", time.Hour),
		security.NewMemoryRevocationList(),
	)

	images, err := storage.NewLocalStore("http://localhost:8081", t.TempDir())
	require.NoError(t, err)

	rentalSvc := service.NewRentalService(store, emailSvc, publisher, nil)
	handlers := apigrpc.Handlers{
		Catalog: apigrpc.NewCatalogHandler(service.NewCatalogService(store)),
		Rental:  apigrpc.NewRentalHandler(rentalSvc),
		Auth:    apigrpc.NewAuthHandler(authSvc),
		Admin: apigrpc.NewAdminHandler(
			service.NewAdminService(store, publisher, nil),
			rentalSvc,
			service.NewImageService(images, []string{"image/jpeg"}, 15*time.Minute),
		),
		Contact: apigrpc.NewContactHandler(service.NewContactService(emailSvc)),
	}

	authInt := interceptor.NewAuthInterceptor(authSvc)
	idemInt := interceptor.NewIdempotencyInterceptor(interceptor.NewMemoryIdempotencyStore(), time.Hour)
	srv := gogrpc.NewServer(
		gogrpc.ChainUnaryInterceptor(interceptor.UnaryObservability(), authInt.Unary(), idemInt.Unary()),
		gogrpc.ChainStreamInterceptor(interceptor.StreamObservability(), authInt.Stream()),
	)
	apigrpc.Register(srv, handlers)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := gogrpc.NewClient("passthrough:///bufnet",
		gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	car := domain.Car{Name: "Civic", Type: "Sedan", Brand: "Honda", Year: 2022, PricePerDayCents: 4500, Available: true}
	require.NoError(t, store.Cars().Create(context.Background(), &car))
	return &testServer{conn: conn, store: store, car: car}
}

func (s *testServer) call(ctx context.Context, method string, in map[string]interface{}) (*structpb.Struct, error) {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	err = s.conn.Invoke(ctx, method, req, out)
	return out, err
}

func (s *testServer) login(t *testing.T) context.Context {
	t.Helper()
	resp, err := s.call(context.Background(), "/carrental.v1.AuthService/Login", map[string]interface{}{
		"email": adminEmail, "password": adminPassword,
	})
	require.NoError(t, err)
	token := resp.Fields["token"].GetStringValue()
	require.NotEmpty(t, token)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func rentalForm(carID string) map[string]interface{} {
	return map[string]interface{}{
		"carId":         carID,
		"customerName":  "Ada Lovelace",
		"email":         "ada@example.com",
		"phone":         "+1 555 010 9999",
		"idNumber":      "AB-123456",
		"licenseNumber": "LIC1234567",
		"rentalDays":    float64(2),
		"startDate":     time.Now().UTC().Format("2006-01-02"),
	}
}

func TestRentalLifecycleOverGRPC(t *testing.T) {
	s := startServer(t)
	ctx := context.Background()

	listed, err := s.call(ctx, "/carrental.v1.CatalogService/ListCars", map[string]interface{}{"query": "HONDA"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, listed.Fields["count"].GetNumberValue())

	submitCtx := metadata.AppendToOutgoingContext(ctx, interceptor.IdempotencyKeyHeader, "form-1")
	submitted, err := s.call(submitCtx, "/carrental.v1.RentalService/SubmitRental", rentalForm(s.car.ID))
	require.NoError(t, err)
	rental := submitted.Fields["rental"].GetStructValue()
	rentalID := rental.Fields["id"].GetStringValue()
	assert.Equal(t, "active", rental.Fields["status"].GetStringValue())
	assert.Equal(t, 9000.0, rental.Fields["totalPriceCents"].GetNumberValue())

	// A retried submission replays instead of failing on the now-rented car.
	replayed, err := s.call(submitCtx, "/carrental.v1.RentalService/SubmitRental", rentalForm(s.car.ID))
	require.NoError(t, err)
	assert.Equal(t, rentalID, replayed.Fields["rental"].GetStructValue().Fields["id"].GetStringValue())

	_, err = s.call(ctx, "/carrental.v1.RentalService/SubmitRental", rentalForm(s.car.ID))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	got, err := s.call(ctx, "/carrental.v1.RentalService/GetRental", map[string]interface{}{"rentalId": rentalID})
	require.NoError(t, err)
	remaining := got.Fields["timeRemaining"].GetStructValue()
	assert.False(t, remaining.Fields["expired"].GetBoolValue())
	assert.Equal(t, 1.0, remaining.Fields["days"].GetNumberValue())

	adminCtx := s.login(t)

	_, err = s.call(adminCtx, "/carrental.v1.AdminService/CompleteRental", map[string]interface{}{"rentalId": rentalID, "carId": s.car.ID})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = s.call(adminCtx, "/carrental.v1.AdminService/DeleteCar", map[string]interface{}{"carId": s.car.ID, "confirmed": true})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	done, err := s.call(adminCtx, "/carrental.v1.AdminService/CompleteRental", map[string]interface{}{
		"rentalId": rentalID, "carId": s.car.ID, "confirmed": true,
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Fields["rental"].GetStructValue().Fields["status"].GetStringValue())

	_, err = s.call(adminCtx, "/carrental.v1.AdminService/CompleteRental", map[string]interface{}{
		"rentalId": rentalID, "carId": s.car.ID, "confirmed": true,
	})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	dash, err := s.call(adminCtx, "/carrental.v1.AdminService/GetDashboard", map[string]interface{}{"tab": "available"})
	require.NoError(t, err)
	stats := dash.Fields["stats"].GetStructValue()
	assert.Equal(t, 1.0, stats.Fields["availableCars"].GetNumberValue())
	assert.Equal(t, 1.0, stats.Fields["completedRentals"].GetNumberValue())

	_, err = s.call(adminCtx, "/carrental.v1.AdminService/DeleteCar", map[string]interface{}{"carId": s.car.ID, "confirmed": true})
	require.NoError(t, err)
}

func TestValidationErrorsOverGRPC(t *testing.T) {
	s := startServer(t)
	form := rentalForm(s.car.ID)
	form["email"] = "not-an-email"
	form["rentalDays"] = float64(45)

	_, err := s.call(context.Background(), "/carrental.v1.RentalService/SubmitRental", form)
	st := status.Convert(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	require.NotEmpty(t, st.Details())
}

func TestAdminMethodsRequireLogin(t *testing.T) {
	s := startServer(t)
	_, err := s.call(context.Background(), "/carrental.v1.AdminService/GetDashboard", map[string]interface{}{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = s.call(context.Background(), "/carrental.v1.AuthService/Login", map[string]interface{}{
		"email": adminEmail, "password": "wrong",
	})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	adminCtx := s.login(t)
	me, err := s.call(adminCtx, "/carrental.v1.AuthService/CurrentUser", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, adminEmail, me.Fields["admin"].GetStructValue().Fields["email"].GetStringValue())

	_, err = s.call(adminCtx, "/carrental.v1.AuthService/Logout", map[string]interface{}{})
	require.NoError(t, err)
	_, err = s.call(adminCtx, "/carrental.v1.AuthService/CurrentUser", map[string]interface{}{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestWatchCarsStream(t *testing.T) {
	s := startServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := s.conn.NewStream(ctx, &apigrpc.CatalogServiceDesc.Streams[0], "/carrental.v1.CatalogService/WatchCars")
	require.NoError(t, err)
	req, _ := structpb.NewStruct(map[string]interface{}{"sort": "price_asc"})
	require.NoError(t, stream.SendMsg(req))
	require.NoError(t, stream.CloseSend())

	first := new(structpb.Struct)
	require.NoError(t, stream.RecvMsg(first))
	assert.Equal(t, 1.0, first.Fields["count"].GetNumberValue())

	cheap := domain.Car{Name: "Yaris", Type: "Compact", PricePerDayCents: 2000, Available: true}
	require.NoError(t, s.store.Cars().Create(context.Background(), &cheap))

	next := new(structpb.Struct)
	require.NoError(t, stream.RecvMsg(next))
	cars := next.Fields["cars"].GetListValue().GetValues()
	require.Len(t, cars, 2)
	assert.Equal(t, "Yaris", cars[0].GetStructValue().Fields["name"].GetStringValue())
}

func TestContactAndUploadURL(t *testing.T) {
	s := startServer(t)
	_, err := s.call(context.Background(), "/carrental.v1.ContactService/SendMessage", map[string]interface{}{
		"name": "Bob", "email": "bob@example.com", "message": "Do you rent vans?",
	})
	require.NoError(t, err)

	adminCtx := s.login(t)
	up, err := s.call(adminCtx, "/carrental.v1.AdminService/GetImageUploadUrl", map[string]interface{}{
		"carId": s.car.ID, "fileName": "front.jpg", "contentType": "image/jpeg",
	})
	require.NoError(t, err)
	assert.Contains(t, up.Fields["key"].GetStringValue(), "cars/"+s.car.ID+"/")
	assert.Contains(t, up.Fields["uploadUrl"].GetStringValue(), "/api/v1/upload/")
}
