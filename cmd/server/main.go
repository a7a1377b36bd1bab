package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	api "driveeasy-rental-backend/internal/api/grpc"
	"driveeasy-rental-backend/internal/api/grpc/interceptor"
	httpapi "driveeasy-rental-backend/internal/api/http"
	"driveeasy-rental-backend/internal/bootstrap"
	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/service"
	"driveeasy-rental-backend/internal/tracing"
)

var version = "dev"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting DriveEasy rental backend...", "version", version, "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, version)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	deps, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize dependencies", "error", err)
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer deps.Close()

	// Initialize Services
	emailSvc, err := deps.EmailService()
	if err != nil {
		log.Fatalf("Failed to initialize email: %v", err)
	}
	authSvc, err := deps.AuthService(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize auth: %v", err)
	}
	images, files, err := deps.ImageStore(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize image storage: %v", err)
	}
	publisher := deps.Publisher()

	catalogSvc := service.NewCatalogService(deps.Store)
	rentalSvc := service.NewRentalService(deps.Store, emailSvc, publisher, nil)
	adminSvc := service.NewAdminService(deps.Store, publisher, nil)
	imageSvc := service.NewImageService(images, cfg.Storage.AllowedTypes, cfg.UploadURLExpiry())
	contactSvc := service.NewContactService(emailSvc)

	// Initialize gRPC handlers
	handlers := api.Handlers{
		Catalog: api.NewCatalogHandler(catalogSvc),
		Rental:  api.NewRentalHandler(rentalSvc),
		Auth:    api.NewAuthHandler(authSvc),
		Admin:   api.NewAdminHandler(adminSvc, rentalSvc, imageSvc),
		Contact: api.NewContactHandler(contactSvc),
	}

	authInterceptor := interceptor.NewAuthInterceptor(authSvc)
	var idemStore interceptor.IdempotencyStore
	if cfg.Idempotency.Backend == "redis" {
		idemStore = interceptor.NewRedisIdempotencyStore(deps.Redis)
	} else {
		idemStore = interceptor.NewMemoryIdempotencyStore()
	}
	idemInterceptor := interceptor.NewIdempotencyInterceptor(idemStore, cfg.IdempotencyTTL())

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptor.UnaryObservability(),
			authInterceptor.Unary(),
			idemInterceptor.Unary(),
		),
		grpc.ChainStreamInterceptor(
			interceptor.StreamObservability(),
			authInterceptor.Stream(),
		),
	)
	api.Register(s, handlers)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(s, healthSrv)
	for _, name := range []string{api.CatalogServiceName, api.RentalServiceName, api.AuthServiceName, api.AdminServiceName, api.ContactServiceName} {
		healthSrv.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	// Register reflection service for grpcurl
	if cfg.Server.Reflection {
		reflection.Register(s)
	}

	// Side HTTP server: health, metrics and local image uploads
	checks := map[string]httpapi.HealthCheck{
		"store": func(ctx context.Context) error {
			_, err := deps.Store.Cars().List(ctx)
			return err
		},
	}
	if deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}
	httpSrv := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(checks, httpapi.FileRoutes{Files: files, MaxBytes: cfg.Storage.MaxFileSizeMB << 20}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := s.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")
	healthSrv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("Graceful stop timed out, forcing")
		s.Stop()
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("Tracing shutdown", "error", err)
	}
	logger.Info("Server stopped")
}
