// Package bootstrap opens the shared backends from configuration. Both the
// gRPC server and the cronjob runner start from here.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	firebase "firebase.google.com/go/v4"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/events"
	"driveeasy-rental-backend/internal/firebaseapp"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/mailer"
	"driveeasy-rental-backend/internal/repository"
	"driveeasy-rental-backend/internal/repository/firestore"
	"driveeasy-rental-backend/internal/repository/memory"
	"driveeasy-rental-backend/internal/repository/postgres"
	"driveeasy-rental-backend/internal/security"
	"driveeasy-rental-backend/internal/service"
	"driveeasy-rental-backend/internal/storage"
)

// Deps holds the process-wide clients. Close releases them in reverse order of
// creation.
type Deps struct {
	Config *config.Config
	Store  repository.Store
	Redis  *redis.Client

	firebaseOnce sync.Once
	firebaseApp  *firebase.App
	firebaseErr  error

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config) (*Deps, error) {
	d := &Deps{Config: cfg}

	if cfg.Redis.Enabled {
		d.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := d.Redis.Ping(ctx).Err(); err != nil {
			d.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		d.closers = append(d.closers, d.Redis.Close)
		logger.Info("Redis connection established", "addr", cfg.Redis.Addr)
	}

	store, err := d.openStore(ctx)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.Store = store
	d.closers = append(d.closers, store.Close)
	return d, nil
}

// Firebase initializes the Admin SDK on first use.
func (d *Deps) Firebase(ctx context.Context) (*firebase.App, error) {
	d.firebaseOnce.Do(func() {
		d.firebaseApp, d.firebaseErr = firebaseapp.New(ctx, d.Config.Firebase)
	})
	return d.firebaseApp, d.firebaseErr
}

func (d *Deps) openStore(ctx context.Context) (repository.Store, error) {
	cfg := d.Config
	logger.Info("Opening store", "type", cfg.Store.Type)

	switch cfg.Store.Type {
	case config.StoreMemory:
		return memory.NewStore(), nil

	case config.StorePostgres:
		dsn := cfg.GetDatabaseConnectionString()
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		logger.Info("Database connection established")
		store := postgres.NewStore(db, dsn)
		if cfg.Store.Migrate {
			if err := store.Migrate(ctx); err != nil {
				store.Close()
				return nil, fmt.Errorf("failed to migrate schema: %w", err)
			}
		}
		return store, nil

	case config.StoreFirestore:
		app, err := d.Firebase(ctx)
		if err != nil {
			return nil, err
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open firestore: %w", err)
		}
		return firestore.NewStore(client), nil
	}
	return nil, fmt.Errorf("unknown store type: %q", cfg.Store.Type)
}

// EmailService builds the mailer selected by the email section.
func (d *Deps) EmailService() (service.EmailService, error) {
	m, err := mailer.New(d.Config.Email)
	if err != nil {
		return nil, err
	}
	return service.NewEmailService(m, d.Config.Email.ConciergeAddress, d.Config.Email.OperationsAddress), nil
}

func (d *Deps) Publisher() events.Publisher {
	if !d.Config.Kafka.Enabled {
		return events.NewNoopPublisher()
	}
	logger.Info("Publishing events to kafka", "brokers", d.Config.Kafka.Brokers, "topic", d.Config.Kafka.Topic)
	p := events.NewKafkaPublisher(d.Config.Kafka.Brokers, d.Config.Kafka.Topic)
	d.closers = append(d.closers, p.Close)
	return p
}

func (d *Deps) AuthService(ctx context.Context) (service.AuthService, error) {
	cfg := d.Config.Auth
	switch cfg.Provider {
	case config.AuthFirebase:
		app, err := d.Firebase(ctx)
		if err != nil {
			return nil, err
		}
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open firebase auth: %w", err)
		}
		return service.NewFirebaseAuthService(client), nil
	default:
		var revoked security.RevocationList
		if cfg.Revocation == "redis" {
			revoked = security.NewRedisRevocationList(d.Redis)
		} else {
			revoked = security.NewMemoryRevocationList()
		}
		tokens := security.NewTokenManager(cfg.JWTSecret, d.Config.TokenTTL())
		return service.NewLocalAuthService(cfg.Admins, tokens, revoked), nil
	}
}

// ImageStore returns the car image store and, for local storage, the file
// server the side HTTP server must expose.
func (d *Deps) ImageStore(ctx context.Context) (storage.ImageStore, storage.FileServer, error) {
	cfg := d.Config
	if cfg.Storage.Type == "firebase" {
		app, err := d.Firebase(ctx)
		if err != nil {
			return nil, nil, err
		}
		client, err := app.Storage(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open firebase storage: %w", err)
		}
		bucket, err := client.Bucket(cfg.Firebase.StorageBucket)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bucket %s: %w", cfg.Firebase.StorageBucket, err)
		}
		return storage.NewFirebaseStore(bucket, cfg.Firebase.StorageBucket), nil, nil
	}

	logger.Info("Using local image storage", "upload_dir", cfg.Storage.UploadDir)
	local, err := storage.NewLocalStore(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize local storage: %w", err)
	}
	return local, local, nil
}

func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			logger.Warn("Failed to close dependency", "error", err)
		}
	}
	d.closers = nil
}
