// Package firebaseapp initializes the Firebase Admin SDK shared by the
// Firestore store, Firebase auth and Firebase Storage.
package firebaseapp

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/logger"
)

// New returns an app for cfg. Without a credentials file the SDK falls back to
// Application Default Credentials or the emulator environment variables.
func New(ctx context.Context, cfg config.FirebaseConfig) (*firebase.App, error) {
	conf := &firebase.Config{
		ProjectID:     cfg.ProjectID,
		StorageBucket: cfg.StorageBucket,
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	logger.ExternalServiceCall("firebase", "NewApp", "project_id", cfg.ProjectID)
	app, err := firebase.NewApp(ctx, conf, opts...)
	logger.ExternalServiceResult("firebase", "NewApp", err)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	return app, nil
}
