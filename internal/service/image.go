package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"driveeasy-rental-backend/internal/domain"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/storage"
)

type imageService struct {
	store        storage.ImageStore
	allowedTypes map[string]bool
	expiry       time.Duration
	now          func() time.Time
}

func NewImageService(store storage.ImageStore, allowedTypes []string, expiry time.Duration) ImageService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	return &imageService{store: store, allowedTypes: allowed, expiry: expiry, now: time.Now}
}

// GetUploadURL reserves a key under cars/<carId>/ and returns where to PUT the
// file and where it will be readable afterwards.
func (s *imageService) GetUploadURL(ctx context.Context, carID, fileName, contentType string) (*ImageUpload, error) {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if !s.allowedTypes[contentType] {
		return nil, &domain.ValidationError{Violations: []domain.FieldViolation{{
			Field:   "contentType",
			Rule:    "allowed",
			Message: fmt.Sprintf("content type %q is not allowed", contentType),
		}}}
	}

	owner := strings.TrimSpace(carID)
	if owner == "" {
		owner = "unassigned"
	}
	key := fmt.Sprintf("cars/%s/%s%s", owner, uuid.NewString(), storage.ExtensionFor(contentType, fileName))
	if cleaned, err := storage.CleanKey(key); err != nil || cleaned != key {
		return nil, &domain.ValidationError{Violations: []domain.FieldViolation{{
			Field: "carId", Rule: "format", Message: "car id cannot be used in a storage path",
		}}}
	}

	upload, err := s.store.UploadURL(ctx, key, contentType, s.expiry)
	if err != nil {
		logger.Error("Failed to create upload URL", "key", key, "error", err)
		return nil, err
	}
	download, err := s.store.DownloadURL(ctx, key)
	if err != nil {
		return nil, err
	}
	return &ImageUpload{
		Key:         key,
		UploadURL:   upload,
		DownloadURL: download,
		ExpiresAt:   s.now().Add(s.expiry).UTC(),
	}, nil
}
