package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	gcs "cloud.google.com/go/storage"

	"driveeasy-rental-backend/internal/logger"
)

// FirebaseStore uploads to the project's default Firebase Storage bucket
// through V4 signed URLs.
type FirebaseStore struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

func NewFirebaseStore(bucket *gcs.BucketHandle, bucketName string) *FirebaseStore {
	return &FirebaseStore{bucket: bucket, bucketName: bucketName}
}

func (s *FirebaseStore) UploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	logger.ExternalServiceCall("firebase-storage", "SignedURL", "key", key)
	u, err := s.bucket.SignedURL(key, &gcs.SignedURLOptions{
		Scheme:      gcs.SigningSchemeV4,
		Method:      "PUT",
		ContentType: contentType,
		Expires:     time.Now().Add(expiresIn),
	})
	logger.ExternalServiceResult("firebase-storage", "SignedURL", err)
	if err != nil {
		return "", fmt.Errorf("failed to sign upload url: %w", err)
	}
	return u, nil
}

// DownloadURL returns the Firebase media link; it is readable whenever the
// bucket's security rules allow public reads of car images.
func (s *FirebaseStore) DownloadURL(ctx context.Context, key string) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media",
		s.bucketName, url.PathEscape(key)), nil
}

func (s *FirebaseStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	attrs, err := s.bucket.Object(key).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, attrs.Size, nil
}

func (s *FirebaseStore) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
