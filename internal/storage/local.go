package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUploadNotAllowed = errors.New("upload token is unknown, expired or issued for another key")
	ErrFileTooLarge     = errors.New("file exceeds the upload size limit")
)

type pendingUpload struct {
	key         string
	contentType string
	expires     time.Time
}

// LocalStore keeps images on the local filesystem and serves them through the
// side HTTP server. It stands in for Firebase Storage in development.
type LocalStore struct {
	baseURL   string
	imagesDir string

	mu      sync.Mutex
	pending map[string]pendingUpload
	now     func() time.Time
}

func NewLocalStore(baseURL, uploadsDir string) (*LocalStore, error) {
	imagesDir := filepath.Join(uploadsDir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create images directory: %w", err)
	}
	return &LocalStore{
		baseURL:   baseURL,
		imagesDir: imagesDir,
		pending:   make(map[string]pendingUpload),
		now:       time.Now,
	}, nil
}

func (s *LocalStore) UploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	token := uuid.NewString()

	s.mu.Lock()
	s.pending[token] = pendingUpload{key: key, contentType: contentType, expires: s.now().Add(expiresIn)}
	s.mu.Unlock()

	return fmt.Sprintf("%s/api/v1/upload/%s?key=%s", s.baseURL, token, url.QueryEscape(key)), nil
}

func (s *LocalStore) DownloadURL(ctx context.Context, key string) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/download/%s?key=%s", s.baseURL, uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)), url.QueryEscape(key)), nil
}

func (s *LocalStore) AcceptUpload(token, key, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[token]
	if !ok || p.key != key || p.contentType != contentType || s.now().After(p.expires) {
		return ErrUploadNotAllowed
	}
	delete(s.pending, token)
	return nil
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	full, err := s.path(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SaveFile writes at most maxBytes from r; larger bodies are rejected and the
// partial file removed.
func (s *LocalStore) SaveFile(key string, r io.Reader, maxBytes int64) error {
	full, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	file, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(file, io.LimitReader(r, maxBytes+1))
	closeErr := file.Close()
	switch {
	case err != nil:
		os.Remove(full)
		return fmt.Errorf("failed to write file: %w", err)
	case n > maxBytes:
		os.Remove(full)
		return ErrFileTooLarge
	case closeErr != nil:
		return fmt.Errorf("failed to write file: %w", closeErr)
	}
	return nil
}

func (s *LocalStore) ReadFile(key string) (io.ReadCloser, error) {
	full, err := s.path(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStore) path(key string) (string, error) {
	key, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.imagesDir, filepath.FromSlash(key)), nil
}
