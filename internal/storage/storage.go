package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

var ErrInvalidKey = errors.New("invalid storage key")

// ImageStore holds car images. Clients upload straight to the URL returned by
// UploadURL; the car then references DownloadURL.
type ImageStore interface {
	UploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, int64, error)
	Delete(ctx context.Context, key string) error
}

// FileServer is implemented by stores that serve their own uploads over the
// side HTTP server.
type FileServer interface {
	ImageStore
	// AcceptUpload consumes the upload token issued for key.
	AcceptUpload(token, key, contentType string) error
	SaveFile(key string, r io.Reader, maxBytes int64) error
	ReadFile(key string) (io.ReadCloser, error)
}

// CleanKey rejects absolute keys and keys escaping the store root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ExtensionFor returns the file extension for an image content type, or the
// extension of fileName when the type is unknown.
func ExtensionFor(contentType, fileName string) string {
	if ext, ok := extensions[contentType]; ok {
		return ext
	}
	return strings.ToLower(path.Ext(fileName))
}

func ContentTypeFor(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}
