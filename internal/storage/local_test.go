package storage

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	k, err := CleanKey("cars/c1/./a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "cars/c1/a.jpg", k)

	for _, bad := range []string{"", "/etc/passwd", "../x", "cars/../../x", `cars\x`} {
		_, err := CleanKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, bad)
	}
}

func TestLocalStore_UploadFlow(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore("http://localhost:8080", t.TempDir())
	require.NoError(t, err)

	raw, err := s.UploadURL(ctx, "cars/c1/img.png", "image/png", time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	token := strings.TrimPrefix(u.Path, "/api/v1/upload/")
	assert.Equal(t, "cars/c1/img.png", u.Query().Get("key"))

	assert.ErrorIs(t, s.AcceptUpload(token, "cars/c2/img.png", "image/png"), ErrUploadNotAllowed)
	require.NoError(t, s.AcceptUpload(token, "cars/c1/img.png", "image/png"))
	assert.ErrorIs(t, s.AcceptUpload(token, "cars/c1/img.png", "image/png"), ErrUploadNotAllowed, "tokens are single use")

	require.NoError(t, s.SaveFile("cars/c1/img.png", strings.NewReader("png-bytes"), 1024))
	ok, size, err := s.Exists(ctx, "cars/c1/img.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(9), size)

	rc, err := s.ReadFile("cars/c1/img.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(body))

	require.NoError(t, s.Delete(ctx, "cars/c1/img.png"))
	ok, _, _ = s.Exists(ctx, "cars/c1/img.png")
	assert.False(t, ok)
}

func TestLocalStore_SizeLimit(t *testing.T) {
	s, err := NewLocalStore("http://localhost:8080", t.TempDir())
	require.NoError(t, err)

	err = s.SaveFile("cars/c1/big.jpg", strings.NewReader(strings.Repeat("x", 11)), 10)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	ok, _, _ := s.Exists(context.Background(), "cars/c1/big.jpg")
	assert.False(t, ok)
}

func TestLocalStore_ExpiredToken(t *testing.T) {
	s, err := NewLocalStore("http://localhost:8080", t.TempDir())
	require.NoError(t, err)
	raw, _ := s.UploadURL(context.Background(), "cars/c1/a.jpg", "image/jpeg", time.Minute)
	u, _ := url.Parse(raw)
	token := strings.TrimPrefix(u.Path, "/api/v1/upload/")

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.ErrorIs(t, s.AcceptUpload(token, "cars/c1/a.jpg", "image/jpeg"), ErrUploadNotAllowed)
}
