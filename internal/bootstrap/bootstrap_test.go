package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/repository/memory"
	"driveeasy-rental-backend/internal/security"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	hash, err := security.HashPassword("secret-password")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.Port = 50051
	cfg.Store.Type = config.StoreMemory
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.Auth.Admins = []config.AdminAccount{{ID: "a1", Email: "admin@driveeasy.test", PasswordHash: hash}}
	cfg.Storage.UploadDir = t.TempDir()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNew_MemoryBackends(t *testing.T) {
	ctx := context.Background()
	deps, err := New(ctx, memoryConfig(t))
	require.NoError(t, err)
	defer deps.Close()

	assert.IsType(t, &memory.Store{}, deps.Store)
	assert.Nil(t, deps.Redis)

	emailSvc, err := deps.EmailService()
	require.NoError(t, err)
	assert.NotNil(t, emailSvc)

	authSvc, err := deps.AuthService(ctx)
	require.NoError(t, err)
	token, session, err := authSvc.Login(ctx, "admin@driveeasy.test", "secret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "a1", session.Admin.ID)

	images, files, err := deps.ImageStore(ctx)
	require.NoError(t, err)
	assert.NotNil(t, images)
	assert.NotNil(t, files)

	assert.NoError(t, deps.Publisher().Close())
}

func TestNew_UnknownStore(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Store.Type = "mysql"
	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown store type")
}
