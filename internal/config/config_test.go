package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "APP_ENV", "LOG_LEVEL", "ISVARA_MODE", "DATA_DIR", "DATABASE_URL",
	"STORAGE_BUCKET", "STORAGE_ENDPOINT", "STORAGE_REGION", "STORAGE_ACCESS_KEY_ID",
	"STORAGE_SECRET_ACCESS_KEY", "STORAGE_PUBLIC_URL", "LOW_STOCK_THRESHOLD", "MAX_IMAGE_BYTES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ModeOffline, cfg.Mode)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 3, cfg.LowStockThreshold)
	assert.Equal(t, filepath.Join("data", "isvara.db"), cfg.LocalDBPath())
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "PORT=9000\nISVARA_MODE=online\nDATABASE_URL=\"postgres://file\"\nLOW_STOCK_THRESHOLD=5\n")
	t.Setenv("DATABASE_URL", "postgres://env")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, ModeOnline, cfg.Mode)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, 5, cfg.LowStockThreshold)
}

func TestLoadOnlineRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("ISVARA_MODE", "ONLINE")

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"PORT":                "abc",
		"ISVARA_MODE":         "hybrid",
		"LOW_STOCK_THRESHOLD": "0",
		"MAX_IMAGE_BYTES":     "-1",
	} {
		clearEnv(t)
		t.Setenv(key, value)
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
		assert.Error(t, err, key)
	}
}

func TestStorageEnabled(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BUCKET", "product-images")
	t.Setenv("STORAGE_ACCESS_KEY_ID", "key")
	t.Setenv("STORAGE_SECRET_ACCESS_KEY", "secret")
	t.Setenv("STORAGE_PUBLIC_URL", "https://cdn.example.com/")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.True(t, cfg.Storage.Enabled())
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicURL)
	assert.Equal(t, "us-east-1", cfg.Storage.Region)
}
