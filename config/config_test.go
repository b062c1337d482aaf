package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var cfg AppConfig
	applyDefaults(&cfg)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "127.0.0.1", cfg.DBHost)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, 10, cfg.UploadMaxSizeMB)
	assert.Equal(t, 24*60, cfg.UploadTTLMinutes)
	assert.Equal(t, "info", cfg.LogLevel)

	// Defaults never touch values that are already set.
	cfg.AppPort = "9999"
	cfg.RateLimitPerMinute = 5
	applyDefaults(&cfg)
	assert.Equal(t, "9999", cfg.AppPort)
	assert.Equal(t, 5, cfg.RateLimitPerMinute)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("UPLOAD_MAX_SIZE_MB", "25")

	var cfg AppConfig
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, "env-secret", cfg.JWTSecret)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 6380, cfg.RedisPort)
	assert.Equal(t, 25, cfg.UploadMaxSizeMB)
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"app": {"Port": "8181", "JWTSecret": "from-file", "AllowedOrigins": ["https://kiny.example"]},
		"database": {"Host": "db.internal", "Name": "kiny_prod"},
		"redis": {"Host": "cache.internal", "Port": 6390},
		"upload": {"MaxSizeMB": 20},
		"log": {"Level": "debug"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	var cfg AppConfig
	require.NoError(t, loadJSONConfig(path, &cfg))

	assert.Equal(t, "8181", cfg.AppPort)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, []string{"https://kiny.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "kiny_prod", cfg.DBName)
	assert.Equal(t, "cache.internal", cfg.RedisHost)
	assert.Equal(t, 6390, cfg.RedisPort)
	assert.Equal(t, 20, cfg.UploadMaxSizeMB)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadJSONConfigMissingFileIsFine(t *testing.T) {
	var cfg AppConfig
	assert.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "absent.json"), &cfg))
	assert.Equal(t, AppConfig{}, cfg)
}

func TestLoadJSONConfigRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o600))

	var cfg AppConfig
	assert.Error(t, loadJSONConfig(path, &cfg))
}
