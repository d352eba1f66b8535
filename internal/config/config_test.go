package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_DefaultValues(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, ":3333", cfg.HTTP.Address)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "ignitegym.sqlite", cfg.Database.URL)
	assert.Equal(t, "ignitegym-dev-secret", cfg.JWT.Secret)
	assert.Equal(t, 168*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, AvatarStorageDisk, cfg.Avatars.Storage)
	assert.Equal(t, "uploads/avatars", cfg.Avatars.Dir)
	assert.Equal(t, "@every 1h", cfg.Avatars.SweepSchedule)
	assert.Equal(t, int64(5<<20), cfg.Avatars.MaxSize)
	assert.Empty(t, cfg.Exercises.CatalogFile)
	assert.Equal(t, "exercises", cfg.Exercises.MediaDir)
	assert.Equal(t, "localhost:9000", cfg.Minio.Endpoint)
	assert.Equal(t, "ignitegym-avatars", cfg.Minio.Bucket)
	assert.False(t, cfg.Minio.UseSSL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestParse_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "http override",
			envVars: map[string]string{
				"GYM_HTTP_ADDRESS":         ":8080",
				"GYM_HTTP_ALLOWED_ORIGINS": "http://a.test,http://b.test",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, ":8080", cfg.HTTP.Address)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.AllowedOrigins)
			},
		},
		{
			name: "jwt override",
			envVars: map[string]string{
				"GYM_JWT_SECRET": "s3cret",
				"GYM_JWT_TTL":    "30m",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "s3cret", cfg.JWT.Secret)
				assert.Equal(t, 30*time.Minute, cfg.JWT.TTL)
			},
		},
		{
			name: "minio avatars",
			envVars: map[string]string{
				"GYM_AVATAR_STORAGE":    "minio",
				"GYM_MINIO_ENDPOINT":    "minio:9000",
				"GYM_MINIO_BUCKET_NAME": "photos",
				"GYM_MINIO_USE_SSL":     "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, AvatarStorageMinio, cfg.Avatars.Storage)
				assert.Equal(t, "minio:9000", cfg.Minio.Endpoint)
				assert.Equal(t, "photos", cfg.Minio.Bucket)
				assert.True(t, cfg.Minio.UseSSL)
			},
		},
		{
			name: "logging override",
			envVars: map[string]string{
				"GYM_LOG_LEVEL":  "debug",
				"GYM_LOG_FORMAT": "console",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Parse()
			require.NoError(t, err)
			tt.expected(cfg)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		errMsg  string
	}{
		{name: "unknown avatar storage", envVars: map[string]string{"GYM_AVATAR_STORAGE": "s3"}, errMsg: "invalid avatar storage"},
		{name: "bad duration", envVars: map[string]string{"GYM_JWT_TTL": "soon"}, errMsg: "failed to parse config"},
		{name: "negative ttl", envVars: map[string]string{"GYM_JWT_TTL": "-1h"}, errMsg: "JWT TTL must be positive"},
		{name: "zero avatar size", envVars: map[string]string{"GYM_AVATAR_MAX_SIZE": "0"}, errMsg: "avatar max size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			_, err := Parse()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
