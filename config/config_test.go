package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, k := range []string{"PORT", "APP_ENV", "STORAGE_DRIVER", "JWT_SECRET", "JWT_EXPIRATION", "FEED_MAX_LIMIT", "REDIS_ADDR", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, DriverMongo, cfg.StorageDriver)
	assert.Equal(t, time.Hour, cfg.JWTExpiration)
	assert.Equal(t, int64(100), cfg.FeedMaxLimit)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.UsingDevSecret())
	assert.Contains(t, cfg.String(), "redis=(disabled)")
}

func TestLoadOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", ":9000")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRATION", "15m")
	t.Setenv("FEED_MAX_LIMIT", "25")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiration)
	assert.Equal(t, int64(25), cfg.FeedMaxLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.UsingDevSecret())
	assert.NotContains(t, cfg.String(), "s3cret")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without secret", map[string]string{"APP_ENV": "production", "JWT_SECRET": ""}},
		{"bad driver", map[string]string{"STORAGE_DRIVER": "postgres"}},
		{"bad duration", map[string]string{"JWT_EXPIRATION": "soon"}},
		{"negative limit", map[string]string{"FEED_MAX_LIMIT": "-1"}},
		{"bad redis db", map[string]string{"REDIS_DB": "zero"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
