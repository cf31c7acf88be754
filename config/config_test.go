package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("CARS_PAGE_SIZE", "")

	cfg := Load()
	require.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	require.Equal(t, 10, cfg.CarsPageSize)
	require.Equal(t, 30*time.Second, cfg.APITimeout)
	require.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://127.0.0.1:9000")
	t.Setenv("API_TIMEOUT_SECONDS", "5")
	t.Setenv("METADATA_CACHE_TTL_SECONDS", "60")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_DB", "cars")

	cfg := Load()
	require.Equal(t, "http://127.0.0.1:9000", cfg.APIBaseURL)
	require.Equal(t, 5*time.Second, cfg.APITimeout)
	require.Equal(t, time.Minute, cfg.MetadataCacheTTL)
	require.Equal(t, "postgres://u:p@db:5433/cars?sslmode=disable", cfg.PostgresURL())
}
