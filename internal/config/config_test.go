package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LC_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.HTTPAddress())
	require.Equal(t, 168*time.Hour, cfg.JWTTTL)
	require.Equal(t, time.Minute, cfg.RatingCacheTTL)
	require.Equal(t, 5*time.Minute, cfg.DashboardCacheTTL)
	require.Equal(t, "secret", cfg.JWTStudentSecret)
	require.Equal(t, 20, cfg.LoginRateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LC_JWT_SECRET", "secret")
	t.Setenv("LC_JWT_STUDENT_SECRET", "student-secret")
	t.Setenv("LC_APP_PORT", ":9090")
	t.Setenv("LC_RATING_CACHE_TTL", "15s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, "student-secret", cfg.JWTStudentSecret)
	require.Equal(t, 15*time.Second, cfg.RatingCacheTTL)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("LC_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("LC_JWT_SECRET", "secret")
	t.Setenv("LC_JWT_TTL", "weekly")

	_, err := Load()
	require.Error(t, err)
}
