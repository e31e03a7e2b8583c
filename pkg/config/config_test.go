package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PUBLIC_URL", "")

	var cfg Config
	cfg.LoadEnv()

	require.Equal(t, 3000, cfg.Port)
	require.Empty(t, cfg.PublicURL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PUBLIC_URL", "https://bakery.example.com")

	var cfg Config
	cfg.LoadEnv()

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "https://bakery.example.com", cfg.PublicURL)
}

func TestLoadEnvBadPortFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	var cfg Config
	cfg.LoadEnv()

	require.Equal(t, 3000, cfg.Port)
}
