package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{
		"CONSOLE_BACKEND_URL", "CONSOLE_SESSION_TTL", "CONSOLE_LOCKOUT_THRESHOLD",
		"CONSOLE_LOCKOUT_DURATION", "ENV", "PORT",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "http://localhost:8000", cfg.BackendURL)
	require.Equal(t, 12*time.Hour, cfg.SessionTTL)
	require.Equal(t, 5, cfg.LockoutThreshold)
	require.Equal(t, 15*time.Minute, cfg.LockoutDuration)
	require.Equal(t, 8080, cfg.Port)
	require.False(t, cfg.SecureCookies())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("CONSOLE_BACKEND_URL", "https://ifrs.internal")
	t.Setenv("CONSOLE_SESSION_TTL", "90m")
	t.Setenv("CONSOLE_LOCKOUT_THRESHOLD", "3")
	t.Setenv("CONSOLE_LOCKOUT_DURATION", "20")
	t.Setenv("PORT", "not-a-port")
	t.Setenv("ENV", "prod")

	cfg := LoadConfig()
	require.Equal(t, "https://ifrs.internal", cfg.BackendURL)
	require.Equal(t, 90*time.Minute, cfg.SessionTTL)
	require.Equal(t, 3, cfg.LockoutThreshold)
	require.Equal(t, 20*time.Minute, cfg.LockoutDuration, "bare integers are minutes")
	require.Equal(t, 8080, cfg.Port, "unparseable values fall back")
	require.True(t, cfg.SecureCookies())
}
