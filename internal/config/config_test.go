package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	if old, ok := os.LookupEnv(key); ok {
		t.Cleanup(func() { _ = os.Setenv(key, old) })
	}
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() { _ = os.Unsetenv(key) })
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	unsetEnv(t, "PORT")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3000", cfg.HTTPPort)
	assert.Equal(t, 5, cfg.Security.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Security.LoginWindow)
	assert.Equal(t, 15*time.Minute, cfg.Security.BlockDuration)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTimeout)
	assert.True(t, cfg.Session.RefreshOnAccess)
	assert.False(t, cfg.Session.Secure)
	assert.True(t, cfg.GeneratedSecret)
	assert.Len(t, cfg.SessionSecret, 64)
	assert.DirExists(t, "data")
}

func TestLoad_FromEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("MEMBERWALL_ENV", "production")
	t.Setenv("MEMBERWALL_DB_PATH", filepath.Join(dir, "db", "app.db"))
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_WINDOW", "5m")
	t.Setenv("SESSION_IDLE_TIMEOUT", "2m")
	t.Setenv("SESSION_REFRESH_ON_ACCESS", "false")
	t.Setenv("MEMBERWALL_DEBUG", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.0/8,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, "s3cret", cfg.SessionSecret)
	assert.False(t, cfg.GeneratedSecret)
	assert.Equal(t, 3, cfg.Security.LoginMaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Security.LoginWindow)
	assert.Equal(t, 5*time.Minute, cfg.Security.BlockDuration)
	assert.Equal(t, 2*time.Minute, cfg.Session.IdleTimeout)
	assert.False(t, cfg.Session.RefreshOnAccess)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.0/8"}, cfg.TrustedProxies)
	assert.DirExists(t, filepath.Join(dir, "db"))
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := chdirTemp(t)
	unsetEnv(t, "PORT")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=4100\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "4100", cfg.HTTPPort)
}

func TestLoad_InvalidValues(t *testing.T) {
	chdirTemp(t)

	t.Setenv("LOGIN_WINDOW", "soon")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LOGIN_WINDOW", "")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("LOGIN_MAX_ATTEMPTS", "many")
	_, err = Load()
	assert.Error(t, err)
}
