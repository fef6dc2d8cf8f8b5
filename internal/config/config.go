package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	LogDir       string
	Debug        bool

	// SessionSecret signs the session cookie. A random secret is generated
	// when none is configured, which invalidates sessions on restart.
	SessionSecret   string
	GeneratedSecret bool
	AdminEmail      string
	AdminPassword   string
	NotifyURL       string
	SweepSchedule   string

	// TrustedProxies may set X-Forwarded-For. Empty means the client key is
	// always the peer address.
	TrustedProxies []string
	Security       SecurityConfig
	Session        SessionConfig
}

// SecurityConfig configures the login throttle.
type SecurityConfig struct {
	LoginMaxAttempts int
	LoginWindow      time.Duration
	BlockDuration    time.Duration
}

// SessionConfig configures the session authority and its cookie.
type SessionConfig struct {
	CookieName      string
	IdleTimeout     time.Duration
	RefreshOnAccess bool
	Secure          bool
}

// DefaultSecurityConfig allows 5 login attempts per 15 minutes, then blocks
// the client for 15 minutes.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		LoginMaxAttempts: 5,
		LoginWindow:      15 * time.Minute,
		BlockDuration:    15 * time.Minute,
	}
}

// DefaultSessionConfig returns a 10 minute idle session refreshed on access.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName:      "memberwall_sid",
		IdleTimeout:     10 * time.Minute,
		RefreshOnAccess: true,
	}
}

// Load reads a .env file when present, then env vars, and falls back to
// defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	security := DefaultSecurityConfig()
	session := DefaultSessionConfig()

	cfg := Config{
		Environment:   getEnv("MEMBERWALL_ENV", "development"),
		HTTPPort:      getEnv("PORT", "3000"),
		DatabasePath:  getEnv("MEMBERWALL_DB_PATH", filepath.Join("data", "memberwall.db")),
		LogDir:        getEnv("LOG_DIR", "log"),
		Debug:         getBool("MEMBERWALL_DEBUG", false),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@memberwall.local"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		NotifyURL:     os.Getenv("NOTIFY_URL"),
		SweepSchedule: getEnv("SWEEP_SCHEDULE", "@every 5m"),
	}
	cfg.TrustedProxies = getList("TRUSTED_PROXIES")

	var err error
	if security.LoginMaxAttempts, err = getInt("LOGIN_MAX_ATTEMPTS", security.LoginMaxAttempts); err != nil {
		return Config{}, err
	}
	if security.LoginWindow, err = getDuration("LOGIN_WINDOW", security.LoginWindow); err != nil {
		return Config{}, err
	}
	// The block lasts one window unless configured otherwise.
	if security.BlockDuration, err = getDuration("LOGIN_BLOCK_DURATION", security.LoginWindow); err != nil {
		return Config{}, err
	}
	if session.IdleTimeout, err = getDuration("SESSION_IDLE_TIMEOUT", session.IdleTimeout); err != nil {
		return Config{}, err
	}
	session.RefreshOnAccess = getBool("SESSION_REFRESH_ON_ACCESS", session.RefreshOnAccess)
	session.Secure = cfg.IsProduction()
	cfg.Security = security
	cfg.Session = session

	if security.LoginMaxAttempts < 1 {
		return Config{}, fmt.Errorf("LOGIN_MAX_ATTEMPTS must be at least 1, got %d", security.LoginMaxAttempts)
	}

	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return Config{}, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SessionSecret = secret
		cfg.GeneratedSecret = true
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the environment is a production one.
func (c Config) IsProduction() bool {
	env := strings.ToLower(c.Environment)
	return env == "production" || env == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, val)
	}
	return d, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
