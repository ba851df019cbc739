// Package config loads service configuration from the environment once at
// startup. Everything has a development default except the token signing
// secret, which must be provided explicitly.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config is the immutable runtime configuration.
type Config struct {
	Addr  string
	PGDSN string

	AuthSecret    string
	TokenIssuer   string
	TokenTTL      time.Duration
	SessionCookie string

	// Route guard redirect targets.
	SignInPath    string
	DashboardPath string

	// TrustTokenRoles keeps the page guard on the token's embedded roles
	// (no store lookup per page view). Turning it off makes role downgrades
	// take effect at the page level immediately, at the cost of a store hit
	// per guarded request.
	TrustTokenRoles bool

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string

	RateLimitBurst     int
	RateLimitPerSecond int
	MaxBodyBytes       int64
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Addr:  getenv("PIXELSMITH_ADDR", ":8080"),
		PGDSN: os.Getenv("PIXELSMITH_PG_DSN"),

		AuthSecret:    os.Getenv("PIXELSMITH_AUTH_SECRET"),
		TokenIssuer:   getenv("PIXELSMITH_TOKEN_ISSUER", "pixelsmith"),
		TokenTTL:      getduration("PIXELSMITH_TOKEN_TTL", 72*time.Hour),
		SessionCookie: getenv("PIXELSMITH_SESSION_COOKIE", "session"),

		SignInPath:    getenv("PIXELSMITH_SIGNIN_PATH", "/auth/sign-in"),
		DashboardPath: getenv("PIXELSMITH_DASHBOARD_PATH", "/dashboard"),

		TrustTokenRoles: getbool("PIXELSMITH_TRUST_TOKEN_ROLES", true),

		GoogleClientID:     os.Getenv("PIXELSMITH_GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("PIXELSMITH_GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  os.Getenv("PIXELSMITH_GOOGLE_REDIRECT_URI"),

		RateLimitBurst:     getint("PIXELSMITH_RATE_BURST", 60),
		RateLimitPerSecond: getint("PIXELSMITH_RATE_PER_SECOND", 20),
		MaxBodyBytes:       int64(getint("PIXELSMITH_MAX_BODY_BYTES", 1<<20)),
	}
	if cfg.AuthSecret == "" {
		return Config{}, errors.New("config: PIXELSMITH_AUTH_SECRET is required")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getduration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
