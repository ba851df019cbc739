package config

import (
	"testing"
	"time"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("PIXELSMITH_AUTH_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without signing secret")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PIXELSMITH_AUTH_SECRET", "dev-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.SignInPath != "/auth/sign-in" || cfg.DashboardPath != "/dashboard" {
		t.Fatalf("redirect targets = %q, %q", cfg.SignInPath, cfg.DashboardPath)
	}
	if !cfg.TrustTokenRoles {
		t.Fatal("TrustTokenRoles should default to true")
	}
	if cfg.TokenTTL != 72*time.Hour {
		t.Fatalf("ttl = %s", cfg.TokenTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PIXELSMITH_AUTH_SECRET", "dev-secret")
	t.Setenv("PIXELSMITH_TOKEN_TTL", "30m")
	t.Setenv("PIXELSMITH_TRUST_TOKEN_ROLES", "false")
	t.Setenv("PIXELSMITH_RATE_BURST", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Fatalf("ttl = %s", cfg.TokenTTL)
	}
	if cfg.TrustTokenRoles {
		t.Fatal("TrustTokenRoles should be overridden to false")
	}
	if cfg.RateLimitBurst != 60 {
		t.Fatalf("malformed int should fall back to default, got %d", cfg.RateLimitBurst)
	}
}
