package config

import "testing"

func TestValidateRequiresDatabaseURL(t *testing.T) {
	cfg := Load()
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error without DATABASE_URL")
	}
}

func TestValidateProductionGuards(t *testing.T) {
	cfg := Config{
		DatabaseURL:        "postgres://localhost/luchwallet",
		Environment:        "production",
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 60,
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error: empty JWT secret in production")
	}

	cfg.JWTSecret = "strong-secret"
	cfg.SeedDemoData = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error: demo seed enabled in production")
	}

	cfg.SeedDemoData = false
	cfg.SeedAdminPassword = "changed-for-prod"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
