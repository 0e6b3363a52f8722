package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("BCRYPT_SALT_ROUNDS", "")

	cfg := Load()

	if cfg.DBDriver != DriverPostgres {
		t.Fatalf("expected default driver %q, got %q", DriverPostgres, cfg.DBDriver)
	}
	if cfg.JWTExpiresIn != 24*time.Hour {
		t.Fatalf("expected 24h token lifetime, got %s", cfg.JWTExpiresIn)
	}
	if cfg.BcryptCost != 12 {
		t.Fatalf("expected bcrypt cost 12, got %d", cfg.BcryptCost)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "Mongo")
	t.Setenv("JWT_EXPIRES_IN", "7d")
	t.Setenv("BCRYPT_SALT_ROUNDS", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := Load()

	if cfg.DBDriver != DriverMongo {
		t.Fatalf("expected mongo driver, got %q", cfg.DBDriver)
	}
	if cfg.JWTExpiresIn != 7*24*time.Hour {
		t.Fatalf("expected 7 days, got %s", cfg.JWTExpiresIn)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected cost 10, got %d", cfg.BcryptCost)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %#v", cfg.AllowedOrigins)
	}
}

func TestLoad_InvalidNumberFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	if got := Load().Port; got != 8080 {
		t.Fatalf("expected fallback port 8080, got %d", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantKey string
	}{
		{
			name:    "missing_secret",
			cfg:     Config{DBDriver: DriverMemory, JWTExpiresIn: time.Hour},
			wantKey: "JWT_SECRET",
		},
		{
			name:    "unknown_driver",
			cfg:     Config{JWTSecret: "x", DBDriver: "sqlite", JWTExpiresIn: time.Hour},
			wantKey: "DB_DRIVER",
		},
		{
			name:    "non_positive_ttl",
			cfg:     Config{JWTSecret: "x", DBDriver: DriverMemory},
			wantKey: "JWT_EXPIRES_IN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Key != tt.wantKey {
				t.Fatalf("expected key %q, got %q", tt.wantKey, cfgErr.Key)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := map[string]time.Duration{
		"24h": 24 * time.Hour,
		"90m": 90 * time.Minute,
		"1d":  24 * time.Hour,
	}

	for in, want := range tests {
		got, err := ParseDuration(in)
		if err != nil {
			t.Fatalf("ParseDuration(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseDuration(%q) = %s, want %s", in, got, want)
		}
	}

	if _, err := ParseDuration("xd"); err == nil {
		t.Fatalf("expected error for malformed day suffix")
	}
}
