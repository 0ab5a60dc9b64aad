package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()
	if cfg.Env != EnvDevelopment || cfg.IsProduction() {
		t.Fatalf("env = %q, want development", cfg.Env)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("token ttl = %v", cfg.TokenTTL)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"http://localhost:3000"}) {
		t.Fatalf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("TOKEN_TTL", "24h")
	t.Setenv("CORS_ORIGINS", "https://a.example; https://b.example;")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg := Load()
	if !cfg.IsProduction() {
		t.Fatal("expected production")
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Fatalf("token ttl = %v", cfg.TokenTTL)
	}
	if !reflect.DeepEqual(cfg.CORSOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Fatalf("cors origins = %v", cfg.CORSOrigins)
	}
	if !reflect.DeepEqual(cfg.KafkaBrokers, []string{"k1:9092", "k2:9092"}) {
		t.Fatalf("kafka brokers = %v", cfg.KafkaBrokers)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("bcrypt cost = %d, want fallback 10", cfg.BcryptCost)
	}
}

func TestValidateJWTSecret(t *testing.T) {
	strong := "0123456789abcdef0123456789abcdef"
	tests := []struct {
		name    string
		env     string
		secret  string
		wantErr bool
	}{
		{"development default", "", "", false},
		{"production default", "production", "", true},
		{"production explicit dev secret", "production", "dev-secret-change-me", true},
		{"production short", "production", "short-secret", true},
		{"production strong", "production", strong, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("JWT_SECRET", tt.secret)
			err := Load().Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	if got := Load().TrustedProxies; got != nil {
		t.Fatalf("default trusted proxies = %v, want nil", got)
	}
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.0/8")
	if got := Load().TrustedProxies; !reflect.DeepEqual(got, []string{"10.0.0.1", "10.0.0.0/8"}) {
		t.Fatalf("trusted proxies = %v", got)
	}
}
