package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHAUFFEUR_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Orders.Timeout != 10*time.Second || cfg.Geocode.Timeout != 10*time.Second {
		t.Errorf("timeouts = %s / %s, want 10s", cfg.Orders.Timeout, cfg.Geocode.Timeout)
	}
	if cfg.Booking.Currency != "EUR" {
		t.Errorf("Currency = %q", cfg.Booking.Currency)
	}
	if cfg.Booking.Location == nil || cfg.Booking.Location.String() != "Europe/Paris" {
		t.Errorf("Location = %v", cfg.Booking.Location)
	}
}

func TestLoad_EnvFileAndOverrides(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	content := "CHAUFFEUR_HTTP_ADDR=:9090\nCHAUFFEUR_CURRENCY=chf\nCHAUFFEUR_TIMEZONE=UTC\n"
	if err := os.WriteFile(file, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHAUFFEUR_ENV_FILE", file)
	t.Setenv("CHAUFFEUR_HTTP_ADDR", ":7070")
	t.Setenv("CHAUFFEUR_ORDER_TIMEOUT", "3")
	t.Setenv("CHAUFFEUR_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Cleanup(func() {
		os.Unsetenv("CHAUFFEUR_CURRENCY")
		os.Unsetenv("CHAUFFEUR_TIMEZONE")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Errorf("HTTP.Addr = %q, environment should win over .env", cfg.HTTP.Addr)
	}
	if cfg.Booking.Currency != "CHF" {
		t.Errorf("Currency = %q, want CHF", cfg.Booking.Currency)
	}
	if cfg.Booking.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Booking.Location)
	}
	if cfg.Orders.Timeout != 3*time.Second {
		t.Errorf("Orders.Timeout = %s, want 3s", cfg.Orders.Timeout)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.HTTP.AllowedOrigins)
	}
}

func TestLoad_BadTimeZone(t *testing.T) {
	t.Setenv("CHAUFFEUR_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("CHAUFFEUR_TIMEZONE", "Mars/Olympus")
	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want time zone error")
	}
}

func TestEnvOrDefaultDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Minute},
		{"90s", 90 * time.Second},
		{"2", 2 * time.Second},
		{"soon", time.Minute},
	}
	for _, tt := range tests {
		t.Setenv("CHAUFFEUR_TEST_DURATION", tt.value)
		if got := envOrDefaultDuration("CHAUFFEUR_TEST_DURATION", time.Minute); got != tt.want {
			t.Errorf("envOrDefaultDuration(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
}
