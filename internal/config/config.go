// README: Config loader with env defaults for HTTP, DB, Redis, Maps, orders and booking settings.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type BookingConfig struct {
	Currency string
	TimeZone string
	// Location is TimeZone loaded; pickup dates and times are read in it.
	Location *time.Location
}

type Config struct {
	HTTP struct {
		Addr           string
		AllowedOrigins []string
		SecureCookies  bool
	}
	DB struct {
		DSN string
	}
	Redis struct {
		Addr       string
		SessionTTL time.Duration
	}
	Maps struct {
		APIKey   string
		Language string
		Region   string
	}
	Geocode struct {
		Timeout time.Duration
	}
	Orders struct {
		Endpoint string
		Token    string
		Timeout  time.Duration
	}
	Booking BookingConfig
}

// Load reads an optional .env file, then the environment. Real environment
// variables win over .env entries.
func Load() (Config, error) {
	if err := godotenv.Load(envFile()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: read env file: %w", err)
	}

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("CHAUFFEUR_HTTP_ADDR", ":8080")
	cfg.HTTP.AllowedOrigins = envOrDefaultList("CHAUFFEUR_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	cfg.HTTP.SecureCookies = envOrDefaultBool("CHAUFFEUR_SECURE_COOKIES", false)
	cfg.DB.DSN = os.Getenv("CHAUFFEUR_DB_DSN")
	cfg.Redis.Addr = envOrDefault("CHAUFFEUR_REDIS_ADDR", "localhost:6379")
	cfg.Redis.SessionTTL = envOrDefaultDuration("CHAUFFEUR_SESSION_TTL", 24*time.Hour)
	cfg.Maps.APIKey = os.Getenv("CHAUFFEUR_MAPS_API_KEY")
	cfg.Maps.Language = envOrDefault("CHAUFFEUR_MAPS_LANGUAGE", "fr")
	cfg.Maps.Region = envOrDefault("CHAUFFEUR_MAPS_REGION", "fr")
	cfg.Geocode.Timeout = envOrDefaultDuration("CHAUFFEUR_GEOCODE_TIMEOUT", 10*time.Second)
	cfg.Orders.Endpoint = envOrDefault("CHAUFFEUR_ORDER_ENDPOINT", "http://localhost:3000/api/bookings")
	cfg.Orders.Token = os.Getenv("CHAUFFEUR_ORDER_TOKEN")
	cfg.Orders.Timeout = envOrDefaultDuration("CHAUFFEUR_ORDER_TIMEOUT", 10*time.Second)
	cfg.Booking.Currency = strings.ToUpper(envOrDefault("CHAUFFEUR_CURRENCY", "EUR"))
	cfg.Booking.TimeZone = envOrDefault("CHAUFFEUR_TIMEZONE", "Europe/Paris")

	loc, err := time.LoadLocation(cfg.Booking.TimeZone)
	if err != nil {
		return Config{}, fmt.Errorf("config: CHAUFFEUR_TIMEZONE: %w", err)
	}
	cfg.Booking.Location = loc

	if cfg.Orders.Endpoint == "" {
		return Config{}, errors.New("config: CHAUFFEUR_ORDER_ENDPOINT is required")
	}
	return cfg, nil
}

func envFile() string {
	return envOrDefault("CHAUFFEUR_ENV_FILE", ".env")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	log.Printf("[CONFIG] action=parse key=%s value=%q msg=not a duration, using %s", key, v, def)
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
