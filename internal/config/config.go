package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds console runtime configuration sourced from env vars.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	CredentialFile string
	Environment    string
}

// DevAPIConfig holds configuration for the local development backend.
type DevAPIConfig struct {
	Addr        string
	JWTSecret   string
	JWTTTL      time.Duration
	LoginRate   int
	LoginBurst  int
	Environment string
}

// Load reads console configuration from the environment. A .env file in the
// working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL:     fallback(os.Getenv("PARKDESK_API_URL"), "http://localhost:8980"),
		CredentialFile: strings.TrimSpace(os.Getenv("PARKDESK_CRED_FILE")),
		Environment:    fallback(os.Getenv("PARKDESK_ENV"), "development"),
	}

	seconds := fallback(os.Getenv("PARKDESK_TIMEOUT_SECONDS"), "30")
	n, err := strconv.Atoi(seconds)
	if err != nil || n <= 0 {
		return Config{}, fmt.Errorf("PARKDESK_TIMEOUT_SECONDS must be a positive integer, got %q", seconds)
	}
	cfg.RequestTimeout = time.Duration(n) * time.Second

	if cfg.CredentialFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve config dir: %w", err)
		}
		cfg.CredentialFile = filepath.Join(dir, "parkdesk", "credential")
	}

	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return Config{}, errors.New("PARKDESK_API_URL must be an http(s) URL")
	}

	return cfg, nil
}

// LoadDevAPI reads development backend configuration from the environment.
func LoadDevAPI() (DevAPIConfig, error) {
	_ = godotenv.Load()

	cfg := DevAPIConfig{
		Addr:        fallback(os.Getenv("DEVAPI_ADDR"), ":8980"),
		JWTSecret:   fallback(os.Getenv("DEVAPI_JWT_SECRET"), "parkdesk-dev-secret"),
		Environment: fallback(os.Getenv("PARKDESK_ENV"), "development"),
	}

	minutes := fallback(os.Getenv("DEVAPI_JWT_TTL_MINUTES"), "60")
	if n, err := strconv.Atoi(minutes); err == nil && n > 0 {
		cfg.JWTTTL = time.Duration(n) * time.Minute
	} else {
		return DevAPIConfig{}, fmt.Errorf("DEVAPI_JWT_TTL_MINUTES must be a positive integer, got %q", minutes)
	}

	cfg.LoginRate = intEnv("DEVAPI_LOGIN_RATE", 5)
	cfg.LoginBurst = intEnv("DEVAPI_LOGIN_BURST", 10)
	if cfg.LoginRate <= 0 || cfg.LoginBurst <= 0 {
		return DevAPIConfig{}, errors.New("login rate limit values must be positive")
	}

	return cfg, nil
}

func intEnv(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
