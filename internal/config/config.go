// Package config loads runtime configuration from environment variables.
// Each process (auth authority, gateway) has its own config struct; shared
// helpers live at the bottom of this file.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// AuthConfig holds everything the auth authority process needs: the HTTP
// port, credential store connection parameters, token signing settings and
// the optional message broker URL.
type AuthConfig struct {
	Env        string        // application environment (e.g. "dev", "prod")
	Port       string        // HTTP port to listen on
	DBUser     string        // database username
	DBPass     string        // database password (optional)
	DBHost     string        // database host address
	DBPort     string        // database port number
	DBName     string        // database name
	JWTSecret  string        // secret used to sign tokens
	AccessTTL  time.Duration // access token lifetime
	RefreshTTL time.Duration // refresh token lifetime
	BcryptCost int           // bcrypt cost for password hashing
	AMQPURL    string        // message broker URL; empty disables event publishing
}

// LoadAuth reads the auth authority configuration. Required variables are
// enforced by must(); missing values cause the process to exit.
func LoadAuth() AuthConfig {
	return AuthConfig{
		Env:        getenv("APP_ENV", "dev"),
		Port:       getenv("APP_PORT", "4001"),
		DBUser:     must("DB_USER"),
		DBPass:     os.Getenv("DB_PASS"),
		DBHost:     must("DB_HOST"),
		DBPort:     must("DB_PORT"),
		DBName:     must("DB_NAME"),
		JWTSecret:  must("JWT_SECRET"),
		AccessTTL:  envDur("ACCESS_TOKEN_TTL", 168*time.Hour),
		RefreshTTL: envDur("REFRESH_TOKEN_TTL", 720*time.Hour),
		BcryptCost: envInt("BCRYPT_COST", 10),
		AMQPURL:    os.Getenv("AMQP_URL"),
	}
}

// GatewayConfig holds the gateway process settings: listen port, admission
// control window and ceiling, and the upstream service base URLs.
type GatewayConfig struct {
	Env             string
	Port            string
	RateLimitWindow time.Duration // fixed window length for the per-client counter
	RateLimitMax    int64         // requests allowed per client per window
	Upstreams       map[string]string
}

// LoadGateway reads the gateway configuration. Upstream addresses default to
// the conventional local ports so a full stack can run without any env setup.
func LoadGateway() GatewayConfig {
	return GatewayConfig{
		Env:             getenv("APP_ENV", "dev"),
		Port:            getenv("APP_PORT", "4000"),
		RateLimitWindow: envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
		RateLimitMax:    int64(envInt("RATE_LIMIT_MAX", 100)),
		Upstreams: map[string]string{
			"auth":         getenv("AUTH_SERVICE_URL", "http://localhost:4001"),
			"finance":      getenv("FINANCE_SERVICE_URL", "http://localhost:4002"),
			"inventory":    getenv("INVENTORY_SERVICE_URL", "http://localhost:4003"),
			"crm":          getenv("CRM_SERVICE_URL", "http://localhost:4004"),
			"analytics":    getenv("ANALYTICS_SERVICE_URL", "http://localhost:4005"),
			"ai":           getenv("AI_SERVICE_URL", "http://localhost:8001"),
			"notification": getenv("NOTIFICATION_SERVICE_URL", "http://localhost:4006"),
		},
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the process logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}
