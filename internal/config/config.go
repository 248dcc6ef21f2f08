package config

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DevSessionSecret is the fallback signing secret. Never use it in production.
const DevSessionSecret = "dev-secret-change-me"

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	// DatabaseURL overrides the DB* fields when set.
	DatabaseURL string
	AutoMigrate bool
	// Storage is "postgres" or "memory". Memory keeps nothing across restarts.
	Storage string

	SessionSecret        string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	CookieName           string
	CookieSecure         bool
	CookieSameSite       http.SameSite

	// KDFWorkers bounds concurrent password derivations. The iteration
	// count is fixed because stored hashes do not record it.
	KDFWorkers int

	CORSOrigins []string
	LogLevel    string
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() *Config {
	return &Config{
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "inkwell"),
		DBPassword:  getEnv("DB_PASSWORD", "inkwell_dev_password"),
		DBName:      getEnv("DB_NAME", "inkwell"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		AutoMigrate: getBool("AUTO_MIGRATE", true),
		Storage:     strings.ToLower(getEnv("STORAGE", "postgres")),

		SessionSecret:        getEnv("SESSION_SECRET", DevSessionSecret),
		SessionTTL:           getDuration("SESSION_TTL", 24*time.Hour),
		SessionSweepInterval: getDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		CookieName:           getEnv("COOKIE_NAME", "inkwell_session"),
		CookieSecure:         getBool("COOKIE_SECURE", false),
		CookieSameSite:       parseSameSite(getEnv("COOKIE_SAMESITE", "lax")),

		KDFWorkers: getInt("KDF_WORKERS", runtime.NumCPU()),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// "none" | "lax" | "strict", default lax
func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
