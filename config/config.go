package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable for local development.
const DefaultJWTSecret = "CHANGE_THIS_SECRET_IN_PRODUCTION"

var localOrigins = []string{"http://localhost:5173", "http://localhost:3000", "http://127.0.0.1:5173"}

type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
	UploadDir      string
	LogLevel       string
	GinMode        string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	ttlMinutes, err := strconv.Atoi(getenv("ACCESS_TOKEN_EXPIRE_MINUTES", "10080"))
	if err != nil || ttlMinutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be a positive integer, got %q", os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"))
	}

	port := getenv("PORT", "8080")
	if _, err := strconv.Atoi(port); err != nil {
		return nil, fmt.Errorf("PORT must be numeric, got %q", port)
	}

	return &Config{
		Port:           port,
		DatabaseURL:    databaseURL(),
		JWTSecret:      getenv("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:       time.Duration(ttlMinutes) * time.Minute,
		AllowedOrigins: allowedOrigins(os.Getenv("FRONTEND_URL")),
		UploadDir:      getenv("UPLOAD_DIR", "uploads"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		GinMode:        getenv("GIN_MODE", "release"),
	}, nil
}

// databaseURL prefers DATABASE_URL, then the discrete DB_* variables, then a
// local SQLite file.
func databaseURL() string {
	if url := strings.TrimSpace(os.Getenv("DATABASE_URL")); url != "" {
		return url
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			host, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"), getenv("DB_PORT", "5432"),
		)
	}
	return "sqlite://jewellery.db"
}

func allowedOrigins(frontendURL string) []string {
	if frontendURL == "" {
		frontendURL = "http://localhost:5173"
	}
	var origins []string
	seen := map[string]bool{}
	for _, o := range append(strings.Split(frontendURL, ","), localOrigins...) {
		o = strings.TrimSpace(o)
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		origins = append(origins, o)
	}
	return origins
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
