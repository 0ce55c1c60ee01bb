package restapi

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the client settings read from the environment.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:8080/api".
	BaseURL string
	// StationKey marks submissions from a kiosk station. Empty when unset.
	StationKey string
	// Language is the initial UI language.
	Language string
	Timeout  time.Duration
}

// LoadConfig reads a .env file when present, then the environment.
//
//	PINFIELD_API_HOST   scheme and host, default http://localhost:8080
//	PINFIELD_API_BASE   path or absolute URL, default /api
//	PINFIELD_STATION    station key
//	PINFIELD_LANG       language, default de
//	PINFIELD_TIMEOUT    request timeout in seconds, default 10
func LoadConfig() *Config {
	_ = godotenv.Load()
	return &Config{
		BaseURL:    joinBase(getEnv("PINFIELD_API_HOST", "http://localhost:8080"), getEnv("PINFIELD_API_BASE", "/api")),
		StationKey: strings.TrimSpace(os.Getenv("PINFIELD_STATION")),
		Language:   getEnv("PINFIELD_LANG", "de"),
		Timeout:    time.Duration(getEnvAsInt("PINFIELD_TIMEOUT", 10)) * time.Second,
	}
}

// joinBase resolves base against host unless base is already absolute.
func joinBase(host, base string) string {
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		return strings.TrimRight(base, "/")
	}
	host = strings.TrimRight(host, "/")
	if base = strings.Trim(base, "/"); base == "" {
		return host
	}
	return host + "/" + base
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
