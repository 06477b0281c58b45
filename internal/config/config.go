package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GeminiAPIKey string
	GeminiModel  string

	// Optional infrastructure. Empty URL disables the feature.
	DatabaseURL string
	RedisURL    string

	// Uploads
	MaxUploadMB int
	TempDir     string

	// Cache
	CacheTTLMinutes int

	// Rate limiting
	GenerateRequestsPerMin int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                   getEnvOrDefault("PORT", "8080"),
		Env:                    getEnvOrDefault("ENV", "development"),
		GeminiAPIKey:           mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:            getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		DatabaseURL:            getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:               getEnvOrDefault("REDIS_URL", ""),
		MaxUploadMB:            getEnvAsIntOrDefault("MAX_UPLOAD_MB", 100),
		TempDir:                getEnvOrDefault("TEMP_DIR", os.TempDir()),
		CacheTTLMinutes:        getEnvAsIntOrDefault("CACHE_TTL_MINUTES", 60),
		GenerateRequestsPerMin: getEnvAsIntOrDefault("GENERATE_REQUESTS_PER_MINUTE", 10),
		FrontendURL:            getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
