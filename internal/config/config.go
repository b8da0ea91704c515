package config

import (
	"os"
	"strconv"
)

// Config carries every runtime setting of the service. Values come from the
// environment; cmd entrypoints load a .env file first via godotenv.
type Config struct {
	// Database
	DatabaseURL string

	// Contifico ERP API
	ContificoBaseURL  string
	ContificoAPIKey   string
	ContificoAPIToken string
	SyncPageSize      int

	// Server
	Port           string
	AllowedOrigins string

	// AI
	OpenAIAPIKey string
}

func Load() *Config {
	pageSize, _ := strconv.Atoi(getEnv("SYNC_PAGE_SIZE", "200"))

	return &Config{
		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Contifico ERP API
		ContificoBaseURL:  getEnv("CONTIFICO_BASE_URL", "https://api.contifico.com/sistema/api/v1"),
		ContificoAPIKey:   os.Getenv("CONTIFICO_API_KEY"),
		ContificoAPIToken: os.Getenv("CONTIFICO_API_TOKEN"),
		SyncPageSize:      pageSize,

		// Server
		Port:           getEnv("SERVER_PORT", "8080"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),

		// AI
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
