package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API    APIConfig
	Socket SocketConfig
	Auth   AuthConfig
	Chat   ChatConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SocketConfig struct {
	URL string
}

type AuthConfig struct {
	Token string
}

type ChatConfig struct {
	HistoryPageSize int
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env file: %v", err)
	}

	return &Config{
		API: APIConfig{
			BaseURL: getEnvOrDefault("API_BASE_URL", "http://localhost:5000/api"),
			Timeout: getDurationOrDefault("API_TIMEOUT", "10s"),
		},
		Socket: SocketConfig{
			URL: getEnvOrDefault("SOCKET_URL", "ws://localhost:5000/ws"),
		},
		Auth: AuthConfig{
			Token: getEnvOrFatal("AUTH_TOKEN"),
		},
		Chat: ChatConfig{
			HistoryPageSize: getIntOrDefault("HISTORY_PAGE_SIZE", 50),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrFatal(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("%s environment variable is required", key)
	}
	return value
}

func getDurationOrDefault(key, defaultValue string) time.Duration {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %v", key, err)
	}
	return duration
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("Invalid integer for %s: %v", key, err)
	}
	return intValue
}
