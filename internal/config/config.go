package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Google sign-in
	GoogleClientID string

	// Gemini AI
	GeminiAPIKey         string
	GeminiConcurrentReqs int

	// YouTube catalog
	YouTubeAPIKey   string
	PlaylistID      string
	CatalogCacheTTL int // minutes

	// LeetCode proxy relays, tried in order
	LeetCodeRelays []string

	// Frontend
	FrontendURL string
}

// DefaultLeetCodeRelays are the public CORS relays tried left to right when no
// override is configured.
var DefaultLeetCodeRelays = []string{
	"https://cors-anywhere.herokuapp.com/",
	"https://api.allorigins.win/raw?url=",
	"https://corsproxy.io/?",
	"https://thingproxy.freeboard.io/fetch/",
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		GoogleClientID:       mustGetEnv("GOOGLE_CLIENT_ID"),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		YouTubeAPIKey:        mustGetEnv("YOUTUBE_API_KEY"),
		PlaylistID:           mustGetEnv("YOUTUBE_PLAYLIST_ID"),
		CatalogCacheTTL:      getEnvAsIntOrDefault("CATALOG_CACHE_TTL_MINUTES", 30),
		LeetCodeRelays:       getEnvAsListOrDefault("LEETCODE_RELAYS", DefaultLeetCodeRelays),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
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

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
