package config

import (
	"encoding/base64"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port            string
	MongoURI        string
	PasetoSecret    string
	TimeSources     []string
	TimeAPIURL      string
	IPResolverURL   string
	TimeSyncSpec    string
	AbsenceSpec     string
	PublicPortalURL string
}

// LoadConfig loads configuration from the environment (.env supported).
func LoadConfig() *AppConfig {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: error loading .env file (might not exist in production): %v", err)
	}

	secretBase64 := getEnv("PASETO_SECRET", "default_paseto_secret_base64_mustbe32bytes_")

	secretBytes, err := base64.URLEncoding.DecodeString(secretBase64)
	if err != nil {
		log.Fatalf("PASETO_SECRET is not a valid base64 URL-encoded string: %v", err)
	}
	if len(secretBytes) != 32 {
		log.Fatalf("PASETO_SECRET (decoded) must be exactly 32 bytes long, got %d", len(secretBytes))
	}

	return &AppConfig{
		Port:            getEnv("PORT", "3000"),
		MongoURI:        getEnv("MONGOSTRING", ""),
		PasetoSecret:    secretBase64,
		TimeSources:     splitList(getEnv("TIME_SOURCES", "time.google.com,pool.ntp.org,time.cloudflare.com")),
		TimeAPIURL:      getEnv("TIME_API_URL", "https://worldtimeapi.org/api/timezone/Etc/UTC"),
		IPResolverURL:   getEnv("IP_RESOLVER_URL", "https://api.ipify.org?format=json"),
		TimeSyncSpec:    getEnv("TIME_SYNC_CRON", "@every 5m"),
		AbsenceSpec:     getEnv("ABSENCE_SWEEP_CRON", "@every 30m"),
		PublicPortalURL: getEnv("PUBLIC_PORTAL_URL", "http://localhost:5173/attendance"),
	}
}

// Helper function to get environment variable or fallback to default
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
