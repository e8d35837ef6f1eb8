package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	ListenAddr     string
	DBPath         string
	GeoAPIBaseURL  string
	GeoTimeout     time.Duration
	ResolveTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from the environment, with a .env file as an
// optional overlay for local runs.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:            getenv("APP_ENV", "development"),
		ListenAddr:     getenv("LISTEN_ADDR", ":8080"),
		DBPath:         getenv("DB_PATH", "geotrace.db"),
		GeoAPIBaseURL:  getenv("GEO_API_BASE_URL", "http://ip-api.com"),
		GeoTimeout:     getenvSeconds("GEO_TIMEOUT_SECONDS", 10),
		ResolveTimeout: getenvSeconds("RESOLVE_TIMEOUT_SECONDS", 5),
		RateLimitRPS:   getenvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getenvInt("RATE_LIMIT_BURST", 10),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil {
			return out
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		var out float64
		if _, err := fmt.Sscanf(v, "%g", &out); err == nil {
			return out
		}
	}
	return def
}

func getenvSeconds(key string, def int) time.Duration {
	return time.Duration(getenvInt(key, def)) * time.Second
}
