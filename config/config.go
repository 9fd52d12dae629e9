package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	Debug          bool
}

// Load reads a .env file if present, then the process environment.
// Missing values fall back to development defaults.
func Load() Config {
	godotenv.Load()

	cfg := Config{
		Port:  os.Getenv("PORT"),
		Debug: os.Getenv("DEBUG") == "true",
	}

	if cfg.Port == "" {
		cfg.Port = "5000"
	}

	origins := os.Getenv("ALLOWED_ORIGINS")
	if origins == "" {
		origins = "http://localhost:3000"
	}
	for _, origin := range strings.Split(origins, ",") {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(origin))
	}

	return cfg
}
