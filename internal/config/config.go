package config

import (
	"os"
	"strconv"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	DatabaseURL string
	ListenAddr  string

	// AdminAPIToken guards the /admin surface. Empty disables it.
	AdminAPIToken string

	// JWTSecret signs tenant-user session tokens.
	JWTSecret string

	// System-scoped GLPI credentials, used by the directory proxies
	// (technicians, categories, entities) that are not tenant-specific.
	GlpiURL          string
	GlpiAppToken     string
	GlpiUserLogin    string
	GlpiUserPassword string

	// StatsRefreshMinutes is the background stats worker interval.
	StatsRefreshMinutes int
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	cfg := &Config{
		DatabaseURL:         os.Getenv("APP_DATABASE_URL"),
		ListenAddr:          getenv("APP_LISTEN_ADDR", ":8080"),
		AdminAPIToken:       os.Getenv("APP_ADMIN_API_TOKEN"),
		JWTSecret:           getenv("APP_JWT_SECRET", "dev-secret-change-me"),
		GlpiURL:             os.Getenv("APP_GLPI_URL"),
		GlpiAppToken:        os.Getenv("APP_GLPI_APP_TOKEN"),
		GlpiUserLogin:       os.Getenv("APP_GLPI_USER"),
		GlpiUserPassword:    os.Getenv("APP_GLPI_PASSWORD"),
		StatsRefreshMinutes: 60,
	}

	if v := os.Getenv("APP_STATS_REFRESH_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			cfg.StatsRefreshMinutes = minutes
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
