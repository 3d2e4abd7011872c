package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Lookup backend selection values for LOOKUP_BACKEND.
const (
	BackendAPI     = "api"
	BackendParquet = "parquet"
)

// Config holds all configuration for the nutrition MCP server
type Config struct {
	// Auth
	AuthToken string

	// Open Food Facts API
	ProductURL     string
	SearchURL      string
	UserAgent      string
	TimeoutSeconds int

	// Lookup backend: "api" (live Open Food Facts) or "parquet" (local dump)
	LookupBackend string

	// Local dataset config (parquet backend only)
	ParquetURL   string
	DataDir      string
	ParquetPath  string
	MetadataPath string
	LockFile     string

	// Refresh behavior
	RefreshIntervalHours int
	DisableRemoteCheck   bool

	// Server
	Port string
}

// Load reads configuration from environment variables
func Load() *Config {
	dataDir := getEnv("DATA_DIR", "./data")

	refreshHours := 24
	if h := os.Getenv("REFRESH_INTERVAL_HOURS"); h != "" {
		if parsed, err := strconv.Atoi(h); err == nil {
			refreshHours = parsed
		}
	}

	timeoutSeconds := 10
	if t := os.Getenv("HTTP_TIMEOUT_SECONDS"); t != "" {
		if parsed, err := strconv.Atoi(t); err == nil && parsed > 0 {
			timeoutSeconds = parsed
		}
	}

	return &Config{
		AuthToken:            getEnv("AUTH_TOKEN", "super-secret-token"),
		ProductURL:           getEnv("OFF_PRODUCT_URL", "https://world.openfoodfacts.org/api/v0/product"),
		SearchURL:            getEnv("OFF_SEARCH_URL", "https://world.openfoodfacts.org/cgi/search.pl"),
		UserAgent:            getEnv("OFF_USER_AGENT", "FoodLens - Nutrition MCP Server - Version 1.0"),
		TimeoutSeconds:       timeoutSeconds,
		LookupBackend:        getEnv("LOOKUP_BACKEND", BackendAPI),
		ParquetURL:           getEnv("PARQUET_URL", "https://huggingface.co/datasets/openfoodfacts/product-database/resolve/main/food.parquet"),
		DataDir:              dataDir,
		ParquetPath:          getEnv("PARQUET_PATH", filepath.Join(dataDir, "food.parquet")),
		MetadataPath:         getEnv("METADATA_PATH", filepath.Join(dataDir, "metadata.json")),
		LockFile:             getEnv("LOCK_FILE", filepath.Join(dataDir, "refresh.lock")),
		RefreshIntervalHours: refreshHours,
		DisableRemoteCheck:   os.Getenv("DISABLE_REMOTE_CHECK") == "true",
		Port:                 getEnv("PORT", "8080"),
	}
}

// Timeout returns the outbound HTTP timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RefreshInterval returns the dataset refresh interval as a duration
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalHours) * time.Hour
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
