// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for all databases (always absolute)
	Port            int
	DevMode         bool
	LogLevel        string
	RuleTTL         time.Duration // How long a fetched zoning rule stays fresh
	FetchTimeout    time.Duration // Bound on a single external rule fetch
	AllowStaleRules bool          // Serve expired cache rows when the source is down
	ScraperBaseURL  string        // Municipal code scraper collaborator endpoint
	Workers         int           // Scoring worker pool size; 0 sizes from CPU count
	AssumptionsPath string        // Optional market assumptions override file (JSON)
	Backup          *BackupConfig
}

// BackupConfig holds cloud backup configuration for the data directory.
// Backups target any S3-compatible object store; disabled unless a bucket is
// configured.
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string // Custom endpoint for S3-compatible stores; empty for AWS
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string // Key prefix inside the bucket
	Keep            int    // Number of backups to retain
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("FEASIBILITY_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RuleTTL:         time.Duration(getEnvAsInt("RULE_TTL_DAYS", 30)) * 24 * time.Hour,
		FetchTimeout:    time.Duration(getEnvAsInt("RULE_FETCH_TIMEOUT_SECONDS", 15)) * time.Second,
		AllowStaleRules: getEnvAsBool("ALLOW_STALE_RULES", true),
		ScraperBaseURL:  getEnv("SCRAPER_BASE_URL", ""),
		Workers:         getEnvAsInt("ANALYSIS_WORKERS", 0),
		AssumptionsPath: getEnv("MARKET_ASSUMPTIONS_PATH", ""),
		Backup:          loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.RuleTTL <= 0 {
		return fmt.Errorf("rule TTL must be positive")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("rule fetch timeout must be positive")
	}
	if c.Backup != nil && c.Backup.Enabled && c.Backup.Bucket == "" {
		return fmt.Errorf("backup enabled but no bucket configured")
	}
	return nil
}

// loadBackupConfig loads cloud backup configuration. Backups are enabled only
// when a bucket is configured.
func loadBackupConfig() *BackupConfig {
	bucket := getEnv("BACKUP_BUCKET", "")
	return &BackupConfig{
		Enabled:         bucket != "",
		Bucket:          bucket,
		Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
		Region:          getEnv("BACKUP_REGION", "auto"),
		AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		Prefix:          getEnv("BACKUP_PREFIX", "feasibility-backups"),
		Keep:            getEnvAsInt("BACKUP_KEEP", 7),
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
