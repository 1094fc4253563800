// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Base directory for all databases (always absolute)
	LogLevel string
	Port     int
	DevMode  bool
	Backup   BackupConfig
	Schedule ScheduleConfig
}

// BackupConfig holds the S3-compatible bucket backups are uploaded to
type BackupConfig struct {
	Enabled         bool
	Bucket          string
	Endpoint        string // empty for AWS S3, set for R2/MinIO
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// ScheduleConfig holds the cron expressions (with seconds) of the background jobs
type ScheduleConfig struct {
	CacheCleanup string
	PlanCleanup  string
	Backup       string
	Maintenance  string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("NUTRIPLAN_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("PORT", 8080),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Backup: BackupConfig{
			Enabled:         getEnvAsBool("BACKUP_ENABLED", false),
			Bucket:          getEnv("BACKUP_BUCKET", ""),
			Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
			Region:          getEnv("BACKUP_REGION", "auto"),
			AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		},
		Schedule: ScheduleConfig{
			CacheCleanup: getEnv("CACHE_CLEANUP_SCHEDULE", "0 */30 * * * *"),
			PlanCleanup:  getEnv("PLAN_CLEANUP_SCHEDULE", "0 15 * * * *"),
			Backup:       getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"),
			Maintenance:  getEnv("MAINTENANCE_SCHEDULE", "0 30 4 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the port range, the job schedules and, when backups are
// enabled, that the bucket and credentials are present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d: must be between 1 and 65535", c.Port)
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedules := map[string]string{
		"CACHE_CLEANUP_SCHEDULE": c.Schedule.CacheCleanup,
		"PLAN_CLEANUP_SCHEDULE":  c.Schedule.PlanCleanup,
		"BACKUP_SCHEDULE":        c.Schedule.Backup,
		"MAINTENANCE_SCHEDULE":   c.Schedule.Maintenance,
	}
	for name, spec := range schedules {
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}

	if c.Backup.Enabled {
		if c.Backup.Bucket == "" {
			return fmt.Errorf("BACKUP_BUCKET is required when BACKUP_ENABLED is set")
		}
		if c.Backup.AccessKeyID == "" || c.Backup.SecretAccessKey == "" {
			return fmt.Errorf("BACKUP_ACCESS_KEY_ID and BACKUP_SECRET_ACCESS_KEY are required when BACKUP_ENABLED is set")
		}
	}

	return nil
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
