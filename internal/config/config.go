package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Control surface
	ControlPort string

	// Persistence
	SQLitePath string

	// Result cache; empty RedisAddr selects the in-memory cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Event bus (optional)
	NatsURL                string
	EnableResultPublishing bool

	// Scheduling
	CheckInterval       time.Duration
	MaxConcurrentChecks int
	BatchSize           int
	AutoStartMonitoring bool

	// Classification thresholds
	Thresholds HealthThresholds
}

// HealthThresholds contains the configurable warning/critical bounds applied
// to every probe. These can be adjusted per environment via env vars.
type HealthThresholds struct {
	ResponseTimeWarning  float64 // seconds
	ResponseTimeCritical float64
	CPUWarning           float64 // percent, 0-100
	CPUCritical          float64
	MemoryWarning        float64
	MemoryCritical       float64
	DiskWarning          float64
	DiskCritical         float64
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	// Try multiple .env locations
	envPaths := []string{
		".env",
		"../.env",
		"/app/.env", // Docker
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("Loaded config from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Printf("No .env file found, using environment variables")
	}

	config := &Config{
		ControlPort: getEnvOrDefault("CONTROL_PORT", "8080"),
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", "health_history.db"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       parseIntOrDefault("REDIS_DB", 0),

		NatsURL:                getEnvOrDefault("NATS_URL", "nats://localhost:4222"),
		EnableResultPublishing: getEnvOrDefault("ENABLE_RESULT_PUBLISHING", "false") == "true",

		MaxConcurrentChecks: parseIntOrDefault("MAX_CONCURRENT_CHECKS", 100),
		BatchSize:           parseIntOrDefault("BATCH_SIZE", 50),
		AutoStartMonitoring: getEnvOrDefault("AUTO_START_MONITORING", "true") == "true",

		Thresholds: HealthThresholds{
			ResponseTimeWarning:  parseFloatOrDefault("THRESHOLD_RESPONSE_TIME_WARNING", 2.0),
			ResponseTimeCritical: parseFloatOrDefault("THRESHOLD_RESPONSE_TIME_CRITICAL", 5.0),
			CPUWarning:           parseFloatOrDefault("THRESHOLD_CPU_WARNING", 80.0),
			CPUCritical:          parseFloatOrDefault("THRESHOLD_CPU_CRITICAL", 95.0),
			MemoryWarning:        parseFloatOrDefault("THRESHOLD_MEMORY_WARNING", 90.0),
			MemoryCritical:       parseFloatOrDefault("THRESHOLD_MEMORY_CRITICAL", 95.0),
			DiskWarning:          parseFloatOrDefault("THRESHOLD_DISK_WARNING", 90.0),
			DiskCritical:         parseFloatOrDefault("THRESHOLD_DISK_CRITICAL", 95.0),
		},
	}

	// Parse durations with defaults
	interval, err := time.ParseDuration(getEnvOrDefault("CHECK_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECK_INTERVAL: %w", err)
	}
	config.CheckInterval = interval

	ttl, err := time.ParseDuration(getEnvOrDefault("CACHE_TTL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	config.CacheTTL = ttl

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that required configuration is present and sane.
func (c *Config) Validate() error {
	if c.ControlPort == "" {
		return fmt.Errorf("CONTROL_PORT is required")
	}

	if c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required")
	}

	if c.CheckInterval < 1*time.Second {
		return fmt.Errorf("CHECK_INTERVAL must be at least 1 second")
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	if c.MaxConcurrentChecks < 1 {
		return fmt.Errorf("MAX_CONCURRENT_CHECKS must be at least 1")
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1")
	}

	t := c.Thresholds
	if t.ResponseTimeWarning >= t.ResponseTimeCritical {
		return fmt.Errorf("THRESHOLD_RESPONSE_TIME_WARNING must be below critical")
	}
	if t.CPUWarning >= t.CPUCritical || t.MemoryWarning >= t.MemoryCritical || t.DiskWarning >= t.DiskCritical {
		return fmt.Errorf("warning thresholds must be below their critical counterparts")
	}

	return nil
}

// Helper function for defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %g", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
