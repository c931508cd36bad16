// Package config loads drillz settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-wide configuration.
type Config struct {
	// Database
	DBPath string

	// HTTP
	HTTPAddr    string
	JWTSecret   string
	CORSOrigins []string

	// Redis leaderboard cache; empty disables it.
	RedisAddr string

	// Logging
	LogLevel string
	LogPath  string

	// Timezone defines the calendar day used for streaks.
	Timezone string

	// Maintenance
	StreakSweepCron string
	AttemptTTL      time.Duration

	// Tracing
	OTelEnabled  bool
	OTelEndpoint string
	OTelInsecure bool

	Economy Economy
}

// Economy holds the tunable constants of the scoring rules.
type Economy struct {
	GemsLimit          int
	PointsToRefill     int
	PointsPerCorrect   int
	QuestionsPerDrill  int
	SecondsPerQuestion int
}

// DefaultEconomy returns the stock economy constants.
func DefaultEconomy() Economy {
	return Economy{
		GemsLimit:          5,
		PointsToRefill:     10,
		PointsPerCorrect:   10,
		QuestionsPerDrill:  10,
		SecondsPerQuestion: 15,
	}
}

// Load reads the configuration from the environment, loading a .env file
// from the working directory first when one exists.
func Load() (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	def := DefaultEconomy()
	cfg := &Config{
		DBPath:          getEnv("DRILLZ_DB", ""),
		HTTPAddr:        getEnv("DRILLZ_HTTP_ADDR", ":8080"),
		JWTSecret:       getEnv("DRILLZ_JWT_SECRET", ""),
		CORSOrigins:     getEnvList("DRILLZ_CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		RedisAddr:       getEnv("DRILLZ_REDIS_ADDR", ""),
		LogLevel:        getEnv("DRILLZ_LOG_LEVEL", "info"),
		LogPath:         getEnv("DRILLZ_LOG_PATH", ""),
		Timezone:        getEnv("DRILLZ_TIMEZONE", "UTC"),
		StreakSweepCron: getEnv("DRILLZ_STREAK_SWEEP_CRON", "5 0 * * *"),
		AttemptTTL:      getEnvDuration("DRILLZ_ATTEMPT_TTL", 24*time.Hour),
		OTelEnabled:     getEnvBool("DRILLZ_OTEL_ENABLED", false),
		OTelEndpoint:    getEnv("DRILLZ_OTEL_ENDPOINT", ""),
		OTelInsecure:    getEnvBool("DRILLZ_OTEL_INSECURE", false),
		Economy: Economy{
			GemsLimit:          getEnvInt("DRILLZ_GEMS_LIMIT", def.GemsLimit),
			PointsToRefill:     getEnvInt("DRILLZ_POINTS_TO_REFILL", def.PointsToRefill),
			PointsPerCorrect:   getEnvInt("DRILLZ_POINTS_PER_CORRECT", def.PointsPerCorrect),
			QuestionsPerDrill:  getEnvInt("DRILLZ_QUESTIONS_PER_DRILL", def.QuestionsPerDrill),
			SecondsPerQuestion: getEnvInt("DRILLZ_SECONDS_PER_QUESTION", def.SecondsPerQuestion),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if err := c.Economy.Validate(); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("DRILLZ_TIMEZONE: %w", err)
	}
	if c.AttemptTTL <= 0 {
		return fmt.Errorf("DRILLZ_ATTEMPT_TTL must be positive")
	}
	return nil
}

// Validate rejects non-positive constants.
func (e Economy) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"DRILLZ_GEMS_LIMIT", e.GemsLimit},
		{"DRILLZ_POINTS_TO_REFILL", e.PointsToRefill},
		{"DRILLZ_POINTS_PER_CORRECT", e.PointsPerCorrect},
		{"DRILLZ_QUESTIONS_PER_DRILL", e.QuestionsPerDrill},
		{"DRILLZ_SECONDS_PER_QUESTION", e.SecondsPerQuestion},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", c.name, c.value)
		}
	}
	return nil
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
