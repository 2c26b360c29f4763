package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration

	Environment string
	ListenAddr  string

	// InventorySource is a .xlsx, .csv or .json file. It is ignored when
	// InventoryAPIURL is set.
	InventorySource     string
	InventoryMapping    string
	CSVDelimiter        rune
	CSVEncoding         string
	InventoryAPIURL     string
	InventoryAPITimeout time.Duration

	FloorPlanURL string
	TimeZone     string

	// DBDSN enables the PostgreSQL store; empty keeps everything in memory.
	DBDSN string

	EnableMetrics bool
	EnableSwagger bool
}

var dotenvOnce sync.Once

// Load reads the configuration from the environment. A .env file in the
// working directory is read first; variables already set win.
func Load() *Config {
	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	config := &Config{
		JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
		JWTIssuer:   getEnv("JWT_ISS", "floorplan-inventory"),
		JWTAudience: getEnv("JWT_AUD", "floorplan-inventory"),
		JWTExpiry:   getDuration("JWT_EXPIRY", 24*time.Hour),

		Environment: getEnv("ENVIRONMENT", "development"),
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),

		InventorySource:     getEnv("INVENTORY_SOURCE", "data/inventory.xlsx"),
		InventoryMapping:    os.Getenv("INVENTORY_MAPPING"),
		CSVDelimiter:        ';',
		CSVEncoding:         getEnv("CSV_ENCODING", "utf-8"),
		InventoryAPIURL:     os.Getenv("INVENTORY_API_URL"),
		InventoryAPITimeout: getDuration("INVENTORY_API_TIMEOUT", 10*time.Second),

		FloorPlanURL: getEnv("FLOOR_PLAN_URL", "/images/floor-plan.png"),
		TimeZone:     getEnv("TIMEZONE", "Europe/Paris"),

		DBDSN: os.Getenv("DB_DSN"),

		EnableMetrics: getBool("ENABLE_METRICS"),
		EnableSwagger: getBool("ENABLE_SWAGGER"),
	}

	// Anything but a single character is left for Validate to reject.
	if d := []rune(os.Getenv("CSV_DELIMITER")); len(d) == 1 {
		config.CSVDelimiter = d[0]
	} else if len(d) > 1 {
		config.CSVDelimiter = 0
	}

	return config
}

// LoadAndValidate loads the configuration and rejects it if invalid.
func LoadAndValidate() (*Config, error) {
	cfg := Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration. Every problem is reported.
func (c *Config) Validate() error {
	var errs []error

	switch {
	case c.JWTSecret == "":
		errs = append(errs, errors.New("JWT_SECRET is required"))
	case len(c.JWTSecret) < 32:
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters"))
	case c.IsProduction() && c.JWTSecret == defaultJWTSecret:
		errs = append(errs, errors.New("JWT_SECRET must be changed in production"))
	}
	if c.JWTIssuer == "" {
		errs = append(errs, errors.New("JWT_ISS is required"))
	}
	if c.JWTAudience == "" {
		errs = append(errs, errors.New("JWT_AUD is required"))
	}
	if c.JWTExpiry < time.Minute || c.JWTExpiry > 30*24*time.Hour {
		errs = append(errs, fmt.Errorf("JWT_EXPIRY must be between 1m and 720h, got %v", c.JWTExpiry))
	}

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("LISTEN_ADDR is required"))
	}
	if c.InventoryAPIURL != "" {
		if u, err := url.Parse(c.InventoryAPIURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("INVENTORY_API_URL %q is not an absolute URL", c.InventoryAPIURL))
		}
		if c.InventoryAPITimeout <= 0 {
			errs = append(errs, errors.New("INVENTORY_API_TIMEOUT must be positive"))
		}
	} else if c.InventorySource == "" {
		errs = append(errs, errors.New("INVENTORY_SOURCE or INVENTORY_API_URL is required"))
	}
	if c.CSVDelimiter == 0 || c.CSVDelimiter == '"' || c.CSVDelimiter == '\n' {
		errs = append(errs, errors.New("CSV_DELIMITER must be a single character other than a quote or newline"))
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("TIMEZONE: %w", err))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Location is the time zone reservation forms are read in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if s := os.Getenv(key); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
