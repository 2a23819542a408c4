package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Supported storage drivers
const (
	DriverSQLite     = "sqlite"
	DriverGormSQLite = "gorm-sqlite"
	DriverPostgres   = "postgres"
)

// MemoryDatabase is the filename that selects a private in-memory database
const MemoryDatabase = ":memory:"

// Config holds all configuration options for the task manager application
type Config struct {
	Database    DatabaseConfig
	Logging     LoggingConfig
	Validation  ValidationConfig
	Display     DisplayConfig
	Application ApplicationConfig
	Metrics     MetricsConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver         string        `env:"TM_DB_DRIVER"`
	Dir            string        `env:"TM_DB_DIR"`
	Filename       string        `env:"TM_DB_FILENAME"`
	DSN            string        `env:"TM_DB_DSN"`
	QueryTimeout   time.Duration `env:"TM_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `env:"TM_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `env:"TM_DB_DIR_PERMISSIONS"`
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	Level string `env:"TM_LOG_LEVEL"`
	JSON  bool   `env:"TM_LOG_JSON"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TitleMaxLength       int `env:"TM_VALIDATION_TITLE_MAX"`
	DescriptionMaxLength int `env:"TM_VALIDATION_DESCRIPTION_MAX"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	TimeFormat  string `env:"TM_DISPLAY_TIME_FORMAT"`
	DefaultView string `env:"TM_DISPLAY_VIEW"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `env:"TM_APP_TIMEOUT"`
	Verbose bool          `env:"TM_APP_VERBOSE"`
}

// MetricsConfig holds the optional metrics listener configuration
type MetricsConfig struct {
	Addr string `env:"TM_METRICS_ADDR"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".tm")

	return &Config{
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			Dir:            defaultDBDir,
			Filename:       "tasks.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Logging: LoggingConfig{
			Level: "warn",
			JSON:  false,
		},
		Validation: ValidationConfig{
			TitleMaxLength:       200,
			DescriptionMaxLength: 2000,
		},
		Display: DisplayConfig{
			TimeFormat:  "2006-01-02 15:04",
			DefaultView: "LIST",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	if c.Database.Filename == MemoryDatabase {
		return MemoryDatabase
	}
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// EnsureDatabaseDir creates the database directory if the driver stores a local file
func (c *Config) EnsureDatabaseDir() error {
	if c.Database.Driver == DriverPostgres || c.Database.Filename == MemoryDatabase {
		return nil
	}
	return os.MkdirAll(c.Database.Dir, os.FileMode(c.Database.DirPermissions))
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if driver := os.Getenv("TM_DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dir := os.Getenv("TM_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TM_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if dsn := os.Getenv("TM_DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if timeout := os.Getenv("TM_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}
	if timeout := os.Getenv("TM_DB_WRITE_TIMEOUT"); timeout != "" {
		c.Database.WriteTimeout = ParseDurationWithFallback(timeout, c.Database.WriteTimeout)
	}
	if perms := os.Getenv("TM_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Logging configuration
	if level := os.Getenv("TM_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if asJSON := os.Getenv("TM_LOG_JSON"); asJSON != "" {
		c.Logging.JSON = ParseBoolWithFallback(asJSON, c.Logging.JSON)
	}

	// Validation configuration
	if maxLen := os.Getenv("TM_VALIDATION_TITLE_MAX"); maxLen != "" {
		c.Validation.TitleMaxLength = ParseIntWithFallback(maxLen, c.Validation.TitleMaxLength)
	}
	if maxLen := os.Getenv("TM_VALIDATION_DESCRIPTION_MAX"); maxLen != "" {
		c.Validation.DescriptionMaxLength = ParseIntWithFallback(maxLen, c.Validation.DescriptionMaxLength)
	}

	// Display configuration
	if format := os.Getenv("TM_DISPLAY_TIME_FORMAT"); format != "" {
		c.Display.TimeFormat = format
	}
	if view := os.Getenv("TM_DISPLAY_VIEW"); view != "" {
		c.Display.DefaultView = view
	}

	// Application configuration
	if timeout := os.Getenv("TM_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TM_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	// Metrics configuration
	if addr := os.Getenv("TM_METRICS_ADDR"); addr != "" {
		c.Metrics.Addr = addr
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	switch c.Database.Driver {
	case DriverSQLite, DriverGormSQLite:
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
		if c.Database.Dir == "" && c.Database.Filename != MemoryDatabase {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "postgres driver requires a DSN"}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: "unsupported driver " + strconv.Quote(c.Database.Driver)}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	// Validate logging configuration
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ConfigError{Field: "logging.level", Message: "level must be one of debug, info, warn, error"}
	}

	// Validate validation configuration
	if c.Validation.TitleMaxLength < 1 {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be at least 1"}
	}
	if c.Validation.DescriptionMaxLength < 0 {
		return &ConfigError{Field: "validation.description_max_length", Message: "description maximum length cannot be negative"}
	}

	// Validate display configuration
	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}
	if c.Display.DefaultView != "LIST" && c.Display.DefaultView != "GRID" {
		return &ConfigError{Field: "display.default_view", Message: "default view must be LIST or GRID"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
