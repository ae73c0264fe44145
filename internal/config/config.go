package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Supported values for DatabaseConfig.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Supported values for IdentityConfig.Mode.
const (
	IdentityModeHeader = "header"
	IdentityModeJWT    = "jwt"
)

// Config holds all configuration options for the task tracker
type Config struct {
	Database    DatabaseConfig    `toml:"database" yaml:"database"`
	Server      ServerConfig      `toml:"server" yaml:"server"`
	Identity    IdentityConfig    `toml:"identity" yaml:"identity"`
	Validation  ValidationConfig  `toml:"validation" yaml:"validation"`
	Pagination  PaginationConfig  `toml:"pagination" yaml:"pagination"`
	Application ApplicationConfig `toml:"application" yaml:"application"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver         string        `toml:"driver" yaml:"driver" env:"TASKS_DB_DRIVER"`
	Dir            string        `toml:"dir" yaml:"dir" env:"TASKS_DB_DIR"`
	Filename       string        `toml:"filename" yaml:"filename" env:"TASKS_DB_FILENAME"`
	DSN            string        `toml:"dsn" yaml:"dsn" env:"TASKS_DB_DSN"`
	QueryTimeout   time.Duration `toml:"query_timeout" yaml:"query_timeout" env:"TASKS_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `toml:"write_timeout" yaml:"write_timeout" env:"TASKS_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `toml:"dir_permissions" yaml:"dir_permissions" env:"TASKS_DB_DIR_PERMISSIONS"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `toml:"addr" yaml:"addr" env:"TASKS_SERVER_ADDR"`
	ReadTimeout     time.Duration `toml:"read_timeout" yaml:"read_timeout" env:"TASKS_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `toml:"write_timeout" yaml:"write_timeout" env:"TASKS_SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout" env:"TASKS_SERVER_SHUTDOWN_TIMEOUT"`
}

// IdentityConfig selects how request principals are resolved
type IdentityConfig struct {
	Mode      string `toml:"mode" yaml:"mode" env:"TASKS_IDENTITY_MODE"`
	Header    string `toml:"header" yaml:"header" env:"TASKS_IDENTITY_HEADER"`
	JWTSecret string `toml:"jwt_secret" yaml:"jwt_secret" env:"TASKS_JWT_SECRET"`
	JWTIssuer string `toml:"jwt_issuer" yaml:"jwt_issuer" env:"TASKS_JWT_ISSUER"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	TitleMaxLength int `toml:"title_max_length" yaml:"title_max_length" env:"TASKS_VALIDATION_TITLE_MAX"`
}

// PaginationConfig holds list paging defaults
type PaginationConfig struct {
	DefaultSize int `toml:"default_size" yaml:"default_size" env:"TASKS_PAGE_SIZE"`
	MaxSize     int `toml:"max_size" yaml:"max_size" env:"TASKS_PAGE_MAX_SIZE"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout   time.Duration `toml:"timeout" yaml:"timeout" env:"TASKS_APP_TIMEOUT"`
	Verbose   bool          `toml:"verbose" yaml:"verbose" env:"TASKS_APP_VERBOSE"`
	LogFormat string        `toml:"log_format" yaml:"log_format" env:"TASKS_LOG_FORMAT"`
	LogLevel  string        `toml:"log_level" yaml:"log_level" env:"TASKS_LOG_LEVEL"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".tasks")

	return &Config{
		Database: DatabaseConfig{
			Driver:         DriverSQLite,
			Dir:            defaultDBDir,
			Filename:       "tasks.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Identity: IdentityConfig{
			Mode:   IdentityModeHeader,
			Header: "X-User-Id",
		},
		Validation: ValidationConfig{
			TitleMaxLength: 255,
		},
		Pagination: PaginationConfig{
			DefaultSize: 20,
			MaxSize:     100,
		},
		Application: ApplicationConfig{
			Timeout:   60 * time.Second,
			Verbose:   false,
			LogFormat: "text",
			LogLevel:  "info",
		},
	}
}

// GetDatabasePath returns the full path to the SQLite database file
func (c *Config) GetDatabasePath() string {
	if c.Database.Filename == ":memory:" {
		return c.Database.Filename
	}
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout returns the database write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Database.WriteTimeout
}

// LoadFromEnvironment loads configuration from environment variables.
// Unparseable values are ignored and the previous value kept.
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	setString(&c.Database.Driver, "TASKS_DB_DRIVER")
	setString(&c.Database.Dir, "TASKS_DB_DIR")
	setString(&c.Database.Filename, "TASKS_DB_FILENAME")
	setString(&c.Database.DSN, "TASKS_DB_DSN")
	setDuration(&c.Database.QueryTimeout, "TASKS_DB_QUERY_TIMEOUT")
	setDuration(&c.Database.WriteTimeout, "TASKS_DB_WRITE_TIMEOUT")
	if perms := os.Getenv("TASKS_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Server configuration
	setString(&c.Server.Addr, "TASKS_SERVER_ADDR")
	setDuration(&c.Server.ReadTimeout, "TASKS_SERVER_READ_TIMEOUT")
	setDuration(&c.Server.WriteTimeout, "TASKS_SERVER_WRITE_TIMEOUT")
	setDuration(&c.Server.ShutdownTimeout, "TASKS_SERVER_SHUTDOWN_TIMEOUT")

	// Identity configuration
	setString(&c.Identity.Mode, "TASKS_IDENTITY_MODE")
	setString(&c.Identity.Header, "TASKS_IDENTITY_HEADER")
	setString(&c.Identity.JWTSecret, "TASKS_JWT_SECRET")
	setString(&c.Identity.JWTIssuer, "TASKS_JWT_ISSUER")

	// Validation and pagination
	setInt(&c.Validation.TitleMaxLength, "TASKS_VALIDATION_TITLE_MAX")
	setInt(&c.Pagination.DefaultSize, "TASKS_PAGE_SIZE")
	setInt(&c.Pagination.MaxSize, "TASKS_PAGE_MAX_SIZE")

	// Application configuration
	setDuration(&c.Application.Timeout, "TASKS_APP_TIMEOUT")
	if verbose := os.Getenv("TASKS_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}
	setString(&c.Application.LogFormat, "TASKS_LOG_FORMAT")
	setString(&c.Application.LogLevel, "TASKS_LOG_LEVEL")

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = ParseDurationWithFallback(v, *dst)
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = ParseIntWithFallback(v, *dst)
	}
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
		if c.Database.Dir == "" && c.Database.Filename != ":memory:" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "postgres driver requires a dsn"}
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

	// Validate server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"}
	}

	// Validate identity configuration
	switch c.Identity.Mode {
	case IdentityModeHeader:
		if c.Identity.Header == "" {
			return &ConfigError{Field: "identity.header", Message: "identity header cannot be empty"}
		}
	case IdentityModeJWT:
		if c.Identity.JWTSecret == "" {
			return &ConfigError{Field: "identity.jwt_secret", Message: "jwt mode requires a signing secret"}
		}
	default:
		return &ConfigError{Field: "identity.mode", Message: "unsupported identity mode " + strconv.Quote(c.Identity.Mode)}
	}

	// Validate validation configuration
	if c.Validation.TitleMaxLength < 1 {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be at least 1"}
	}

	// Validate pagination configuration
	if c.Pagination.DefaultSize < 1 {
		return &ConfigError{Field: "pagination.default_size", Message: "default page size must be at least 1"}
	}
	if c.Pagination.MaxSize < c.Pagination.DefaultSize {
		return &ConfigError{Field: "pagination.max_size", Message: "max page size must not be below the default size"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}
	switch c.Application.LogFormat {
	case "text", "json":
	default:
		return &ConfigError{Field: "application.log_format", Message: "log format must be text or json"}
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
