package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Session   SessionConfig
	Search    SearchConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// DatabaseConfig holds MySQL connection configuration for the sql backend
// and for migrations.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
}

// StorageConfig selects where the collection is persisted.
type StorageConfig struct {
	Type        string // "memory", "local", "s3", "sql" or "postgres"
	Key         string // slot holding the collection
	BaseDir     string // For local: "./data"
	S3Bucket    string // For S3: bucket name
	S3Region    string // For S3: AWS region
	S3Prefix    string // For S3: object key prefix
	S3Endpoint  string // For S3-compatible services
	PostgresURL string // For postgres: connection URL
}

// SessionConfig holds view-state cookie configuration.
type SessionConfig struct {
	CookieName      string
	CookieSecret    string
	Duration        time.Duration
	Secure          bool
	CleanupInterval time.Duration
}

// SearchConfig holds search behaviour.
type SearchConfig struct {
	Debounce      time.Duration
	CaseSensitive bool
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	Origins []string
}

// RateLimitConfig limits mutating requests per client address.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	Burst    int
}

// loadDotEnv exports variables from a .env file. A missing file is not an
// error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Enable environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "user_registry")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.key", "data")
	v.SetDefault("storage.base_dir", "./data")
	v.SetDefault("storage.s3_bucket", "")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_prefix", "")
	v.SetDefault("storage.s3_endpoint", "")
	v.SetDefault("storage.postgres_url", "")

	v.SetDefault("session.cookie_name", "view_state")
	v.SetDefault("session.cookie_secret", "change-this-secret-in-production-min-32-chars")
	v.SetDefault("session.duration", "24h")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.cleanup_interval", "5m")

	v.SetDefault("search.debounce", "200ms")
	v.SetDefault("search.case_sensitive", false)

	v.SetDefault("cors.origins", []string{"http://localhost:5173"})

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.requests", 60)
	v.SetDefault("ratelimit.window", "1m")
	v.SetDefault("ratelimit.burst", 10)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found; using defaults
	}

	// Parse configuration
	var config Config

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetInt("server.port")
	config.Server.ReadTimeout = v.GetDuration("server.read_timeout")
	config.Server.WriteTimeout = v.GetDuration("server.write_timeout")

	config.Log.Level = v.GetString("log.level")
	config.Log.Format = v.GetString("log.format")

	config.Database.Host = v.GetString("database.host")
	config.Database.Port = v.GetInt("database.port")
	config.Database.User = v.GetString("database.user")
	config.Database.Password = v.GetString("database.password")
	config.Database.Database = v.GetString("database.database")
	config.Database.MaxOpenConns = v.GetInt("database.max_open_conns")
	config.Database.MaxIdleConns = v.GetInt("database.max_idle_conns")

	config.Storage.Type = v.GetString("storage.type")
	config.Storage.Key = v.GetString("storage.key")
	config.Storage.BaseDir = v.GetString("storage.base_dir")
	config.Storage.S3Bucket = v.GetString("storage.s3_bucket")
	config.Storage.S3Region = v.GetString("storage.s3_region")
	config.Storage.S3Prefix = v.GetString("storage.s3_prefix")
	config.Storage.S3Endpoint = v.GetString("storage.s3_endpoint")
	config.Storage.PostgresURL = v.GetString("storage.postgres_url")

	config.Session.CookieName = v.GetString("session.cookie_name")
	config.Session.CookieSecret = v.GetString("session.cookie_secret")
	config.Session.Duration = v.GetDuration("session.duration")
	config.Session.Secure = v.GetBool("session.secure")
	config.Session.CleanupInterval = v.GetDuration("session.cleanup_interval")

	config.Search.Debounce = v.GetDuration("search.debounce")
	config.Search.CaseSensitive = v.GetBool("search.case_sensitive")

	config.CORS.Origins = v.GetStringSlice("cors.origins")

	config.RateLimit.Enabled = v.GetBool("ratelimit.enabled")
	config.RateLimit.Requests = v.GetInt("ratelimit.requests")
	config.RateLimit.Window = v.GetDuration("ratelimit.window")
	config.RateLimit.Burst = v.GetInt("ratelimit.burst")

	return &config, nil
}
