package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrKeyNotFound is returned when nothing is stored under a key.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidKey is returned when a key is empty or escapes its namespace.
	ErrInvalidKey = errors.New("invalid key")
)

// Backend is a durable key-value store. Each key holds one opaque value that
// is always read and written whole.
type Backend interface {
	// Get returns the value stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key. Readers observe either the old
	// or the new value, never a mix.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key returns ErrKeyNotFound.
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a Backend.
type Config struct {
	Type string // "memory", "local", "s3", "sql" or "postgres"

	BaseDir string // local

	S3Bucket   string // s3
	S3Region   string // s3
	S3Prefix   string // s3
	S3Endpoint string // s3, for S3-compatible services

	DB *gorm.DB // sql

	PostgresURL string // postgres
}

// NewBackend creates a Backend based on configuration.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	switch strings.ToLower(cfg.Type) {
	case "memory":
		return NewMemoryBackend(), nil

	case "local":
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("base_dir is required for local storage")
		}
		return NewLocalBackend(cfg.BaseDir)

	case "s3":
		b, err := NewS3Backend(ctx, S3Options{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Prefix:   cfg.S3Prefix,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		return b, nil

	case "sql":
		if cfg.DB == nil {
			return nil, fmt.Errorf("database connection is required for sql storage")
		}
		return NewSQLBackend(cfg.DB), nil

	case "postgres":
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("postgres url is required for postgres storage")
		}
		return NewPostgresBackend(ctx, cfg.PostgresURL)

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// validateKey rejects empty keys, absolute paths and path traversal so a key
// can double as a file name or object key.
func validateKey(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}

	clean := filepath.ToSlash(filepath.Clean(key))
	if filepath.IsAbs(key) || strings.HasPrefix(clean, "/") {
		return "", fmt.Errorf("%w: absolute keys not allowed", ErrInvalidKey)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(key, `\`) {
		return "", fmt.Errorf("%w: path traversal detected", ErrInvalidKey)
	}
	if clean == "." {
		return "", fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}

	return clean, nil
}
