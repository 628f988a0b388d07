package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hairizuan-noorazman/user-registry/cmd/backend/handlers"
	"github.com/hairizuan-noorazman/user-registry/collection"
	"github.com/hairizuan-noorazman/user-registry/database"
	"github.com/hairizuan-noorazman/user-registry/directory"
	"github.com/hairizuan-noorazman/user-registry/logger"
	"github.com/hairizuan-noorazman/user-registry/session"
	"github.com/hairizuan-noorazman/user-registry/storage"
	"github.com/hairizuan-noorazman/user-registry/user"
	"github.com/spf13/cobra"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

// openBackend creates the storage backend named in cfg. The returned closer
// releases any connection the backend holds.
func openBackend(ctx context.Context, cfg *Config, log logger.Logger) (storage.Backend, func(), error) {
	storageCfg := storage.Config{
		Type:        cfg.Storage.Type,
		BaseDir:     cfg.Storage.BaseDir,
		S3Bucket:    cfg.Storage.S3Bucket,
		S3Region:    cfg.Storage.S3Region,
		S3Prefix:    cfg.Storage.S3Prefix,
		S3Endpoint:  cfg.Storage.S3Endpoint,
		PostgresURL: cfg.Storage.PostgresURL,
	}

	cleanup := func() {}
	if cfg.Storage.Type == "sql" {
		db, err := database.Connect(databaseConfig(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get database instance: %w", err)
		}
		cleanup = func() { sqlDB.Close() }
		storageCfg.DB = db

		log.Info(ctx, "database connected", logger.Fields{
			"host":     cfg.Database.Host,
			"port":     cfg.Database.Port,
			"database": cfg.Database.Database,
		})
	}

	backend, err := storage.NewBackend(ctx, storageCfg)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if c, ok := backend.(io.Closer); ok {
		prev := cleanup
		cleanup = func() {
			c.Close()
			prev()
		}
	}
	return backend, cleanup, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log := logger.NewLogrusLogger(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	log.Info(ctx, "starting server", logger.Fields{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	// Open storage
	backend, closeBackend, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	log.Info(ctx, "storage initialized", logger.Fields{
		"type": cfg.Storage.Type,
		"key":  cfg.Storage.Key,
	})

	// Initialize stores and services
	records := collection.New[user.User](backend, cfg.Storage.Key, log)
	userStore := user.NewCollectionStore(records, log)
	service := directory.NewService(userStore, directory.Options{
		CaseSensitive: cfg.Search.CaseSensitive,
	}, log)

	// Initialize session manager
	sessionManager := session.NewManager(cfg.Session.Duration, cfg.Search.Debounce, log)
	sessionManager.StartCleanup(cfg.Session.CleanupInterval)
	defer sessionManager.StopCleanup()

	codec, err := handlers.NewCookieCodec(cfg.Session.CookieSecret, cfg.Session.Duration)
	if err != nil {
		return fmt.Errorf("failed to initialize cookie codec: %w", err)
	}

	log.Info(ctx, "session manager initialized", logger.Fields{
		"duration": cfg.Session.Duration.String(),
		"debounce": cfg.Search.Debounce.String(),
	})

	var limiter *handlers.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = handlers.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst)
		defer limiter.Close()
	}

	// Setup router
	router := handlers.NewRouter(handlers.RouterConfig{
		Service:     service,
		State:       handlers.NewStateMiddleware(sessionManager, codec, cfg.Session.CookieName, cfg.Session.Secure, log),
		RateLimiter: limiter,
		CORSOrigins: cfg.CORS.Origins,
		Logger:      log,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info(ctx, "server listening", logger.Fields{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", logger.Fields{
				"error": err.Error(),
			})
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server", nil)

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server stopped", nil)
	return nil
}
