// Package main is the entry point for the Venture Club API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ventureclub/internal/cache"
	"ventureclub/internal/config"
	"ventureclub/internal/database"
	"ventureclub/internal/handlers"
	"ventureclub/internal/mailer"
	"ventureclub/internal/middleware"
	"ventureclub/internal/router"
	"ventureclub/internal/session"
	"ventureclub/internal/storage"
	"ventureclub/internal/store"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON everywhere else.
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, nil)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"docstore", cfg.DocstoreDriver,
	)

	ctx := context.Background()

	// Open the document backend.
	docs, db, err := openCollections(ctx, cfg)
	if err != nil {
		slog.Error("failed to open document store", "driver", cfg.DocstoreDriver, "error", err)
		os.Exit(1)
	}
	defer docs.Close()
	if db != nil {
		defer db.Close()
	}

	// Seed development data (no-op for collections that already have documents).
	if cfg.IsDev() {
		if err := database.Seed(ctx, docs); err != nil {
			slog.Error("failed to seed document store", "error", err)
			os.Exit(1)
		}
	}

	// The invalidation log lives in PostgreSQL; other backends skip it.
	var cacheLogStore *store.CacheLogStore
	if db != nil {
		cacheLogStore = store.NewCacheLogStore(db)
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies())
	listCache := cache.NewListCache(valkeyClient, cfg.ListCacheTTL)

	// A new process may run against a store edited by another one.
	listCache.InvalidateAll(ctx)

	// Connect to S3-compatible object storage (optional; uploads are
	// refused without it).
	var objects handlers.ObjectStore
	if cfg.MediaConfigured() {
		storageClient, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		objects = storageClient
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
	}

	// Resend for contact and join submissions (optional).
	var sender mailer.Sender
	if cfg.MailConfigured() {
		sender = mailer.NewResendSender(cfg.ResendAPIKey, cfg.MailFrom)
	} else {
		slog.Warn("email not configured, contact and join forms disabled")
	}

	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		slog.Warn("no admin password configured, admin login disabled")
	}

	limiter := middleware.NewRateLimiter(10, time.Minute)
	defer limiter.Stop()

	r := router.New(sessionStore, limiter, router.Handlers{
		Collections: handlers.NewCollections(docs, listCache, cacheLogStore),
		Upload:      handlers.NewUpload(objects),
		Auth:        handlers.NewAuth(sessionStore, cfg.AdminPassword, cfg.AdminPasswordHash),
		Forms:       handlers.NewForms(sender, cfg.MailTo),
	})

	// Create the HTTP server with sensible timeouts. Uploads of up to
	// 100 MB need a generous read timeout.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// openCollections builds the configured document backend. The returned
// *sql.DB is non-nil only for the postgres driver; the caller closes it.
func openCollections(ctx context.Context, cfg *config.Config) (store.Collections, *sql.DB, error) {
	switch cfg.DocstoreDriver {
	case config.DriverPostgres:
		db, err := database.Connect(ctx, cfg.DSN())
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store.NewPostgresCollections(db), db, nil

	case config.DriverFirestore:
		docs, err := store.NewFirestoreCollections(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return docs, nil, nil

	case config.DriverMemory:
		slog.Warn("using in-memory document store, data is lost on restart")
		return store.NewMemoryCollections(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown docstore driver %q", cfg.DocstoreDriver)
	}
}
