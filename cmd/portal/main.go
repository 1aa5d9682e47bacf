package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"file-portal/internal/auth"
	"file-portal/internal/config"
	"file-portal/internal/db"
	"file-portal/internal/files"
	"file-portal/internal/logging"
	"file-portal/internal/server"
	"file-portal/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "portal: invalid configuration:\n%v\n", err)
		os.Exit(1)
	}

	log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat, cfg.Env)
	slog.SetDefault(log)

	dbConn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("db_connect_failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = dbConn.Close() }()

	log.Info("running_migrations")
	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Error("migration_failed", "err", err)
		os.Exit(1)
	}
	log.Info("migrations_complete")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	repo, err := openRepository(ctx, cfg)
	cancel()
	if err != nil {
		log.Error("storage_init_failed", "backend", cfg.StorageBackend, "err", err)
		os.Exit(1)
	}

	store := users.NewPostgresStore(dbConn)
	authn := auth.New(store, authOptions(cfg), log)

	build := server.BuildInfo{Version: cfg.Version, Commit: cfg.Commit}
	srv := server.New(server.Config{
		Addr:  cfg.Addr,
		Build: build,
		Auth:  authn,
		Files: repo,
		Checks: map[string]server.Pinger{
			"database": store,
			"storage":  repo,
		},
		Logger:       log,
		AboutName:    cfg.AboutName,
		CookieSecure: cfg.CookieSecure,

		FormRateLimit: cfg.FormRateLimit,
		TrustProxy:    cfg.TrustProxy,
	})

	// Serve in the background so the main goroutine can wait for signals.
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting", "addr", cfg.Addr, "storage", cfg.StorageBackend, "version", build.Version, "commit", build.Commit)
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting_down", "signal", sig.String())
		// In-flight requests get five seconds to finish.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown_error", "err", err)
			os.Exit(1)
		}
		log.Info("shutdown_complete")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server_error", "err", err)
			os.Exit(1)
		}
	}
}

// storage is a file repository that can also report its own health.
type storage interface {
	files.Repository
	server.Pinger
}

func openRepository(ctx context.Context, cfg *config.Config) (storage, error) {
	switch cfg.StorageBackend {
	case config.BackendS3:
		client, err := files.NewMinioClient(cfg.S3.Endpoint, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return files.NewObjectRepository(ctx, client, cfg.S3.Bucket, cfg.S3.Prefix)
	case config.BackendDisk, "":
		return files.NewDiskRepository(cfg.UploadFolder)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func authOptions(cfg *config.Config) auth.Options {
	return auth.Options{
		SessionSecret:   cfg.SessionSecret,
		SessionTTL:      cfg.SessionTTL,
		CookieName:      cfg.CookieName,
		CookieSecure:    cfg.CookieSecure,
		MaxAttempts:     cfg.LoginMaxAttempts,
		LockoutDuration: cfg.LoginLockout,
		LockoutWindow:   cfg.LoginWindow,
	}
}
