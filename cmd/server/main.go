package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"animal-registry/internal/assets"
	"animal-registry/internal/server"
	"animal-registry/internal/store"
)

func main() {
	log := server.NewLoggerFromEnv()

	cfg, err := server.LoadConfig()
	if err != nil {
		log.Error("invalid configuration", nil, err)
		os.Exit(1)
	}

	// The connection itself is lazy; the manager dials on first use and
	// keeps the handle for the life of the process.
	st := store.NewManager(cfg.MongoURI, cfg.DBName)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = st.Close(ctx)
	}()

	var assetStore assets.Store
	switch cfg.Storage {
	case server.StorageMinio:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		assetStore, err = assets.NewMinio(ctx, assets.MinioConfig{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
		})
		cancel()
	default:
		assetStore, err = assets.NewDisk(cfg.UploadDir)
	}
	if err != nil {
		log.Error("asset store init failed", map[string]any{"backend": cfg.Storage}, err)
		os.Exit(1)
	}

	srv := server.New(cfg, st, assetStore, log)

	// Start the HTTP server in a background goroutine so we can listen
	// for OS signals while it runs.
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting", map[string]any{
			"addr":    cfg.Addr,
			"db":      cfg.DBName,
			"storage": cfg.Storage,
			"version": cfg.Version,
			"commit":  cfg.Commit,
		})
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
		// Give the server 5 seconds to finish in-flight requests.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown error", nil, err)
			os.Exit(1)
		}
		log.Info("shutdown complete", nil)
	case err := <-errCh:
		if err != nil {
			log.Error("server error", nil, err)
			os.Exit(1)
		}
	}
}
