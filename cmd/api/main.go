package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"conservation-registry/internal/adapters/storage"
	"conservation-registry/internal/adapters/storage/memory"
	"conservation-registry/internal/config"
	"conservation-registry/internal/domain/conservation"
	"conservation-registry/internal/platform/logger"
	"conservation-registry/internal/router"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logger.NewFromEnv()
		fallback.Fatal().Err(err).Msg("config load failed")
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    "conservation-registry",
	})

	addr := cfg.Addr
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	store, closeStore, err := storage.OpenSnapshotStore(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("snapshot store open failed")
	}
	defer func() { _ = closeStore() }()

	svc := conservation.NewService(
		memory.NewAnimalRegistry(),
		memory.NewCageRegistry(),
		memory.NewKeeperRegistry(),
		conservation.NewRules(cfg),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snap, err := store.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("snapshot load failed")
	}
	if err := svc.Restore(ctx, snap); err != nil {
		log.Fatal().Err(err).Msg("restore failed")
	}
	log.Info().
		Int("animals", len(snap.Animals)).
		Int("cages", len(snap.Cages)).
		Int("keepers", len(snap.Keepers)).
		Msg("state restored")

	srv := &http.Server{
		Addr:         addr,
		Handler:      router.NewRouter(router.Options{Service: svc, Logger: log}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}

	// snapshot final hacia el proveedor de persistencia
	snap, err = svc.Snapshot(shutdownCtx)
	if err != nil {
		log.Error().Err(err).Msg("snapshot collect failed")
		return
	}
	if err := store.Save(shutdownCtx, snap); err != nil {
		log.Error().Err(err).Msg("snapshot save failed")
		return
	}
	log.Info().Msg("state saved")
}
