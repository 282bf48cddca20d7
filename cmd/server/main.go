package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"possync/internal/app/server/api"
	"possync/internal/app/server/config"
	"possync/internal/infrastructure/storage/postgres"
	"possync/internal/utils/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	storage, err := postgres.New(cfg)
	if err != nil {
		log.Error("failed to init storage", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	mux, err := api.New(storage, cfg, log)
	if err != nil {
		log.Error("failed to build api", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:    cfg.Server.RunAddress,
		Handler: mux,
	}

	go func() {
		log.Info("server starting", "address", cfg.Server.RunAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
}
