package main

import (
	"context"
	"net/http"
	"os"

	"github.com/ginzapet/storefront/internal/stubcatalog"
	"github.com/ginzapet/storefront/pkg/config"
	"github.com/ginzapet/storefront/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "catalog-stub"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "catalog-stub",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	server := stubcatalog.NewServer(logg)

	addr := ":" + cfg.Stub.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting catalog stub")

	httpServer := &http.Server{
		Addr:    addr,
		Handler: stubcatalog.NewRouter(server, logg, registry),
	}

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "catalog stub stopped unexpectedly", err)
		os.Exit(1)
	}
}
