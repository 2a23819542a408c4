package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"task-manager/internal/cli"
	"task-manager/internal/config"
	"task-manager/internal/logging"
	"task-manager/internal/repository"
	"task-manager/internal/services"
	"task-manager/internal/store"
)

// bootstrap wires backend, store, repository and use cases for the CLI
func bootstrap(_ context.Context, cfg *config.Config) (*cli.App, error) {
	backend, err := config.CreateBackend(cfg)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	taskStore := store.New(backend,
		store.WithMetrics(store.NewMetrics(registry)),
		store.WithLogger(logging.With("component", "store")),
	)
	useCases := services.NewContainer(repository.New(taskStore))

	logging.Debug("task store opened", "driver", cfg.Database.Driver)
	return cli.NewApp(cfg, useCases, registry, taskStore), nil
}
