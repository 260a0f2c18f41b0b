// Package di provides dependency injection container
package di

import (
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ssargent/filecabinet/pkg/api"
	"github.com/ssargent/filecabinet/pkg/config"
	"github.com/ssargent/filecabinet/pkg/logging"
	"github.com/ssargent/filecabinet/pkg/metrics"
	"github.com/ssargent/filecabinet/pkg/store"
	"github.com/ssargent/filecabinet/pkg/validation"
)

// Container holds all the dependencies for the application. It is built once
// in main and handed to the shell, the API server and the generator.
type Container struct {
	config        *config.Config
	logger        log.Logger
	registry      *prometheus.Registry
	metrics       *metrics.Metrics
	policy        *validation.Policy
	engine        *store.Engine
	serverFactory api.ServerFactory
}

// NewContainer creates a new dependency injection container. Log lines are
// written to logOut. The engine is created but not opened.
func NewContainer(cfg *config.Config, logOut io.Writer) (*Container, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	logger, err := logging.New(logOut, cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	policy, err := cfg.Policy()
	if err != nil {
		return nil, fmt.Errorf("failed to load validation rules: %w", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	engine, err := store.NewEngine(store.EngineConfig{
		DataFile:   cfg.DataFile,
		SyncWrites: cfg.Storage.SyncWrites,
	}, policy, store.WithLogger(log.With(logger, "component", "store")), store.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return &Container{
		config:        cfg,
		logger:        logger,
		registry:      registry,
		metrics:       m,
		policy:        policy,
		engine:        engine,
		serverFactory: api.NewServerFactory(),
	}, nil
}

// GetConfig returns the loaded configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the root logger
func (c *Container) GetLogger() log.Logger {
	return c.logger
}

// GetRegistry returns the Prometheus registry the collectors live on
func (c *Container) GetRegistry() *prometheus.Registry {
	return c.registry
}

// GetMetrics returns the application metrics
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetPolicy returns the active validation policy
func (c *Container) GetPolicy() *validation.Policy {
	return c.policy
}

// GetEngine returns the record engine
func (c *Container) GetEngine() *store.Engine {
	return c.engine
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// Close releases the engine and its file lock
func (c *Container) Close() error {
	return c.engine.Close()
}
