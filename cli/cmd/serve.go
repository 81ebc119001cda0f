// Package cmd implements the pensiond CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	pensionconfig "github.com/VismaKosice/pension-engine/cli/config"
	"github.com/VismaKosice/pension-engine/engine"
	"github.com/VismaKosice/pension-engine/log"
	"github.com/VismaKosice/pension-engine/metrics"
	"github.com/VismaKosice/pension-engine/mutation"
	"github.com/VismaKosice/pension-engine/scheme"
	"github.com/VismaKosice/pension-engine/server"
)

// shutdownTimeout bounds the drain of in-flight requests on SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

// ServeCommand returns the serve command, the long-running HTTP service.
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the calculation HTTP service",
		UsageText: `pensiond serve [options]

EXAMPLES:
  # Serve on the default port
  pensiond serve

  # Serve on a specific port with a scheme registry
  pensiond serve --port 9090 --scheme-registry-url https://registry.example.com

  # Serve with project-level defaults from a config file
  pensiond serve --config ./pensiond.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to YAML config file (project-level defaults for pensiond serve)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listening port (overrides PORT env and config file)",
			},
			&cli.StringFlag{
				Name:  "scheme-registry-url",
				Usage: "Scheme registry base URL (overrides SCHEME_REGISTRY_URL env and config file)",
			},
			&cli.StringFlag{
				Name:  "redis-url",
				Usage: "Redis URL for the accrual-rate cache (overrides REDIS_URL env and config file)",
			},
		},
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}

	logger := log.New("pensiond")
	collector := metrics.NewCollector()

	rates, closeRates, err := buildRateProvider(cfg, logger, collector)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 2)
	}
	defer closeRates()

	evaluator := engine.New(engine.Config{
		Registry:  mutation.NewRegistry(mutation.RegistryConfig{Rates: rates}),
		Logger:    logger,
		Collector: collector,
	})

	srv := server.New(server.Config{
		Port:      cfg.Port,
		Evaluator: evaluator,
		Logger:    logger,
		Collector: collector,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return cli.Exit(fmt.Sprintf("Error: server failed: %v", err), 1)
	case sig := <-quit:
		logger.Info("shutting down", map[string]any{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return cli.Exit(fmt.Sprintf("Error: shutdown failed: %v", err), 1)
	}

	logger.Info("server exited", nil)
	return nil
}

// resolveConfig merges config file, environment, and flags.
// Precedence: flags > env > file > defaults.
func resolveConfig(c *cli.Context) (*pensionconfig.Config, error) {
	cfg := &pensionconfig.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := pensionconfig.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if env := os.Getenv("PORT"); env != "" {
		port, err := strconv.Atoi(env)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", env, err)
		}
		cfg.Port = port
	}
	if env := os.Getenv("SCHEME_REGISTRY_URL"); env != "" {
		cfg.SchemeRegistry.URL = env
	}
	if env := os.Getenv("REDIS_URL"); env != "" {
		cfg.RateCache.RedisURL = env
	}

	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("scheme-registry-url") {
		cfg.SchemeRegistry.URL = c.String("scheme-registry-url")
	}
	if c.IsSet("redis-url") {
		cfg.RateCache.RedisURL = c.String("redis-url")
	}

	if cfg.Port == 0 {
		cfg.Port = pensionconfig.DefaultPort
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRateProvider wires the accrual-rate provider chain:
// static default → registry client (if configured) → Redis cache (if configured).
func buildRateProvider(cfg *pensionconfig.Config, logger *log.Logger, collector *metrics.Collector) (scheme.RateProvider, func(), error) {
	closers := []func(){}
	closeAll := func() {
		for _, fn := range closers {
			fn()
		}
	}

	var provider scheme.RateProvider = scheme.Default()

	if cfg.SchemeRegistry.URL != "" {
		client, err := scheme.NewRegistryClient(scheme.RegistryConfig{
			BaseURL:   cfg.SchemeRegistry.URL,
			Timeout:   cfg.SchemeRegistry.Timeout.Duration,
			Logger:    logger,
			Collector: collector,
		})
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { _ = client.Close() })
		provider = client
	}

	if cfg.RateCache.RedisURL != "" {
		cached, err := scheme.NewCachingProvider(provider, scheme.CacheConfig{
			URL:       cfg.RateCache.RedisURL,
			TTL:       cfg.RateCache.TTL.Duration,
			Logger:    logger,
			Collector: collector,
		})
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		closers = append(closers, func() { _ = cached.Close() })
		provider = cached
	}

	return provider, closeAll, nil
}
