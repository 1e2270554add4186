// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/starford/tempus/internal/api"
	"github.com/starford/tempus/internal/calcservice"
	"github.com/starford/tempus/internal/calendar"
	"github.com/starford/tempus/internal/mcpserver"
	"github.com/starford/tempus/internal/metrics"
	"github.com/starford/tempus/internal/sse"
	"github.com/starford/tempus/internal/timezone"
	"github.com/starford/tempus/internal/zonecatalog"
)

// core is everything the surfaces share.
type core struct {
	logger  *slog.Logger
	metrics *metrics.Collector
	catalog *zonecatalog.Catalog
	svc     *calcservice.Service
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// buildCore wires registries, the zone catalog, metrics and the calculator.
// Catalog files that fail to load are logged; the rest are served.
func buildCore(cfg *Config, logger *slog.Logger, withMetrics bool, svcOpts ...calcservice.Option) (*core, error) {
	c := &core{logger: logger}

	if withMetrics && cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		c.metrics = metrics.New(reg, "tempus")
	}

	var lookups []timezone.Lookup
	if cfg.Zones.CatalogDir != "" {
		if err := os.MkdirAll(cfg.Zones.CatalogDir, 0o755); err != nil {
			return nil, fmt.Errorf("create zone catalog dir: %w", err)
		}
		catalog, err := zonecatalog.Open(cfg.Zones.CatalogDir,
			zonecatalog.WithLogger(logger),
			zonecatalog.WithMetrics(c.metrics))
		if catalog == nil {
			return nil, fmt.Errorf("open zone catalog: %w", err)
		}
		if err != nil {
			logger.Warn("zone catalog loaded with errors", slog.String("error", err.Error()))
		}
		c.catalog = catalog
		lookups = append(lookups, catalog.Lookup)
	}

	zones := timezone.NewRegistry(cfg.Zones.CacheTTL, lookups...)
	if id := cfg.Engine.DefaultTimeZone; id != "" {
		if _, err := zones.Get(id); err != nil {
			return nil, fmt.Errorf("engine.default_time_zone: %w", err)
		}
	}

	opts := []calcservice.Option{
		calcservice.WithLogger(logger),
		calcservice.WithMetrics(c.metrics),
		calcservice.WithDefaultCalendar(cfg.Engine.DefaultCalendar),
		calcservice.WithDefaultTimeZone(cfg.Engine.DefaultTimeZone),
	}
	if c.catalog != nil {
		opts = append(opts, calcservice.WithCatalog(c.catalog))
	}
	c.svc = calcservice.NewService(calendar.NewRegistry(), zones, append(opts, svcOpts...)...)
	return c, nil
}

// watchCatalog follows the catalog directory when configured to and reports
// every reload to onReload.
func (c *core) watchCatalog(ctx context.Context, cfg *Config, onReload zonecatalog.ReloadCallback) error {
	if c.catalog == nil || !cfg.Zones.Watch {
		<-ctx.Done()
		return nil
	}
	return c.catalog.Watch(ctx, func(zones int, err error) {
		if err != nil {
			c.logger.Warn("zone catalog reloaded with errors", slog.Int("zones", zones), slog.String("error", err.Error()))
		} else {
			c.logger.Info("zone catalog reloaded", slog.Int("zones", zones))
		}
		if onReload != nil {
			onReload(zones, err)
		}
	})
}

// Run starts the HTTP service with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg, app.logOutput)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("zone_catalog", cfg.Zones.CatalogDir),
		slog.String("default_calendar", cfg.Engine.DefaultCalendar),
		slog.Bool("metrics", cfg.Metrics.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	c, err := buildCore(cfg, logger, true, calcservice.WithViolationHook(broker.PublishViolation))
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	apiRouter := api.NewRouter(c.svc, logger, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		zones := 0
		if c.catalog != nil {
			zones = c.catalog.Len()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "catalog_zones": zones})
	})

	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, c.metrics.Handler())
	}

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Follow catalog edits and announce them over SSE.
	g.Go(func() error {
		return c.watchCatalog(gCtx, cfg, broker.PublishReload)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.HTTP.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the server is down so the catalog
// watcher stops too.
var errShutdown = errors.New("shutdown")

// RunMCP serves the calculator over MCP on stdin/stdout until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg, app.logOutput)
	slog.SetDefault(logger)

	c, err := buildCore(cfg, logger, false)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	srv := mcpserver.New(c.svc, app.version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.watchCatalog(gCtx, cfg, nil)
	})
	g.Go(func() error {
		defer cancel()
		logger.Info("Starting MCP server on stdio", slog.String("version", app.version))
		return srv.ServeStdio()
	})

	return g.Wait()
}

// Output formats for Calculate.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Calculate runs one operation from a YAML (or JSON) request file and
// writes the response to out.
func Calculate(ctx context.Context, op, requestFile, format string, out io.Writer, opts ...Option) error {
	app := newApplication(opts)
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	logger := newLogger(app.config, app.logOutput)

	c, err := buildCore(app.config, logger, false)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	req, err := calcservice.NewRequest(op)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(requestFile)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(req); err != nil {
		return fmt.Errorf("parse request %s: %w", requestFile, err)
	}

	resp, err := c.svc.Calculate(ctx, op, req)
	if err != nil {
		return err
	}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}
}
