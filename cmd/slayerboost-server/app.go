package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/TheInsomnolent/slayer-boosting/adapters/jsonfile"
	mem "github.com/TheInsomnolent/slayer-boosting/adapters/memory"
	redisAdapter "github.com/TheInsomnolent/slayer-boosting/adapters/redis"
	sqlxAdapter "github.com/TheInsomnolent/slayer-boosting/adapters/sqlx"
	"github.com/TheInsomnolent/slayer-boosting/api/httpapi"
	"github.com/TheInsomnolent/slayer-boosting/boost"
	"github.com/TheInsomnolent/slayer-boosting/config"
	"github.com/TheInsomnolent/slayer-boosting/core"
	"github.com/TheInsomnolent/slayer-boosting/engine"
	"github.com/TheInsomnolent/slayer-boosting/integrations/webhook"
	"github.com/TheInsomnolent/slayer-boosting/realtime"
)

// App aggregates the assembled server components.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Hub     *realtime.Hub
	Storage engine.Storage
	Service *engine.BoostService
	Handler http.Handler
	Server  *http.Server
}

// provideConfig reads SLAYERBOOST_CONFIG when set, otherwise the environment alone.
func provideConfig(ctx context.Context) (*config.Config, error) {
	if path := os.Getenv("SLAYERBOOST_CONFIG"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg, os.Stdout, os.Stderr)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (engine.Storage, func(), error) {
	store, err := setupStorage(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("closing storage", "adapter", cfg.Storage.Adapter, "error", err)
			}
		}
	}
	return store, cleanup, nil
}

func provideDefaults(cfg *config.Config) (core.Settings, error) {
	return cfg.Boosting.Settings()
}

// provideWebhook returns nil when no endpoints are configured.
func provideWebhook(cfg *config.Config, logger *slog.Logger) *webhook.Sink {
	n := cfg.Notifications
	if len(n.Webhooks) == 0 {
		return nil
	}
	opts := []webhook.Option{webhook.WithLogger(logger)}
	if len(n.EventTypes) > 0 {
		types := make([]core.EventType, 0, len(n.EventTypes))
		for _, t := range n.EventTypes {
			types = append(types, core.EventType(t))
		}
		opts = append(opts, webhook.WithEventTypes(types...))
	}
	return webhook.New(n.Webhooks, opts...)
}

func provideService(cfg *config.Config, hub *realtime.Hub, storage engine.Storage, sink *webhook.Sink, logger *slog.Logger, defaults core.Settings) (*engine.BoostService, func()) {
	mode := engine.DispatchSync
	if cfg.Server.AsyncDispatch {
		mode = engine.DispatchAsync
	}
	svc := boost.New(
		boost.WithRealtime(hub),
		boost.WithStorage(storage),
		boost.WithDispatchMode(mode),
		boost.WithWebhook(sink),
		boost.WithLogger(logger),
		boost.WithDefaults(defaults),
	)
	return svc, svc.Close
}

func provideHandler(svc *engine.BoostService, hub *realtime.Hub, cfg *config.Config, logger *slog.Logger) http.Handler {
	return httpapi.NewMux(svc, hub, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		APIKeys:          cfg.Security.APIKeys,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
		RateLimitCleanup: cfg.Security.RateLimit.CleanupInterval,
		Logger:           logger,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config, stdout, stderr io.Writer) *slog.Logger {
	var handler slog.Handler

	out := stdout
	if cfg.Logging.Output == "stderr" {
		out = stderr
	}
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func convertAttributes(attrs map[string]string) []slog.Attr {
	result := make([]slog.Attr, 0, len(attrs))
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the storage adapter named by the configuration.
func setupStorage(ctx context.Context, cfg *config.Config) (engine.Storage, error) {
	switch cfg.Storage.Adapter {
	case "memory":
		return mem.New(), nil
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	case "sql":
		return sqlxAdapter.New(cfg.Storage.SQL)
	case "file":
		return jsonfile.New(cfg.Storage.File.Path)
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
