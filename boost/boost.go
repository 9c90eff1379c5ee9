// Package boost assembles a ready-to-use BoostService from functional options.
package boost

import (
	"log/slog"

	mem "github.com/TheInsomnolent/slayer-boosting/adapters/memory"
	"github.com/TheInsomnolent/slayer-boosting/core"
	"github.com/TheInsomnolent/slayer-boosting/engine"
	"github.com/TheInsomnolent/slayer-boosting/integrations/webhook"
	"github.com/TheInsomnolent/slayer-boosting/realtime"
)

// Option configures the service builder.
type Option func(*config)

type config struct {
	storage  engine.Storage
	mode     engine.DispatchMode
	hub      *realtime.Hub
	sinks    []*webhook.Sink
	logger   *slog.Logger
	defaults core.Settings
}

// WithStorage sets the persistence adapter.
func WithStorage(s engine.Storage) Option { return func(c *config) { c.storage = s } }

// WithDispatchMode selects sync or async event dispatch.
func WithDispatchMode(m engine.DispatchMode) Option { return func(c *config) { c.mode = m } }

// WithRealtime wires a realtime hub to receive all engine events.
func WithRealtime(h *realtime.Hub) Option { return func(c *config) { c.hub = h } }

// WithWebhook forwards the sink's event types to its endpoints.
func WithWebhook(s *webhook.Sink) Option {
	return func(c *config) {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option { return func(c *config) { c.logger = l } }

// WithDefaults sets the settings used for players with nothing stored.
func WithDefaults(s core.Settings) Option { return func(c *config) { c.defaults = s } }

// New builds a configured BoostService. If not provided, defaults are used:
//   - storage: in-memory
//   - dispatch: async
//   - settings: core.DefaultSettings()
func New(opts ...Option) *engine.BoostService {
	cfg := &config{mode: engine.DispatchAsync, defaults: core.DefaultSettings()}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.storage == nil {
		cfg.storage = mem.New()
	}
	bus := engine.NewEventBus(cfg.mode)
	svc := engine.NewBoostService(cfg.storage, bus, cfg.logger, cfg.defaults)
	if cfg.hub != nil {
		bus.SubscribeAll(cfg.hub.Broadcast)
	}
	for _, sink := range cfg.sinks {
		for _, typ := range sink.EventTypes() {
			bus.Subscribe(typ, sink.OnEvent)
		}
	}
	return svc
}
