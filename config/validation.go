package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

// problems collects validation messages and joins them with "; ".
type problems []string

func (p *problems) addf(format string, args ...any) { *p = append(*p, fmt.Sprintf(format, args...)) }

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return errors.New(strings.Join(p, "; "))
}

func oneOf(v string, allowed ...string) bool {
	return slices.Contains(allowed, v)
}

// Validate checks the listen address and that every timeout is positive.
func (s *ServerConfig) Validate() error {
	var p problems
	if s.Address == "" {
		p.addf("address cannot be empty")
	}
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"read_timeout", s.ReadTimeout},
		{"write_timeout", s.WriteTimeout},
		{"idle_timeout", s.IdleTimeout},
		{"read_header_timeout", s.ReadHeaderTimeout},
		{"shutdown_timeout", s.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			p.addf("%s must be positive", t.name)
		}
	}
	return p.err()
}

var storageAdapters = []string{"memory", "redis", "sql", "file"}

// Validate checks the adapter name and the section the adapter reads.
func (s *StorageConfig) Validate() error {
	var p problems
	switch s.Adapter {
	case "memory":
	case "file":
		if err := s.File.Validate(); err != nil {
			p.addf("file config: %v", err)
		}
	case "redis":
		if s.Redis.Addr == "" {
			p.addf("redis config: addr cannot be empty")
		}
	case "sql":
		if err := s.SQL.Validate(); err != nil {
			p.addf("sql config: %v", err)
		}
	default:
		p.addf("adapter must be one of: %s", strings.Join(storageAdapters, ", "))
	}
	return p.err()
}

func (f *FileConfig) Validate() error {
	if f.Path == "" {
		return errors.New("path cannot be empty")
	}
	return nil
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"json", "text"}
	logOutputs = []string{"stdout", "stderr"}
)

func (l *LoggingConfig) Validate() error {
	var p problems
	if !oneOf(l.Level, logLevels...) {
		p.addf("level must be one of: %s", strings.Join(logLevels, ", "))
	}
	if !oneOf(l.Format, logFormats...) {
		p.addf("format must be one of: %s", strings.Join(logFormats, ", "))
	}
	if !oneOf(l.Output, logOutputs...) {
		p.addf("output must be one of: %s", strings.Join(logOutputs, ", "))
	}
	return p.err()
}

// Validate validates security settings.
func (s SecurityConfig) Validate() error {
	var p problems
	if s.EnableRateLimit {
		if s.RateLimit.RequestsPerMinute <= 0 {
			p.addf("rate_limit.requests_per_minute must be > 0 when rate limiting is enabled")
		}
		if s.RateLimit.BurstSize <= 0 {
			p.addf("rate_limit.burst_size must be > 0 when rate limiting is enabled")
		}
	}
	for i, key := range s.APIKeys {
		if strings.TrimSpace(key) == "" {
			p.addf("api_keys[%d] is empty", i)
		}
	}
	return p.err()
}

// Validate checks webhook URLs and event type names.
func (n NotificationsConfig) Validate() error {
	var p problems
	for i, raw := range n.Webhooks {
		u, err := url.Parse(raw)
		if err != nil || !oneOf(u.Scheme, "http", "https") || u.Host == "" {
			p.addf("webhooks[%d] must be an absolute http(s) url", i)
		}
	}
	for i, t := range n.EventTypes {
		if !slices.Contains(core.AllEventTypes(), core.EventType(t)) {
			p.addf("event_types[%d] %q is not an event type", i, t)
		}
	}
	return p.err()
}

// Validate checks master names. Rule intervals are accepted as given.
func (b BoostingConfig) Validate() error {
	if b.SettingsFile != "" {
		if _, err := LoadSettingsFile(b.SettingsFile); err != nil {
			return err
		}
		return nil
	}
	s, _ := b.Settings()
	return s.Validate()
}
