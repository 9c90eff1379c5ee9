package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TheInsomnolent/slayer-boosting/adapters/redis"
	"github.com/TheInsomnolent/slayer-boosting/adapters/sqlx"
	"github.com/TheInsomnolent/slayer-boosting/core"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the complete application configuration
type Config struct {
	Environment Environment `json:"environment" env:"SLAYERBOOST_ENV"`

	Server        ServerConfig        `json:"server"`
	Storage       StorageConfig       `json:"storage"`
	Logging       LoggingConfig       `json:"logging"`
	Security      SecurityConfig      `json:"security"`
	Notifications NotificationsConfig `json:"notifications"`

	// Boosting holds the settings applied to players with nothing stored yet.
	Boosting BoostingConfig `json:"boosting"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address           string        `json:"address" env:"SLAYERBOOST_SERVER_ADDR"`
	PathPrefix        string        `json:"path_prefix" env:"SLAYERBOOST_SERVER_PATH_PREFIX"`
	CORSOrigin        string        `json:"cors_origin" env:"SLAYERBOOST_SERVER_CORS_ORIGIN"`
	AsyncDispatch     bool          `json:"async_dispatch" env:"SLAYERBOOST_SERVER_ASYNC_DISPATCH"`
	ReadTimeout       time.Duration `json:"read_timeout" env:"SLAYERBOOST_SERVER_READ_TIMEOUT"`
	WriteTimeout      time.Duration `json:"write_timeout" env:"SLAYERBOOST_SERVER_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `json:"idle_timeout" env:"SLAYERBOOST_SERVER_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" env:"SLAYERBOOST_SERVER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" env:"SLAYERBOOST_SERVER_SHUTDOWN_TIMEOUT"`
}

// StorageConfig holds storage adapter configuration
type StorageConfig struct {
	Adapter string       `json:"adapter" env:"SLAYERBOOST_STORAGE_ADAPTER"`
	Redis   redis.Config `json:"redis,omitempty"`
	SQL     sqlx.Config  `json:"sql,omitempty"`
	File    FileConfig   `json:"file,omitempty"`
}

// FileConfig holds JSON file storage configuration
type FileConfig struct {
	Path string `json:"path" env:"SLAYERBOOST_STORAGE_FILE_PATH"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string            `json:"level" env:"SLAYERBOOST_LOG_LEVEL"`
	Format     string            `json:"format" env:"SLAYERBOOST_LOG_FORMAT"`
	Output     string            `json:"output" env:"SLAYERBOOST_LOG_OUTPUT"`
	Attributes map[string]string `json:"attributes,omitempty" env:"SLAYERBOOST_LOG_ATTRIBUTES"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	EnableRateLimit bool            `json:"enable_rate_limit" env:"SLAYERBOOST_SECURITY_RATE_LIMIT_ENABLED"`
	RateLimit       RateLimitConfig `json:"rate_limit,omitempty"`
	APIKeys         []string        `json:"api_keys,omitempty" env:"SLAYERBOOST_SECURITY_API_KEYS"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute" env:"SLAYERBOOST_SECURITY_RATE_LIMIT_RPM"`
	BurstSize         int           `json:"burst_size" env:"SLAYERBOOST_SECURITY_RATE_LIMIT_BURST"`
	CleanupInterval   time.Duration `json:"cleanup_interval" env:"SLAYERBOOST_SECURITY_RATE_LIMIT_CLEANUP"`
}

// NotificationsConfig lists outbound webhook endpoints.
type NotificationsConfig struct {
	Webhooks   []string `json:"webhooks,omitempty" env:"SLAYERBOOST_WEBHOOK_URLS"`
	EventTypes []string `json:"event_types,omitempty" env:"SLAYERBOOST_WEBHOOK_EVENTS"`
}

// BoostingConfig mirrors core.Settings so single fields can be overridden from
// the environment. SettingsFile, when set, replaces the inline fields.
type BoostingConfig struct {
	SettingsFile     string                        `json:"settings_file,omitempty" env:"SLAYERBOOST_SETTINGS_FILE"`
	DefaultMaster    core.Master                   `json:"default_master" env:"SLAYERBOOST_DEFAULT_MASTER"`
	HighlightCorrect bool                          `json:"highlight_correct" env:"SLAYERBOOST_HIGHLIGHT_CORRECT"`
	HighlightWrong   bool                          `json:"highlight_wrong" env:"SLAYERBOOST_HIGHLIGHT_WRONG"`
	CorrectColor     core.RGBA                     `json:"correct_color" env:"SLAYERBOOST_CORRECT_COLOR"`
	WrongColor       core.RGBA                     `json:"wrong_color" env:"SLAYERBOOST_WRONG_COLOR"`
	EliteWestern     bool                          `json:"elite_western" env:"SLAYERBOOST_DIARY_ELITE_WESTERN"`
	EliteKourend     bool                          `json:"elite_kourend" env:"SLAYERBOOST_DIARY_ELITE_KOUREND"`
	Rules            [core.RuleSlots]core.RuleSlot `json:"rules"`
}

func boostingFromSettings(s core.Settings) BoostingConfig {
	return BoostingConfig{
		DefaultMaster:    s.DefaultMaster,
		HighlightCorrect: s.HighlightCorrect,
		HighlightWrong:   s.HighlightWrong,
		CorrectColor:     s.CorrectColor,
		WrongColor:       s.WrongColor,
		EliteWestern:     s.Diaries.EliteWestern,
		EliteKourend:     s.Diaries.EliteKourend,
		Rules:            s.Rules,
	}
}

// Settings resolves the default player settings.
func (b BoostingConfig) Settings() (core.Settings, error) {
	if b.SettingsFile != "" {
		return LoadSettingsFile(b.SettingsFile)
	}
	return core.Settings{
		DefaultMaster:    b.DefaultMaster,
		HighlightCorrect: b.HighlightCorrect,
		HighlightWrong:   b.HighlightWrong,
		CorrectColor:     b.CorrectColor,
		WrongColor:       b.WrongColor,
		Diaries:          core.Diaries{EliteWestern: b.EliteWestern, EliteKourend: b.EliteKourend},
		Rules:            b.Rules,
	}, nil
}

// Load builds the configuration from defaults and SLAYERBOOST_* variables.
func Load() (*Config, error) {
	return finish(DefaultConfig())
}

// LoadProfile returns the defaults tuned for a named environment.
func LoadProfile(name string) (*Config, error) {
	cfg := DefaultConfig()
	switch Environment(name) {
	case EnvDevelopment:
		cfg.Logging.Level = "debug"
		cfg.Logging.Format = "text"
	case EnvTesting:
		cfg.Environment = EnvTesting
		cfg.Logging.Level = "warn"
	case EnvStaging:
		cfg.Environment = EnvStaging
		cfg.Storage.Adapter = "redis"
		cfg.Security.EnableRateLimit = true
	case EnvProduction:
		cfg.Environment = EnvProduction
		cfg.Storage.Adapter = "redis"
		cfg.Server.AsyncDispatch = true
		cfg.Server.CORSOrigin = ""
		cfg.Security.EnableRateLimit = true
	default:
		return nil, fmt.Errorf("unknown profile %q", name)
	}
	return cfg, nil
}

// validateConfigPath accepts only existing .json files.
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}
	clean := filepath.Clean(path)
	if !strings.EqualFold(filepath.Ext(clean), ".json") {
		return errors.New("config file must have .json extension")
	}
	if _, err := os.Stat(clean); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}
	return nil
}

// LoadFromFile reads a JSON config over the defaults, then applies
// environment overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 - path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return finish(cfg)
}

// finish applies env overrides and validates.
func finish(cfg *Config) (*Config, error) {
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Server: ServerConfig{
			Address:           ":8080",
			PathPrefix:        "/api",
			CORSOrigin:        "*",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			Adapter: "memory",
			Redis:   redis.DefaultConfig(),
			SQL:     sqlx.DefaultConfig(sqlx.DriverPostgres),
			File: FileConfig{
				Path: "./data/slayerboost.json",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			EnableRateLimit: false,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
				BurstSize:         10,
				CleanupInterval:   5 * time.Minute,
			},
			APIKeys: []string{},
		},
		Boosting: boostingFromSettings(core.DefaultSettings()),
	}
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Notifications.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("notifications config: %v", err))
	}

	if err := c.Boosting.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("boosting config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	cfg := *c

	if cfg.Storage.SQL.DSN != "" {
		cfg.Storage.SQL.DSN = "[REDACTED]"
	}
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = "[REDACTED]"
	}
	if len(cfg.Security.APIKeys) > 0 {
		cfg.Security.APIKeys = []string{"[REDACTED]"}
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
