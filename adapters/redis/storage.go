package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/TheInsomnolent/slayer-boosting/core"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string        `json:"addr" env:"SLAYERBOOST_REDIS_ADDR"`
	Password     string        `json:"password,omitempty" env:"SLAYERBOOST_REDIS_PASSWORD"`
	DB           int           `json:"db" env:"SLAYERBOOST_REDIS_DB"`
	PoolSize     int           `json:"pool_size" env:"SLAYERBOOST_REDIS_POOL_SIZE"`
	MinIdleConns int           `json:"min_idle_conns" env:"SLAYERBOOST_REDIS_MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `json:"dial_timeout" env:"SLAYERBOOST_REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `json:"read_timeout" env:"SLAYERBOOST_REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `json:"write_timeout" env:"SLAYERBOOST_REDIS_WRITE_TIMEOUT"`
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store implements engine.Storage on top of Redis.
// Data structure:
// - player:{player_id}:settings -> JSON blob of core.Settings
// - players -> set of player ids with stored settings
type Store struct {
	client *redis.Client
}

// New creates a new Redis-backed storage with the provided configuration
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping reports whether the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

const playersKey = "players"

func settingsKey(player core.PlayerID) string {
	return fmt.Sprintf("player:%s:settings", player)
}

// Writes the settings blob and registers the player in one step.
var saveSettingsScript = redis.NewScript(`
	redis.call('SET', KEYS[1], ARGV[1])
	redis.call('SADD', KEYS[2], ARGV[2])
	return 1
`)

func (s *Store) LoadSettings(ctx context.Context, player core.PlayerID) (core.Settings, error) {
	data, err := s.client.Get(ctx, settingsKey(player)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.Settings{}, core.ErrNoSettings
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	var settings core.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return core.Settings{}, fmt.Errorf("decode settings for %s: %w", player, err)
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, player core.PlayerID, settings core.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	keys := []string{settingsKey(player), playersKey}
	if err := saveSettingsScript.Run(ctx, s.client, keys, data, string(player)).Err(); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *Store) ListPlayers(ctx context.Context) ([]core.PlayerID, error) {
	members, err := s.client.SMembers(ctx, playersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	out := make([]core.PlayerID, 0, len(members))
	for _, m := range members {
		out = append(out, core.PlayerID(m))
	}
	slices.Sort(out)
	return out, nil
}
