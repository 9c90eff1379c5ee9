package sqlx

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

// Driver names a database/sql driver registered by this package.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Config holds SQL connection configuration.
type Config struct {
	Driver          Driver        `json:"driver" env:"SLAYERBOOST_SQL_DRIVER"`
	DSN             string        `json:"dsn,omitempty" env:"SLAYERBOOST_SQL_DSN"`
	MaxOpenConns    int           `json:"max_open_conns" env:"SLAYERBOOST_SQL_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `json:"max_idle_conns" env:"SLAYERBOOST_SQL_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" env:"SLAYERBOOST_SQL_CONN_MAX_LIFETIME"`
	AutoMigrate     bool          `json:"auto_migrate" env:"SLAYERBOOST_SQL_AUTO_MIGRATE"`
}

// DefaultConfig returns pool defaults for the given driver. DSN is left empty.
func DefaultConfig(driver Driver) Config {
	return Config{
		Driver:          driver,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
		AutoMigrate:     true,
	}
}

// Validate checks the driver and that the DSN parses for it.
func (c Config) Validate() error {
	if c.DSN == "" {
		return errors.New("sql dsn is required")
	}
	switch c.Driver {
	case DriverPostgres:
		if strings.HasPrefix(c.DSN, "postgres://") || strings.HasPrefix(c.DSN, "postgresql://") {
			if _, err := pq.ParseURL(c.DSN); err != nil {
				return fmt.Errorf("invalid postgres dsn: %w", err)
			}
		}
	case DriverMySQL:
		if _, err := mysql.ParseDSN(c.DSN); err != nil {
			return fmt.Errorf("invalid mysql dsn: %w", err)
		}
	default:
		return fmt.Errorf("unsupported sql driver %q", c.Driver)
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return errors.New("sql pool sizes must be >= 0")
	}
	return nil
}

// Store implements engine.Storage on a relational database.
// Table:
// - player_settings(player_id PK, settings JSON text, updated_at)
type Store struct {
	db     *sqlx.DB
	driver Driver
}

// New opens a pool, pings it and optionally creates the schema.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sqlx.Open(string(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	s := NewWithDB(db, cfg.Driver)
	if cfg.AutoMigrate {
		if err := s.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewWithDB wraps an existing handle (useful for testing).
func NewWithDB(db *sqlx.DB, driver Driver) *Store {
	return &Store{db: db, driver: driver}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

const schema = `CREATE TABLE IF NOT EXISTS player_settings (
	player_id VARCHAR(64) PRIMARY KEY,
	settings TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Migrate creates the settings table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate player_settings: %w", err)
	}
	return nil
}

func (s *Store) LoadSettings(ctx context.Context, player core.PlayerID) (core.Settings, error) {
	var blob string
	q := s.db.Rebind(`SELECT settings FROM player_settings WHERE player_id = ?`)
	if err := s.db.GetContext(ctx, &blob, q, string(player)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Settings{}, core.ErrNoSettings
		}
		return core.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	var settings core.Settings
	if err := json.Unmarshal([]byte(blob), &settings); err != nil {
		return core.Settings{}, fmt.Errorf("decode settings for %s: %w", player, err)
	}
	return settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, player core.PlayerID, settings core.Settings) error {
	blob, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.upsertQuery(), string(player), string(blob), time.Now().UTC()); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// upsertQuery inserts or replaces a player's row in a single statement.
func (s *Store) upsertQuery() string {
	if s.driver == DriverMySQL {
		return `INSERT INTO player_settings (player_id, settings, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE settings = VALUES(settings), updated_at = VALUES(updated_at)`
	}
	return `INSERT INTO player_settings (player_id, settings, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (player_id) DO UPDATE SET settings = EXCLUDED.settings, updated_at = EXCLUDED.updated_at`
}

func (s *Store) ListPlayers(ctx context.Context) ([]core.PlayerID, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, `SELECT player_id FROM player_settings ORDER BY player_id`); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	out := make([]core.PlayerID, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.PlayerID(id))
	}
	return out, nil
}
