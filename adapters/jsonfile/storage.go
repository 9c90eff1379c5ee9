package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

// Store persists every player's settings to a single JSON file.
// Suitable for a single host and small deployments.
type Store struct {
	path string
	mu   sync.Mutex
	// in-memory cache for speed
	data map[core.PlayerID]core.Settings
}

func New(path string) (*Store, error) {
	s := &Store{path: path, data: map[core.PlayerID]core.Settings{}}
	if err := s.load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) load() error {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var raw map[string]core.Settings
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		s.data[core.PlayerID(k)] = v
	}
	return nil
}

func (s *Store) persist() error {
	tmp := s.path + ".tmp"
	raw := make(map[string]core.Settings, len(s.data))
	for k, v := range s.data {
		raw[string(k)] = v
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *Store) LoadSettings(_ context.Context, player core.PlayerID) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.data[player]
	if !ok {
		return core.Settings{}, core.ErrNoSettings
	}
	return st, nil
}

func (s *Store) SaveSettings(_ context.Context, player core.PlayerID, settings core.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, existed := s.data[player]
	s.data[player] = settings
	if err := s.persist(); err != nil {
		// keep the cache in step with the file
		if existed {
			s.data[player] = prev
		} else {
			delete(s.data, player)
		}
		return err
	}
	return nil
}

func (s *Store) ListPlayers(_ context.Context) ([]core.PlayerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.PlayerID, 0, len(s.data))
	for k := range s.data {
		out = append(out, k)
	}
	slices.Sort(out)
	return out, nil
}
