package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

// Store is a concurrent in-memory settings store.
type Store struct {
	settings sync.Map // map[core.PlayerID]core.Settings
}

func New() *Store { return &Store{} }

func (s *Store) LoadSettings(_ context.Context, player core.PlayerID) (core.Settings, error) {
	v, ok := s.settings.Load(player)
	if !ok {
		return core.Settings{}, core.ErrNoSettings
	}
	return v.(core.Settings), nil
}

func (s *Store) SaveSettings(_ context.Context, player core.PlayerID, settings core.Settings) error {
	s.settings.Store(player, settings)
	return nil
}

func (s *Store) ListPlayers(_ context.Context) ([]core.PlayerID, error) {
	var out []core.PlayerID
	s.settings.Range(func(k, _ any) bool {
		out = append(out, k.(core.PlayerID))
		return true
	})
	slices.Sort(out)
	return out, nil
}

var _ interface {
	LoadSettings(context.Context, core.PlayerID) (core.Settings, error)
	SaveSettings(context.Context, core.PlayerID, core.Settings) error
	ListPlayers(context.Context) ([]core.PlayerID, error)
} = (*Store)(nil)
