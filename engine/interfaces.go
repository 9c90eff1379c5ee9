package engine

import (
	"context"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

// Storage persists per-player boosting settings. Only configuration is stored;
// streak history never is.
type Storage interface {
	// LoadSettings returns core.ErrNoSettings when nothing is stored for player.
	LoadSettings(ctx context.Context, player core.PlayerID) (core.Settings, error)
	SaveSettings(ctx context.Context, player core.PlayerID, settings core.Settings) error
	ListPlayers(ctx context.Context) ([]core.PlayerID, error)
}
