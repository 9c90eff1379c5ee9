package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheInsomnolent/slayer-boosting/core"
)

// newTestClient spins up a miniredis server and returns a client plus the server.
func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestStore_LoadMissing(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewWithClient(client)

	_, err := store.LoadSettings(context.Background(), "zezima")
	assert.ErrorIs(t, err, core.ErrNoSettings)
}

func TestStore_SaveAndLoad(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewWithClient(client)
	ctx := context.Background()

	settings := core.DefaultSettings()
	settings.DefaultMaster = core.MasterVannaka
	settings.Diaries.EliteKourend = true
	settings.WrongColor = core.RGBA{R: 10, G: 20, B: 30, A: 255}

	require.NoError(t, store.SaveSettings(ctx, "zezima", settings))

	got, err := store.LoadSettings(ctx, "zezima")
	require.NoError(t, err)
	assert.Equal(t, settings, got)

	raw, err := mr.Get("player:zezima:settings")
	require.NoError(t, err)
	assert.Contains(t, raw, `"default_master":"vannaka"`)
	assert.True(t, mr.Exists("players"))
}

func TestStore_Overwrite(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewWithClient(client)
	ctx := context.Background()

	first := core.DefaultSettings()
	require.NoError(t, store.SaveSettings(ctx, "zezima", first))

	second := core.DefaultSettings()
	second.HighlightWrong = false
	require.NoError(t, store.SaveSettings(ctx, "zezima", second))

	got, err := store.LoadSettings(ctx, "zezima")
	require.NoError(t, err)
	assert.False(t, got.HighlightWrong)

	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.PlayerID{"zezima"}, players)
}

func TestStore_ListPlayersSorted(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewWithClient(client)
	ctx := context.Background()

	for _, p := range []core.PlayerID{"lynx titan", "b0aty", "zezima"} {
		require.NoError(t, store.SaveSettings(ctx, p, core.DefaultSettings()))
	}
	players, err := store.ListPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.PlayerID{"b0aty", "lynx titan", "zezima"}, players)
}

func TestStore_CorruptBlob(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewWithClient(client)
	require.NoError(t, mr.Set("player:zezima:settings", "{broken"))

	_, err := store.LoadSettings(context.Background(), "zezima")
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNoSettings)
}

func TestStore_ServerDown(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewWithClient(client)
	mr.Close()

	assert.Error(t, store.Ping(context.Background()))
	_, err := store.LoadSettings(context.Background(), "zezima")
	assert.Error(t, err)
}

func TestNew_ConnectsAndCloses(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()

	store, err := New(cfg)
	require.NoError(t, err)
	assert.NoError(t, store.Ping(context.Background()))
	assert.NoError(t, store.Close())
}
