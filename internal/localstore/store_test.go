package localstore_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/sprintduel/ladder-server/internal/localstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *localstore.Store {
	t.Helper()

	store, err := localstore.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_PutGet(t *testing.T) {
	store := openStore(t)
	playerID := uuid.New()

	_, ok, err := store.Get(playerID, localstore.KeyCurrentSeasonID)
	require.NoError(t, err)
	assert.False(t, ok, "unset key must report missing")

	require.NoError(t, store.Put(playerID, localstore.KeyCurrentSeasonID, "season_001"))

	value, ok, err := store.Get(playerID, localstore.KeyCurrentSeasonID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "season_001", value)

	// Upsert overwrites
	require.NoError(t, store.Put(playerID, localstore.KeyCurrentSeasonID, "season_002"))
	value, _, err = store.Get(playerID, localstore.KeyCurrentSeasonID)
	require.NoError(t, err)
	assert.Equal(t, "season_002", value)
}

func TestStore_IntAndBool(t *testing.T) {
	store := openStore(t)
	playerID := uuid.New()

	n, err := store.GetInt(playerID, localstore.KeyTrophies, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, n, "fallback for unset int")

	require.NoError(t, store.PutInt(playerID, localstore.KeyTrophies, 1350))
	n, err = store.GetInt(playerID, localstore.KeyTrophies, 0)
	require.NoError(t, err)
	assert.Equal(t, 1350, n)

	b, err := store.GetBool(playerID, localstore.KeyPrestigeNotified)
	require.NoError(t, err)
	assert.False(t, b, "unset bool defaults to false")

	require.NoError(t, store.PutBool(playerID, localstore.KeyPrestigeNotified, true))
	b, err = store.GetBool(playerID, localstore.KeyPrestigeNotified)
	require.NoError(t, err)
	assert.True(t, b)

	require.NoError(t, store.PutBool(playerID, localstore.KeyPrestigeNotified, false))
	b, err = store.GetBool(playerID, localstore.KeyPrestigeNotified)
	require.NoError(t, err)
	assert.False(t, b)
}

func TestStore_PlayerIsolation(t *testing.T) {
	store := openStore(t)
	alice := uuid.New()
	bob := uuid.New()

	require.NoError(t, store.PutInt(alice, localstore.KeyTrophies, 900))
	require.NoError(t, store.PutInt(bob, localstore.KeyTrophies, 4500))

	n, err := store.GetInt(alice, localstore.KeyTrophies, 0)
	require.NoError(t, err)
	assert.Equal(t, 900, n)

	n, err = store.GetInt(bob, localstore.KeyTrophies, 0)
	require.NoError(t, err)
	assert.Equal(t, 4500, n)
}

func TestStore_Delete(t *testing.T) {
	store := openStore(t)
	playerID := uuid.New()

	require.NoError(t, store.Put(playerID, localstore.KeyCurrentSeasonID, "season_001"))
	require.NoError(t, store.Delete(playerID, localstore.KeyCurrentSeasonID))

	_, ok, err := store.Get(playerID, localstore.KeyCurrentSeasonID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is not an error
	require.NoError(t, store.Delete(playerID, localstore.KeyCurrentSeasonID))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ladder.db")
	playerID := uuid.New()

	store, err := localstore.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.PutInt(playerID, localstore.KeyTrophies, 2750))
	require.NoError(t, store.Close())

	reopened, err := localstore.Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.GetInt(playerID, localstore.KeyTrophies, 0)
	require.NoError(t, err)
	assert.Equal(t, 2750, n)
}
