package world

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/data"
)

func testNpcTable(t *testing.T) *data.NpcTable {
	t.Helper()
	dir := t.TempDir()
	writeMapFile(t, dir, "npc_list.yaml", `
npcs:
  - npc_id: 100
    name: Town Guard
    gfx_id: 500
  - npc_id: 101
    name: Merchant
    gfx_id: 501
`)
	table, err := data.LoadNpcTable(filepath.Join(dir, "npc_list.yaml"))
	require.NoError(t, err)
	return table
}

func TestSpawnNpcsPlacesCountCopies(t *testing.T) {
	mgr := newTestManager(t, "")
	table := testNpcTable(t)

	spawns := []data.SpawnEntry{
		{NpcID: 100, MapID: 1, X: 30, Y: 30, Count: 3},
	}
	placed := SpawnNpcs(context.Background(), mgr, table, spawns, zap.NewNop())

	assert.Equal(t, 3, placed)
	npcs := mgr.NpcsOnMap(1)
	require.Len(t, npcs, 3)

	// Copies land on distinct tiles near the spawn point.
	seen := map[[2]int32]bool{}
	for _, n := range npcs {
		assert.Equal(t, "Town Guard", n.Name)
		key := [2]int32{n.X, n.Y}
		assert.False(t, seen[key], "two npcs on the same tile")
		seen[key] = true
		assert.LessOrEqual(t, abs32(n.X-30)+abs32(n.Y-30), int32(4))
	}
}

func TestSpawnNpcsSkipsUnknownTemplate(t *testing.T) {
	mgr := newTestManager(t, "")
	table := testNpcTable(t)

	spawns := []data.SpawnEntry{
		{NpcID: 999, MapID: 1, X: 30, Y: 30, Count: 2},
		{NpcID: 101, MapID: 1, X: 40, Y: 40},
	}
	placed := SpawnNpcs(context.Background(), mgr, table, spawns, zap.NewNop())

	assert.Equal(t, 1, placed)
	require.Len(t, mgr.NpcsOnMap(1), 1)
	assert.Equal(t, "Merchant", mgr.NpcsOnMap(1)[0].Name)
}

func TestSpawnNpcsSkipsOutOfBoundsTile(t *testing.T) {
	mgr := newTestManager(t, "")
	table := testNpcTable(t)

	// Far outside the default grid; every probe offset is out of bounds too.
	spawns := []data.SpawnEntry{
		{NpcID: 100, MapID: 1, X: 5000, Y: 5000},
	}
	placed := SpawnNpcs(context.Background(), mgr, table, spawns, zap.NewNop())

	assert.Equal(t, 0, placed)
	assert.Empty(t, mgr.NpcsOnMap(1))
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
