package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCatalog(t *testing.T, yaml string) *DoorCatalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "door_list.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	c, err := LoadDoorCatalog(path)
	require.NoError(t, err)
	return c
}

func TestCatalogLookups(t *testing.T) {
	c := loadCatalog(t, `
catalog:
  - item_id: 1
    name: iron gate
    closed_gfx: 100
    open_gfx: 101
  - item_id: 2
    name: vault door
    closed_gfx: 200
    open_gfx: 201
    key_item_id: 4000
placements:
  - map_id: 1
    x: 20
    y: 20
    gfx: 100
    closed: true
`)

	assert.Equal(t, 2, c.Count())
	require.NotNil(t, c.ByGfx(100))
	assert.Equal(t, int32(1), c.ByGfx(100).ItemID)
	assert.Equal(t, int32(1), c.ByGfx(101).ItemID)
	assert.Nil(t, c.ByGfx(999))

	vault := c.ByItem(2)
	require.NotNil(t, vault)
	assert.True(t, vault.IsLocked())
	assert.False(t, c.ByItem(1).IsLocked())

	require.Len(t, c.Placements(), 1)
	assert.Equal(t, int16(1), c.Placements()[0].MapID)
}

func TestWoodenDoorGfxPinnedToCanonicalItem(t *testing.T) {
	// Two rows share graphic 843; only item 37 is the real 843/844 pair.
	c := loadCatalog(t, `
catalog:
  - item_id: 36
    name: old wooden door
    closed_gfx: 843
    open_gfx: 850
  - item_id: 37
    name: wooden door
    closed_gfx: 843
    open_gfx: 844
`)

	require.NotNil(t, c.ByGfx(843))
	assert.Equal(t, int32(37), c.ByGfx(843).ItemID)
	require.NotNil(t, c.ByGfx(844))
	assert.Equal(t, int32(37), c.ByGfx(844).ItemID)

	// Unrelated graphics still resolve by plain lookup.
	assert.Equal(t, int32(36), c.ByGfx(850).ItemID)
}
