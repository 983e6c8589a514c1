package world

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/data"
)

const testDoorList = `
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
  - map_id: 1
    x: 21
    y: 20
    gfx: 100
    closed: true
  - map_id: 1
    x: 40
    y: 40
    gfx: 200
    closed: true
`

func newDoorFixture(t *testing.T, store DoorStore) (*Manager, *DoorService, *fakeBroadcaster) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "door_list.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDoorList), 0o644))
	catalog, err := data.LoadDoorCatalog(path)
	require.NoError(t, err)

	m := newTestManager(t, "")
	bcast := &fakeBroadcaster{}
	svc := NewDoorService(m, catalog, store, bcast, zap.NewNop())
	n, err := svc.LoadPlacements(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	return m, svc, bcast
}

func TestToggleFlipsBothTilesOfWideDoor(t *testing.T) {
	m, svc, bcast := newDoorFixture(t, nil)

	require.False(t, m.CanMoveTo(1, 20, 20))
	require.False(t, m.CanMoveTo(1, 21, 20))

	require.NoError(t, svc.Toggle(context.Background(), 1, 20, 20))

	// Both tiles open and passable, graphics swapped in lockstep.
	assert.True(t, m.CanMoveTo(1, 20, 20))
	assert.True(t, m.CanMoveTo(1, 21, 20))
	assert.True(t, m.DoorAt(1, 20, 20).Record.Open)
	assert.True(t, m.DoorAt(1, 21, 20).Record.Open)
	assert.Equal(t, int32(101), m.DoorAt(1, 20, 20).Record.CurrentGfx())

	// delete+create+block per tile.
	assert.Len(t, bcast.events, 6)

	// Toggling from the companion tile closes both again.
	require.NoError(t, svc.Toggle(context.Background(), 1, 21, 20))
	assert.False(t, m.CanMoveTo(1, 20, 20))
	assert.False(t, m.CanMoveTo(1, 21, 20))
}

func TestKeyedDoorRefusesToggle(t *testing.T) {
	m, svc, _ := newDoorFixture(t, nil)

	err := svc.Toggle(context.Background(), 1, 40, 40)
	require.ErrorIs(t, err, ErrDoorLocked)
	assert.False(t, m.CanMoveTo(1, 40, 40))
	assert.False(t, m.DoorAt(1, 40, 40).Record.Open)
}

func TestToggleNoDoor(t *testing.T) {
	_, svc, _ := newDoorFixture(t, nil)
	assert.Error(t, svc.Toggle(context.Background(), 1, 99, 99))
}

func TestTogglePersistsBothTiles(t *testing.T) {
	store := newFakeDoorStore()
	m, svc, _ := newDoorFixture(t, store)

	require.NoError(t, svc.Toggle(context.Background(), 1, 20, 20))
	assert.Equal(t, 2, store.saves)

	rec, ok, err := store.LoadDoorState(context.Background(), 1, 21, 20)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rec.Open)
	_ = m
}

func TestSavedStateOverridesPlacementDefault(t *testing.T) {
	store := newFakeDoorStore()
	store.records[doorKey(1, 20, 20)] = DoorRecord{ItemID: 1, ClosedGfx: 100, OpenGfx: 101, Open: true}

	m, _, _ := newDoorFixture(t, store)

	// Persisted open state wins over the closed placement default.
	assert.True(t, m.DoorAt(1, 20, 20).Record.Open)
	assert.True(t, m.CanMoveTo(1, 20, 20))
	// The companion tile had no saved record and stays closed.
	assert.False(t, m.CanMoveTo(1, 21, 20))
}

func TestStoreFailureLeavesDoorUntouched(t *testing.T) {
	store := newFakeDoorStore()
	m, svc, bcast := newDoorFixture(t, store)

	store.failing = true
	err := svc.Toggle(context.Background(), 1, 20, 20)
	require.Error(t, err)

	assert.False(t, m.DoorAt(1, 20, 20).Record.Open)
	assert.False(t, m.CanMoveTo(1, 20, 20))
	assert.Empty(t, bcast.events)
}

func TestCloseExpired(t *testing.T) {
	m, svc, _ := newDoorFixture(t, nil)
	require.NoError(t, svc.Toggle(context.Background(), 1, 20, 20))

	// Not yet past the threshold.
	svc.CloseExpired(context.Background(), 5)
	assert.True(t, m.DoorAt(1, 20, 20).Record.Open)

	// Age the door past the threshold; OpenDoors bumps ticks once per sweep.
	for i := 0; i < 6; i++ {
		m.OpenDoors()
	}
	svc.CloseExpired(context.Background(), 5)
	assert.False(t, m.DoorAt(1, 20, 20).Record.Open)
	assert.False(t, m.DoorAt(1, 21, 20).Record.Open)
}
