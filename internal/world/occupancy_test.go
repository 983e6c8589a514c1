package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupyConflict(t *testing.T) {
	g := NewTileOccupation()

	require.NoError(t, g.Occupy(1, 10, 10, PlayerOccupant(7)))

	err := g.Occupy(1, 10, 10, NpcOccupant(200000001))
	require.ErrorIs(t, err, ErrTileOccupied)

	occ, ok := g.OccupantAt(1, 10, 10)
	require.True(t, ok)
	assert.Equal(t, PlayerOccupant(7), occ)
}

func TestOccupySameOccupantIdempotent(t *testing.T) {
	g := NewTileOccupation()

	require.NoError(t, g.Occupy(1, 10, 10, PlayerOccupant(7)))
	require.NoError(t, g.Occupy(1, 10, 10, PlayerOccupant(7)))
	assert.Equal(t, 1, g.Len())
}

func TestMoveAtomic(t *testing.T) {
	g := NewTileOccupation()

	require.NoError(t, g.Occupy(1, 10, 10, PlayerOccupant(7)))
	require.NoError(t, g.Move(1, 10, 10, 11, 10, PlayerOccupant(7)))

	assert.False(t, g.IsOccupied(1, 10, 10))
	assert.True(t, g.IsOccupied(1, 11, 10))
	assert.Equal(t, 1, g.Len())
}

func TestMoveConflictKeepsSource(t *testing.T) {
	g := NewTileOccupation()

	require.NoError(t, g.Occupy(1, 10, 10, PlayerOccupant(7)))
	require.NoError(t, g.Occupy(1, 11, 10, PlayerOccupant(8)))

	err := g.Move(1, 10, 10, 11, 10, PlayerOccupant(7))
	require.ErrorIs(t, err, ErrTileOccupied)

	// Source untouched, destination still held by its owner.
	occ, _ := g.OccupantAt(1, 10, 10)
	assert.Equal(t, PlayerOccupant(7), occ)
	occ, _ = g.OccupantAt(1, 11, 10)
	assert.Equal(t, PlayerOccupant(8), occ)
}

func TestMoveSameTileNoop(t *testing.T) {
	g := NewTileOccupation()

	require.NoError(t, g.Occupy(1, 10, 10, PlayerOccupant(7)))
	require.NoError(t, g.Move(1, 10, 10, 10, 10, PlayerOccupant(7)))
	assert.True(t, g.IsOccupied(1, 10, 10))
}

func TestReleaseClearsOnlyOwnTile(t *testing.T) {
	g := NewTileOccupation()

	require.NoError(t, g.Occupy(1, 10, 10, PlayerOccupant(7)))
	require.NoError(t, g.Occupy(1, 11, 10, NpcOccupant(200000001)))

	g.Release(1, 10, 10)

	assert.False(t, g.IsOccupied(1, 10, 10))
	assert.True(t, g.IsOccupied(1, 11, 10))
}

func TestOccupantString(t *testing.T) {
	assert.Equal(t, "player:7", PlayerOccupant(7).String())
	assert.Equal(t, "npc:42", NpcOccupant(42).String())
	assert.Equal(t, "none", Occupant{}.String())
	assert.True(t, Occupant{}.IsZero())
}
