package world

import (
	"errors"
	"fmt"
)

// ErrTileOccupied is returned when a tile claim conflicts with a different
// occupant already holding the tile.
var ErrTileOccupied = errors.New("tile occupied")

// tileKey uniquely identifies a tile in the world (map + coordinates).
type tileKey struct {
	MapID int16
	X, Y  int32
}

// TileOccupation is the exclusive-occupancy ledger: at most one occupant per
// tile. Entries exist exactly while an entity stands on the tile: adds and
// moves create them, removes clear them, nothing is left stale.
//
// Not self-locking: all mutation happens inside the Manager's critical
// sections.
type TileOccupation struct {
	tiles map[tileKey]Occupant
}

func NewTileOccupation() *TileOccupation {
	return &TileOccupation{tiles: make(map[tileKey]Occupant)}
}

// Occupy claims a tile for an occupant. Claiming a tile the same occupant
// already holds is a no-op; a different holder is a conflict.
func (g *TileOccupation) Occupy(mapID int16, x, y int32, occ Occupant) error {
	k := tileKey{MapID: mapID, X: x, Y: y}
	if cur, ok := g.tiles[k]; ok {
		if cur == occ {
			return nil
		}
		return fmt.Errorf("occupy (%d,%d,%d) for %s: held by %s: %w",
			mapID, x, y, occ, cur, ErrTileOccupied)
	}
	g.tiles[k] = occ
	return nil
}

// Move atomically vacates the old tile and claims the new one. A conflict on
// the destination aborts without touching the source tile.
func (g *TileOccupation) Move(mapID int16, oldX, oldY, newX, newY int32, occ Occupant) error {
	if oldX == newX && oldY == newY {
		return nil
	}
	dst := tileKey{MapID: mapID, X: newX, Y: newY}
	if cur, ok := g.tiles[dst]; ok && cur != occ {
		return fmt.Errorf("move %s to (%d,%d,%d): held by %s: %w",
			occ, mapID, newX, newY, cur, ErrTileOccupied)
	}
	delete(g.tiles, tileKey{MapID: mapID, X: oldX, Y: oldY})
	g.tiles[dst] = occ
	return nil
}

// Release clears a tile unconditionally.
func (g *TileOccupation) Release(mapID int16, x, y int32) {
	delete(g.tiles, tileKey{MapID: mapID, X: x, Y: y})
}

// IsOccupied reports whether any entity holds the tile.
func (g *TileOccupation) IsOccupied(mapID int16, x, y int32) bool {
	_, ok := g.tiles[tileKey{MapID: mapID, X: x, Y: y}]
	return ok
}

// OccupantAt returns the occupant holding the tile, if any.
func (g *TileOccupation) OccupantAt(mapID int16, x, y int32) (Occupant, bool) {
	occ, ok := g.tiles[tileKey{MapID: mapID, X: x, Y: y}]
	return occ, ok
}

// Len returns the number of occupied tiles.
func (g *TileOccupation) Len() int {
	return len(g.tiles)
}
