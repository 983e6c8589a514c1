package world

import "fmt"

// ClientConn is the per-player send surface. The net session implements it;
// tests substitute a recorder.
type ClientConn interface {
	SendChangeMap(mapID int16, x, y int32)
	SendPosUpdate(x, y int32, heading int16)
	SendCharacterCreate(p *PlayerInfo)
	SendCharacterRemove(userID int32)
	SendCharacterMove(userID int32, x, y int32, heading int16)
	SendNpcCreate(n *NpcInfo)
	SendObjectCreate(objectID, gfx int32, mapID int16, x, y int32)
	SendObjectDelete(objectID int32)
	SendBlockPosition(mapID int16, x, y int32, blocked bool)
}

// PlayerInfo is the world-side view of one connected character.
type PlayerInfo struct {
	UserID  int32
	Name    string
	MapID   int16
	X, Y    int32
	Heading int16

	Conn ClientConn

	// Dirty marks the position as changed since the last persistence flush.
	Dirty bool
}

// PlayerIndex tracks every online player and keeps the occupancy ledger in
// step with their positions. Not self-locking.
type PlayerIndex struct {
	players map[int32]*PlayerInfo
	grid    *TileOccupation
}

func NewPlayerIndex(grid *TileOccupation) *PlayerIndex {
	return &PlayerIndex{players: make(map[int32]*PlayerInfo), grid: grid}
}

// Add registers a player and claims their tile. A duplicate user id or an
// occupied tile is an error and leaves the index unchanged.
func (idx *PlayerIndex) Add(p *PlayerInfo) error {
	if _, ok := idx.players[p.UserID]; ok {
		return fmt.Errorf("player %d already online", p.UserID)
	}
	if err := idx.grid.Occupy(p.MapID, p.X, p.Y, PlayerOccupant(p.UserID)); err != nil {
		return err
	}
	idx.players[p.UserID] = p
	return nil
}

// Remove drops a player and vacates their tile.
func (idx *PlayerIndex) Remove(userID int32) {
	p, ok := idx.players[userID]
	if !ok {
		return
	}
	idx.grid.Release(p.MapID, p.X, p.Y)
	delete(idx.players, userID)
}

// Get returns a player by user id, or nil.
func (idx *PlayerIndex) Get(userID int32) *PlayerInfo {
	return idx.players[userID]
}

// OnMap returns all players currently on a map.
func (idx *PlayerIndex) OnMap(mapID int16) []*PlayerInfo {
	var out []*PlayerInfo
	for _, p := range idx.players {
		if p.MapID == mapID {
			out = append(out, p)
		}
	}
	return out
}

// All returns every online player.
func (idx *PlayerIndex) All() []*PlayerInfo {
	out := make([]*PlayerInfo, 0, len(idx.players))
	for _, p := range idx.players {
		out = append(out, p)
	}
	return out
}

// Count returns the number of online players.
func (idx *PlayerIndex) Count() int {
	return len(idx.players)
}
