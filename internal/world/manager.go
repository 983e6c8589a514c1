package world

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/data"
)

// BlockReason says why a tile refused movement. Diagnostic only: handlers
// branch on CanMoveTo, never on the reason.
type BlockReason uint8

const (
	BlockNone BlockReason = iota
	BlockOutOfBounds
	BlockStatic
	BlockDoor
	BlockOccupied
)

func (r BlockReason) String() string {
	switch r {
	case BlockNone:
		return "none"
	case BlockOutOfBounds:
		return "out_of_bounds"
	case BlockStatic:
		return "static"
	case BlockDoor:
		return "door"
	case BlockOccupied:
		return "occupied"
	default:
		return "unknown"
	}
}

// Manager is the world-state facade: collision queries, occupancy, doors,
// exits and ground items behind one mutex. Every public method is one
// critical section, so a legality check and the commit it guards never see
// another session's write in between.
type Manager struct {
	mu sync.Mutex

	loader    *data.MapMetaLoader
	grid      *TileOccupation
	exits     *ExitIndex
	doorState *DoorState
	doors     map[tileKey]*Door
	players   *PlayerIndex
	npcs      *NpcIndex
	ground    *GroundItemIndex

	log *zap.Logger
}

func NewManager(loader *data.MapMetaLoader, store GroundStore, maxPerTile int, log *zap.Logger) *Manager {
	grid := NewTileOccupation()
	return &Manager{
		loader:    loader,
		grid:      grid,
		exits:     NewExitIndex(),
		doorState: NewDoorState(),
		doors:     make(map[tileKey]*Door),
		players:   NewPlayerIndex(grid),
		npcs:      NewNpcIndex(grid),
		ground:    NewGroundItemIndex(store, maxPerTile),
		log:       log,
	}
}

// EnsureMapLoaded pulls a map's metadata into the exit index and its ground
// items from the store. Idempotent; the loader caches per shard file.
func (m *Manager) EnsureMapLoaded(ctx context.Context, mapID int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureMapLoadedLocked(ctx, mapID)
}

func (m *Manager) ensureMapLoadedLocked(ctx context.Context, mapID int16) error {
	meta := m.loader.Get(mapID)
	for c, dest := range meta.Exits {
		m.exits.Add(mapID, c.X, c.Y, Destination{MapID: dest.MapID, X: dest.X, Y: dest.Y})
	}
	return m.ground.EnsureLoaded(ctx, mapID)
}

// CanMoveTo is the single source of truth for movement legality: false when
// the tile is out of bounds, statically blocked, closed-door-blocked, or
// occupied.
func (m *Manager) CanMoveTo(mapID int16, x, y int32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canMoveToLocked(mapID, x, y)
}

func (m *Manager) canMoveToLocked(mapID int16, x, y int32) bool {
	meta := m.loader.Get(mapID)
	if !meta.InBounds(x, y) {
		return false
	}
	if meta.IsBlocked(x, y) {
		return false
	}
	if m.doorState.IsClosed(mapID, x, y) {
		return false
	}
	return !m.grid.IsOccupied(mapID, x, y)
}

// TileBlockReason explains why a tile is blocked, for logs and tile
// inspection. The occupant is non-zero only for BlockOccupied.
func (m *Manager) TileBlockReason(mapID int16, x, y int32) (BlockReason, Occupant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := m.loader.Get(mapID)
	if !meta.InBounds(x, y) {
		return BlockOutOfBounds, Occupant{}
	}
	if meta.IsBlocked(x, y) {
		return BlockStatic, Occupant{}
	}
	if m.doorState.IsClosed(mapID, x, y) {
		return BlockDoor, Occupant{}
	}
	if occ, ok := m.grid.OccupantAt(mapID, x, y); ok {
		return BlockOccupied, occ
	}
	return BlockNone, Occupant{}
}

// GetExitTile returns the destination when the tile is a map exit.
func (m *Manager) GetExitTile(mapID int16, x, y int32) (Destination, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exits.ExitAt(mapID, x, y)
}

// --- players ---

// AddPlayer registers a player and claims their tile.
func (m *Manager) AddPlayer(p *PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players.Add(p)
}

// RemovePlayer drops a player and vacates their tile.
func (m *Manager) RemovePlayer(userID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players.Remove(userID)
}

// TryMovePlayer checks legality and commits the move in one critical
// section. Returns false without mutating anything when the move is illegal
// or the player is unknown.
func (m *Manager) TryMovePlayer(userID int32, x, y int32, heading int16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.players.Get(userID)
	if p == nil {
		return false
	}
	if !m.canMoveToLocked(p.MapID, x, y) {
		return false
	}
	if err := m.grid.Move(p.MapID, p.X, p.Y, x, y, PlayerOccupant(userID)); err != nil {
		m.log.Warn("move rejected by occupancy ledger",
			zap.Int32("user_id", userID), zap.Error(err))
		return false
	}
	p.X, p.Y = x, y
	p.Heading = heading
	p.Dirty = true
	return true
}

// SetPlayerHeading turns a player in place. Heading is cosmetic and marks
// the position dirty so the facing persists with the next flush.
func (m *Manager) SetPlayerHeading(userID int32, heading int16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.players.Get(userID)
	if p == nil {
		return false
	}
	p.Heading = heading
	p.Dirty = true
	return true
}

// GetPlayer returns a player by user id, or nil.
func (m *Manager) GetPlayer(userID int32) *PlayerInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players.Get(userID)
}

// PlayersOnMap snapshots the players currently on a map.
func (m *Manager) PlayersOnMap(mapID int16) []*PlayerInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players.OnMap(mapID)
}

// AllPlayers snapshots every online player.
func (m *Manager) AllPlayers() []*PlayerInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players.All()
}

// PlayerCount returns the number of online players.
func (m *Manager) PlayerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players.Count()
}

// DirtyPositions snapshots and clears the dirty flags of players whose
// position changed since the last flush. Value copies, safe to persist
// outside the lock.
func (m *Manager) DirtyPositions() []PlayerInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PlayerInfo
	for _, p := range m.players.All() {
		if p.Dirty {
			out = append(out, *p)
			p.Dirty = false
		}
	}
	return out
}

// --- npcs ---

// AddNpc spawns an NPC and claims its tile. A conflict is an error: it means
// the spawn configuration placed two entities on one tile.
func (m *Manager) AddNpc(n *NpcInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.npcs.Add(n)
}

// RemoveNpc despawns an NPC and vacates exactly its own tile.
func (m *Manager) RemoveNpc(instanceID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.npcs.Remove(instanceID)
}

// TryMoveNpc checks legality and commits an NPC step in one critical
// section.
func (m *Manager) TryMoveNpc(instanceID int32, x, y int32, heading int16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.npcs.Get(instanceID)
	if n == nil {
		return false
	}
	if !m.canMoveToLocked(n.MapID, x, y) {
		return false
	}
	if err := m.grid.Move(n.MapID, n.X, n.Y, x, y, NpcOccupant(instanceID)); err != nil {
		return false
	}
	n.X, n.Y = x, y
	n.Heading = heading
	return true
}

// NpcsOnMap snapshots the NPCs currently on a map.
func (m *Manager) NpcsOnMap(mapID int16) []*NpcInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.npcs.OnMap(mapID)
}

// NpcCount returns the number of spawned NPCs.
func (m *Manager) NpcCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.npcs.Count()
}

// --- ground items ---

// DropGroundItem places an item on a tile, rejecting silently past the
// per-tile cap. Ground items never affect collision.
func (m *Manager) DropGroundItem(ctx context.Context, item *GroundItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ground.Drop(ctx, item)
}

// RemoveGroundItemAt pops the item at index from a tile (0 = oldest).
func (m *Manager) RemoveGroundItemAt(ctx context.Context, mapID int16, x, y int32, index int) (*GroundItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ground.RemoveAt(ctx, mapID, x, y, index)
}

// TakeGroundObject removes an item by object id; nil when already gone.
func (m *Manager) TakeGroundObject(ctx context.Context, mapID int16, objectID int32) (*GroundItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ground.TakeObject(ctx, mapID, objectID)
}

// GroundItemsAt returns the items lying on one tile, oldest first.
func (m *Manager) GroundItemsAt(mapID int16, x, y int32) []*GroundItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ground.ItemsAt(mapID, x, y)
}

// GroundItemsOnMap snapshots every ground item on a map.
func (m *Manager) GroundItemsOnMap(mapID int16) []*GroundItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ground.OnMap(mapID)
}

// SweepExpiredGround removes expired ground items and returns them for
// broadcast.
func (m *Manager) SweepExpiredGround(now time.Time, ttl time.Duration) []*GroundItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ground.SweepExpired(now, ttl)
}

// FlushGround persists every map whose ground items changed since the last
// flush.
func (m *Manager) FlushGround(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ground.FlushDirty(ctx)
}

// --- doors ---

// RegisterDoor places a live door tile. A closed door also blocks its tile.
func (m *Manager) RegisterDoor(d *Door) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doors[tileKey{MapID: d.MapID, X: d.X, Y: d.Y}] = d
	if !d.Record.Open {
		m.doorState.Block(d.MapID, d.X, d.Y)
	}
}

// DoorAt returns the door on a tile, or nil.
func (m *Manager) DoorAt(mapID int16, x, y int32) *Door {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doors[tileKey{MapID: mapID, X: x, Y: y}]
}

// ApplyDoorRecord swaps a door's record and keeps the closed-tile block in
// lockstep: a door is closed exactly when its tile is blocked.
func (m *Manager) ApplyDoorRecord(mapID int16, x, y int32, rec DoorRecord) *Door {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.doors[tileKey{MapID: mapID, X: x, Y: y}]
	if d == nil {
		return nil
	}
	d.Record = rec
	if rec.Open {
		d.OpenTicks = 1
		m.doorState.Unblock(mapID, x, y)
	} else {
		d.OpenTicks = 0
		m.doorState.Block(mapID, x, y)
	}
	return d
}

// IsDoorClosed reports whether a closed door blocks the tile.
func (m *Manager) IsDoorClosed(mapID int16, x, y int32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doorState.IsClosed(mapID, x, y)
}

// OpenDoors snapshots every door currently open, with tick counters bumped.
// The auto-close system calls this once per sweep.
func (m *Manager) OpenDoors() []*Door {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Door
	for _, d := range m.doors {
		if d.Record.Open {
			d.OpenTicks++
			out = append(out, d)
		}
	}
	return out
}

// DoorCount returns the number of registered door tiles.
func (m *Manager) DoorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.doors)
}
