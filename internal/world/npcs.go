package world

import (
	"fmt"
	"sync/atomic"
)

// npcIDCounter generates unique spawn instance IDs. Starts at 200_000_000 so
// NPC ids never collide with character ids from the database.
var npcIDCounter atomic.Int32

func init() {
	npcIDCounter.Store(200_000_000)
}

// NextNpcInstanceID returns a unique instance id for a spawned NPC.
func NextNpcInstanceID() int32 {
	return npcIDCounter.Add(1)
}

// NpcInfo is one spawned NPC instance.
type NpcInfo struct {
	InstanceID int32
	NpcID      int32
	Name       string
	GfxID      int32
	MapID      int16
	X, Y       int32
	Heading    int16
}

// NpcIndex tracks spawned NPCs and their tiles. Not self-locking.
type NpcIndex struct {
	npcs map[int32]*NpcInfo
	grid *TileOccupation
}

func NewNpcIndex(grid *TileOccupation) *NpcIndex {
	return &NpcIndex{npcs: make(map[int32]*NpcInfo), grid: grid}
}

// Add registers an NPC and claims its tile. Spawning onto an occupied tile is
// an error; the caller decides whether to retry elsewhere or drop the spawn.
func (idx *NpcIndex) Add(n *NpcInfo) error {
	if _, ok := idx.npcs[n.InstanceID]; ok {
		return fmt.Errorf("npc instance %d already spawned", n.InstanceID)
	}
	if err := idx.grid.Occupy(n.MapID, n.X, n.Y, NpcOccupant(n.InstanceID)); err != nil {
		return err
	}
	idx.npcs[n.InstanceID] = n
	return nil
}

// Remove despawns an NPC and vacates its tile.
func (idx *NpcIndex) Remove(instanceID int32) {
	n, ok := idx.npcs[instanceID]
	if !ok {
		return
	}
	idx.grid.Release(n.MapID, n.X, n.Y)
	delete(idx.npcs, instanceID)
}

// Get returns an NPC by instance id, or nil.
func (idx *NpcIndex) Get(instanceID int32) *NpcInfo {
	return idx.npcs[instanceID]
}

// OnMap returns all NPCs currently on a map.
func (idx *NpcIndex) OnMap(mapID int16) []*NpcInfo {
	var out []*NpcInfo
	for _, n := range idx.npcs {
		if n.MapID == mapID {
			out = append(out, n)
		}
	}
	return out
}

// Count returns the number of spawned NPCs.
func (idx *NpcIndex) Count() int {
	return len(idx.npcs)
}
