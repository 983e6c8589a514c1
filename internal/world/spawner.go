package world

import (
	"context"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/data"
)

// spawnOffsets are probed in order when the requested tile is taken. Spawn
// entries with Count > 1 need somewhere to put the extra copies.
var spawnOffsets = [...][2]int32{
	{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{2, 0}, {-2, 0}, {0, 2}, {0, -2},
}

// SpawnNpcs places NPCs onto the world from the boot spawn list. Each entry
// spawns Count copies at or near its tile. Entries referencing unknown
// templates or tiles with no free spot nearby are logged and skipped; a bad
// spawn line must not keep the server from booting.
func SpawnNpcs(ctx context.Context, mgr *Manager, table *data.NpcTable, spawns []data.SpawnEntry, log *zap.Logger) int {
	placed := 0
	for _, sp := range spawns {
		tpl := table.Get(sp.NpcID)
		if tpl == nil {
			log.Error("spawn references unknown npc template",
				zap.Int32("npc_id", sp.NpcID), zap.Int16("map_id", sp.MapID))
			continue
		}
		if err := mgr.EnsureMapLoaded(ctx, sp.MapID); err != nil {
			log.Error("spawn map load failed",
				zap.Int16("map_id", sp.MapID), zap.Error(err))
			continue
		}

		count := sp.Count
		if count < 1 {
			count = 1
		}
		for i := 0; i < count; i++ {
			if spawnOne(mgr, tpl, sp, log) {
				placed++
			}
		}
	}
	return placed
}

func spawnOne(mgr *Manager, tpl *data.NpcTemplate, sp data.SpawnEntry, log *zap.Logger) bool {
	for _, off := range spawnOffsets {
		x, y := sp.X+off[0], sp.Y+off[1]
		if !mgr.CanMoveTo(sp.MapID, x, y) {
			continue
		}
		n := &NpcInfo{
			InstanceID: NextNpcInstanceID(),
			NpcID:      tpl.NpcID,
			Name:       tpl.Name,
			GfxID:      tpl.GfxID,
			MapID:      sp.MapID,
			X:          x,
			Y:          y,
			Heading:    sp.Heading,
		}
		if err := mgr.AddNpc(n); err != nil {
			// Lost the race for the tile; try the next offset.
			continue
		}
		return true
	}
	log.Error("no free tile for spawn",
		zap.Int32("npc_id", sp.NpcID),
		zap.Int16("map_id", sp.MapID),
		zap.Int32("x", sp.X), zap.Int32("y", sp.Y))
	return false
}
