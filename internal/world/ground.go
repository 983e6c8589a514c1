package world

import (
	"context"
	"sync/atomic"
	"time"
)

// groundIDCounter generates unique object IDs for ground items.
// Starts at 700_000_000 to stay clear of every other id range.
var groundIDCounter atomic.Int32

func init() {
	groundIDCounter.Store(700_000_000)
}

// NextGroundObjectID returns a unique object id for a dropped item.
func NextGroundObjectID() int32 {
	return groundIDCounter.Add(1)
}

// GroundItem is one item stack lying on a tile.
type GroundItem struct {
	ObjectID  int32
	ItemID    int32
	Count     int32
	Gfx       int32
	Name      string
	OwnerID   int32 // dropping player, 0 for world spawns
	MapID     int16
	X, Y      int32
	DroppedAt time.Time
}

// GroundStore persists ground items per map. The persist layer implements it.
type GroundStore interface {
	LoadGroundItems(ctx context.Context, mapID int16) ([]*GroundItem, error)
	SaveGroundItems(ctx context.Context, mapID int16, items []*GroundItem) error
}

// GroundItemIndex tracks items lying on the ground as an ordered list per
// tile (drop order). Maps are loaded lazily from the store the first time
// anything touches them, and marked dirty on every mutation so the
// persistence sweep knows what to flush. Ground items never participate in
// occupancy. Not self-locking.
type GroundItemIndex struct {
	store      GroundStore
	maxPerTile int

	byTile map[tileKey][]*GroundItem
	loaded map[int16]bool
	dirty  map[int16]bool
}

func NewGroundItemIndex(store GroundStore, maxPerTile int) *GroundItemIndex {
	return &GroundItemIndex{
		store:      store,
		maxPerTile: maxPerTile,
		byTile:     make(map[tileKey][]*GroundItem),
		loaded:     make(map[int16]bool),
		dirty:      make(map[int16]bool),
	}
}

// EnsureLoaded pulls a map's items from the store on first touch. A nil store
// means purely in-memory operation. The map counts as loaded only after the
// store call succeeds; a failed load is retried on the next touch so a store
// hiccup can never leave a lossy snapshot that a later flush writes back.
func (g *GroundItemIndex) EnsureLoaded(ctx context.Context, mapID int16) error {
	if g.loaded[mapID] {
		return nil
	}
	if g.store == nil {
		g.loaded[mapID] = true
		return nil
	}
	persisted, err := g.store.LoadGroundItems(ctx, mapID)
	if err != nil {
		return err
	}
	for _, it := range persisted {
		k := tileKey{MapID: it.MapID, X: it.X, Y: it.Y}
		g.byTile[k] = append(g.byTile[k], it)
	}
	g.loaded[mapID] = true
	return nil
}

// Drop places an item on a tile. Returns false without touching anything when
// the tile already holds the per-tile maximum.
func (g *GroundItemIndex) Drop(ctx context.Context, item *GroundItem) (bool, error) {
	if err := g.EnsureLoaded(ctx, item.MapID); err != nil {
		return false, err
	}
	k := tileKey{MapID: item.MapID, X: item.X, Y: item.Y}
	if g.maxPerTile > 0 && len(g.byTile[k]) >= g.maxPerTile {
		return false, nil
	}
	g.byTile[k] = append(g.byTile[k], item)
	g.dirty[item.MapID] = true
	return true, nil
}

// RemoveAt pops the item at index from a tile's list (0 = oldest). Returns
// nil when the tile holds no item at that index.
func (g *GroundItemIndex) RemoveAt(ctx context.Context, mapID int16, x, y int32, index int) (*GroundItem, error) {
	if err := g.EnsureLoaded(ctx, mapID); err != nil {
		return nil, err
	}
	k := tileKey{MapID: mapID, X: x, Y: y}
	items := g.byTile[k]
	if index < 0 || index >= len(items) {
		return nil, nil
	}
	it := items[index]
	items = append(items[:index], items[index+1:]...)
	if len(items) == 0 {
		delete(g.byTile, k)
	} else {
		g.byTile[k] = items
	}
	g.dirty[mapID] = true
	return it, nil
}

// TakeObject removes and returns an item by object id, or nil if it is gone.
// Concurrent pickup of the same object resolves to exactly one winner because
// the caller holds the world lock across the lookup and the delete.
func (g *GroundItemIndex) TakeObject(ctx context.Context, mapID int16, objectID int32) (*GroundItem, error) {
	if err := g.EnsureLoaded(ctx, mapID); err != nil {
		return nil, err
	}
	for k, items := range g.byTile {
		if k.MapID != mapID {
			continue
		}
		for i, it := range items {
			if it.ObjectID == objectID {
				return g.RemoveAt(ctx, mapID, k.X, k.Y, i)
			}
		}
	}
	return nil, nil
}

// ItemsAt returns the items lying on one tile, oldest first.
func (g *GroundItemIndex) ItemsAt(mapID int16, x, y int32) []*GroundItem {
	return g.byTile[tileKey{MapID: mapID, X: x, Y: y}]
}

// OnMap returns every item on a map.
func (g *GroundItemIndex) OnMap(mapID int16) []*GroundItem {
	var out []*GroundItem
	for k, items := range g.byTile {
		if k.MapID == mapID {
			out = append(out, items...)
		}
	}
	return out
}

// SweepExpired removes items older than ttl and returns them so the caller
// can broadcast the deletes. A zero ttl disables expiry.
func (g *GroundItemIndex) SweepExpired(now time.Time, ttl time.Duration) []*GroundItem {
	if ttl <= 0 {
		return nil
	}
	var expired []*GroundItem
	for k, items := range g.byTile {
		kept := items[:0]
		for _, it := range items {
			if now.Sub(it.DroppedAt) >= ttl {
				expired = append(expired, it)
				g.dirty[k.MapID] = true
			} else {
				kept = append(kept, it)
			}
		}
		if len(kept) == 0 {
			delete(g.byTile, k)
		} else {
			g.byTile[k] = kept
		}
	}
	return expired
}

// FlushDirty persists every map mutated since the last flush.
func (g *GroundItemIndex) FlushDirty(ctx context.Context) error {
	if g.store == nil {
		g.dirty = make(map[int16]bool)
		return nil
	}
	for mapID := range g.dirty {
		if err := g.store.SaveGroundItems(ctx, mapID, g.OnMap(mapID)); err != nil {
			return err
		}
		delete(g.dirty, mapID)
	}
	return nil
}
