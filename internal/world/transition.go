package world

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PositionStore persists character positions. The persist layer implements
// it.
type PositionStore interface {
	SavePosition(ctx context.Context, userID int32, mapID int16, x, y int32, heading int16) error
}

// Broadcaster fans packets out to every session on a map, optionally
// excluding the actor. The handler layer implements it.
type Broadcaster interface {
	CharacterCreate(mapID int16, p *PlayerInfo, exclude int32)
	CharacterRemove(mapID int16, userID int32, exclude int32)
	CharacterMove(mapID int16, p *PlayerInfo)
	NpcCreate(mapID int16, n *NpcInfo)
	ObjectCreate(mapID int16, objectID, gfx int32, x, y int32)
	ObjectDelete(mapID int16, objectID int32)
	BlockPosition(mapID int16, x, y int32, blocked bool)
}

// EnterHook runs after a player has fully arrived on a map. The scripting
// engine implements it; nil disables hooks.
type EnterHook interface {
	PlayerEnteredMap(p *PlayerInfo, mapID int16)
}

// Transitioner relocates a player between two coherent world snapshots.
// Every relocation runs the same phase list; a phase error aborts the rest
// and propagates, leaving the caller to re-drive or disconnect. The phase
// order is a contract with the client: position before map load, or other
// players before the map switch, desyncs the renderer.
type Transitioner struct {
	mgr       *Manager
	bcast     Broadcaster
	positions PositionStore
	hook      EnterHook
	loadDelay time.Duration
	log       *zap.Logger
}

func NewTransitioner(mgr *Manager, bcast Broadcaster, positions PositionStore, hook EnterHook, loadDelay time.Duration, log *zap.Logger) *Transitioner {
	return &Transitioner{
		mgr:       mgr,
		bcast:     bcast,
		positions: positions,
		hook:      hook,
		loadDelay: loadDelay,
		log:       log,
	}
}

// Transfer moves a player to another map.
func (t *Transitioner) Transfer(ctx context.Context, p *PlayerInfo, dest Destination, heading int16) error {
	oldMap := p.MapID

	// Phase 1: tell the client which map to load.
	p.Conn.SendChangeMap(dest.MapID, dest.X, dest.Y)

	// Phase 2: fixed pause for client-side map load. Deliberate real time,
	// not a retry loop.
	time.Sleep(t.loadDelay)

	// Phase 3: persist the new position.
	if err := t.savePosition(ctx, p.UserID, dest.MapID, dest.X, dest.Y, heading); err != nil {
		return err
	}

	// Phase 4: the client's own new position.
	p.Conn.SendPosUpdate(dest.X, dest.Y, heading)

	// Phase 5: leave the old map's indices.
	t.mgr.RemovePlayer(p.UserID)

	// Phase 6: old-map observers see the departure.
	t.bcast.CharacterRemove(oldMap, p.UserID, p.UserID)

	// Phases 7-12: arrive on the new map.
	if err := t.arrive(ctx, p, dest.MapID, dest.X, dest.Y, heading, true); err != nil {
		return err
	}

	t.log.Info("player transferred",
		zap.Int32("user_id", p.UserID),
		zap.Int16("from", oldMap), zap.Int16("to", dest.MapID),
		zap.Int32("x", dest.X), zap.Int32("y", dest.Y))
	return nil
}

// Spawn places a logging-in player into the world. No prior map to leave, so
// the change-map round trip and the departure phases are skipped.
func (t *Transitioner) Spawn(ctx context.Context, p *PlayerInfo) error {
	if err := t.savePosition(ctx, p.UserID, p.MapID, p.X, p.Y, p.Heading); err != nil {
		return err
	}
	p.Conn.SendPosUpdate(p.X, p.Y, p.Heading)
	if err := t.arrive(ctx, p, p.MapID, p.X, p.Y, p.Heading, true); err != nil {
		return err
	}
	t.log.Info("player spawned",
		zap.Int32("user_id", p.UserID), zap.String("name", p.Name),
		zap.Int16("map", p.MapID), zap.Int32("x", p.X), zap.Int32("y", p.Y))
	return nil
}

// Teleport jumps a player within their current map. The client keeps its map
// loaded, so no change-map pause and no full re-sync of other entities, but
// observers still get remove+create so the jump is visible.
func (t *Transitioner) Teleport(ctx context.Context, p *PlayerInfo, x, y int32, heading int16) error {
	mapID := p.MapID

	if err := t.savePosition(ctx, p.UserID, mapID, x, y, heading); err != nil {
		return err
	}
	p.Conn.SendPosUpdate(x, y, heading)

	t.mgr.RemovePlayer(p.UserID)
	t.bcast.CharacterRemove(mapID, p.UserID, p.UserID)

	return t.arrive(ctx, p, mapID, x, y, heading, false)
}

// arrive runs the arrival half of the phase list: claim the tile, show the
// player to itself, optionally re-sync the map's contents, then announce to
// observers.
func (t *Transitioner) arrive(ctx context.Context, p *PlayerInfo, mapID int16, x, y int32, heading int16, fullSync bool) error {
	// Phase 7: join the new map's indices; this claims the tile.
	if err := t.mgr.EnsureMapLoaded(ctx, mapID); err != nil {
		return fmt.Errorf("load map %d: %w", mapID, err)
	}
	p.MapID, p.X, p.Y, p.Heading = mapID, x, y, heading
	if err := t.mgr.AddPlayer(p); err != nil {
		return fmt.Errorf("claim tile (%d,%d,%d) for player %d: %w", mapID, x, y, p.UserID, err)
	}

	// Phase 8: the player's own appearance.
	p.Conn.SendCharacterCreate(p)

	if fullSync {
		// Phase 9: every other player already on the map.
		for _, other := range t.mgr.PlayersOnMap(mapID) {
			if other.UserID == p.UserID {
				continue
			}
			p.Conn.SendCharacterCreate(other)
		}
		// Phase 10: every NPC.
		for _, n := range t.mgr.NpcsOnMap(mapID) {
			p.Conn.SendNpcCreate(n)
		}
		// Phase 11: every ground item.
		for _, it := range t.mgr.GroundItemsOnMap(mapID) {
			p.Conn.SendObjectCreate(it.ObjectID, it.Gfx, mapID, it.X, it.Y)
		}
	}

	// Phase 12: new-map observers see the arrival.
	t.bcast.CharacterCreate(mapID, p, p.UserID)

	if t.hook != nil {
		t.hook.PlayerEnteredMap(p, mapID)
	}
	return nil
}

// PersistPosition saves a player's current position, outside any transition.
func (t *Transitioner) PersistPosition(ctx context.Context, p *PlayerInfo) error {
	return t.savePosition(ctx, p.UserID, p.MapID, p.X, p.Y, p.Heading)
}

func (t *Transitioner) savePosition(ctx context.Context, userID int32, mapID int16, x, y int32, heading int16) error {
	if t.positions == nil {
		return nil
	}
	if err := t.positions.SavePosition(ctx, userID, mapID, x, y, heading); err != nil {
		return fmt.Errorf("persist position for %d: %w", userID, err)
	}
	return nil
}
