package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
	"github.com/gridrealm/server/internal/world"
)

// HandleDropItem places an item on the player's current tile. Drops past the
// per-tile cap are rejected silently; the client sees nothing appear.
func HandleDropItem(sess *net.Session, r *packet.Reader, deps *Deps) {
	itemID := r.ReadD()
	count := r.ReadD()
	gfx := r.ReadD()
	name := r.ReadS()

	p := deps.Mgr.GetPlayer(sess.UserID)
	if p == nil {
		return
	}
	if count <= 0 {
		return
	}

	item := &world.GroundItem{
		ObjectID:  world.NextGroundObjectID(),
		ItemID:    itemID,
		Count:     count,
		Gfx:       gfx,
		Name:      name,
		OwnerID:   p.UserID,
		MapID:     p.MapID,
		X:         p.X,
		Y:         p.Y,
		DroppedAt: time.Now(),
	}

	ok, err := deps.Mgr.DropGroundItem(context.Background(), item)
	if err != nil {
		deps.Log.Error("ground drop failed", zap.Int32("user_id", p.UserID), zap.Error(err))
		return
	}
	if !ok {
		return // tile full
	}

	// Broadcast includes the dropper: object fan-outs exclude nobody.
	deps.Bcast.ObjectCreate(p.MapID, item.ObjectID, item.Gfx, item.X, item.Y)
}

// HandlePickupItem takes a ground item by object id. Exactly one of two
// racing pickers wins; the loser sees the object disappear.
func HandlePickupItem(sess *net.Session, r *packet.Reader, deps *Deps) {
	objectID := r.ReadD()

	p := deps.Mgr.GetPlayer(sess.UserID)
	if p == nil {
		return
	}

	item, err := deps.Mgr.TakeGroundObject(context.Background(), p.MapID, objectID)
	if err != nil {
		deps.Log.Error("ground pickup failed", zap.Int32("user_id", p.UserID), zap.Error(err))
		return
	}
	if item == nil {
		return // already gone
	}

	deps.Bcast.ObjectDelete(p.MapID, item.ObjectID)
}
