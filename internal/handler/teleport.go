package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
	"github.com/gridrealm/server/internal/world"
)

// HandleTeleport jumps the player to a target tile. Same-map jumps use the
// short teleport sequence; a different map runs the full transfer.
func HandleTeleport(sess *net.Session, r *packet.Reader, deps *Deps) {
	mapID := int16(r.ReadH())
	x := r.ReadD()
	y := r.ReadD()
	heading := int16(r.ReadC())

	p := deps.Mgr.GetPlayer(sess.UserID)
	if p == nil {
		return
	}

	if mapID != p.MapID {
		dest := world.Destination{MapID: mapID, X: x, Y: y}
		if err := deps.Trans.Transfer(context.Background(), p, dest, heading); err != nil {
			deps.Log.Error("teleport transfer failed",
				zap.Int32("user_id", p.UserID), zap.Int16("to_map", mapID), zap.Error(err))
			sess.Close()
		}
		return
	}

	if !deps.Mgr.CanMoveTo(mapID, x, y) {
		sendMoveReject(sess, p.X, p.Y, p.Heading)
		return
	}

	if err := deps.Trans.Teleport(context.Background(), p, x, y, heading); err != nil {
		deps.Log.Error("teleport failed",
			zap.Int32("user_id", p.UserID), zap.Error(err))
		sess.Close()
	}
}
