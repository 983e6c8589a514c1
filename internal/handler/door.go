package handler

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
	"github.com/gridrealm/server/internal/world"
)

// HandleDoorToggle opens or closes the door on the given tile. The door must
// be on the player's current map.
func HandleDoorToggle(sess *net.Session, r *packet.Reader, deps *Deps) {
	x := r.ReadD()
	y := r.ReadD()

	p := deps.Mgr.GetPlayer(sess.UserID)
	if p == nil {
		return
	}

	err := deps.Doors.Toggle(context.Background(), p.MapID, x, y)
	switch {
	case err == nil:
	case errors.Is(err, world.ErrDoorLocked):
		deps.Log.Debug("keyed door refused toggle",
			zap.Int32("user_id", p.UserID),
			zap.Int16("map", p.MapID), zap.Int32("x", x), zap.Int32("y", y))
	default:
		deps.Log.Debug("door toggle failed",
			zap.Int32("user_id", p.UserID), zap.Error(err))
	}
}
