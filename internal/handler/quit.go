package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
)

// HandleQuit removes the player from the world and closes the session.
func HandleQuit(sess *net.Session, r *packet.Reader, deps *Deps) {
	Logout(sess, deps)
	sess.Close()
}

// Logout tears down a player's world presence: persist position, vacate the
// tile, tell observers. Also called by the session supervisor when a
// connection drops without a quit packet.
func Logout(sess *net.Session, deps *Deps) {
	if sess.UserID == 0 {
		return
	}
	p := deps.Mgr.GetPlayer(sess.UserID)
	if p == nil {
		return
	}

	if deps.Trans != nil {
		if err := deps.Trans.PersistPosition(context.Background(), p); err != nil {
			deps.Log.Error("logout position save failed",
				zap.Int32("user_id", p.UserID), zap.Error(err))
		}
	}

	deps.Mgr.RemovePlayer(p.UserID)
	deps.Bcast.CharacterRemove(p.MapID, p.UserID, p.UserID)
	deps.Log.Info("player logged out",
		zap.Int32("user_id", p.UserID), zap.String("name", p.Name))

	sess.UserID = 0
	sess.SetState(packet.StateConnected)
}
