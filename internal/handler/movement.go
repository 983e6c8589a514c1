package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
)

// HandleMove processes a one-tile step. Exit tiles are checked before the
// legality check: they are statically blocked, so stepping onto one means
// "take the exit", not "move there".
func HandleMove(sess *net.Session, r *packet.Reader, deps *Deps) {
	x := r.ReadD()
	y := r.ReadD()
	heading := int16(r.ReadC())

	p := deps.Mgr.GetPlayer(sess.UserID)
	if p == nil {
		return
	}

	if dest, ok := deps.Mgr.GetExitTile(p.MapID, x, y); ok {
		if err := deps.Trans.Transfer(context.Background(), p, dest, heading); err != nil {
			deps.Log.Error("map transfer failed",
				zap.Int32("user_id", p.UserID),
				zap.Int16("to_map", dest.MapID),
				zap.Error(err))
			sess.Close()
		}
		return
	}

	if !deps.Mgr.TryMovePlayer(p.UserID, x, y, heading) {
		// Snap the client back to the authoritative position.
		sendMoveReject(sess, p.X, p.Y, p.Heading)
		return
	}

	deps.Bcast.CharacterMove(p.MapID, p)
}

func sendMoveReject(sess *net.Session, x, y int32, heading int16) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_MOVE_REJECT)
	w.WriteD(x)
	w.WriteD(y)
	w.WriteC(byte(heading))
	sess.Send(w.Bytes())
}
