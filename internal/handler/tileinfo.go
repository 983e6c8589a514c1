package handler

import (
	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
)

// HandleTileInfo answers a tile inspection query with the block reason and,
// when occupied, the occupant. Diagnostic only.
func HandleTileInfo(sess *net.Session, r *packet.Reader, deps *Deps) {
	x := r.ReadD()
	y := r.ReadD()

	p := deps.Mgr.GetPlayer(sess.UserID)
	if p == nil {
		return
	}

	reason, occ := deps.Mgr.TileBlockReason(p.MapID, x, y)

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_TILE_INFO)
	w.WriteD(x)
	w.WriteD(y)
	w.WriteC(byte(reason))
	w.WriteS(occ.String())
	sess.Send(w.Bytes())
}
