package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
	"github.com/gridrealm/server/internal/world"
)

// HandleEnterWorld loads (or creates) the named character and spawns it into
// the world at its persisted position.
func HandleEnterWorld(sess *net.Session, r *packet.Reader, deps *Deps) {
	name := r.ReadS()
	if name == "" {
		deps.Log.Warn("enter world with empty name", zap.Uint64("session", sess.ID))
		sendEnterFail(sess, "character name required")
		return
	}

	row, err := deps.Chars.GetOrCreate(context.Background(), name)
	if err != nil {
		deps.Log.Error("character load failed", zap.String("name", name), zap.Error(err))
		sendEnterFail(sess, "character unavailable")
		return
	}

	p := &world.PlayerInfo{
		UserID:  row.ID,
		Name:    row.Name,
		MapID:   row.MapID,
		X:       row.X,
		Y:       row.Y,
		Heading: row.Heading,
		Conn:    NewPlayerConn(sess),
	}

	// Acknowledge before the spawn sequence so the client sees ENTER_OK
	// ahead of its first position update.
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ENTER_OK)
	w.WriteD(row.ID)
	sess.Send(w.Bytes())

	if err := deps.Trans.Spawn(context.Background(), p); err != nil {
		deps.Log.Warn("spawn failed",
			zap.String("name", name),
			zap.Int16("map", p.MapID), zap.Int32("x", p.X), zap.Int32("y", p.Y),
			zap.Error(err))
		sendEnterFail(sess, "spawn tile unavailable")
		sess.Close()
		return
	}

	sess.CharName = row.Name
	sess.UserID = row.ID
	sess.SetState(packet.StateInWorld)
}

func sendEnterFail(sess *net.Session, reason string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_ENTER_FAIL)
	w.WriteS(reason)
	sess.Send(w.Bytes())
}
