package handler

import (
	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
	"github.com/gridrealm/server/internal/world"
)

// playerConn adapts a net.Session to the world layer's per-player send
// surface. It owns the wire encoding of every server packet the world core
// emits; the core only dictates the order.
type playerConn struct {
	sess *net.Session
}

func NewPlayerConn(sess *net.Session) world.ClientConn {
	return &playerConn{sess: sess}
}

func (c *playerConn) SendChangeMap(mapID int16, x, y int32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_CHANGE_MAP)
	w.WriteH(uint16(mapID))
	w.WriteD(x)
	w.WriteD(y)
	c.sess.Send(w.Bytes())
}

func (c *playerConn) SendPosUpdate(x, y int32, heading int16) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_POS_UPDATE)
	w.WriteD(x)
	w.WriteD(y)
	w.WriteC(byte(heading))
	c.sess.Send(w.Bytes())
}

func (c *playerConn) SendCharacterCreate(p *world.PlayerInfo) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_CHAR_CREATE)
	w.WriteD(p.UserID)
	w.WriteH(uint16(p.MapID))
	w.WriteD(p.X)
	w.WriteD(p.Y)
	w.WriteC(byte(p.Heading))
	w.WriteS(p.Name)
	c.sess.Send(w.Bytes())
}

func (c *playerConn) SendCharacterRemove(userID int32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_CHAR_REMOVE)
	w.WriteD(userID)
	c.sess.Send(w.Bytes())
}

func (c *playerConn) SendCharacterMove(userID int32, x, y int32, heading int16) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_CHAR_MOVE)
	w.WriteD(userID)
	w.WriteD(x)
	w.WriteD(y)
	w.WriteC(byte(heading))
	c.sess.Send(w.Bytes())
}

func (c *playerConn) SendNpcCreate(n *world.NpcInfo) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_NPC_CREATE)
	w.WriteD(n.InstanceID)
	w.WriteD(n.GfxID)
	w.WriteH(uint16(n.MapID))
	w.WriteD(n.X)
	w.WriteD(n.Y)
	w.WriteC(byte(n.Heading))
	w.WriteS(n.Name)
	c.sess.Send(w.Bytes())
}

func (c *playerConn) SendObjectCreate(objectID, gfx int32, mapID int16, x, y int32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_OBJECT_CREATE)
	w.WriteD(objectID)
	w.WriteD(gfx)
	w.WriteH(uint16(mapID))
	w.WriteD(x)
	w.WriteD(y)
	c.sess.Send(w.Bytes())
}

func (c *playerConn) SendObjectDelete(objectID int32) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_OBJECT_DELETE)
	w.WriteD(objectID)
	c.sess.Send(w.Bytes())
}

func (c *playerConn) SendBlockPosition(mapID int16, x, y int32, blocked bool) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_BLOCK_POSITION)
	w.WriteH(uint16(mapID))
	w.WriteD(x)
	w.WriteD(y)
	if blocked {
		w.WriteC(1)
	} else {
		w.WriteC(0)
	}
	c.sess.Send(w.Bytes())
}
