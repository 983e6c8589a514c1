package handler

import "github.com/gridrealm/server/internal/world"

// Messenger fans world events out to every session on a map by replaying the
// per-player send primitives. It implements world.Broadcaster.
type Messenger struct {
	mgr *world.Manager
}

func NewMessenger(mgr *world.Manager) *Messenger {
	return &Messenger{mgr: mgr}
}

func (m *Messenger) eachOnMap(mapID int16, exclude int32, fn func(conn world.ClientConn)) {
	for _, p := range m.mgr.PlayersOnMap(mapID) {
		if p.UserID == exclude || p.Conn == nil {
			continue
		}
		fn(p.Conn)
	}
}

func (m *Messenger) CharacterCreate(mapID int16, p *world.PlayerInfo, exclude int32) {
	m.eachOnMap(mapID, exclude, func(conn world.ClientConn) {
		conn.SendCharacterCreate(p)
	})
}

func (m *Messenger) CharacterRemove(mapID int16, userID int32, exclude int32) {
	m.eachOnMap(mapID, exclude, func(conn world.ClientConn) {
		conn.SendCharacterRemove(userID)
	})
}

func (m *Messenger) CharacterMove(mapID int16, p *world.PlayerInfo) {
	m.eachOnMap(mapID, p.UserID, func(conn world.ClientConn) {
		conn.SendCharacterMove(p.UserID, p.X, p.Y, p.Heading)
	})
}

func (m *Messenger) NpcCreate(mapID int16, n *world.NpcInfo) {
	m.eachOnMap(mapID, 0, func(conn world.ClientConn) {
		conn.SendNpcCreate(n)
	})
}

func (m *Messenger) ObjectCreate(mapID int16, objectID, gfx int32, x, y int32) {
	m.eachOnMap(mapID, 0, func(conn world.ClientConn) {
		conn.SendObjectCreate(objectID, gfx, mapID, x, y)
	})
}

func (m *Messenger) ObjectDelete(mapID int16, objectID int32) {
	m.eachOnMap(mapID, 0, func(conn world.ClientConn) {
		conn.SendObjectDelete(objectID)
	})
}

func (m *Messenger) BlockPosition(mapID int16, x, y int32, blocked bool) {
	m.eachOnMap(mapID, 0, func(conn world.ClientConn) {
		conn.SendBlockPosition(mapID, x, y, blocked)
	})
}
