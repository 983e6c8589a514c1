package handler

import (
	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
)

// HandleChangeHeading turns the player in place without moving. Observers
// get the regular move broadcast with the unchanged position.
func HandleChangeHeading(sess *net.Session, r *packet.Reader, deps *Deps) {
	heading := int16(r.ReadC())

	if !deps.Mgr.SetPlayerHeading(sess.UserID, heading) {
		return
	}
	if p := deps.Mgr.GetPlayer(sess.UserID); p != nil {
		deps.Bcast.CharacterMove(p.MapID, p)
	}
}
