package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/config"
	"github.com/gridrealm/server/internal/net"
	"github.com/gridrealm/server/internal/net/packet"
	"github.com/gridrealm/server/internal/persist"
	"github.com/gridrealm/server/internal/world"
)

// CharacterStore loads and creates characters. *persist.CharacterRepo
// implements it; tests substitute an in-memory fake.
type CharacterStore interface {
	GetOrCreate(ctx context.Context, name string) (*persist.CharacterRow, error)
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger

	Mgr   *world.Manager
	Doors *world.DoorService
	Trans *world.Transitioner
	Bcast world.Broadcaster
	Chars CharacterStore
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	reg.Register(packet.C_OPCODE_ENTER_WORLD,
		[]packet.SessionState{packet.StateConnected},
		func(sess any, r *packet.Reader) {
			HandleEnterWorld(sess.(*net.Session), r, deps)
		},
	)

	inWorldStates := []packet.SessionState{packet.StateInWorld}

	reg.Register(packet.C_OPCODE_MOVE, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleMove(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_HEADING, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleChangeHeading(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_DROP_ITEM, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleDropItem(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_PICKUP, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandlePickupItem(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_DOOR_TOGGLE, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleDoorToggle(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_TELEPORT, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleTeleport(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_TILE_INFO, inWorldStates,
		func(sess any, r *packet.Reader) {
			HandleTileInfo(sess.(*net.Session), r, deps)
		},
	)

	reg.Register(packet.C_OPCODE_QUIT,
		[]packet.SessionState{packet.StateConnected, packet.StateInWorld},
		func(sess any, r *packet.Reader) {
			HandleQuit(sess.(*net.Session), r, deps)
		},
	)
}
