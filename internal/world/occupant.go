package world

import "fmt"

// OccupantKind discriminates the two entity kinds that can hold a tile.
type OccupantKind uint8

const (
	OccupantNone OccupantKind = iota
	OccupantPlayer
	OccupantNpc
)

// Occupant identifies the single entity holding a tile: a player by user id
// or an NPC by spawn instance id. The zero value means "empty".
type Occupant struct {
	Kind OccupantKind
	ID   int32
}

// PlayerOccupant tags a player user id.
func PlayerOccupant(userID int32) Occupant {
	return Occupant{Kind: OccupantPlayer, ID: userID}
}

// NpcOccupant tags an NPC instance id.
func NpcOccupant(instanceID int32) Occupant {
	return Occupant{Kind: OccupantNpc, ID: instanceID}
}

// IsZero reports whether no occupant is set.
func (o Occupant) IsZero() bool {
	return o.Kind == OccupantNone
}

// String renders the occupant for logs and diagnostics.
func (o Occupant) String() string {
	switch o.Kind {
	case OccupantPlayer:
		return fmt.Sprintf("player:%d", o.ID)
	case OccupantNpc:
		return fmt.Sprintf("npc:%d", o.ID)
	default:
		return "none"
	}
}
