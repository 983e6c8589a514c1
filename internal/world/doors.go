package world

import "sync/atomic"

// doorIDCounter generates unique object IDs for doors.
// Starts at 500_000_000 to avoid collision with player and NPC id ranges.
var doorIDCounter atomic.Int32

func init() {
	doorIDCounter.Store(500_000_000)
}

// NextDoorID returns a unique object id for a door.
func NextDoorID() int32 {
	return doorIDCounter.Add(1)
}

// DoorRecord is the persisted state of one door tile: its catalog identity,
// both graphics, the current open/closed flag, and the optional key.
type DoorRecord struct {
	ItemID    int32
	ClosedGfx int32
	OpenGfx   int32
	Open      bool
	KeyItemID int32
}

// CurrentGfx returns the graphic the clients should currently see.
func (r DoorRecord) CurrentGfx() int32 {
	if r.Open {
		return r.OpenGfx
	}
	return r.ClosedGfx
}

// Flipped returns the complementary record.
func (r DoorRecord) Flipped() DoorRecord {
	r.Open = !r.Open
	return r
}

// Door is one live door tile. Wide doors are two Door values on adjacent x
// tiles sharing the same ItemID.
type Door struct {
	ID     int32 // client object id
	MapID  int16
	X, Y   int32
	Record DoorRecord

	// Sweep ticks since the door was opened by interaction; 0 while closed.
	// Used by the auto-close system.
	OpenTicks int
}

// DoorState tracks which tiles are blocked by a closed door. An entry exists
// only while the door is closed; the open/default state is "absent".
type DoorState struct {
	closed map[tileKey]struct{}
}

func NewDoorState() *DoorState {
	return &DoorState{closed: make(map[tileKey]struct{})}
}

// Block marks a tile as closed-door-blocked.
func (d *DoorState) Block(mapID int16, x, y int32) {
	d.closed[tileKey{MapID: mapID, X: x, Y: y}] = struct{}{}
}

// Unblock clears the closed-door block on a tile.
func (d *DoorState) Unblock(mapID int16, x, y int32) {
	delete(d.closed, tileKey{MapID: mapID, X: x, Y: y})
}

// IsClosed reports whether a closed door blocks the tile.
func (d *DoorState) IsClosed(mapID int16, x, y int32) bool {
	_, ok := d.closed[tileKey{MapID: mapID, X: x, Y: y}]
	return ok
}

// Count returns the number of closed-door tiles.
func (d *DoorState) Count() int {
	return len(d.closed)
}
