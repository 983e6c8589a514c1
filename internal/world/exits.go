package world

// Destination is where an exit tile leads.
type Destination struct {
	MapID int16
	X, Y  int32
}

// ExitIndex maps exit tiles to their destinations. Populated once per map
// when its metadata is loaded, read-only afterwards.
type ExitIndex struct {
	exits map[tileKey]Destination
}

func NewExitIndex() *ExitIndex {
	return &ExitIndex{exits: make(map[tileKey]Destination)}
}

// Add registers an exit tile.
func (e *ExitIndex) Add(mapID int16, x, y int32, dest Destination) {
	e.exits[tileKey{MapID: mapID, X: x, Y: y}] = dest
}

// ExitAt returns the destination for a tile, if it is an exit.
func (e *ExitIndex) ExitAt(mapID int16, x, y int32) (Destination, bool) {
	d, ok := e.exits[tileKey{MapID: mapID, X: x, Y: y}]
	return d, ok
}

// Count returns the number of registered exit tiles.
func (e *ExitIndex) Count() int {
	return len(e.exits)
}
