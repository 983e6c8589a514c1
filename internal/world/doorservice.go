package world

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/gridrealm/server/internal/data"
)

// ErrDoorLocked is returned when a keyed door is toggled by plain
// interaction.
var ErrDoorLocked = errors.New("door requires a key")

// DoorStore persists per-tile door state so doors survive restarts.
type DoorStore interface {
	LoadDoorState(ctx context.Context, mapID int16, x, y int32) (DoorRecord, bool, error)
	SaveDoorState(ctx context.Context, mapID int16, x, y int32, rec DoorRecord) error
}

// DoorService owns the door toggle protocol: key check, flip, companion-tile
// detection, persistence, and the client-visible graphic swap. The block on
// the tile and the graphic always change together.
type DoorService struct {
	mgr     *Manager
	catalog *data.DoorCatalog
	store   DoorStore
	bcast   Broadcaster
	log     *zap.Logger
}

func NewDoorService(mgr *Manager, catalog *data.DoorCatalog, store DoorStore, bcast Broadcaster, log *zap.Logger) *DoorService {
	return &DoorService{mgr: mgr, catalog: catalog, store: store, bcast: bcast, log: log}
}

// LoadPlacements seeds live doors from the static placement list, preferring
// persisted per-tile state over the catalog default. Returns the number of
// door tiles registered.
func (s *DoorService) LoadPlacements(ctx context.Context) (int, error) {
	n := 0
	for _, pl := range s.catalog.Placements() {
		spec := s.catalog.ByGfx(pl.Gfx)
		if spec == nil {
			s.log.Warn("door placement with unknown gfx",
				zap.Int16("map", pl.MapID), zap.Int32("x", pl.X), zap.Int32("y", pl.Y),
				zap.Int32("gfx", pl.Gfx))
			continue
		}
		rec := recordFromSpec(spec, !pl.Closed)
		if s.store != nil {
			saved, ok, err := s.store.LoadDoorState(ctx, pl.MapID, pl.X, pl.Y)
			if err != nil {
				return n, fmt.Errorf("load door state (%d,%d,%d): %w", pl.MapID, pl.X, pl.Y, err)
			}
			if ok {
				rec = saved
			}
		}
		s.mgr.RegisterDoor(&Door{
			ID:     NextDoorID(),
			MapID:  pl.MapID,
			X:      pl.X,
			Y:      pl.Y,
			Record: rec,
		})
		n++
	}
	return n, nil
}

// Toggle flips a door between open and closed. Keyed doors refuse plain
// interaction. Wide doors span two adjacent x tiles; both flip together, and
// persistence happens before any in-world state changes so a store failure
// leaves the door untouched.
func (s *DoorService) Toggle(ctx context.Context, mapID int16, x, y int32) error {
	d := s.mgr.DoorAt(mapID, x, y)
	if d == nil {
		return fmt.Errorf("no door at (%d,%d,%d)", mapID, x, y)
	}
	if d.Record.KeyItemID != 0 {
		return ErrDoorLocked
	}

	tiles := []*Door{d}
	if c := s.companion(d); c != nil {
		tiles = append(tiles, c)
	}

	next := d.Record.Flipped()
	if s.store != nil {
		for _, t := range tiles {
			if err := s.store.SaveDoorState(ctx, t.MapID, t.X, t.Y, next); err != nil {
				return fmt.Errorf("save door state (%d,%d,%d): %w", t.MapID, t.X, t.Y, err)
			}
		}
	}

	for _, t := range tiles {
		s.mgr.ApplyDoorRecord(t.MapID, t.X, t.Y, next)
		s.bcast.ObjectDelete(t.MapID, t.ID)
		s.bcast.ObjectCreate(t.MapID, t.ID, next.CurrentGfx(), t.X, t.Y)
		s.bcast.BlockPosition(t.MapID, t.X, t.Y, !next.Open)
	}
	s.log.Debug("door toggled",
		zap.Int16("map", mapID), zap.Int32("x", x), zap.Int32("y", y),
		zap.Bool("open", next.Open), zap.Int("tiles", len(tiles)))
	return nil
}

// companion finds the second tile of a wide door by probing x-1 and x+1 for
// a door with the same item identity.
func (s *DoorService) companion(d *Door) *Door {
	for _, dx := range []int32{-1, 1} {
		if c := s.mgr.DoorAt(d.MapID, d.X+dx, d.Y); c != nil && c.Record.ItemID == d.Record.ItemID {
			return c
		}
	}
	return nil
}

// CloseExpired closes doors that have stayed open past maxTicks sweep
// rounds. Called once per sweep by the auto-close system. maxTicks <= 0
// disables auto-close.
func (s *DoorService) CloseExpired(ctx context.Context, maxTicks int) {
	if maxTicks <= 0 {
		return
	}
	for _, d := range s.mgr.OpenDoors() {
		if d.OpenTicks <= maxTicks {
			continue
		}
		// Toggling one tile of a wide door closes its companion too; skip
		// entries already closed earlier in this sweep.
		if !d.Record.Open {
			continue
		}
		if err := s.Toggle(ctx, d.MapID, d.X, d.Y); err != nil {
			s.log.Warn("auto-close failed",
				zap.Int16("map", d.MapID), zap.Int32("x", d.X), zap.Int32("y", d.Y),
				zap.Error(err))
		}
	}
}

func recordFromSpec(spec *data.DoorSpec, open bool) DoorRecord {
	return DoorRecord{
		ItemID:    spec.ItemID,
		ClosedGfx: spec.ClosedGfx,
		OpenGfx:   spec.OpenGfx,
		Open:      open,
		KeyItemID: spec.KeyItemID,
	}
}
