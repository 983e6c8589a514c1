package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/gridrealm/server/internal/core/system"
	"github.com/gridrealm/server/internal/world"
)

// PersistenceSystem batches position saves for players whose position changed
// since the last flush, and writes back mutated ground-item maps.
type PersistenceSystem struct {
	mgr       *world.Manager
	positions world.PositionStore
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks
}

func NewPersistenceSystem(mgr *world.Manager, positions world.PositionStore, intervalTicks int, log *zap.Logger) *PersistenceSystem {
	return &PersistenceSystem{
		mgr:       mgr,
		positions: positions,
		interval:  intervalTicks,
		log:       log,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush saves dirty positions and mutated ground maps immediately. Called on
// every interval tick and once more at shutdown.
func (s *PersistenceSystem) Flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dirty := s.mgr.DirtyPositions()
	for _, p := range dirty {
		if err := s.positions.SavePosition(ctx, p.UserID, p.MapID, p.X, p.Y, p.Heading); err != nil {
			s.log.Error("position flush failed",
				zap.Int32("user_id", p.UserID), zap.Error(err))
		}
	}
	if len(dirty) > 0 {
		s.log.Debug("positions flushed", zap.Int("count", len(dirty)))
	}

	if err := s.mgr.FlushGround(ctx); err != nil {
		s.log.Error("ground flush failed", zap.Error(err))
	}
}

// SaveAllPlayers persists every online player's position, ignoring dirty
// flags. Shutdown safety.
func (s *PersistenceSystem) SaveAllPlayers() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, p := range s.mgr.AllPlayers() {
		if err := s.positions.SavePosition(ctx, p.UserID, p.MapID, p.X, p.Y, p.Heading); err != nil {
			s.log.Error("shutdown save failed",
				zap.Int32("user_id", p.UserID), zap.Error(err))
		}
	}
	if err := s.mgr.FlushGround(ctx); err != nil {
		s.log.Error("shutdown ground flush failed", zap.Error(err))
	}
}
