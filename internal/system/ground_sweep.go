package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/gridrealm/server/internal/core/system"
	"github.com/gridrealm/server/internal/world"
)

// GroundSweepSystem expires ground items past their TTL and broadcasts the
// deletes so clients drop them from view.
type GroundSweepSystem struct {
	mgr   *world.Manager
	bcast world.Broadcaster
	ttl   time.Duration
	log   *zap.Logger
}

func NewGroundSweepSystem(mgr *world.Manager, bcast world.Broadcaster, ttl time.Duration, log *zap.Logger) *GroundSweepSystem {
	return &GroundSweepSystem{mgr: mgr, bcast: bcast, ttl: ttl, log: log}
}

func (s *GroundSweepSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *GroundSweepSystem) Update(_ time.Duration) {
	expired := s.mgr.SweepExpiredGround(time.Now(), s.ttl)
	for _, it := range expired {
		s.bcast.ObjectDelete(it.MapID, it.ObjectID)
	}
	if len(expired) > 0 {
		s.log.Debug("ground items expired", zap.Int("count", len(expired)))
	}
}
