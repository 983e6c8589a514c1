package system

import (
	"context"
	"time"

	coresys "github.com/gridrealm/server/internal/core/system"
	"github.com/gridrealm/server/internal/world"
)

// DoorCloseSystem closes doors left open past the configured number of sweep
// ticks.
type DoorCloseSystem struct {
	doors    *world.DoorService
	maxTicks int
}

func NewDoorCloseSystem(doors *world.DoorService, maxTicks int) *DoorCloseSystem {
	return &DoorCloseSystem{doors: doors, maxTicks: maxTicks}
}

func (s *DoorCloseSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *DoorCloseSystem) Update(_ time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.doors.CloseExpired(ctx, s.maxTicks)
}
