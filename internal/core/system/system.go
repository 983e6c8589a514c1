package system

import "time"

// Phase defines execution ordering within a single sweep tick.
type Phase int

const (
	PhaseUpdate  Phase = iota // world upkeep: door auto-close, ground expiry
	PhasePersist              // batched saves: positions, ground items
)

// System is one periodic job driven by the Runner.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
