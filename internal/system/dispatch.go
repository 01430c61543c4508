package system

import (
	"github.com/l1jgo/towerdef/internal/core/event"
	coresys "github.com/l1jgo/towerdef/internal/core/system"
)

// EventDispatchSystem swaps the bus buffers and delivers last tick's events.
// Phase 0 (Input).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ *coresys.Tick) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
