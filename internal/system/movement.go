package system

import (
	"github.com/l1jgo/towerdef/internal/core/ecs"
	"github.com/l1jgo/towerdef/internal/core/event"
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/world"
)

// MovementSystem advances every live unit along the flow field and retires
// units that reach the goal. Phase 3 (Movement).
type MovementSystem struct {
	world *world.State
}

func NewMovementSystem(ws *world.State) *MovementSystem {
	return &MovementSystem{world: ws}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(t *coresys.Tick) {
	field := s.world.Field()
	goal := field.Goal()
	goalPos := field.GoalWorld()
	capture := s.world.Integrator().CaptureRadius
	capture2 := capture * capture

	s.world.EachUnit(func(h ecs.Handle, u *world.Unit) {
		m := s.world.Advance(u, t.Delta)
		u.Walked += u.Position.Distance(m.Position)
		u.Position = m.Position
		u.Velocity = m.Velocity
		u.Trail.Record(u.Position)

		if m.Crossed == 0 {
			return
		}
		u.Current = m.Previous
		u.Next = m.Waypoint
		if u.Current == goal && u.Position.DistanceSqr(goalPos) <= capture2 {
			s.world.Retire(h, event.RetireLeaked)
		}
	})
}
