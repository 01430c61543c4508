package physics

import "github.com/l1jgo/towerdef/internal/geom"

const (
	DefaultSubStep       = 1.0 / 64 // seconds
	DefaultCaptureRadius = 0.25     // world units
)

// Router supplies waypoints; navigation.FlowField implements it.
type Router interface {
	NextCell(c geom.Cell) (next geom.Cell, done bool)
	CellCenter(c geom.Cell) geom.Vec2
}

// Steering holds the read-only per-class limits.
type Steering struct {
	MaxSpeed        float64
	MaxAcceleration float64
}

// Body is the kinematic state of a unit.
type Body struct {
	Position geom.Vec2
	Velocity geom.Vec2
	Current  geom.Cell // last waypoint reached
	Next     geom.Cell // waypoint being steered toward
}

// Motion is the result of Advance. Previous and Waypoint become the unit's
// Current and Next cells when Crossed > 0.
type Motion struct {
	Position geom.Vec2
	Velocity geom.Vec2
	Previous geom.Cell
	Waypoint geom.Cell
	Crossed  int
}

// Integrator advances bodies in fixed sub-steps.
type Integrator struct {
	SubStep       float64
	CaptureRadius float64
}

// DefaultIntegrator uses 1/64 s sub-steps and a 0.25 capture radius.
var DefaultIntegrator = Integrator{SubStep: DefaultSubStep, CaptureRadius: DefaultCaptureRadius}

// Advance integrates body over elapsed seconds and returns the new state.
// body is passed by value and never mutated, so the same call serves both the
// per-tick update and lead-targeting predictions.
//
// Each sub-step looks ahead by velocity*speed; once that point is inside the
// capture radius of the waypoint the router supplies the next one. The unit
// then accelerates from the look-ahead point toward the waypoint and its speed
// is capped after acceleration. A zero-length steering vector applies no
// acceleration for that sub-step.
func (in Integrator) Advance(body Body, s Steering, elapsed float64, r Router) Motion {
	subStep := in.SubStep
	if subStep <= 0 {
		subStep = DefaultSubStep
	}
	capture2 := in.CaptureRadius * in.CaptureRadius

	m := Motion{
		Position: body.Position,
		Velocity: body.Velocity,
		Previous: body.Current,
		Waypoint: body.Next,
	}
	target := r.CellCenter(m.Waypoint)
	for t := 0.0; t < elapsed; t += subStep {
		dt := elapsed - t
		if dt > subStep {
			dt = subStep
		}

		speed := m.Velocity.Length()
		lookAhead := m.Position.Add(m.Velocity.Scale(speed))
		if target.DistanceSqr(lookAhead) <= capture2 {
			m.Previous = m.Waypoint
			m.Waypoint, _ = r.NextCell(m.Waypoint)
			target = r.CellCenter(m.Waypoint)
			m.Crossed++
		}

		if dir, ok := target.Sub(lookAhead).Normalize(); ok {
			m.Velocity = m.Velocity.Add(dir.Scale(s.MaxAcceleration * dt))
		}
		if v := m.Velocity.Length(); v > s.MaxSpeed {
			m.Velocity = m.Velocity.Scale(s.MaxSpeed / v)
		}

		m.Position = m.Position.Add(m.Velocity.Scale(dt))
	}
	return m
}
