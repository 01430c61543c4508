package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/core/ecs"
	"github.com/l1jgo/towerdef/internal/core/event"
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/physics"
	"github.com/l1jgo/towerdef/internal/world"
)

// CollisionSystem separates overlapping units, pushes units out of obstacle
// squares and fires contact explosions. Phase 4 (Collision).
type CollisionSystem struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger

	// Reusable pair buffers, rebuilt every tick
	handles []ecs.Handle
	units   []*world.Unit
}

func NewCollisionSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *CollisionSystem {
	return &CollisionSystem{world: ws, bus: bus, log: log}
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseCollision }

func (s *CollisionSystem) Update(t *coresys.Tick) {
	s.separateUnits()
	s.resolveObstacles(t.Delta)
}

// separateUnits runs one soft correction pass over every unordered pair in
// slot order.
func (s *CollisionSystem) separateUnits() {
	s.handles = s.handles[:0]
	s.units = s.units[:0]
	s.world.EachUnit(func(h ecs.Handle, u *world.Unit) {
		s.handles = append(s.handles, h)
		s.units = append(s.units, u)
	})

	for i := 0; i < len(s.units); i++ {
		a := s.units[i]
		ra := s.world.UnitClass(a.Type).Radius
		for j := i + 1; j < len(s.units); j++ {
			b := s.units[j]
			d, ok := physics.SeparateCircles(a.Position, b.Position, ra, s.world.UnitClass(b.Type).Radius)
			if !ok {
				continue
			}
			a.Position = a.Position.Sub(d)
			b.Position = b.Position.Add(d)
		}
	}
}

// resolveObstacles pushes each unit out of the squares it touches and runs
// its contact timer. A unit touching anything this tick gains dt of contact
// time; otherwise the timer decays by dt down to zero.
func (s *CollisionSystem) resolveObstacles(dt float64) {
	field := s.world.Field()
	half := field.Transform().CellSize() / 2

	s.world.EachUnit(func(h ecs.Handle, u *world.Unit) {
		class := s.world.UnitClass(u.Type)
		base := u.ContactTime
		touched, exploded := false, false

		s.world.EachObstacle(func(oh ecs.Handle, o *world.Obstacle) {
			if exploded {
				return
			}
			c, ok := physics.ResolveCircleSquare(u.Position, class.Radius, field.CellCenter(o.Cell), half)
			if !ok {
				return
			}
			u.Position = c.Position
			if class.ExplosionDamage <= 0 {
				return
			}
			if !touched {
				touched = true
				u.ContactTime = base + dt
			}
			if u.ContactTime >= class.RequiredContactTime {
				s.explode(h, u, class, oh, c.Point)
				exploded = true
			}
		})

		if !touched {
			u.ContactTime = max(0, base-dt)
		}
	})
}

// explode damages the touched obstacle, retires the unit and hits every other
// unit strictly inside the blast radius.
func (s *CollisionSystem) explode(h ecs.Handle, u *world.Unit, class world.UnitClass, obstacle ecs.Handle, point geom.Vec2) {
	destroyed := s.world.DamageObstacle(obstacle, class.ExplosionDamage)
	origin := u.Position
	s.world.Retire(h, event.RetireExploded)

	range2 := class.ExplosionRange * class.ExplosionRange
	hit := 0
	s.world.EachUnit(func(oh ecs.Handle, other *world.Unit) {
		d2 := other.Position.DistanceSqr(origin)
		if d2 <= 0 || d2 >= range2 {
			return
		}
		if dir, ok := other.Position.Sub(origin).Normalize(); ok {
			other.Position = other.Position.Add(dir.Scale(class.ExplosionPushback))
		}
		hit++
		s.world.ApplyDamage(oh, class.ExplosionDamage)
	})

	event.Emit(s.bus, event.Explosion{
		Unit:     h,
		Obstacle: obstacle,
		Point:    point,
		Damage:   class.ExplosionDamage,
		Hit:      hit,
	})
	s.log.Debug("unit exploded",
		zap.Uint64("unit", uint64(h)),
		zap.Uint64("obstacle", uint64(obstacle)),
		zap.Bool("obstacle_destroyed", destroyed),
		zap.Int("hit", hit))
}
