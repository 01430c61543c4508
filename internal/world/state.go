package world

import (
	"math"

	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/core/ecs"
	"github.com/l1jgo/towerdef/internal/core/event"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/navigation"
	"github.com/l1jgo/towerdef/internal/physics"
)

// Kill describes a unit at the moment its damage reached max health.
type Kill struct {
	Type      UnitType
	Reward    int // class reward
	MaxHealth float64
	Alive     float64 // seconds since spawn
}

// RewardSink is credited when a unit is killed. It returns the amount it
// actually credited.
type RewardSink interface {
	CreditKill(k Kill) int
}

// Options configures a State. Zero capacities fall back to the defaults below;
// nil class tables fall back to the built-in ones.
type Options struct {
	UnitCapacity       int
	ObstacleCapacity   int
	ProjectileCapacity int

	Integrator      physics.Integrator
	UnitClasses     *UnitClasses
	ObstacleClasses *ObstacleClasses

	Clock   func() float64 // simulation time in seconds
	Rewards RewardSink
	Bus     *event.Bus
	Log     *zap.Logger
}

const (
	DefaultUnitCapacity       = 256
	DefaultObstacleCapacity   = 256
	DefaultProjectileCapacity = 512
)

// State owns every pooled record of the simulation together with the flow
// field they move on. Single-goroutine access only (simulation loop).
type State struct {
	field       *navigation.FlowField
	units       *ecs.Pool[Unit]
	obstacles   *ecs.Pool[Obstacle]
	projectiles *ecs.Pool[Projectile]
	occupancy   *CellIndex

	unitClasses     UnitClasses
	obstacleClasses ObstacleClasses
	integrator      physics.Integrator

	clock   func() float64
	rewards RewardSink
	bus     *event.Bus
	log     *zap.Logger
}

func NewState(field *navigation.FlowField, opts Options) *State {
	if opts.UnitCapacity <= 0 {
		opts.UnitCapacity = DefaultUnitCapacity
	}
	if opts.ObstacleCapacity <= 0 {
		opts.ObstacleCapacity = DefaultObstacleCapacity
	}
	if opts.ProjectileCapacity <= 0 {
		opts.ProjectileCapacity = DefaultProjectileCapacity
	}
	if opts.Integrator.SubStep <= 0 {
		opts.Integrator = physics.DefaultIntegrator
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	s := &State{
		field:           field,
		units:           ecs.NewPool[Unit](opts.UnitCapacity),
		obstacles:       ecs.NewPool[Obstacle](opts.ObstacleCapacity),
		projectiles:     ecs.NewPool[Projectile](opts.ProjectileCapacity),
		occupancy:       newCellIndex(),
		unitClasses:     DefaultUnitClasses(),
		obstacleClasses: DefaultObstacleClasses(),
		integrator:      opts.Integrator,
		clock:           opts.Clock,
		rewards:         opts.Rewards,
		bus:             opts.Bus,
		log:             opts.Log,
	}
	if opts.UnitClasses != nil {
		s.unitClasses = *opts.UnitClasses
	}
	if opts.ObstacleClasses != nil {
		s.obstacleClasses = *opts.ObstacleClasses
	}
	return s
}

// Field exposes the flow field for DistanceAt/GradientAt queries.
func (s *State) Field() *navigation.FlowField { return s.field }

func (s *State) Integrator() physics.Integrator { return s.integrator }

// Now returns the simulation time, or 0 without a clock.
func (s *State) Now() float64 {
	if s.clock == nil {
		return 0
	}
	return s.clock()
}

func (s *State) UnitClass(t UnitType) UnitClass {
	if int(t) >= len(s.unitClasses) {
		return UnitClass{}
	}
	return s.unitClasses[t]
}

func (s *State) ObstacleClass(t ObstacleType) ObstacleClass {
	if int(t) >= len(s.obstacleClasses) {
		return ObstacleClass{}
	}
	return s.obstacleClasses[t]
}

// ── Units ──

// SpawnUnit places a unit of type t at rest on the centre of cell. It fails
// for invalid types and when the unit pool is exhausted.
func (s *State) SpawnUnit(t UnitType, cell geom.Cell) (ecs.Handle, bool) {
	if !t.Valid() {
		return 0, false
	}
	h, u, ok := s.units.Acquire()
	if !ok {
		s.log.Warn("unit pool exhausted",
			zap.Stringer("type", t), zap.Int("capacity", s.units.Cap()))
		return 0, false
	}
	u.Type = t
	u.Current = cell
	u.Next = cell
	u.Position = s.field.CellCenter(cell)
	u.SpawnedAt = s.Now()

	event.Emit(s.bus, event.UnitSpawned{Unit: h, UnitType: uint8(t), Cell: cell})
	s.log.Debug("unit spawned",
		zap.Uint64("handle", uint64(h)), zap.Stringer("type", t),
		zap.Int("x", cell.X), zap.Int("y", cell.Y))
	return h, true
}

// Unit resolves h to its live record.
func (s *State) Unit(h ecs.Handle) (*Unit, bool) { return s.units.Resolve(h) }

// EachUnit visits live units in slot order.
func (s *State) EachUnit(fn func(ecs.Handle, *Unit)) { s.units.Each(fn) }

func (s *State) LiveUnits() int { return s.units.Live() }

// ApplyDamage adds amount to the unit's damage. When damage reaches max health
// the unit is retired in the same call, its reward credited, and true is
// returned. Stale handles and non-positive amounts are ignored.
func (s *State) ApplyDamage(h ecs.Handle, amount float64) bool {
	u, ok := s.units.Resolve(h)
	if !ok || amount <= 0 || math.IsNaN(amount) {
		return false
	}
	u.Damage += amount
	class := s.UnitClass(u.Type)
	if u.Damage < class.MaxHealth {
		return false
	}
	reward := class.Reward
	if s.rewards != nil {
		reward = s.rewards.CreditKill(Kill{
			Type:      u.Type,
			Reward:    class.Reward,
			MaxHealth: class.MaxHealth,
			Alive:     max(s.Now()-u.SpawnedAt, 0),
		})
	}
	s.retire(h, u, event.RetireKilled, reward)
	return true
}

// CommitDamage reserves amount against the unit for a hit still in flight.
func (s *State) CommitDamage(h ecs.Handle, amount float64) bool {
	u, ok := s.units.Resolve(h)
	if !ok || amount <= 0 {
		return false
	}
	u.FutureDamage += amount
	return true
}

// Retire releases a unit without crediting a reward.
func (s *State) Retire(h ecs.Handle, reason event.RetireReason) bool {
	u, ok := s.units.Resolve(h)
	if !ok {
		return false
	}
	s.retire(h, u, reason, 0)
	return true
}

func (s *State) retire(h ecs.Handle, u *Unit, reason event.RetireReason, reward int) {
	event.Emit(s.bus, event.UnitRetired{
		Unit:     h,
		UnitType: uint8(u.Type),
		Reason:   reason,
		Position: u.Position,
		Reward:   reward,
	})
	s.log.Debug("unit retired",
		zap.Uint64("handle", uint64(h)), zap.Stringer("reason", reason),
		zap.Float64("x", u.Position.X), zap.Float64("y", u.Position.Y))
	s.units.Release(h)
}

// Body returns the kinematic state the integrator works on.
func (u *Unit) Body() physics.Body {
	return physics.Body{Position: u.Position, Velocity: u.Velocity, Current: u.Current, Next: u.Next}
}

// Steering returns the speed limits of class t.
func (s *State) Steering(t UnitType) physics.Steering {
	c := s.UnitClass(t)
	return physics.Steering{MaxSpeed: c.MaxSpeed, MaxAcceleration: c.MaxAcceleration}
}

// Advance integrates the unit's body over elapsed seconds on the current
// flow field. The unit is not modified.
func (s *State) Advance(u *Unit, elapsed float64) physics.Motion {
	return s.integrator.Advance(u.Body(), s.Steering(u.Type), elapsed, s.field)
}

// Predict returns where the unit would be after future seconds on the
// current flow field. Simulation state is not touched.
func (s *State) Predict(h ecs.Handle, future float64) (geom.Vec2, bool) {
	u, ok := s.units.Resolve(h)
	if !ok {
		return geom.Vec2{}, false
	}
	if future <= 0 {
		return u.Position, true
	}
	return s.Advance(u, future).Position, true
}

// ClosestUnitToGoalWithinRange returns the unit whose current cell is nearest
// to the goal (Manhattan) among those within rng cells of origin. Units whose
// committed future damage already covers their remaining health are skipped.
// Ties keep the first unit in slot order.
func (s *State) ClosestUnitToGoalWithinRange(origin geom.Cell, rng float64) (ecs.Handle, bool) {
	goal := s.field.Goal()
	rng2 := rng * rng
	var (
		best     ecs.Handle
		bestDist int
		found    bool
	)
	s.units.Each(func(h ecs.Handle, u *Unit) {
		if u.Damage+u.FutureDamage >= s.UnitClass(u.Type).MaxHealth {
			return
		}
		d := u.Current.Manhattan(goal)
		if found && d >= bestDist {
			return
		}
		dx := float64(origin.X - u.Current.X)
		dy := float64(origin.Y - u.Current.Y)
		if dx*dx+dy*dy > rng2 {
			return
		}
		best, bestDist, found = h, d, true
	})
	return best, found
}

// ── Obstacles ──

// AddObstacle places an obstacle on an empty in-bounds cell.
func (s *State) AddObstacle(t ObstacleType, cell geom.Cell) (ecs.Handle, bool) {
	if !t.Valid() || !s.field.InBounds(cell) || !s.occupancy.At(cell).IsZero() {
		return 0, false
	}
	h, o, ok := s.obstacles.Acquire()
	if !ok {
		s.log.Warn("obstacle pool exhausted",
			zap.Stringer("type", t), zap.Int("capacity", s.obstacles.Cap()))
		return 0, false
	}
	o.Type = t
	o.Cell = cell
	s.occupancy.Occupy(cell, h)
	return h, true
}

// Obstacle resolves h. Obstacles destroyed this tick still resolve until the
// end-of-tick flush; check Destroyed.
func (s *State) Obstacle(h ecs.Handle) (*Obstacle, bool) { return s.obstacles.Resolve(h) }

// ObstacleAt returns the obstacle occupying cell.
func (s *State) ObstacleAt(cell geom.Cell) (ecs.Handle, bool) {
	h := s.occupancy.At(cell)
	return h, !h.IsZero()
}

// RemoveObstacle releases an obstacle immediately. Use DamageObstacle inside
// an iteration.
func (s *State) RemoveObstacle(h ecs.Handle) bool {
	o, ok := s.obstacles.Resolve(h)
	if !ok {
		return false
	}
	s.occupancy.Vacate(o.Cell, h)
	return s.obstacles.Release(h)
}

// DamageObstacle adds amount to the obstacle's damage. Once damage reaches max
// health the obstacle is marked destroyed, stops blocking and colliding, and
// is released by FlushObstacles.
func (s *State) DamageObstacle(h ecs.Handle, amount float64) (destroyed bool) {
	o, ok := s.obstacles.Resolve(h)
	if !ok || o.Destroyed {
		return false
	}
	o.Damage += amount
	if o.Damage < s.ObstacleClass(o.Type).MaxHealth {
		return false
	}
	o.Destroyed = true
	s.occupancy.Vacate(o.Cell, h)
	s.obstacles.MarkForRelease(h)
	event.Emit(s.bus, event.ObstacleDestroyed{Obstacle: h, ObstacleType: uint8(o.Type), Cell: o.Cell})
	s.log.Debug("obstacle destroyed",
		zap.Uint64("handle", uint64(h)), zap.Stringer("type", o.Type),
		zap.Int("x", o.Cell.X), zap.Int("y", o.Cell.Y))
	return true
}

// FlushObstacles releases obstacles destroyed since the last flush.
func (s *State) FlushObstacles() int { return s.obstacles.Flush() }

// EachObstacle visits standing obstacles in slot order.
func (s *State) EachObstacle(fn func(ecs.Handle, *Obstacle)) {
	s.obstacles.Each(func(h ecs.Handle, o *Obstacle) {
		if !o.Destroyed {
			fn(h, o)
		}
	})
}

func (s *State) LiveObstacles() int { return s.obstacles.Live() - s.obstacles.Pending() }

// EachBlocker implements navigation.ObstacleLayout: standing obstacles whose
// class blocks the path.
func (s *State) EachBlocker(fn func(ecs.Handle, geom.Cell)) {
	s.EachObstacle(func(h ecs.Handle, o *Obstacle) {
		if s.ObstacleClass(o.Type).BlocksPath {
			fn(h, o.Cell)
		}
	})
}

// RebuildField recomputes the flow field from the standing obstacles.
func (s *State) RebuildField() { s.field.Rebuild(s) }

// ── Projectiles ──

// Launch stores an in-flight projectile.
func (s *State) Launch(p Projectile) (ecs.Handle, bool) {
	h, rec, ok := s.projectiles.Acquire()
	if !ok {
		s.log.Warn("projectile pool exhausted", zap.Int("capacity", s.projectiles.Cap()))
		return 0, false
	}
	*rec = p
	return h, true
}

func (s *State) EachProjectile(fn func(ecs.Handle, *Projectile)) { s.projectiles.Each(fn) }

func (s *State) ReleaseProjectile(h ecs.Handle) bool { return s.projectiles.Release(h) }

func (s *State) LiveProjectiles() int { return s.projectiles.Live() }
