package system

import (
	"math"

	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/core/ecs"
	"github.com/l1jgo/towerdef/internal/core/event"
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/world"
)

const (
	leadIterations = 8
	leadTolerance  = 0.01 // seconds
)

// DamageFormula adjusts the class damage of a shot.
type DamageFormula interface {
	TowerDamage(t world.ObstacleType, damage, distance, rng float64) float64
}

// TowerSystem lets every armed obstacle pick the unit closest to the goal in
// range, lead its aim with Predict and launch a projectile. Phase 5 (Combat).
type TowerSystem struct {
	world   *world.State
	formula DamageFormula
	log     *zap.Logger
}

func NewTowerSystem(ws *world.State, formula DamageFormula, log *zap.Logger) *TowerSystem {
	return &TowerSystem{world: ws, formula: formula, log: log}
}

func (s *TowerSystem) Phase() coresys.Phase { return coresys.PhaseCombat }

func (s *TowerSystem) Update(t *coresys.Tick) {
	field := s.world.Field()
	s.world.EachObstacle(func(_ ecs.Handle, o *world.Obstacle) {
		class := s.world.ObstacleClass(o.Type)
		if !class.Armed() {
			return
		}
		if o.Cooldown > 0 {
			o.Cooldown -= t.Delta
			return
		}
		target, ok := s.world.ClosestUnitToGoalWithinRange(o.Cell, class.Range)
		if !ok {
			return
		}
		origin := field.CellCenter(o.Cell)
		aim, ok := s.leadAim(target, origin, class.ProjectileSpeed)
		if !ok {
			return
		}
		distance := origin.Distance(aim)
		damage := class.Damage
		if s.formula != nil {
			damage = s.formula.TowerDamage(o.Type, class.Damage, distance, class.Range)
		}
		if _, ok := s.world.Launch(world.Projectile{
			Origin:    origin,
			Target:    aim,
			ShotAt:    t.Time,
			ArrivesAt: t.Time + distance/class.ProjectileSpeed,
			Damage:    damage,
			Unit:      target,
		}); !ok {
			return
		}
		o.Cooldown = class.Cooldown
		o.LastTarget = aim
		s.world.CommitDamage(target, damage)
	})
}

// leadAim predicts where the target will be when a projectile fired now
// reaches it. The flight time is refined until it changes by less than
// leadTolerance.
func (s *TowerSystem) leadAim(target ecs.Handle, origin geom.Vec2, speed float64) (geom.Vec2, bool) {
	aim, ok := s.world.Predict(target, 0)
	if !ok {
		return geom.Vec2{}, false
	}
	eta := origin.Distance(aim) / speed
	for i := 0; i < leadIterations; i++ {
		aim, _ = s.world.Predict(target, eta)
		next := origin.Distance(aim) / speed
		if math.Abs(eta-next) < leadTolerance {
			break
		}
		eta = (eta + next) / 2
	}
	return aim, true
}

// ProjectileSystem lands projectiles whose flight time has elapsed. Damage is
// applied only if the target handle still resolves. Phase 5 (Combat), after
// TowerSystem.
type ProjectileSystem struct {
	world *world.State
	bus   *event.Bus
	log   *zap.Logger
}

func NewProjectileSystem(ws *world.State, bus *event.Bus, log *zap.Logger) *ProjectileSystem {
	return &ProjectileSystem{world: ws, bus: bus, log: log}
}

func (s *ProjectileSystem) Phase() coresys.Phase { return coresys.PhaseCombat }

func (s *ProjectileSystem) Update(t *coresys.Tick) {
	s.world.EachProjectile(func(ph ecs.Handle, p *world.Projectile) {
		if p.Progress(t.Time) < 1 {
			return
		}
		unit, damage := p.Unit, p.Damage
		s.world.ReleaseProjectile(ph)

		u, hit := s.world.Unit(unit)
		if hit {
			u.FutureDamage = max(0, u.FutureDamage-damage)
			s.world.ApplyDamage(unit, damage)
		}
		event.Emit(s.bus, event.ProjectileLanded{Unit: unit, Damage: damage, Hit: hit})
		if !hit {
			s.log.Debug("projectile target gone", zap.Uint64("unit", uint64(unit)))
		}
	})
}
