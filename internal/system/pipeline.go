package system

import (
	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/core/event"
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/world"
)

// RegisterCore registers the systems every simulation needs: event dispatch,
// flow field rebuild, movement, collision and cleanup.
func RegisterCore(r *coresys.Runner, ws *world.State, bus *event.Bus, log *zap.Logger) {
	r.Register(NewEventDispatchSystem(bus))
	r.Register(NewNavigationSystem(ws))
	r.Register(NewMovementSystem(ws))
	r.Register(NewCollisionSystem(ws, bus, log))
	r.Register(NewCleanupSystem(ws))
}

// RegisterCombat registers towers and projectiles, in that order.
func RegisterCombat(r *coresys.Runner, ws *world.State, bus *event.Bus, formula DamageFormula, log *zap.Logger) {
	r.Register(NewTowerSystem(ws, formula, log))
	r.Register(NewProjectileSystem(ws, bus, log))
}
