package system

import (
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/world"
)

// NavigationSystem rebuilds the flow field from the standing obstacles once
// per tick, before any unit moves. Phase 2 (Navigation).
type NavigationSystem struct {
	world *world.State
}

func NewNavigationSystem(ws *world.State) *NavigationSystem {
	return &NavigationSystem{world: ws}
}

func (s *NavigationSystem) Phase() coresys.Phase { return coresys.PhaseNavigation }

func (s *NavigationSystem) Update(_ *coresys.Tick) {
	s.world.RebuildField()
}
