package system

import (
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/world"
)

// CleanupSystem releases obstacles destroyed during the tick.
// Phase 7 (Cleanup).
type CleanupSystem struct {
	world *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ *coresys.Tick) {
	s.world.FlushObstacles()
}
