package system

import (
	"testing"

	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/core/event"
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/navigation"
	"github.com/l1jgo/towerdef/internal/world"
)

type harness struct {
	bus    *event.Bus
	runner *coresys.Runner
	world  *world.State

	retired    []event.UnitRetired
	explosions []event.Explosion
	landed     []event.ProjectileLanded
}

func newHarness(t *testing.T, width, height int, goal geom.Cell, seed int64) *harness {
	t.Helper()
	field, err := navigation.NewFlowField(width, height, navigation.Identity, goal, navigation.DefaultObstaclePenalty)
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{
		bus:    event.NewBus(),
		runner: coresys.NewRunner(0.1, seed),
	}
	h.world = world.NewState(field, world.Options{
		Clock: func() float64 { return h.runner.Now().Time },
		Bus:   h.bus,
		Log:   zap.NewNop(),
	})
	event.Subscribe(h.bus, func(e event.UnitRetired) { h.retired = append(h.retired, e) })
	event.Subscribe(h.bus, func(e event.Explosion) { h.explosions = append(h.explosions, e) })
	event.Subscribe(h.bus, func(e event.ProjectileLanded) { h.landed = append(h.landed, e) })
	return h
}

// flush delivers events still sitting in the back buffer.
func (h *harness) flush() {
	h.bus.SwapBuffers()
	h.bus.DispatchAll()
}

func (h *harness) retiredBy(reason event.RetireReason) int {
	n := 0
	for _, e := range h.retired {
		if e.Reason == reason {
			n++
		}
	}
	return n
}
