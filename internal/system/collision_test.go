package system

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/core/event"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/world"
)

func TestContactExplosionAfterHalfSecond(t *testing.T) {
	h := newHarness(t, 10, 10, geom.C(5, 5), 1)
	h.runner.Register(NewEventDispatchSystem(h.bus))
	h.runner.Register(NewCollisionSystem(h.world, h.bus, zap.NewNop()))
	h.runner.Register(NewCleanupSystem(h.world))

	wall, _ := h.world.AddObstacle(world.ObstacleWall, geom.C(0, 1))
	unit, _ := h.world.SpawnUnit(world.UnitMinion, geom.C(0, 0))
	u, _ := h.world.Unit(unit)
	u.Position = geom.V(0, 0.3) // 0.05 inside the wall's lower edge

	for tick := 1; tick <= 10; tick++ {
		h.runner.Step(0.1)
		_, alive := h.world.Unit(unit)
		switch {
		case tick < 5 && !alive:
			t.Fatalf("unit retired at tick %d, before 0.5s of contact", tick)
		case tick < 5:
			if want := 0.1 * float64(tick); math.Abs(u.ContactTime-want) > 1e-9 {
				t.Errorf("tick %d: contact time %v, want %v", tick, u.ContactTime, want)
			}
			if math.Abs(u.Position.Y-0.25) > 1e-9 {
				t.Errorf("tick %d: unit not held on the edge: %+v", tick, u.Position)
			}
		case tick >= 5 && alive:
			t.Fatalf("unit still alive at tick %d", tick)
		}
	}
	h.flush()

	if len(h.explosions) != 1 {
		t.Fatalf("explosions = %d, want 1", len(h.explosions))
	}
	e := h.explosions[0]
	if e.Obstacle != wall || e.Point != geom.V(0, 0.5) || e.Damage != 1 {
		t.Errorf("explosion = %+v", e)
	}
	if h.retiredBy(event.RetireExploded) != 1 || len(h.retired) != 1 {
		t.Errorf("retired = %+v", h.retired)
	}
	if o, ok := h.world.Obstacle(wall); !ok || o.Damage != 1 || o.Destroyed {
		t.Errorf("wall = %+v ok=%v", o, ok)
	}
}

func TestContactTimerDecays(t *testing.T) {
	h := newHarness(t, 10, 10, geom.C(5, 5), 1)
	sys := NewCollisionSystem(h.world, h.bus, zap.NewNop())
	h.runner.Register(sys)

	unit, _ := h.world.SpawnUnit(world.UnitMinion, geom.C(3, 3))
	u, _ := h.world.Unit(unit)
	u.ContactTime = 0.25

	h.runner.Step(0.1)
	if math.Abs(u.ContactTime-0.15) > 1e-9 {
		t.Errorf("contact time = %v, want 0.15", u.ContactTime)
	}
	h.runner.Step(0.1)
	h.runner.Step(0.1)
	if u.ContactTime != 0 {
		t.Errorf("contact time = %v, want clamped to 0", u.ContactTime)
	}
}

func TestExplosionDamagesAndPushesNeighbours(t *testing.T) {
	h := newHarness(t, 10, 10, geom.C(5, 5), 1)
	h.runner.Register(NewCollisionSystem(h.world, h.bus, zap.NewNop()))

	h.world.AddObstacle(world.ObstacleWall, geom.C(0, 1))
	bomber, _ := h.world.SpawnUnit(world.UnitMinion, geom.C(0, 0))
	near, _ := h.world.SpawnUnit(world.UnitMinion, geom.C(0, 0))
	far, _ := h.world.SpawnUnit(world.UnitMinion, geom.C(0, 0))

	b, _ := h.world.Unit(bomber)
	b.Position = geom.V(0, 0.3)
	b.ContactTime = 0.45
	n, _ := h.world.Unit(near)
	n.Position = geom.V(0.6, 0.25)
	f, _ := h.world.Unit(far)
	f.Position = geom.V(0, -1.5)

	h.runner.Step(0.1)

	if _, ok := h.world.Unit(bomber); ok {
		t.Fatal("bomber survived")
	}
	if n.Damage != 1 {
		t.Errorf("near damage = %v, want 1", n.Damage)
	}
	if math.Abs(n.Position.X-0.85) > 1e-9 || math.Abs(n.Position.Y-0.25) > 1e-9 {
		t.Errorf("near pushed to %+v, want (0.85, 0.25)", n.Position)
	}
	if f.Damage != 0 || f.Position != geom.V(0, -1.5) {
		t.Errorf("far unit affected: %+v", f)
	}
	h.flush()
	if len(h.explosions) != 1 || h.explosions[0].Hit != 1 {
		t.Errorf("explosions = %+v", h.explosions)
	}
}

func TestExplosionDestroysWeakObstacle(t *testing.T) {
	h := newHarness(t, 10, 10, geom.C(5, 5), 1)
	h.runner.Register(NewCollisionSystem(h.world, h.bus, zap.NewNop()))
	h.runner.Register(NewCleanupSystem(h.world))

	wall, _ := h.world.AddObstacle(world.ObstacleWall, geom.C(0, 1))
	o, _ := h.world.Obstacle(wall)
	o.Damage = 9.5

	unit, _ := h.world.SpawnUnit(world.UnitMinion, geom.C(0, 0))
	u, _ := h.world.Unit(unit)
	u.Position = geom.V(0, 0.3)
	u.ContactTime = 0.45

	h.runner.Step(0.1)
	if _, ok := h.world.Obstacle(wall); ok {
		t.Fatal("destroyed wall still resolves after cleanup")
	}
	if _, ok := h.world.ObstacleAt(geom.C(0, 1)); ok {
		t.Error("cell still occupied")
	}
}

func TestUnitSeparation(t *testing.T) {
	h := newHarness(t, 10, 10, geom.C(5, 5), 1)
	h.runner.Register(NewCollisionSystem(h.world, h.bus, zap.NewNop()))

	a, _ := h.world.SpawnUnit(world.UnitMinion, geom.C(2, 2))
	b, _ := h.world.SpawnUnit(world.UnitMinion, geom.C(2, 2))
	c, _ := h.world.SpawnUnit(world.UnitMinion, geom.C(2, 2))
	ua, _ := h.world.Unit(a)
	ub, _ := h.world.Unit(b)
	uc, _ := h.world.Unit(c)
	ub.Position = geom.V(2.3, 2)
	// c sits exactly on a: coincident centres are skipped

	before := ua.Position.Distance(ub.Position)
	h.runner.Step(0.1)
	after := ua.Position.Distance(ub.Position)
	if !(after > before) || after > 0.5 {
		t.Errorf("distance %v -> %v", before, after)
	}
	for _, u := range []*world.Unit{ua, ub, uc} {
		if math.IsNaN(u.Position.X) || math.IsNaN(u.Position.Y) {
			t.Fatal("NaN position after separation")
		}
	}
}
