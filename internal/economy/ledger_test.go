package economy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/core/event"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/navigation"
	"github.com/l1jgo/towerdef/internal/scripting"
	"github.com/l1jgo/towerdef/internal/world"
)

type doubler struct{}

func (doubler) KillReward(k world.Kill) int { return k.Reward * 2 }

func newState(t *testing.T, l *Ledger, bus *event.Bus) *world.State {
	t.Helper()
	field, err := navigation.NewFlowField(10, 10, navigation.Identity, geom.C(0, 0), navigation.DefaultObstaclePenalty)
	if err != nil {
		t.Fatal(err)
	}
	return world.NewState(field, world.Options{Rewards: l, Bus: bus})
}

func TestCreditKill(t *testing.T) {
	l := NewLedger(5, doubler{}, nil)
	ws := newState(t, l, nil)
	h, _ := ws.SpawnUnit(world.UnitMinion, geom.C(3, 3))
	if !ws.ApplyDamage(h, 100) {
		t.Fatal("unit not killed")
	}
	s := l.Summary()
	if s.Gold != 7 || s.Earned != 2 || s.Kills != 1 {
		t.Errorf("summary = %+v", s)
	}

	plain := NewLedger(0, nil, nil)
	if got := plain.CreditKill(world.Kill{Type: world.UnitBrute, Reward: 3}); got != 3 || plain.Gold() != 3 {
		t.Errorf("credited %d, gold %d", got, plain.Gold())
	}
}

func TestKillRewardScriptSeesUnit(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "economy"), 0o755); err != nil {
		t.Fatal(err)
	}
	script := "function calc_kill_reward(ctx) return ctx.max_health + ctx.alive * 100 end"
	if err := os.WriteFile(filepath.Join(dir, "economy", "reward.lua"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	engine, err := scripting.NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer engine.Close()

	now := 0.0
	l := NewLedger(0, engine, nil)
	field, err := navigation.NewFlowField(10, 10, navigation.Identity, geom.C(0, 0), navigation.DefaultObstaclePenalty)
	if err != nil {
		t.Fatal(err)
	}
	ws := world.NewState(field, world.Options{Rewards: l, Clock: func() float64 { return now }})

	h, ok := ws.SpawnUnit(world.UnitMinion, geom.C(3, 3))
	if !ok {
		t.Fatal("spawn failed")
	}
	now = 3
	if !ws.ApplyDamage(h, 100) {
		t.Fatal("unit not killed")
	}
	// minion max health 10, alive for 3 s
	if got := l.Gold(); got != 310 {
		t.Errorf("gold = %d, want 310", got)
	}
}

func TestBuild(t *testing.T) {
	l := NewLedger(10, nil, nil)
	ws := newState(t, l, nil)

	if _, err := l.Build(ws, world.ObstacleArcher, geom.C(2, 2)); err != nil {
		t.Fatal(err)
	}
	if l.Gold() != 4 {
		t.Fatalf("gold = %d, want 4", l.Gold())
	}
	if _, err := l.Build(ws, world.ObstacleWall, geom.C(2, 2)); err == nil {
		t.Fatal("built on an occupied cell")
	}
	if l.Gold() != 4 || l.Summary().Spent != 6 {
		t.Errorf("failed placement not refunded: %+v", l.Summary())
	}
	_, err := l.Build(ws, world.ObstacleBallista, geom.C(4, 4))
	if !errors.Is(err, ErrInsufficientGold) {
		t.Errorf("err = %v, want ErrInsufficientGold", err)
	}
	if l.Spend(-1) {
		t.Error("negative spend accepted")
	}
}

func TestLedgerCountsOutcomes(t *testing.T) {
	bus := event.NewBus()
	l := NewLedger(0, nil, nil)
	l.Subscribe(bus)
	ws := newState(t, l, bus)

	a, _ := ws.SpawnUnit(world.UnitMinion, geom.C(1, 1))
	b, _ := ws.SpawnUnit(world.UnitMinion, geom.C(2, 1))
	ws.Retire(a, event.RetireLeaked)
	ws.Retire(b, event.RetireExploded)
	bus.SwapBuffers()
	bus.DispatchAll()

	if s := l.Summary(); s.Leaks != 1 || s.Explosions != 1 || s.Kills != 0 || s.Gold != 0 {
		t.Errorf("summary = %+v", s)
	}
}
