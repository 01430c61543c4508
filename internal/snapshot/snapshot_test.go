package snapshot

import (
	"testing"

	"github.com/l1jgo/towerdef/internal/core/ecs"
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/navigation"
	"github.com/l1jgo/towerdef/internal/world"
)

func buildState(t *testing.T) *world.State {
	t.Helper()
	field, err := navigation.NewFlowField(6, 6, navigation.Identity, geom.C(0, 0), navigation.DefaultObstaclePenalty)
	if err != nil {
		t.Fatal(err)
	}
	ws := world.NewState(field, world.Options{})
	ws.AddObstacle(world.ObstacleWall, geom.C(0, 2))
	ws.SpawnUnit(world.UnitMinion, geom.C(0, 5))
	ws.SpawnUnit(world.UnitRunner, geom.C(3, 3))
	ws.RebuildField()
	return ws
}

func TestCaptureAndDecode(t *testing.T) {
	ws := buildState(t)
	snap := Capture(ws, coresys.Tick{Frame: 3, Time: 0.1})
	if len(snap.Units) != 2 || len(snap.Obstacles) != 1 {
		t.Fatalf("captured %d units, %d obstacles", len(snap.Units), len(snap.Obstacles))
	}
	if snap.Units[1].Type != uint8(world.UnitRunner) || snap.Units[1].Position != geom.V(3, 3) {
		t.Errorf("second unit = %+v", snap.Units[1])
	}
	if got := snap.Field.Distances[2*6+0]; got != 2+navigation.DefaultObstaclePenalty {
		t.Errorf("wall cell distance = %v", got)
	}

	data, err := snap.Encode()
	if err != nil {
		t.Fatal(err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Frame != 3 || len(back.Units) != 2 || back.Units[0].Current != geom.C(0, 5) || len(back.Field.Distances) != 36 {
		t.Errorf("decoded = %+v", back)
	}
	if _, err := Decode([]byte{0xc1}); err == nil {
		t.Error("garbage decoded")
	}
}

func TestDigest(t *testing.T) {
	a, err := Capture(buildState(t), coresys.Tick{Frame: 1}).Digest()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Capture(buildState(t), coresys.Tick{Frame: 1}).Digest()
	if a != b {
		t.Fatalf("identical states digest differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("digest length %d", len(a))
	}

	ws := buildState(t)
	ws.EachUnit(func(_ ecs.Handle, u *world.Unit) { u.Damage = 1 })
	c, _ := Capture(ws, coresys.Tick{Frame: 1}).Digest()
	if c == a {
		t.Error("damage change not reflected in digest")
	}
}
