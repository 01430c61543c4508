package main

import (
	"testing"

	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/navigation"
	"github.com/l1jgo/towerdef/internal/world"
)

func TestArrowFollowsStepDirection(t *testing.T) {
	f, err := navigation.NewFlowField(5, 5, navigation.Identity, geom.C(2, 2), navigation.DefaultObstaclePenalty)
	if err != nil {
		t.Fatal(err)
	}
	f.Rebuild(nil)

	tests := []struct {
		cell geom.Cell
		want rune
	}{
		{geom.C(0, 2), '→'},
		{geom.C(4, 2), '←'},
		{geom.C(2, 0), '↑'},
		{geom.C(2, 4), '↓'},
	}
	for _, tt := range tests {
		if got := arrow(f.DeltaAt(tt.cell)); got != tt.want {
			t.Errorf("arrow at %v = %q, want %q", tt.cell, got, tt.want)
		}
	}
	if r, _ := fieldGlyph(f, geom.C(2, 2), modeArrows); r != '◎' {
		t.Errorf("goal glyph = %q", r)
	}
}

func TestDistanceGlyph(t *testing.T) {
	tests := []struct {
		distance, max float64
		want          rune
	}{
		{0, 8, '0'},
		{7, 8, '7'},
		{13, 16, '3'},
		{-1, 8, ' '},
	}
	for _, tt := range tests {
		if got, _ := distanceGlyph(tt.distance, tt.max); got != tt.want {
			t.Errorf("distanceGlyph(%v, %v) = %q, want %q", tt.distance, tt.max, got, tt.want)
		}
	}
}

func TestScreenPosFlipsY(t *testing.T) {
	f, err := navigation.NewFlowField(4, 3, navigation.Identity, geom.C(0, 0), navigation.DefaultObstaclePenalty)
	if err != nil {
		t.Fatal(err)
	}
	if x, y := screenPos(f, geom.C(0, 0), 1, 1); x != 1 || y != 3 {
		t.Errorf("origin cell at %d,%d", x, y)
	}
	if x, y := screenPos(f, geom.C(3, 2), 1, 1); x != 7 || y != 1 {
		t.Errorf("far cell at %d,%d", x, y)
	}
}

func TestTrailCells(t *testing.T) {
	f, err := navigation.NewFlowField(5, 5, navigation.Identity, geom.C(0, 0), navigation.DefaultObstaclePenalty)
	if err != nil {
		t.Fatal(err)
	}
	var tr world.Trail
	if got := trailCells(f, &tr); got != nil {
		t.Fatalf("empty trail = %v", got)
	}
	for _, y := range []float64{6, 4, 3, 2.6, 2.2, 1.8} {
		tr.Record(geom.V(0, y))
	}

	got := trailCells(f, &tr)
	want := []geom.Cell{geom.C(0, 4), geom.C(0, 3)}
	if len(got) != len(want) {
		t.Fatalf("trail cells = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trail cells = %v, want %v", got, want)
			break
		}
	}
}

func TestAimCell(t *testing.T) {
	f, err := navigation.NewFlowField(5, 5, navigation.Identity, geom.C(0, 0), navigation.DefaultObstaclePenalty)
	if err != nil {
		t.Fatal(err)
	}
	classes := world.DefaultObstacleClasses()

	tests := []struct {
		name     string
		obstacle world.Obstacle
		want     geom.Cell
		ok       bool
	}{
		{"cooling tower", world.Obstacle{Type: world.ObstacleArcher, Cooldown: 0.3, LastTarget: geom.V(1.2, 3.4)}, geom.C(1, 3), true},
		{"ready tower", world.Obstacle{Type: world.ObstacleArcher, LastTarget: geom.V(1.2, 3.4)}, geom.Cell{}, false},
		{"wall", world.Obstacle{Type: world.ObstacleWall, Cooldown: 0.3}, geom.Cell{}, false},
		{"aim off grid", world.Obstacle{Type: world.ObstacleBallista, Cooldown: 1, LastTarget: geom.V(9, 9)}, geom.C(9, 9), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := aimCell(f, &tt.obstacle, classes[tt.obstacle.Type])
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("aimCell = %v, %v; want %v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
