package physics

import (
	"math"
	"testing"

	"github.com/l1jgo/towerdef/internal/geom"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSeparateCirclesReducesOverlap(t *testing.T) {
	tests := []struct {
		name   string
		a, b   geom.Vec2
		ra, rb float64
	}{
		{"axis", geom.V(0, 0), geom.V(0.3, 0), 0.25, 0.25},
		{"diagonal", geom.V(1, 1), geom.V(1.2, 1.1), 0.25, 0.4},
		{"deep", geom.V(0, 0), geom.V(0.05, 0), 0.5, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.a.Distance(tt.b)
			d, ok := SeparateCircles(tt.a, tt.b, tt.ra, tt.rb)
			if !ok {
				t.Fatal("overlap not detected")
			}
			after := tt.a.Sub(d).Distance(tt.b.Add(d))
			if !(after > before) {
				t.Errorf("distance %v -> %v, want increase", before, after)
			}
			if after > tt.ra+tt.rb {
				t.Errorf("soft correction overshot: %v > %v", after, tt.ra+tt.rb)
			}
			want := before + 2*(tt.ra+tt.rb-before)*SoftCorrection
			if !near(after, want) {
				t.Errorf("after = %v, want %v", after, want)
			}
		})
	}
}

func TestSeparateCirclesIgnores(t *testing.T) {
	if _, ok := SeparateCircles(geom.V(0, 0), geom.V(0, 0), 0.25, 0.25); ok {
		t.Error("coincident centres must be skipped")
	}
	if _, ok := SeparateCircles(geom.V(0, 0), geom.V(0.5, 0), 0.25, 0.25); ok {
		t.Error("touching circles do not overlap")
	}
	if _, ok := SeparateCircles(geom.V(0, 0), geom.V(3, 0), 0.25, 0.25); ok {
		t.Error("distant circles overlap")
	}
}

func TestResolveCircleSquare(t *testing.T) {
	tests := []struct {
		name      string
		center    geom.Vec2
		square    geom.Vec2
		wantKind  ContactKind
		wantPos   geom.Vec2
		wantPoint geom.Vec2
	}{
		{"below", geom.V(0, 0.4), geom.V(0, 1), ContactVertical, geom.V(0, 0.25), geom.V(0, 0.5)},
		{"above", geom.V(0.2, 1.6), geom.V(0, 1), ContactVertical, geom.V(0.2, 1.75), geom.V(0.2, 1.5)},
		{"left", geom.V(0.3, 0.1), geom.V(1, 0), ContactHorizontal, geom.V(0.25, 0.1), geom.V(0.5, 0.1)},
		{"right", geom.V(1.6, 0), geom.V(1, 0), ContactHorizontal, geom.V(1.75, 0), geom.V(1.5, 0)},
		{"touching", geom.V(0, 0.25), geom.V(0, 1), ContactVertical, geom.V(0, 0.25), geom.V(0, 0.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ResolveCircleSquare(tt.center, 0.25, tt.square, 0.5)
			if !ok {
				t.Fatal("no contact")
			}
			if c.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", c.Kind, tt.wantKind)
			}
			if !near(c.Position.X, tt.wantPos.X) || !near(c.Position.Y, tt.wantPos.Y) {
				t.Errorf("position = %+v, want %+v", c.Position, tt.wantPos)
			}
			if !near(c.Point.X, tt.wantPoint.X) || !near(c.Point.Y, tt.wantPoint.Y) {
				t.Errorf("point = %+v, want %+v", c.Point, tt.wantPoint)
			}
		})
	}
}

func TestResolveCircleSquareCorner(t *testing.T) {
	c, ok := ResolveCircleSquare(geom.V(0.4, 0.4), 0.25, geom.V(1, 1), 0.5)
	if !ok || c.Kind != ContactCorner {
		t.Fatalf("ok=%v kind=%v, want corner contact", ok, c.Kind)
	}
	if c.Point != geom.V(0.5, 0.5) {
		t.Errorf("corner = %+v", c.Point)
	}
	if d := c.Position.Distance(c.Point); !near(d, 0.25) {
		t.Errorf("distance to corner after push = %v, want 0.25", d)
	}
	if !(c.Position.X < 0.4 && c.Position.Y < 0.4) {
		t.Errorf("pushed the wrong way: %+v", c.Position)
	}
}

func TestResolveCircleSquareMisses(t *testing.T) {
	tests := []struct {
		name   string
		center geom.Vec2
	}{
		{"far away", geom.V(5, 5)},
		{"edge gap", geom.V(0, -0.3)},
		{"corner gap", geom.V(0.25, 0.45)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			square := geom.V(0, 1)
			if tt.name == "corner gap" {
				square = geom.V(1, 1)
			}
			if _, ok := ResolveCircleSquare(tt.center, 0.25, square, 0.5); ok {
				t.Error("unexpected contact")
			}
		})
	}
}
