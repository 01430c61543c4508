package geom

import "testing"

func TestNormalize(t *testing.T) {
	n, ok := V(3, 4).Normalize()
	if !ok {
		t.Fatal("expected non-zero vector to normalize")
	}
	if n.X != 0.6 || n.Y != 0.8 {
		t.Errorf("got %+v, want {0.6 0.8}", n)
	}

	z, ok := V(0, 0).Normalize()
	if ok || !z.IsZero() {
		t.Errorf("zero vector: got %+v ok=%v", z, ok)
	}
}

func TestCellManhattan(t *testing.T) {
	tests := []struct {
		a, b Cell
		want int
	}{
		{C(0, 0), C(0, 0), 0},
		{C(0, 6), C(0, 0), 6},
		{C(-2, 3), C(1, -1), 7},
	}
	for _, tt := range tests {
		if got := tt.a.Manhattan(tt.b); got != tt.want {
			t.Errorf("%v.Manhattan(%v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
	if !C(1, 1).Adjacent(C(1, 2)) || C(1, 1).Adjacent(C(2, 2)) {
		t.Error("adjacency must only accept axis neighbours")
	}
}
