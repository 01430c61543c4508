package navigation

import (
	"math"

	"github.com/l1jgo/towerdef/internal/geom"
)

// Transform maps grid cells to world space: cell (i, j) is centred on
// Translate + Scale*(i, j). Scale is uniform.
type Transform struct {
	Translate geom.Vec2
	Scale     float64
}

// Identity maps cell (i, j) onto world (i, j).
var Identity = Transform{Scale: 1}

func (t Transform) ToWorld(c geom.Cell) geom.Vec2 {
	return geom.Vec2{
		X: t.Translate.X + t.scale()*float64(c.X),
		Y: t.Translate.Y + t.scale()*float64(c.Y),
	}
}

// ToGrid returns the cell whose centre is nearest to p.
func (t Transform) ToGrid(p geom.Vec2) geom.Cell {
	return geom.Cell{
		X: int(math.Floor((p.X-t.Translate.X)/t.scale() + 0.5)),
		Y: int(math.Floor((p.Y-t.Translate.Y)/t.scale() + 0.5)),
	}
}

// CellSize returns the world-space side length of one cell.
func (t Transform) CellSize() float64 { return t.scale() }

func (t Transform) scale() float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}
