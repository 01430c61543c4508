package world

import (
	"github.com/l1jgo/towerdef/internal/core/ecs"
	"github.com/l1jgo/towerdef/internal/geom"
)

// Obstacle is a static square of side 1 centred on its cell.
type Obstacle struct {
	Type       ObstacleType
	Cell       geom.Cell
	Damage     float64
	Cooldown   float64   // seconds until the weapon may fire again
	LastTarget geom.Vec2 // last aim point
	Destroyed  bool      // released at the end of the tick
}

// Projectile is an in-flight shot. Its damage lands on Unit at ArrivesAt if
// the handle still resolves.
type Projectile struct {
	Origin    geom.Vec2
	Target    geom.Vec2
	ShotAt    float64
	ArrivesAt float64
	Damage    float64
	Unit      ecs.Handle
}

// Progress returns the flight fraction at time now, clamped to [0, 1].
func (p *Projectile) Progress(now float64) float64 {
	span := p.ArrivesAt - p.ShotAt
	if span <= 0 {
		return 1
	}
	f := (now - p.ShotAt) / span
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// CellIndex is a single-occupant cell map for O(1) obstacle placement checks.
type CellIndex struct {
	cells map[geom.Cell]ecs.Handle
}

func newCellIndex() *CellIndex {
	return &CellIndex{cells: make(map[geom.Cell]ecs.Handle)}
}

// Occupy claims c for h. It returns false if c is already taken.
func (g *CellIndex) Occupy(c geom.Cell, h ecs.Handle) bool {
	if _, ok := g.cells[c]; ok {
		return false
	}
	g.cells[c] = h
	return true
}

// Vacate frees c if h holds it.
func (g *CellIndex) Vacate(c geom.Cell, h ecs.Handle) {
	if g.cells[c] == h {
		delete(g.cells, c)
	}
}

// At returns the occupant of c, or the zero handle.
func (g *CellIndex) At(c geom.Cell) ecs.Handle { return g.cells[c] }

func (g *CellIndex) Len() int { return len(g.cells) }
