package navigation

import (
	"fmt"

	"github.com/l1jgo/towerdef/internal/core/ecs"
	"github.com/l1jgo/towerdef/internal/geom"
)

// DefaultObstaclePenalty is added to the distance stored in an obstacle cell.
const DefaultObstaclePenalty = 8.0

// Unset marks a cell the last rebuild never reached.
const Unset = -1.0

// Out-of-bounds gradient biases; they keep the finite-difference fallback
// from collapsing to zero on symmetric ties.
const (
	fallbackBiasX = 0.25
	fallbackBiasY = 0.125
)

// Delta is the axis step from a cell's BFS predecessor to the cell.
type Delta struct {
	X, Y int8
}

// ObstacleLayout exposes the cells that currently block the field.
type ObstacleLayout interface {
	EachBlocker(fn func(owner ecs.Handle, cell geom.Cell))
}

// FlowField stores per-cell distance to a single goal cell and the direction
// from each cell's predecessor. It is allocated once and rebuilt every tick.
type FlowField struct {
	width, height int
	transform     Transform
	goal          geom.Cell
	penalty       float64

	distances []float64
	owners    []ecs.Handle
	deltas    []Delta

	maxDistance float64
	rebuilds    uint64

	// Reusable queue buffer to avoid allocations across rebuilds
	queue nodeQueue

	trace func(idx int, prev, next float64) // test hook
}

// NewFlowField allocates a width x height field. The goal must lie on the grid.
func NewFlowField(width, height int, transform Transform, goal geom.Cell, penalty float64) (*FlowField, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("flow field size %dx%d", width, height)
	}
	f := &FlowField{
		width:     width,
		height:    height,
		transform: transform,
		goal:      goal,
		penalty:   penalty,
		distances: make([]float64, width*height),
		owners:    make([]ecs.Handle, width*height),
		deltas:    make([]Delta, width*height),
		queue:     newNodeQueue(width * height),
	}
	if !f.InBounds(goal) {
		return nil, fmt.Errorf("goal %v outside %dx%d grid", goal, width, height)
	}
	f.reset()
	return f, nil
}

func (f *FlowField) Width() int           { return f.width }
func (f *FlowField) Height() int          { return f.height }
func (f *FlowField) Goal() geom.Cell      { return f.goal }
func (f *FlowField) Transform() Transform { return f.transform }
func (f *FlowField) MaxDistance() float64 { return f.maxDistance }
func (f *FlowField) Rebuilds() uint64     { return f.rebuilds }

// GoalWorld returns the world-space centre of the goal cell.
func (f *FlowField) GoalWorld() geom.Vec2 { return f.transform.ToWorld(f.goal) }

func (f *FlowField) InBounds(c geom.Cell) bool {
	return c.X >= 0 && c.X < f.width && c.Y >= 0 && c.Y < f.height
}

func (f *FlowField) index(c geom.Cell) int { return c.Y*f.width + c.X }

func (f *FlowField) reset() {
	for i := range f.distances {
		f.distances[i] = Unset
		f.owners[i] = 0
		f.deltas[i] = Delta{}
	}
	f.maxDistance = 0
}

// Rebuild recomputes every cell from the current obstacle layout with a FIFO
// breadth-first expansion from the goal. A cell is only rewritten with a
// strictly smaller distance; obstacle cells store distance + penalty but keep
// their backpointer so a path can still run through them.
func (f *FlowField) Rebuild(layout ObstacleLayout) {
	f.reset()
	if layout != nil {
		layout.EachBlocker(func(owner ecs.Handle, cell geom.Cell) {
			if f.InBounds(cell) {
				f.owners[f.index(cell)] = owner
			}
		})
	}

	f.queue.reset()
	f.queue.push(node{cell: f.goal, from: f.goal, distance: 0})
	for {
		n, ok := f.queue.pop()
		if !ok {
			break
		}
		if !f.InBounds(n.cell) {
			continue
		}
		idx := f.index(n.cell)
		distance := n.distance
		if !f.owners[idx].IsZero() {
			distance += f.penalty
		}
		if prev := f.distances[idx]; prev >= 0 && prev <= distance {
			continue
		}

		f.deltas[idx] = Delta{
			X: int8(n.cell.X - n.from.X),
			Y: int8(n.cell.Y - n.from.Y),
		}
		if f.trace != nil {
			f.trace(idx, f.distances[idx], distance)
		}
		f.distances[idx] = distance
		if distance > f.maxDistance {
			f.maxDistance = distance
		}

		next := distance + 1
		f.queue.push(node{cell: geom.Cell{X: n.cell.X, Y: n.cell.Y + 1}, from: n.cell, distance: next})
		f.queue.push(node{cell: geom.Cell{X: n.cell.X, Y: n.cell.Y - 1}, from: n.cell, distance: next})
		f.queue.push(node{cell: geom.Cell{X: n.cell.X + 1, Y: n.cell.Y}, from: n.cell, distance: next})
		f.queue.push(node{cell: geom.Cell{X: n.cell.X - 1, Y: n.cell.Y}, from: n.cell, distance: next})
	}
	f.rebuilds++
}

// DistanceAt returns the stored distance for grid cells and the Manhattan
// distance to the goal for cells off the grid.
func (f *FlowField) DistanceAt(c geom.Cell) float64 {
	if !f.InBounds(c) {
		return float64(c.Manhattan(f.goal))
	}
	return f.distances[f.index(c)]
}

// Owner returns the obstacle occupying c, or the zero handle.
func (f *FlowField) Owner(c geom.Cell) ecs.Handle {
	if !f.InBounds(c) {
		return 0
	}
	return f.owners[f.index(c)]
}

// DeltaAt returns the backpointer of c (zero off the grid and at the goal).
func (f *FlowField) DeltaAt(c geom.Cell) Delta {
	if !f.InBounds(c) {
		return Delta{}
	}
	return f.deltas[f.index(c)]
}

// GradientAt returns the desired step direction at a world position. On the
// grid it is the negated backpointer, a unit axis vector or zero. Off the grid
// it is a finite-difference estimate over DistanceAt, in distance units.
func (f *FlowField) GradientAt(p geom.Vec2) geom.Vec2 {
	c := f.transform.ToGrid(p)
	if f.InBounds(c) {
		d := f.deltas[f.index(c)]
		return geom.Vec2{X: float64(-d.X), Y: float64(-d.Y)}
	}
	n := f.DistanceAt(geom.Cell{X: c.X, Y: c.Y - 1})
	s := f.DistanceAt(geom.Cell{X: c.X, Y: c.Y + 1})
	w := f.DistanceAt(geom.Cell{X: c.X - 1, Y: c.Y})
	e := f.DistanceAt(geom.Cell{X: c.X + 1, Y: c.Y})
	return geom.Vec2{X: w - e + fallbackBiasX, Y: n - s + fallbackBiasY}
}

// NextCell returns the waypoint that follows c. done is true when c is the
// goal or the gradient at c is zero; the waypoint then stays at c.
func (f *FlowField) NextCell(c geom.Cell) (next geom.Cell, done bool) {
	if c == f.goal {
		return c, true
	}
	g := f.GradientAt(f.transform.ToWorld(c))
	if g.IsZero() {
		return c, true
	}
	if abs(g.X) > abs(g.Y) {
		return geom.Cell{X: c.X + sign(g.X), Y: c.Y}, false
	}
	return geom.Cell{X: c.X, Y: c.Y + sign(g.Y)}, false
}

// CellCenter returns the world-space centre of c.
func (f *FlowField) CellCenter(c geom.Cell) geom.Vec2 { return f.transform.ToWorld(c) }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v float64) int {
	if v > 0 {
		return 1
	}
	return -1
}
