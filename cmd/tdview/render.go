package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/navigation"
	"github.com/l1jgo/towerdef/internal/world"
)

// fieldMode selects what empty cells show.
type fieldMode uint8

const (
	modeArrows fieldMode = iota
	modeDistance
	modeBlank
	modeCount
)

func (m fieldMode) String() string {
	switch m {
	case modeArrows:
		return "arrows"
	case modeDistance:
		return "distance"
	}
	return "blank"
}

var (
	styleDim      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGoal     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleWall     = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleTower    = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleBase     = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleUnit     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleShot     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleTrail    = tcell.StyleDefault.Foreground(tcell.ColorMaroon)
	styleAim      = tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal)
	styleDistance = []tcell.Color{tcell.ColorGreen, tcell.ColorOlive, tcell.ColorYellow, tcell.ColorOrange, tcell.ColorMaroon}
)

// arrow returns the glyph for the step direction of a cell on screen, where
// world +y is up.
func arrow(d navigation.Delta) rune {
	switch {
	case d.X < 0:
		return '→'
	case d.X > 0:
		return '←'
	case d.Y < 0:
		return '↑'
	case d.Y > 0:
		return '↓'
	}
	return '·'
}

func obstacleGlyph(t world.ObstacleType) (rune, tcell.Style) {
	switch t {
	case world.ObstacleBase:
		return 'H', styleBase
	case world.ObstacleWall:
		return '#', styleWall
	case world.ObstacleArcher:
		return 'A', styleTower
	case world.ObstacleBallista:
		return 'L', styleTower
	case world.ObstacleCatapult:
		return 'C', styleTower
	}
	return '?', styleDim
}

func unitGlyph(t world.UnitType) rune {
	switch t {
	case world.UnitRunner:
		return 'r'
	case world.UnitBrute:
		return 'M'
	}
	return 'o'
}

// distanceGlyph shows the last digit of the distance, coloured by how far the
// cell is along the field.
func distanceGlyph(distance, maxDistance float64) (rune, tcell.Style) {
	if distance < 0 {
		return ' ', styleDim
	}
	band := 0
	if maxDistance > 0 {
		band = int(distance / maxDistance * float64(len(styleDistance)-1))
		band = min(max(band, 0), len(styleDistance)-1)
	}
	return rune('0' + int(distance)%10), tcell.StyleDefault.Foreground(styleDistance[band])
}

// fieldGlyph is what an empty cell shows.
func fieldGlyph(f *navigation.FlowField, c geom.Cell, mode fieldMode) (rune, tcell.Style) {
	if c == f.Goal() {
		return '◎', styleGoal
	}
	switch mode {
	case modeArrows:
		return arrow(f.DeltaAt(c)), styleDim
	case modeDistance:
		return distanceGlyph(f.DistanceAt(c), f.MaxDistance())
	}
	return ' ', styleDim
}

// trailCells returns the cells a unit passed through, oldest first, without
// repeats and without the cell it stands on.
func trailCells(f *navigation.FlowField, tr *world.Trail) []geom.Cell {
	if tr.Len() == 0 {
		return nil
	}
	tf := f.Transform()
	head := tf.ToGrid(tr.At(0))
	var out []geom.Cell
	for i := tr.Len() - 1; i > 0; i-- {
		c := tf.ToGrid(tr.At(i))
		if c == head || !f.InBounds(c) || (len(out) > 0 && out[len(out)-1] == c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// aimCell returns the cell a weapon last aimed at while it is still cooling
// down from that shot.
func aimCell(f *navigation.FlowField, o *world.Obstacle, class world.ObstacleClass) (geom.Cell, bool) {
	if class.Damage <= 0 || o.Cooldown <= 0 {
		return geom.Cell{}, false
	}
	c := f.Transform().ToGrid(o.LastTarget)
	return c, f.InBounds(c)
}

// screenPos maps a grid cell to terminal coordinates. Each cell is two
// columns wide and world +y points up.
func screenPos(f *navigation.FlowField, c geom.Cell, originX, originY int) (int, int) {
	return originX + 2*c.X, originY + f.Height() - 1 - c.Y
}
