package geom

import "math"

// Vec2 is a world-space position or direction on the ground plane.
type Vec2 struct {
	X float64 `msgpack:"x"`
	Y float64 `msgpack:"y"`
}

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2            { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2            { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2       { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) LengthSqr() float64         { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Length() float64            { return math.Sqrt(v.LengthSqr()) }
func (v Vec2) DistanceSqr(o Vec2) float64 { return v.Sub(o).LengthSqr() }
func (v Vec2) Distance(o Vec2) float64    { return v.Sub(o).Length() }
func (v Vec2) IsZero() bool               { return v.X == 0 && v.Y == 0 }

// Normalize returns the unit vector along v and false for a zero-length v.
func (v Vec2) Normalize() (Vec2, bool) {
	l := v.Length()
	if l == 0 {
		return Vec2{}, false
	}
	return Vec2{v.X / l, v.Y / l}, true
}

// Cell is an integer grid coordinate.
type Cell struct {
	X int `msgpack:"x" yaml:"x"`
	Y int `msgpack:"y" yaml:"y"`
}

func C(x, y int) Cell { return Cell{X: x, Y: y} }

func (c Cell) Add(o Cell) Cell { return Cell{c.X + o.X, c.Y + o.Y} }
func (c Cell) Sub(o Cell) Cell { return Cell{c.X - o.X, c.Y - o.Y} }

// Manhattan returns |dx| + |dy| between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

// Adjacent reports whether o is c or one of its four axis neighbours.
func (c Cell) Adjacent(o Cell) bool {
	return c.Manhattan(o) <= 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
