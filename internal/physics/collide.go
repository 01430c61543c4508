package physics

import (
	"math"

	"github.com/l1jgo/towerdef/internal/geom"
)

const (
	// CoincidentEpsilonSqr: unit pairs closer than this are left alone.
	CoincidentEpsilonSqr = 0.001
	// SoftCorrection is the share of the overlap each unit is moved per pass.
	SoftCorrection = 1.0 / 5
)

// SeparateCircles returns the correction for two overlapping circles: a moves
// by -d, b by +d. ok is false when they do not overlap or their centres
// (nearly) coincide.
func SeparateCircles(a, b geom.Vec2, ra, rb float64) (d geom.Vec2, ok bool) {
	distSqr := a.DistanceSqr(b)
	sum := ra + rb
	if distSqr >= sum*sum || distSqr <= CoincidentEpsilonSqr {
		return geom.Vec2{}, false
	}
	dist := math.Sqrt(distSqr)
	correction := (sum - dist) * SoftCorrection
	return b.Sub(a).Scale(correction / dist), true
}

// ContactKind classifies a circle/square contact.
type ContactKind uint8

const (
	ContactNone ContactKind = iota
	ContactVertical
	ContactHorizontal
	ContactCorner
)

// SquareContact describes a resolved circle/square contact.
type SquareContact struct {
	Kind     ContactKind
	Position geom.Vec2 // circle centre after the push-out
	Point    geom.Vec2 // contact point on the square
}

// ResolveCircleSquare pushes a circle out of an axis-aligned square of the
// given half side. A circle exactly touching the square still counts as a
// contact (zero push).
func ResolveCircleSquare(center geom.Vec2, radius float64, square geom.Vec2, half float64) (SquareContact, bool) {
	reach := radius + half*math.Sqrt2
	if center.DistanceSqr(square) > reach*reach {
		return SquareContact{}, false
	}

	dx := square.X - center.X
	dy := square.Y - center.Y
	absDx, absDy := math.Abs(dx), math.Abs(dy)

	switch {
	case absDx <= half && absDx <= absDy:
		overlap := radius + half - absDy
		if overlap < 0 {
			return SquareContact{}, false
		}
		dir := towards(dy)
		pos := geom.Vec2{X: center.X, Y: center.Y + dir*overlap}
		return SquareContact{
			Kind:     ContactVertical,
			Position: pos,
			Point:    geom.Vec2{X: pos.X, Y: square.Y + dir*half},
		}, true

	case absDy <= half && absDy <= absDx:
		overlap := radius + half - absDx
		if overlap < 0 {
			return SquareContact{}, false
		}
		dir := towards(dx)
		pos := geom.Vec2{X: center.X + dir*overlap, Y: center.Y}
		return SquareContact{
			Kind:     ContactHorizontal,
			Position: pos,
			Point:    geom.Vec2{X: square.X + dir*half, Y: pos.Y},
		}, true
	}

	// Nearest a corner.
	corner := geom.Vec2{X: square.X + towards(dx)*half, Y: square.Y + towards(dy)*half}
	cornerSqr := center.DistanceSqr(corner)
	if cornerSqr > radius*radius {
		return SquareContact{}, false
	}
	cornerDist := math.Sqrt(cornerSqr)
	overlap := radius - cornerDist
	var away geom.Vec2
	if cornerDist > 0 {
		away = center.Sub(corner).Scale(1 / cornerDist)
	} else {
		away, _ = corner.Sub(square).Normalize()
	}
	return SquareContact{
		Kind:     ContactCorner,
		Position: center.Add(away.Scale(overlap)),
		Point:    corner,
	}, true
}

// towards returns the push direction along an axis: -1 when the square lies
// on the positive side of the circle, +1 otherwise.
func towards(delta float64) float64 {
	if delta > 0 {
		return -1
	}
	return 1
}
