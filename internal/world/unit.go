package world

import "github.com/l1jgo/towerdef/internal/geom"

// TrailLength is the number of recent positions kept per unit.
const TrailLength = 8

// TrailSpacing is the distance a unit must move before a new trail point is kept.
const TrailSpacing = 0.25

// Unit is the pooled record of a mobile unit. Current and Next are always
// equal or axis neighbours.
type Unit struct {
	Type         UnitType
	Current      geom.Cell
	Next         geom.Cell
	Position     geom.Vec2
	Velocity     geom.Vec2
	Walked       float64
	Trail        Trail
	Damage       float64
	FutureDamage float64 // committed by projectiles in flight
	ContactTime  float64
	SpawnedAt    float64
}

// Trail is a fixed ring of recent positions, most recent first.
type Trail struct {
	points [TrailLength]geom.Vec2
	count  int
}

// Record keeps p when the trail is empty or p is more than TrailSpacing away
// from the latest point. It reports whether p was kept.
func (t *Trail) Record(p geom.Vec2) bool {
	if t.count > 0 && t.points[0].DistanceSqr(p) <= TrailSpacing*TrailSpacing {
		return false
	}
	copy(t.points[1:], t.points[:TrailLength-1])
	t.points[0] = p
	if t.count < TrailLength {
		t.count++
	}
	return true
}

func (t *Trail) Len() int { return t.count }

// At returns the i-th most recent point.
func (t *Trail) At(i int) geom.Vec2 { return t.points[i] }
