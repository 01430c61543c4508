package event

import (
	"github.com/l1jgo/towerdef/internal/core/ecs"
	"github.com/l1jgo/towerdef/internal/geom"
)

// RetireReason tells why a unit slot was released.
type RetireReason uint8

const (
	RetireKilled   RetireReason = iota + 1 // damage reached max health
	RetireLeaked                           // reached the goal cell
	RetireExploded                         // sustained obstacle contact
)

func (r RetireReason) String() string {
	switch r {
	case RetireKilled:
		return "killed"
	case RetireLeaked:
		return "leaked"
	case RetireExploded:
		return "exploded"
	}
	return "unknown"
}

type UnitSpawned struct {
	Unit     ecs.Handle
	UnitType uint8
	Cell     geom.Cell
}

type UnitRetired struct {
	Unit     ecs.Handle
	UnitType uint8
	Reason   RetireReason
	Position geom.Vec2
	Reward   int // credited reward, 0 unless killed
}

type Explosion struct {
	Unit     ecs.Handle
	Obstacle ecs.Handle
	Point    geom.Vec2
	Damage   float64
	Hit      int // other units caught in the blast
}

type ObstacleDestroyed struct {
	Obstacle     ecs.Handle
	ObstacleType uint8
	Cell         geom.Cell
}

type ProjectileLanded struct {
	Unit   ecs.Handle
	Damage float64
	Hit    bool // false when the target handle had gone stale
}
