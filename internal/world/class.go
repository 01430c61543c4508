package world

import "fmt"

// UnitType selects an immutable UnitClass.
type UnitType uint8

const (
	UnitNone UnitType = iota
	UnitMinion
	UnitRunner
	UnitBrute
	unitTypeCount
)

var unitTypeNames = [unitTypeCount]string{"none", "minion", "runner", "brute"}

func (t UnitType) String() string {
	if t < unitTypeCount {
		return unitTypeNames[t]
	}
	return fmt.Sprintf("unit(%d)", uint8(t))
}

// Valid reports whether t names a spawnable unit class.
func (t UnitType) Valid() bool { return t > UnitNone && t < unitTypeCount }

// ParseUnitType maps a data-file name to its UnitType.
func ParseUnitType(name string) (UnitType, error) {
	for i := UnitMinion; i < unitTypeCount; i++ {
		if unitTypeNames[i] == name {
			return i, nil
		}
	}
	return UnitNone, fmt.Errorf("unknown unit type %q", name)
}

// ObstacleType selects an immutable ObstacleClass.
type ObstacleType uint8

const (
	ObstacleNone ObstacleType = iota
	ObstacleBase
	ObstacleWall
	ObstacleArcher
	ObstacleBallista
	ObstacleCatapult
	obstacleTypeCount
)

var obstacleTypeNames = [obstacleTypeCount]string{"none", "base", "wall", "archer", "ballista", "catapult"}

func (t ObstacleType) String() string {
	if t < obstacleTypeCount {
		return obstacleTypeNames[t]
	}
	return fmt.Sprintf("obstacle(%d)", uint8(t))
}

func (t ObstacleType) Valid() bool { return t > ObstacleNone && t < obstacleTypeCount }

// ParseObstacleType maps a data-file name to its ObstacleType.
func ParseObstacleType(name string) (ObstacleType, error) {
	for i := ObstacleBase; i < obstacleTypeCount; i++ {
		if obstacleTypeNames[i] == name {
			return i, nil
		}
	}
	return ObstacleNone, fmt.Errorf("unknown obstacle type %q", name)
}

// UnitClass is the read-only configuration shared by every unit of a type.
type UnitClass struct {
	MaxHealth           float64
	MaxSpeed            float64
	MaxAcceleration     float64
	Radius              float64
	RequiredContactTime float64
	ExplosionDamage     float64
	ExplosionRange      float64
	ExplosionPushback   float64
	Reward              int
}

// ObstacleClass is the read-only configuration of an obstacle type. Classes
// with a zero Range never fire.
type ObstacleClass struct {
	MaxHealth       float64
	BlocksPath      bool
	Cost            int
	Cooldown        float64
	Damage          float64
	Range           float64
	ProjectileSpeed float64
}

// Armed reports whether the class fires projectiles.
func (c ObstacleClass) Armed() bool {
	return c.Range > 0 && c.ProjectileSpeed > 0 && c.Damage > 0
}

// UnitClasses is indexed by UnitType.
type UnitClasses [unitTypeCount]UnitClass

// ObstacleClasses is indexed by ObstacleType.
type ObstacleClasses [obstacleTypeCount]ObstacleClass

// DefaultUnitClasses returns the built-in unit table. Data files may
// override any entry.
func DefaultUnitClasses() UnitClasses {
	minion := UnitClass{
		MaxHealth:           10,
		MaxSpeed:            0.6,
		MaxAcceleration:     1.0,
		Radius:              0.25,
		RequiredContactTime: 0.5,
		ExplosionDamage:     1.0,
		ExplosionRange:      1.0,
		ExplosionPushback:   0.25,
		Reward:              1,
	}
	runner := minion
	runner.MaxHealth = 5
	runner.MaxSpeed = 1.2
	runner.MaxAcceleration = 2.0
	runner.Radius = 0.2

	brute := minion
	brute.MaxHealth = 30
	brute.MaxSpeed = 0.4
	brute.MaxAcceleration = 0.6
	brute.Radius = 0.35
	brute.RequiredContactTime = 1.0
	brute.ExplosionDamage = 4
	brute.ExplosionRange = 1.5
	brute.ExplosionPushback = 0.4
	brute.Reward = 3

	var t UnitClasses
	t[UnitMinion] = minion
	t[UnitRunner] = runner
	t[UnitBrute] = brute
	return t
}

// DefaultObstacleClasses returns the built-in obstacle table.
func DefaultObstacleClasses() ObstacleClasses {
	var t ObstacleClasses
	t[ObstacleBase] = ObstacleClass{MaxHealth: 10}
	t[ObstacleWall] = ObstacleClass{MaxHealth: 10, BlocksPath: true, Cost: 2}
	t[ObstacleArcher] = ObstacleClass{
		MaxHealth:       10,
		BlocksPath:      true,
		Cost:            6,
		Cooldown:        0.5,
		Damage:          3,
		Range:           3,
		ProjectileSpeed: 4,
	}
	t[ObstacleBallista] = ObstacleClass{
		MaxHealth:       10,
		BlocksPath:      true,
		Cost:            9,
		Cooldown:        1.5,
		Damage:          6,
		Range:           6,
		ProjectileSpeed: 6,
	}
	t[ObstacleCatapult] = ObstacleClass{
		MaxHealth:       10,
		BlocksPath:      true,
		Cost:            10,
		Cooldown:        0.5,
		Damage:          2,
		Range:           4,
		ProjectileSpeed: 4,
	}
	return t
}
