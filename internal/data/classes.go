package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/towerdef/internal/world"
)

// UnitClassEntry overrides the class of one unit type.
type UnitClassEntry struct {
	Name                string  `yaml:"name"`
	MaxHealth           float64 `yaml:"max_health"`
	MaxSpeed            float64 `yaml:"max_speed"`
	MaxAcceleration     float64 `yaml:"max_acceleration"`
	Radius              float64 `yaml:"radius"`
	RequiredContactTime float64 `yaml:"required_contact_time"`
	ExplosionDamage     float64 `yaml:"explosion_damage"`
	ExplosionRange      float64 `yaml:"explosion_range"`
	ExplosionPushback   float64 `yaml:"explosion_pushback"`
	Reward              int     `yaml:"reward"`

	Type world.UnitType `yaml:"-"`
}

func (e *UnitClassEntry) class() world.UnitClass {
	return world.UnitClass{
		MaxHealth:           e.MaxHealth,
		MaxSpeed:            e.MaxSpeed,
		MaxAcceleration:     e.MaxAcceleration,
		Radius:              e.Radius,
		RequiredContactTime: e.RequiredContactTime,
		ExplosionDamage:     e.ExplosionDamage,
		ExplosionRange:      e.ExplosionRange,
		ExplosionPushback:   e.ExplosionPushback,
		Reward:              e.Reward,
	}
}

type unitClassFile struct {
	Units []UnitClassEntry `yaml:"units"`
}

// UnitClassTable holds unit class overrides keyed by type.
type UnitClassTable struct {
	entries map[world.UnitType]*UnitClassEntry
}

// LoadUnitClassTable loads unit_classes.yaml.
func LoadUnitClassTable(path string) (*UnitClassTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit classes: %w", err)
	}
	var f unitClassFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse unit classes: %w", err)
	}
	t := &UnitClassTable{entries: make(map[world.UnitType]*UnitClassEntry, len(f.Units))}
	for i := range f.Units {
		e := &f.Units[i]
		typ, err := world.ParseUnitType(e.Name)
		if err != nil {
			return nil, fmt.Errorf("unit classes entry %d: %w", i, err)
		}
		if e.MaxHealth <= 0 || e.Radius <= 0 || e.MaxSpeed < 0 || e.MaxAcceleration < 0 {
			return nil, fmt.Errorf("unit class %s: health and radius must be positive, speed and acceleration non-negative", e.Name)
		}
		if _, dup := t.entries[typ]; dup {
			return nil, fmt.Errorf("unit class %s defined twice", e.Name)
		}
		e.Type = typ
		t.entries[typ] = e
	}
	return t, nil
}

// Get returns the override for typ, or nil.
func (t *UnitClassTable) Get(typ world.UnitType) *UnitClassEntry {
	return t.entries[typ]
}

func (t *UnitClassTable) Count() int { return len(t.entries) }

// Apply returns base with every loaded override substituted.
func (t *UnitClassTable) Apply(base world.UnitClasses) world.UnitClasses {
	for typ, e := range t.entries {
		base[typ] = e.class()
	}
	return base
}

// ObstacleClassEntry overrides the class of one obstacle type.
type ObstacleClassEntry struct {
	Name            string  `yaml:"name"`
	MaxHealth       float64 `yaml:"max_health"`
	BlocksPath      bool    `yaml:"blocks_path"`
	Cost            int     `yaml:"cost"`
	Cooldown        float64 `yaml:"cooldown"`
	Damage          float64 `yaml:"damage"`
	Range           float64 `yaml:"range"`
	ProjectileSpeed float64 `yaml:"projectile_speed"`

	Type world.ObstacleType `yaml:"-"`
}

type obstacleClassFile struct {
	Obstacles []ObstacleClassEntry `yaml:"obstacles"`
}

// ObstacleClassTable holds obstacle class overrides keyed by type.
type ObstacleClassTable struct {
	entries map[world.ObstacleType]*ObstacleClassEntry
}

// LoadObstacleClassTable loads obstacle_classes.yaml.
func LoadObstacleClassTable(path string) (*ObstacleClassTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read obstacle classes: %w", err)
	}
	var f obstacleClassFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse obstacle classes: %w", err)
	}
	t := &ObstacleClassTable{entries: make(map[world.ObstacleType]*ObstacleClassEntry, len(f.Obstacles))}
	for i := range f.Obstacles {
		e := &f.Obstacles[i]
		typ, err := world.ParseObstacleType(e.Name)
		if err != nil {
			return nil, fmt.Errorf("obstacle classes entry %d: %w", i, err)
		}
		if e.MaxHealth <= 0 {
			return nil, fmt.Errorf("obstacle class %s: max_health must be positive", e.Name)
		}
		if _, dup := t.entries[typ]; dup {
			return nil, fmt.Errorf("obstacle class %s defined twice", e.Name)
		}
		e.Type = typ
		t.entries[typ] = e
	}
	return t, nil
}

func (t *ObstacleClassTable) Get(typ world.ObstacleType) *ObstacleClassEntry {
	return t.entries[typ]
}

func (t *ObstacleClassTable) Count() int { return len(t.entries) }

// Apply returns base with every loaded override substituted.
func (t *ObstacleClassTable) Apply(base world.ObstacleClasses) world.ObstacleClasses {
	for typ, e := range t.entries {
		base[typ] = world.ObstacleClass{
			MaxHealth:       e.MaxHealth,
			BlocksPath:      e.BlocksPath,
			Cost:            e.Cost,
			Cooldown:        e.Cooldown,
			Damage:          e.Damage,
			Range:           e.Range,
			ProjectileSpeed: e.ProjectileSpeed,
		}
	}
	return base
}
