package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/world"
)

// WaveEntry spawns Count units of one type at Spawn. Entries sharing a Wave
// number run together; the first spawn waits Delay seconds and each later one
// Interval seconds plus a random share of Jitter.
type WaveEntry struct {
	Unit     string    `yaml:"unit"`
	Wave     int       `yaml:"wave"`
	Count    int       `yaml:"count"`
	Interval float64   `yaml:"interval"`
	Delay    float64   `yaml:"delay"`
	Spawn    geom.Cell `yaml:"spawn"`
	Jitter   float64   `yaml:"jitter"`

	UnitType world.UnitType `yaml:"-"`
}

// PlacedObstacle is an obstacle present when the level starts.
type PlacedObstacle struct {
	Type string `yaml:"type"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`

	ObstacleType world.ObstacleType `yaml:"-"`
}

func (p PlacedObstacle) Cell() geom.Cell { return geom.Cell{X: p.X, Y: p.Y} }

// LevelEntry is one playable level.
type LevelEntry struct {
	Name        string           `yaml:"name"`
	InitialGold int              `yaml:"initial_gold"`
	Obstacles   []PlacedObstacle `yaml:"obstacles"`
	Waves       []WaveEntry      `yaml:"waves"`
}

// WaveCount returns the number of distinct wave numbers.
func (l *LevelEntry) WaveCount() int {
	seen := make(map[int]struct{})
	for _, w := range l.Waves {
		seen[w.Wave] = struct{}{}
	}
	return len(seen)
}

type levelFile struct {
	Levels []LevelEntry `yaml:"levels"`
}

// LevelTable provides level lookup by name.
type LevelTable struct {
	levels map[string]*LevelEntry
}

// LoadLevelTable loads levels.yaml.
func LoadLevelTable(path string) (*LevelTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read levels: %w", err)
	}
	var f levelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse levels: %w", err)
	}
	t := &LevelTable{levels: make(map[string]*LevelEntry, len(f.Levels))}
	for i := range f.Levels {
		l := &f.Levels[i]
		if l.Name == "" {
			return nil, fmt.Errorf("level %d has no name", i)
		}
		if _, dup := t.levels[l.Name]; dup {
			return nil, fmt.Errorf("level %s defined twice", l.Name)
		}
		for j := range l.Waves {
			w := &l.Waves[j]
			typ, err := world.ParseUnitType(w.Unit)
			if err != nil {
				return nil, fmt.Errorf("level %s wave entry %d: %w", l.Name, j, err)
			}
			if w.Count < 0 || w.Interval < 0 || w.Delay < 0 || w.Jitter < 0 {
				return nil, fmt.Errorf("level %s wave entry %d: negative count or timing", l.Name, j)
			}
			w.UnitType = typ
		}
		for j := range l.Obstacles {
			o := &l.Obstacles[j]
			typ, err := world.ParseObstacleType(o.Type)
			if err != nil {
				return nil, fmt.Errorf("level %s obstacle %d: %w", l.Name, j, err)
			}
			o.ObstacleType = typ
		}
		t.levels[l.Name] = l
	}
	return t, nil
}

// Get returns the level with the given name, or nil.
func (t *LevelTable) Get(name string) *LevelEntry {
	return t.levels[name]
}

// Names returns the level names in sorted order.
func (t *LevelTable) Names() []string {
	names := make([]string, 0, len(t.levels))
	for n := range t.levels {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (t *LevelTable) Count() int { return len(t.levels) }
