package sim

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/config"
	"github.com/l1jgo/towerdef/internal/core/event"
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/data"
	"github.com/l1jgo/towerdef/internal/economy"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/navigation"
	"github.com/l1jgo/towerdef/internal/physics"
	"github.com/l1jgo/towerdef/internal/scripting"
	"github.com/l1jgo/towerdef/internal/snapshot"
	"github.com/l1jgo/towerdef/internal/system"
	"github.com/l1jgo/towerdef/internal/world"
)

// Tables bundles the data files a session is built from.
type Tables struct {
	Units     *data.UnitClassTable
	Obstacles *data.ObstacleClassTable
	Levels    *data.LevelTable
}

// LoadTables reads the three data files named in cfg.
func LoadTables(cfg config.DataConfig) (*Tables, error) {
	units, err := data.LoadUnitClassTable(cfg.UnitClasses)
	if err != nil {
		return nil, fmt.Errorf("load unit classes: %w", err)
	}
	obstacles, err := data.LoadObstacleClassTable(cfg.ObstacleClasses)
	if err != nil {
		return nil, fmt.Errorf("load obstacle classes: %w", err)
	}
	levels, err := data.LoadLevelTable(cfg.Levels)
	if err != nil {
		return nil, fmt.Errorf("load levels: %w", err)
	}
	return &Tables{Units: units, Obstacles: obstacles, Levels: levels}, nil
}

// Session is one level being simulated: the world, the systems that drive
// it and the collaborators they report to.
type Session struct {
	Config  *config.Config
	Level   *data.LevelEntry
	Bus     *event.Bus
	Runner  *coresys.Runner
	World   *world.State
	Ledger  *economy.Ledger
	Waves   *system.WaveSystem
	Scripts *scripting.Engine

	log      *zap.Logger
	baseLost bool
}

// Outcome is the state of a session's level.
type Outcome uint8

const (
	OutcomeRunning Outcome = iota
	OutcomeWon             // every wave cleared
	OutcomeLost            // the base was destroyed
	OutcomeTimeout         // max_time reached first
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	case OutcomeTimeout:
		return "timeout"
	}
	return "running"
}

// New builds the session for cfg.Simulation.Level. The level's obstacles are
// placed and the flow field built before the first tick.
func New(cfg *config.Config, tables *Tables, log *zap.Logger) (*Session, error) {
	level := tables.Levels.Get(cfg.Simulation.Level)
	if level == nil {
		return nil, fmt.Errorf("level %q not found (have: %s)",
			cfg.Simulation.Level, strings.Join(tables.Levels.Names(), ", "))
	}

	g := cfg.Grid
	transform := navigation.Transform{Translate: geom.V(g.TranslateX, g.TranslateY), Scale: g.Scale}
	field, err := navigation.NewFlowField(g.Width, g.Height, transform, geom.C(g.GoalX, g.GoalY), cfg.Simulation.ObstaclePenalty)
	if err != nil {
		return nil, fmt.Errorf("flow field: %w", err)
	}

	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return nil, fmt.Errorf("lua engine: %w", err)
	}

	s := &Session{
		Config:  cfg,
		Level:   level,
		Bus:     event.NewBus(),
		Runner:  coresys.NewRunner(cfg.Simulation.MaxDelta, cfg.Simulation.Seed),
		Ledger:  economy.NewLedger(level.InitialGold, engine, log),
		Scripts: engine,
		log:     log,
	}

	units := tables.Units.Apply(world.DefaultUnitClasses())
	obstacles := tables.Obstacles.Apply(world.DefaultObstacleClasses())
	s.World = world.NewState(field, world.Options{
		UnitCapacity:       cfg.Simulation.UnitCapacity,
		ObstacleCapacity:   cfg.Simulation.ObstacleCapacity,
		ProjectileCapacity: cfg.Simulation.ProjectileCapacity,
		Integrator: physics.Integrator{
			SubStep:       cfg.Simulation.SubStep,
			CaptureRadius: cfg.Simulation.CaptureRadius,
		},
		UnitClasses:     &units,
		ObstacleClasses: &obstacles,
		Clock:           func() float64 { return s.Runner.Now().Time },
		Rewards:         s.Ledger,
		Bus:             s.Bus,
		Log:             log,
	})
	s.Ledger.Subscribe(s.Bus)
	event.Subscribe(s.Bus, func(e event.ObstacleDestroyed) {
		if world.ObstacleType(e.ObstacleType) == world.ObstacleBase {
			s.baseLost = true
			log.Info("base destroyed", zap.Int("x", e.Cell.X), zap.Int("y", e.Cell.Y))
		}
	})

	for _, o := range level.Obstacles {
		if _, ok := s.World.AddObstacle(o.ObstacleType, o.Cell()); !ok {
			engine.Close()
			return nil, fmt.Errorf("level %s: cannot place %s at (%d,%d)", level.Name, o.Type, o.X, o.Y)
		}
	}
	s.World.RebuildField()

	system.RegisterCore(s.Runner, s.World, s.Bus, log)
	system.RegisterCombat(s.Runner, s.World, s.Bus, engine, log)
	s.Waves = system.NewWaveSystem(s.World, level.Waves, log)
	s.Runner.Register(s.Waves)

	log.Info("session ready",
		zap.String("level", level.Name),
		zap.Int64("seed", cfg.Simulation.Seed),
		zap.Int("obstacles", s.World.LiveObstacles()),
		zap.Int("waves", level.WaveCount()))
	return s, nil
}

// Register adds an extra system, e.g. the run journal.
func (s *Session) Register(sys coresys.System) { s.Runner.Register(sys) }

// Step advances the simulation by one configured tick.
func (s *Session) Step() { s.Runner.Tick(s.Config.Simulation.TickRate) }

// Outcome reports how the level stands after the last tick.
func (s *Session) Outcome() Outcome {
	switch {
	case s.baseLost:
		return OutcomeLost
	case s.Waves.Done():
		return OutcomeWon
	case s.Runner.Now().Time >= s.Config.Simulation.MaxTime.Seconds():
		return OutcomeTimeout
	}
	return OutcomeRunning
}

// Finished reports whether the level has an outcome.
func (s *Session) Finished() bool { return s.Outcome() != OutcomeRunning }

// Snapshot captures the current state.
func (s *Session) Snapshot() *snapshot.Snapshot {
	return snapshot.Capture(s.World, s.Runner.Now())
}

// Build places an obstacle paid from the ledger.
func (s *Session) Build(t world.ObstacleType, cell geom.Cell) error {
	_, err := s.Ledger.Build(s.World, t, cell)
	return err
}

func (s *Session) Close() { s.Scripts.Close() }
