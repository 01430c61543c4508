package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/l1jgo/towerdef/internal/config"
	"github.com/l1jgo/towerdef/internal/economy"
	"github.com/l1jgo/towerdef/internal/persist"
	"github.com/l1jgo/towerdef/internal/sim"
	"github.com/l1jgo/towerdef/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Display helpers ────────────────────────────────────────────────

var printer = message.NewPrinter(language.English)

func printBanner(level string, seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            towerdef  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      flow field tower defense runner      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mlevel:\033[0m %s \033[90m(seed: %d)\033[0m\n\n", level, seed)
}

func printSection(title string) {
	lineLen := max(3, 46-len(title)-1)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	v := printer.Sprint(value)
	dotsLen := max(3, 42-len(label)-len(v))
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), v)
}

// short trims a hex digest for display.
func short(digest string) string {
	if len(digest) > 16 {
		return digest[:16]
	}
	return digest
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main runner logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfg, err := config.Load(config.Path("config/towerdef.toml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Simulation.Level, cfg.Simulation.Seed)

	// 3. Load data tables
	printSection("data")
	tables, err := sim.LoadTables(cfg.Data)
	if err != nil {
		return err
	}
	printStat("unit classes", tables.Units.Count())
	printStat("obstacle classes", tables.Obstacles.Count())
	printStat("levels", tables.Levels.Count())

	// 4. Build the session: scripts, world, systems
	session, err := sim.New(cfg, tables, log)
	if err != nil {
		return err
	}
	defer session.Close()
	printOK("lua scripts loaded")
	printStat("obstacles placed", session.World.LiveObstacles())
	printStat("waves", session.Level.WaveCount())
	printStat("gold", session.Ledger.Gold())
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 5. Optional run journal in PostgreSQL
	rec, err := openRecorder(ctx, cfg, session, log)
	if err != nil {
		return err
	}
	if rec != nil {
		defer rec.db.Close()
	}

	// 6. Simulation loop
	printSection("simulation")
	printReady(fmt.Sprintf("tick %s, limit %s", cfg.Simulation.TickRate, cfg.Simulation.MaxTime))
	fmt.Println()

	started := time.Now()
	interrupted := simulate(ctx, cfg, session, log)
	elapsed := time.Since(started)

	// 7. Results
	snap := session.Snapshot()
	digest, err := snap.Digest()
	if err != nil {
		return fmt.Errorf("snapshot digest: %w", err)
	}
	sum := session.Ledger.Summary()
	outcome := session.Outcome()
	if interrupted {
		log.Info("interrupted", zap.Uint64("frame", snap.Frame))
	}

	if rec != nil {
		if err := rec.finish(snap.Frame, snap.Time, sum, digest, log); err != nil {
			return err
		}
	}

	printSection("result")
	printStat("outcome", outcome.String())
	printStat("frames", snap.Frame)
	printStat("sim seconds", fmt.Sprintf("%.1f", snap.Time))
	printStat("wall time", elapsed.Round(time.Millisecond).String())
	printStat("kills", sum.Kills)
	printStat("leaks", sum.Leaks)
	printStat("explosions", sum.Explosions)
	printStat("gold earned", sum.Earned)
	printStat("gold", sum.Gold)
	printStat("digest", short(digest))
	fmt.Println()
	return nil
}

// simulate steps the session until it has an outcome or ctx is cancelled.
// Realtime runs are paced by a ticker; otherwise ticks run back to back.
// Returns true when interrupted.
func simulate(ctx context.Context, cfg *config.Config, s *sim.Session, log *zap.Logger) bool {
	const reportEvery = 30 * 10 // ticks
	frames := 0
	report := func() {
		frames++
		if frames%reportEvery != 0 {
			return
		}
		wave, _ := s.Waves.Wave()
		log.Info("progress",
			zap.Float64("time", s.Runner.Now().Time),
			zap.Int("wave", wave),
			zap.Int("units", s.World.LiveUnits()),
			zap.Int("projectiles", s.World.LiveProjectiles()),
			zap.Int("gold", s.Ledger.Gold()))
	}

	if !cfg.Simulation.Realtime {
		for !s.Finished() {
			if ctx.Err() != nil {
				return true
			}
			s.Step()
			report()
		}
		return false
	}

	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()
	for !s.Finished() {
		select {
		case <-ticker.C:
			s.Step()
			report()
		case <-ctx.Done():
			return true
		}
	}
	return false
}

// recorder writes the run row and its journal.
type recorder struct {
	db      *persist.DB
	runs    *persist.RunRepo
	journal *system.JournalSystem
	runID   int64
}

func openRecorder(ctx context.Context, cfg *config.Config, s *sim.Session, log *zap.Logger) (*recorder, error) {
	if !cfg.Database.Enabled {
		return nil, nil
	}
	printSection("database")

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := persist.NewDB(connectCtx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	printOK("PostgreSQL connected")

	if err := db.Migrate(connectCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	printOK("migrations applied")

	runs := persist.NewRunRepo(db)
	runID, err := runs.Start(connectCtx, s.Level.Name, cfg.Simulation.Seed)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("start run: %w", err)
	}
	journal := system.NewJournalSystem(s.Bus, persist.NewJournalRepo(db), runID, cfg.Database.FlushInterval, log)
	s.Register(journal)
	printStat("run id", runID)

	previous, err := runs.FinishedDigests(connectCtx, s.Level.Name, cfg.Simulation.Seed, 1)
	if err != nil {
		log.Warn("load previous digests", zap.Error(err))
	} else if len(previous) > 0 {
		printStat("previous digest", short(previous[0]))
	}
	fmt.Println()
	return &recorder{db: db, runs: runs, journal: journal, runID: runID}, nil
}

// finish flushes the journal and records the result. A background context is
// used so an interrupted run is still written.
func (r *recorder) finish(frame uint64, simTime float64, sum economy.Summary, digest string, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if err := r.journal.Flush(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush journal: %w", err))
	}
	if err := r.runs.Finish(ctx, r.runID, persist.RunResult{
		Ticks:      int64(frame),
		SimTime:    simTime,
		Kills:      sum.Kills,
		Leaks:      sum.Leaks,
		Explosions: sum.Explosions,
		Gold:       sum.Gold,
		Digest:     digest,
	}); err != nil {
		errs = append(errs, fmt.Errorf("finish run: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	acquired, idle := r.db.Stats()
	log.Info("run recorded",
		zap.Int64("run", r.runID),
		zap.String("digest", digest),
		zap.Int32("conns_acquired", acquired),
		zap.Int32("conns_idle", idle))
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
