package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/core/event"
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/persist"
)

// maxPendingJournal bounds the buffer kept while the writer is failing.
const maxPendingJournal = 1 << 14

// JournalWriter stores journal batches; persist.JournalRepo implements it.
type JournalWriter interface {
	AppendJournal(ctx context.Context, runID int64, entries []persist.JournalEntry) error
}

// JournalSystem records simulation events and flushes them to the run journal
// every interval ticks. Phase 6 (Persist).
type JournalSystem struct {
	writer   JournalWriter
	runID    int64
	log      *zap.Logger
	interval int // flush every N ticks
	ticks    int

	pending []persist.JournalEntry
	frame   uint64
	now     float64
}

func NewJournalSystem(bus *event.Bus, writer JournalWriter, runID int64, intervalTicks int, log *zap.Logger) *JournalSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	s := &JournalSystem{
		writer:   writer,
		runID:    runID,
		log:      log,
		interval: intervalTicks,
		pending:  make([]persist.JournalEntry, 0, 64),
	}
	s.subscribe(bus)
	return s
}

// subscribe records events as they are dispatched. Dispatch happens at the
// start of the tick after emission, so frame and time still describe the
// tick the event happened in.
func (s *JournalSystem) subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(e event.UnitSpawned) {
		s.record(persist.JournalEntry{Kind: "spawn", Unit: uint64(e.Unit), X: float64(e.Cell.X), Y: float64(e.Cell.Y)})
	})
	event.Subscribe(bus, func(e event.UnitRetired) {
		s.record(persist.JournalEntry{
			Kind:  "retire_" + e.Reason.String(),
			Unit:  uint64(e.Unit),
			X:     e.Position.X,
			Y:     e.Position.Y,
			Value: float64(e.Reward),
		})
	})
	event.Subscribe(bus, func(e event.Explosion) {
		s.record(persist.JournalEntry{
			Kind:     "explosion",
			Unit:     uint64(e.Unit),
			Obstacle: uint64(e.Obstacle),
			X:        e.Point.X,
			Y:        e.Point.Y,
			Value:    e.Damage,
		})
	})
	event.Subscribe(bus, func(e event.ObstacleDestroyed) {
		s.record(persist.JournalEntry{
			Kind:     "obstacle_destroyed",
			Obstacle: uint64(e.Obstacle),
			X:        float64(e.Cell.X),
			Y:        float64(e.Cell.Y),
		})
	})
	event.Subscribe(bus, func(e event.ProjectileLanded) {
		if !e.Hit {
			return
		}
		s.record(persist.JournalEntry{Kind: "projectile", Unit: uint64(e.Unit), Value: e.Damage})
	})
}

func (s *JournalSystem) record(e persist.JournalEntry) {
	e.Frame = s.frame
	e.SimTime = s.now
	if len(s.pending) >= maxPendingJournal {
		copy(s.pending, s.pending[1:])
		s.pending = s.pending[:len(s.pending)-1]
	}
	s.pending = append(s.pending, e)
}

func (s *JournalSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *JournalSystem) Update(t *coresys.Tick) {
	s.frame = t.Frame
	s.now = t.Time
	s.ticks++
	if s.ticks < s.interval {
		return
	}
	s.ticks = 0
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.log.Warn("journal flush failed", zap.Int("pending", len(s.pending)), zap.Error(err))
	}
}

// Flush writes every pending entry. Entries are kept when the write fails.
// Called by Update and once more at shutdown.
func (s *JournalSystem) Flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.writer.AppendJournal(ctx, s.runID, s.pending); err != nil {
		return err
	}
	s.pending = s.pending[:0]
	return nil
}

// Pending returns the number of buffered entries.
func (s *JournalSystem) Pending() int { return len(s.pending) }
