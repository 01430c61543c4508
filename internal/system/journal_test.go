package system

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/core/event"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/persist"
	"github.com/l1jgo/towerdef/internal/world"
)

type fakeWriter struct {
	fail    bool
	batches [][]persist.JournalEntry
}

func (w *fakeWriter) AppendJournal(_ context.Context, _ int64, entries []persist.JournalEntry) error {
	if w.fail {
		return errors.New("connection refused")
	}
	w.batches = append(w.batches, append([]persist.JournalEntry(nil), entries...))
	return nil
}

func TestJournalFlushesEveryInterval(t *testing.T) {
	h := newHarness(t, 10, 10, geom.C(0, 0), 1)
	w := &fakeWriter{}
	journal := NewJournalSystem(h.bus, w, 7, 2, zap.NewNop())
	h.runner.Register(NewEventDispatchSystem(h.bus))
	h.runner.Register(journal)

	unit, _ := h.world.SpawnUnit(world.UnitMinion, geom.C(4, 4))
	h.runner.Step(0.1)
	if journal.Pending() != 1 || len(w.batches) != 0 {
		t.Fatalf("pending=%d batches=%d after one tick", journal.Pending(), len(w.batches))
	}
	h.runner.Step(0.1)
	if journal.Pending() != 0 || len(w.batches) != 1 {
		t.Fatalf("pending=%d batches=%d after flush", journal.Pending(), len(w.batches))
	}
	if e := w.batches[0][0]; e.Kind != "spawn" || e.Unit != uint64(unit) || e.X != 4 || e.Y != 4 {
		t.Errorf("entry = %+v", e)
	}

	w.fail = true
	h.world.Retire(unit, event.RetireLeaked)
	event.Emit(h.bus, event.ProjectileLanded{Unit: unit, Damage: 3})
	h.runner.Step(0.1)
	h.runner.Step(0.1)
	if journal.Pending() != 1 {
		t.Fatalf("pending = %d, want the retire entry kept after a failed flush", journal.Pending())
	}

	w.fail = false
	if err := journal.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	got := w.batches[1][0]
	if got.Kind != "retire_leaked" || got.Frame != 2 {
		t.Errorf("entry = %+v", got)
	}
}
