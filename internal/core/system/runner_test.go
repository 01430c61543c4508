package system

import (
	"testing"
	"time"
)

type probe struct {
	phase Phase
	name  string
	log   *[]string
	last  Tick
}

func (p *probe) Phase() Phase { return p.phase }
func (p *probe) Update(t *Tick) {
	*p.log = append(*p.log, p.name)
	p.last = *t
}

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner(0.1, 1)
	r.Register(&probe{phase: PhaseCleanup, name: "cleanup", log: &log})
	r.Register(&probe{phase: PhaseMovement, name: "move-a", log: &log})
	r.Register(&probe{phase: PhaseNavigation, name: "nav", log: &log})
	r.Register(&probe{phase: PhaseMovement, name: "move-b", log: &log})

	r.Step(0.05)

	want := []string{"nav", "move-a", "move-b", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("got %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("got %v, want %v", log, want)
		}
	}
}

func TestRunnerClampsDelta(t *testing.T) {
	var log []string
	p := &probe{phase: PhaseMovement, name: "p", log: &log}
	r := NewRunner(0.1, 1)
	r.Register(p)

	r.Tick(2 * time.Second)
	if p.last.Delta != 0.1 {
		t.Errorf("delta = %v, want 0.1", p.last.Delta)
	}
	r.Step(-1)
	if p.last.Delta != 0 {
		t.Errorf("negative delta not clamped: %v", p.last.Delta)
	}
	if p.last.Frame != 2 {
		t.Errorf("frame = %d, want 2", p.last.Frame)
	}
	if p.last.Rand == nil {
		t.Error("tick has no rng")
	}
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner(0.1, 1)
	r.Register(&probe{phase: PhaseNavigation, name: "nav", log: &log})
	r.Register(&probe{phase: PhaseMovement, name: "move", log: &log})

	r.TickPhase(PhaseNavigation)
	if len(log) != 1 || log[0] != "nav" {
		t.Fatalf("got %v", log)
	}
	if r.Now().Frame != 0 {
		t.Error("TickPhase must not advance the clock")
	}
}
