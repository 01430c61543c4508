package system

import (
	"math/rand"
	"sort"
	"time"
)

// Runner executes systems in phase order each tick and owns the simulation clock.
type Runner struct {
	systems  []System
	sorted   bool
	maxDelta float64
	tick     Tick
}

// NewRunner creates a runner whose per-tick delta is clamped to maxDelta
// seconds. The rng is the only source of randomness handed to systems.
func NewRunner(maxDelta float64, seed int64) *Runner {
	return &Runner{
		systems:  make([]System, 0, 16),
		maxDelta: maxDelta,
		tick:     Tick{Rand: rand.New(rand.NewSource(seed))},
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick advances the clock by dt (clamped) and runs every system to completion.
func (r *Runner) Tick(dt time.Duration) {
	r.Step(dt.Seconds())
}

// Step is Tick with the elapsed time in seconds.
func (r *Runner) Step(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	if r.maxDelta > 0 && seconds > r.maxDelta {
		seconds = r.maxDelta
	}
	r.tick.Frame++
	r.tick.Delta = seconds
	r.tick.Time += seconds

	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(&r.tick)
	}
}

// TickPhase runs only the systems of one phase with a zero delta; used by
// tools that want to refresh derived state (e.g. the flow field) between ticks.
func (r *Runner) TickPhase(phase Phase) {
	r.ensureSorted()
	t := r.tick
	t.Delta = 0
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(&t)
		}
	}
}

// Now returns the current tick context (read-only use).
func (r *Runner) Now() Tick { return r.tick }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
