package system

import "math/rand"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: dispatch last tick's events
	PhasePreUpdate               // 1: wave spawns
	PhaseNavigation              // 2: rebuild the flow field
	PhaseMovement                // 3: advance units
	PhaseCollision               // 4: separate units, obstacle contact, explosions
	PhaseCombat                  // 5: towers fire, projectiles land
	PhasePersist                 // 6: journal flush
	PhaseCleanup                 // 7: release obstacles marked during the tick
)

// Tick is the simulation context threaded through every system. It replaces
// any notion of global time: systems read the clock and the rng only from here.
type Tick struct {
	Frame uint64
	Time  float64 // simulation seconds at the end of this tick
	Delta float64 // clamped elapsed seconds for this tick
	Rand  *rand.Rand
}

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(t *Tick)
}
