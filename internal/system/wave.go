package system

import (
	"go.uber.org/zap"

	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/data"
	"github.com/l1jgo/towerdef/internal/world"
)

type waveState struct {
	entry     data.WaveEntry
	spawned   int
	countdown float64
}

// WaveSystem spawns the units of the current wave on their timers and moves
// to the next wave once the current one is fully spawned and the field is
// clear. Phase 1 (PreUpdate).
type WaveSystem struct {
	world   *world.State
	log     *zap.Logger
	entries []waveState
	waves   []int // distinct wave numbers, ascending
	current int   // index into waves
}

func NewWaveSystem(ws *world.State, entries []data.WaveEntry, log *zap.Logger) *WaveSystem {
	s := &WaveSystem{world: ws, log: log}
	for _, e := range entries {
		s.entries = append(s.entries, waveState{entry: e, countdown: e.Delay})
		s.addWave(e.Wave)
	}
	return s
}

func (s *WaveSystem) addWave(n int) {
	i := 0
	for i < len(s.waves) && s.waves[i] < n {
		i++
	}
	if i < len(s.waves) && s.waves[i] == n {
		return
	}
	s.waves = append(s.waves, 0)
	copy(s.waves[i+1:], s.waves[i:])
	s.waves[i] = n
}

func (s *WaveSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *WaveSystem) Update(t *coresys.Tick) {
	if s.Done() {
		return
	}
	wave := s.waves[s.current]
	active := 0
	for i := range s.entries {
		w := &s.entries[i]
		if w.entry.Wave != wave || w.spawned >= w.entry.Count {
			continue
		}
		active++
		w.countdown -= t.Delta
		if w.countdown > 0 {
			continue
		}
		if _, ok := s.world.SpawnUnit(w.entry.UnitType, w.entry.Spawn); !ok {
			continue // retry next tick
		}
		w.spawned++
		w.countdown = w.entry.Interval
		if w.entry.Jitter > 0 {
			w.countdown += t.Rand.Float64() * w.entry.Jitter
		}
	}
	if active == 0 && s.world.LiveUnits() == 0 {
		s.log.Debug("wave cleared", zap.Int("wave", wave))
		s.current++
	}
}

// Wave returns the current wave number and false once every wave is cleared.
func (s *WaveSystem) Wave() (int, bool) {
	if s.Done() {
		return 0, false
	}
	return s.waves[s.current], true
}

// Done reports whether every wave has been spawned and cleared.
func (s *WaveSystem) Done() bool { return s.current >= len(s.waves) }

// Remaining returns the number of units still to spawn across all waves.
func (s *WaveSystem) Remaining() int {
	n := 0
	for _, w := range s.entries {
		n += w.entry.Count - w.spawned
	}
	return n
}
