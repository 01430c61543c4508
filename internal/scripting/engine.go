package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/world"
)

// Engine wraps a single gopher-lua VM holding the balance formulas.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Core helpers first, then the formula directories
	for _, sub := range []string{"core", "combat", "economy"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// KillContext describes a killed unit for calc_kill_reward.
type KillContext struct {
	Unit      string
	Reward    int // class reward
	MaxHealth float64
	Alive     float64 // seconds between spawn and death
}

// CalcKillReward calls the Lua calc_kill_reward function. The class reward is
// returned when the function is missing, fails or returns a negative value.
func (e *Engine) CalcKillReward(ctx KillContext) int {
	t := e.vm.NewTable()
	t.RawSetString("unit", lua.LString(ctx.Unit))
	t.RawSetString("reward", lua.LNumber(ctx.Reward))
	t.RawSetString("max_health", lua.LNumber(ctx.MaxHealth))
	t.RawSetString("alive", lua.LNumber(ctx.Alive))

	v, ok := e.callNumber("calc_kill_reward", t)
	if !ok || v < 0 {
		return ctx.Reward
	}
	return int(v)
}

// TowerDamageContext describes a shot for calc_tower_damage.
type TowerDamageContext struct {
	Tower    string
	Damage   float64 // class damage
	Distance float64 // origin to aim point
	Range    float64
}

// CalcTowerDamage calls the Lua calc_tower_damage function. The class damage
// is returned when the function is missing, fails or returns a non-positive
// value.
func (e *Engine) CalcTowerDamage(ctx TowerDamageContext) float64 {
	t := e.vm.NewTable()
	t.RawSetString("tower", lua.LString(ctx.Tower))
	t.RawSetString("damage", lua.LNumber(ctx.Damage))
	t.RawSetString("distance", lua.LNumber(ctx.Distance))
	t.RawSetString("range", lua.LNumber(ctx.Range))

	v, ok := e.callNumber("calc_tower_damage", t)
	if !ok || v <= 0 {
		return ctx.Damage
	}
	return v
}

// KillReward adapts CalcKillReward to the ledger's formula interface.
func (e *Engine) KillReward(k world.Kill) int {
	return e.CalcKillReward(KillContext{
		Unit:      k.Type.String(),
		Reward:    k.Reward,
		MaxHealth: k.MaxHealth,
		Alive:     k.Alive,
	})
}

// TowerDamage adapts CalcTowerDamage to the tower system's formula interface.
func (e *Engine) TowerDamage(t world.ObstacleType, damage, distance, rng float64) float64 {
	return e.CalcTowerDamage(TowerDamageContext{Tower: t.String(), Damage: damage, Distance: distance, Range: rng})
}

// Has reports whether a global Lua function is defined.
func (e *Engine) Has(name string) bool {
	return e.vm.GetGlobal(name).Type() == lua.LTFunction
}

// --- Lua helpers ---

// callNumber calls a Lua function with one table argument and returns its
// numeric result. ok is false when the function is missing, errors or does
// not return a finite number.
func (e *Engine) callNumber(name string, arg *lua.LTable) (float64, bool) {
	fn := e.vm.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		e.log.Warn("lua function not found", zap.String("name", name))
		return 0, false
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, arg); err != nil {
		e.log.Warn("lua call error", zap.String("func", name), zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok || math.IsNaN(float64(n)) || math.IsInf(float64(n), 0) {
		e.log.Warn("lua function returned non-number",
			zap.String("func", name), zap.String("type", result.Type().String()))
		return 0, false
	}
	return float64(n), true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
