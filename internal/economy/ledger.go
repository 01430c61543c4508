package economy

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/core/ecs"
	"github.com/l1jgo/towerdef/internal/core/event"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/world"
)

// ErrInsufficientGold is returned by Build when the ledger cannot pay.
var ErrInsufficientGold = errors.New("insufficient gold")

// RewardFormula turns a class reward into the credited amount.
type RewardFormula interface {
	KillReward(k world.Kill) int
}

// Summary is a point-in-time copy of the ledger counters.
type Summary struct {
	Gold       int
	Earned     int
	Spent      int
	Kills      int
	Leaks      int
	Explosions int
}

// Ledger tracks the player's gold and the outcome of every retired unit.
// It implements world.RewardSink. Single-goroutine access only.
type Ledger struct {
	formula RewardFormula
	log     *zap.Logger
	s       Summary
}

func NewLedger(initialGold int, formula RewardFormula, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{formula: formula, log: log, s: Summary{Gold: initialGold}}
}

// CreditKill credits the reward of a killed unit and returns the amount.
func (l *Ledger) CreditKill(k world.Kill) int {
	reward := k.Reward
	if l.formula != nil {
		reward = l.formula.KillReward(k)
	}
	if reward < 0 {
		reward = 0
	}
	l.s.Gold += reward
	l.s.Earned += reward
	l.s.Kills++
	return reward
}

// Spend deducts cost if the balance covers it.
func (l *Ledger) Spend(cost int) bool {
	if cost < 0 || cost > l.s.Gold {
		return false
	}
	l.s.Gold -= cost
	l.s.Spent += cost
	return true
}

func (l *Ledger) refund(cost int) {
	l.s.Gold += cost
	l.s.Spent -= cost
}

// Build pays for an obstacle and places it. The payment is refunded when the
// placement fails.
func (l *Ledger) Build(ws *world.State, t world.ObstacleType, cell geom.Cell) (ecs.Handle, error) {
	cost := ws.ObstacleClass(t).Cost
	if !l.Spend(cost) {
		return 0, fmt.Errorf("build %s at %v: %w (have %d, need %d)", t, cell, ErrInsufficientGold, l.s.Gold, cost)
	}
	h, ok := ws.AddObstacle(t, cell)
	if !ok {
		l.refund(cost)
		return 0, fmt.Errorf("build %s at %v: cell unavailable", t, cell)
	}
	l.log.Debug("obstacle built",
		zap.Stringer("type", t), zap.Int("cost", cost), zap.Int("gold", l.s.Gold))
	return h, nil
}

// Subscribe counts leaks and explosions from the event bus.
func (l *Ledger) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(e event.UnitRetired) {
		switch e.Reason {
		case event.RetireLeaked:
			l.s.Leaks++
		case event.RetireExploded:
			l.s.Explosions++
		}
	})
}

func (l *Ledger) Gold() int { return l.s.Gold }

func (l *Ledger) Summary() Summary { return l.s }
