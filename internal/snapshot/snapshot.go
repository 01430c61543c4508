package snapshot

import (
	"encoding/hex"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"

	"github.com/l1jgo/towerdef/internal/core/ecs"
	coresys "github.com/l1jgo/towerdef/internal/core/system"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/world"
)

type UnitState struct {
	Handle       uint64    `msgpack:"h"`
	Type         uint8     `msgpack:"t"`
	Current      geom.Cell `msgpack:"c"`
	Next         geom.Cell `msgpack:"n"`
	Position     geom.Vec2 `msgpack:"p"`
	Velocity     geom.Vec2 `msgpack:"v"`
	Walked       float64   `msgpack:"w"`
	Damage       float64   `msgpack:"d"`
	FutureDamage float64   `msgpack:"fd"`
	ContactTime  float64   `msgpack:"ct"`
}

type ObstacleState struct {
	Handle   uint64    `msgpack:"h"`
	Type     uint8     `msgpack:"t"`
	Cell     geom.Cell `msgpack:"c"`
	Damage   float64   `msgpack:"d"`
	Cooldown float64   `msgpack:"cd"`
}

type ProjectileState struct {
	Unit      uint64    `msgpack:"u"`
	Target    geom.Vec2 `msgpack:"tg"`
	ArrivesAt float64   `msgpack:"at"`
	Damage    float64   `msgpack:"d"`
}

// FieldState is the flow field distance grid in row-major order.
type FieldState struct {
	Width     int       `msgpack:"w"`
	Height    int       `msgpack:"h"`
	Distances []float64 `msgpack:"d"`
}

// Snapshot is a complete, slot-ordered copy of the simulation state.
type Snapshot struct {
	Frame       uint64            `msgpack:"frame"`
	Time        float64           `msgpack:"time"`
	Units       []UnitState       `msgpack:"units"`
	Obstacles   []ObstacleState   `msgpack:"obstacles"`
	Projectiles []ProjectileState `msgpack:"projectiles"`
	Field       FieldState        `msgpack:"field"`
}

// Capture copies the state of ws at the given tick.
func Capture(ws *world.State, t coresys.Tick) *Snapshot {
	s := &Snapshot{Frame: t.Frame, Time: t.Time}
	ws.EachUnit(func(h ecs.Handle, u *world.Unit) {
		s.Units = append(s.Units, UnitState{
			Handle:       uint64(h),
			Type:         uint8(u.Type),
			Current:      u.Current,
			Next:         u.Next,
			Position:     u.Position,
			Velocity:     u.Velocity,
			Walked:       u.Walked,
			Damage:       u.Damage,
			FutureDamage: u.FutureDamage,
			ContactTime:  u.ContactTime,
		})
	})
	ws.EachObstacle(func(h ecs.Handle, o *world.Obstacle) {
		s.Obstacles = append(s.Obstacles, ObstacleState{
			Handle:   uint64(h),
			Type:     uint8(o.Type),
			Cell:     o.Cell,
			Damage:   o.Damage,
			Cooldown: o.Cooldown,
		})
	})
	ws.EachProjectile(func(_ ecs.Handle, p *world.Projectile) {
		s.Projectiles = append(s.Projectiles, ProjectileState{
			Unit:      uint64(p.Unit),
			Target:    p.Target,
			ArrivesAt: p.ArrivesAt,
			Damage:    p.Damage,
		})
	})

	f := ws.Field()
	s.Field = FieldState{Width: f.Width(), Height: f.Height(), Distances: make([]float64, 0, f.Width()*f.Height())}
	for y := 0; y < f.Height(); y++ {
		for x := 0; x < f.Width(); x++ {
			s.Field.Distances = append(s.Field.Distances, f.DistanceAt(geom.Cell{X: x, Y: y}))
		}
	}
	return s
}

// Encode serializes the snapshot with msgpack.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	if err := msgpack.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// Digest returns the hex blake2b-256 of the encoded snapshot. Two runs with
// the same seed, level and tick sequence produce the same digest.
func (s *Snapshot) Digest() (string, error) {
	data, err := s.Encode()
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
