package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/l1jgo/towerdef/internal/config"
	"github.com/l1jgo/towerdef/internal/core/ecs"
	"github.com/l1jgo/towerdef/internal/geom"
	"github.com/l1jgo/towerdef/internal/sim"
	"github.com/l1jgo/towerdef/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Path("config/towerdef.toml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(os.Args) > 1 {
		cfg.Simulation.Level = os.Args[1]
	}

	// The screen owns the terminal, so logs are dropped.
	log := zap.NewNop()

	tables, err := sim.LoadTables(cfg.Data)
	if err != nil {
		return err
	}
	session, err := sim.New(cfg, tables, log)
	if err != nil {
		return err
	}
	defer session.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	v := &viewer{
		screen:  screen,
		session: session,
		cursor:  session.World.Field().Goal(),
		paused:  true,
		status:  "space: run  w/a/b/c: build  x: remove  d: field view  .: step  q: quit",
	}
	v.loop(cfg.Simulation.TickRate)
	return nil
}

var buildKeys = map[rune]world.ObstacleType{
	'w': world.ObstacleWall,
	'a': world.ObstacleArcher,
	'b': world.ObstacleBallista,
	'c': world.ObstacleCatapult,
}

type viewer struct {
	screen  tcell.Screen
	session *sim.Session
	cursor  geom.Cell
	mode    fieldMode
	paused  bool
	status  string
}

func (v *viewer) loop(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			events <- ev
		}
	}()

	v.draw()
	for {
		select {
		case ev := <-events:
			if !v.handle(ev) {
				return
			}
			v.draw()
		case <-ticker.C:
			if v.paused || v.session.Finished() {
				continue
			}
			v.session.Step()
			v.draw()
		}
	}
}

// handle applies one input event; false quits.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			v.move(0, 1)
		case tcell.KeyDown:
			v.move(0, -1)
		case tcell.KeyLeft:
			v.move(-1, 0)
		case tcell.KeyRight:
			v.move(1, 0)
		case tcell.KeyRune:
			return v.handleRune(ev.Rune())
		}
	}
	return true
}

func (v *viewer) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		v.paused = !v.paused
	case '.':
		if !v.session.Finished() {
			v.session.Step()
		}
	case 'd':
		v.mode = (v.mode + 1) % modeCount
		v.status = "field view: " + v.mode.String()
	case 'x':
		ws := v.session.World
		if h, ok := ws.ObstacleAt(v.cursor); ok {
			ws.RemoveObstacle(h)
			ws.RebuildField()
			v.status = fmt.Sprintf("removed obstacle at %d,%d", v.cursor.X, v.cursor.Y)
		}
	case 'h':
		v.move(-1, 0)
	case 'j':
		v.move(0, -1)
	case 'k':
		v.move(0, 1)
	case 'l':
		v.move(1, 0)
	default:
		if t, ok := buildKeys[r]; ok {
			v.build(t)
		}
	}
	return true
}

func (v *viewer) move(dx, dy int) {
	next := v.cursor.Add(geom.C(dx, dy))
	if v.session.World.Field().InBounds(next) {
		v.cursor = next
	}
}

func (v *viewer) build(t world.ObstacleType) {
	if err := v.session.Build(t, v.cursor); err != nil {
		v.status = err.Error()
		return
	}
	v.session.World.RebuildField()
	v.status = fmt.Sprintf("built %s at %d,%d", t, v.cursor.X, v.cursor.Y)
}

func (v *viewer) draw() {
	s := v.screen
	s.Clear()
	ws := v.session.World
	field := ws.Field()
	const ox, oy = 1, 1

	for y := 0; y < field.Height(); y++ {
		for x := 0; x < field.Width(); x++ {
			c := geom.C(x, y)
			r, style := fieldGlyph(field, c, v.mode)
			sx, sy := screenPos(field, c, ox, oy)
			s.SetContent(sx, sy, r, nil, style)
		}
	}
	ws.EachObstacle(func(_ ecs.Handle, o *world.Obstacle) {
		r, style := obstacleGlyph(o.Type)
		sx, sy := screenPos(field, o.Cell, ox, oy)
		s.SetContent(sx, sy, r, nil, style)
	})
	ws.EachUnit(func(_ ecs.Handle, u *world.Unit) {
		for _, c := range trailCells(field, &u.Trail) {
			if _, ok := ws.ObstacleAt(c); ok {
				continue
			}
			sx, sy := screenPos(field, c, ox, oy)
			s.SetContent(sx, sy, '∙', nil, styleTrail)
		}
	})
	ws.EachObstacle(func(_ ecs.Handle, o *world.Obstacle) {
		if c, ok := aimCell(field, o, ws.ObstacleClass(o.Type)); ok {
			sx, sy := screenPos(field, c, ox, oy)
			s.SetContent(sx+1, sy, '+', nil, styleAim)
		}
	})
	ws.EachProjectile(func(_ ecs.Handle, p *world.Projectile) {
		t := p.Progress(ws.Now())
		pos := p.Origin.Add(p.Target.Sub(p.Origin).Scale(t))
		c := field.Transform().ToGrid(pos)
		if field.InBounds(c) {
			sx, sy := screenPos(field, c, ox, oy)
			s.SetContent(sx+1, sy, '*', nil, styleShot)
		}
	})
	ws.EachUnit(func(_ ecs.Handle, u *world.Unit) {
		c := field.Transform().ToGrid(u.Position)
		if field.InBounds(c) {
			sx, sy := screenPos(field, c, ox, oy)
			s.SetContent(sx, sy, unitGlyph(u.Type), nil, styleUnit)
		}
	})

	cx, cy := screenPos(field, v.cursor, ox, oy)
	mainc, combc, style, _ := s.GetContent(cx, cy)
	s.SetContent(cx, cy, mainc, combc, style.Reverse(true))

	v.drawStatus(oy + field.Height() + 1)
	s.Show()
}

func (v *viewer) drawStatus(row int) {
	sess := v.session
	sum := sess.Ledger.Summary()
	wave, _ := sess.Waves.Wave()
	state := "running"
	if v.paused {
		state = "paused"
	}
	if o := sess.Outcome(); o != sim.OutcomeRunning {
		state = o.String()
	}
	line := fmt.Sprintf(" %s  t=%.1fs  wave %d  units %d  gold %d  kills %d  leaks %d  explosions %d  [%s] ",
		sess.Level.Name, sess.Runner.Now().Time, wave, sess.World.LiveUnits(),
		sum.Gold, sum.Kills, sum.Leaks, sum.Explosions, state)
	v.text(1, row, line, styleStatus)
	v.text(1, row+1, v.status, tcell.StyleDefault)
}

func (v *viewer) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
