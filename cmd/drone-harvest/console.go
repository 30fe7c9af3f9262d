package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/drone-harvest/core"
	"github.com/lixenwraith/drone-harvest/drone"
	"github.com/lixenwraith/drone-harvest/engine"
	"github.com/lixenwraith/drone-harvest/orchestrator"
	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/vmath"
)

const (
	speedStep  = 0.5
	mapMargin  = 2.0
	chromeRows = 2 // Status and help lines under the map
)

var (
	styleNode     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleReserved = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHelp     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleEdit     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
)

// viewport maps the XZ plane onto the map area, +Z pointing down
type viewport struct {
	minX, maxX float64
	minZ, maxZ float64
	cols, rows int
}

func (v viewport) project(p vmath.Vec3F) (int, int, bool) {
	if v.cols <= 0 || v.rows <= 0 {
		return 0, 0, false
	}
	fx := (p.X - v.minX) / (v.maxX - v.minX)
	fz := (p.Z - v.minZ) / (v.maxZ - v.minZ)
	if fx < 0 || fx > 1 || fz < 0 || fz > 1 {
		return 0, 0, false
	}
	return int(fx * float64(v.cols-1)), int(fz * float64(v.rows-1)), true
}

// sceneBounds covers the spawn annulus and every base point
func sceneBounds(ctrl *orchestrator.Controller) viewport {
	sc := ctrl.Spawner().Config()
	v := viewport{
		minX: sc.Center.X - sc.MaxRadius, maxX: sc.Center.X + sc.MaxRadius,
		minZ: sc.Center.Z - sc.MaxRadius, maxZ: sc.Center.Z + sc.MaxRadius,
	}
	grow := func(p vmath.Vec3F) {
		v.minX, v.maxX = min(v.minX, p.X), max(v.maxX, p.X)
		v.minZ, v.maxZ = min(v.minZ, p.Z), max(v.maxZ, p.Z)
	}
	for _, b := range ctrl.Bases() {
		grow(b.DropPoint())
		for _, sp := range b.SpawnPoints() {
			grow(sp)
		}
	}
	v.minX -= mapMargin
	v.maxX += mapMargin
	v.minZ -= mapMargin
	v.maxZ += mapMargin
	return v
}

func droneGlyph(p drone.Phase) rune {
	switch {
	case p.Lifting():
		return 'o'
	case p.Cruising():
		return '@'
	case p == drone.PhaseHarvest:
		return '*'
	case p == drone.PhaseDeliver:
		return '$'
	case p == drone.PhaseWaitForDropSlot:
		return 'w'
	}
	return '.'
}

func rgbStyle(c core.RGB) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

// console is the interactive operator surface
type console struct {
	screen tcell.Screen
	ctrl   *orchestrator.Controller
	sched  *engine.ClockScheduler
	bounds viewport

	editing  bool
	input    []rune
	interval string
	notice   string
}

func newConsole(screen tcell.Screen, ctrl *orchestrator.Controller, sched *engine.ClockScheduler) *console {
	return &console{
		screen:   screen,
		ctrl:     ctrl,
		sched:    sched,
		bounds:   sceneBounds(ctrl),
		interval: formatInterval(ctrl.Spawner().RespawnInterval()),
	}
}

func formatInterval(d time.Duration) string {
	return fmt.Sprintf("%.1f", d.Seconds())
}

// handleKey applies one key press and reports false on quit
func (c *console) handleKey(ev *tcell.EventKey) bool {
	if c.editing {
		c.handleEditKey(ev)
		return true
	}

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	r := c.ctrl.Ranges()
	switch ev.Rune() {
	case 'q':
		return false
	case '+', '=':
		n := c.ctrl.SetDroneCount(r.Drones + 1)
		c.notice = fmt.Sprintf("drones %d", n)
	case '-', '_':
		n := c.ctrl.SetDroneCount(r.Drones - 1)
		c.notice = fmt.Sprintf("drones %d", n)
	case ']':
		v := c.ctrl.SetCruiseSpeed(r.CruiseSpeed + speedStep)
		c.notice = fmt.Sprintf("speed %.1f", v)
	case '[':
		v := c.ctrl.SetCruiseSpeed(r.CruiseSpeed - speedStep)
		c.notice = fmt.Sprintf("speed %.1f", v)
	case 'p':
		on := !c.ctrl.PathTracing()
		c.ctrl.SetPathTracing(on)
		c.notice = fmt.Sprintf("tracing %s", onOff(on))
	case 'i':
		c.editing = true
		c.input = []rune(c.interval)
		c.notice = ""
	case ' ':
		paused := !c.sched.Paused()
		c.sched.SetPaused(paused)
		c.notice = ""
	}
	return true
}

func (c *console) handleEditKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		c.editing = false
		c.input = nil
	case tcell.KeyEnter:
		shown, ok := c.ctrl.SubmitRespawnInterval(string(c.input))
		c.interval = shown
		c.editing = false
		c.input = nil
		if ok {
			c.notice = fmt.Sprintf("respawn every %ss", shown)
		} else {
			c.notice = "invalid interval, kept " + shown
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(c.input) > 0 {
			c.input = c.input[:len(c.input)-1]
		}
	case tcell.KeyRune:
		if len(c.input) < 12 {
			c.input = append(c.input, ev.Rune())
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (c *console) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		c.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// draw renders one frame; world state is read under the update lock
func (c *console) draw() {
	c.screen.Clear()
	w, h := c.screen.Size()
	vp := c.bounds
	vp.cols, vp.rows = w, h-chromeRows

	c.ctrl.World().RunSafe(func() {
		for _, n := range c.ctrl.Registry().Nodes() {
			if x, y, ok := vp.project(n.Position); ok {
				style := styleNode
				if n.Reserved() {
					style = styleReserved
				}
				c.screen.SetContent(x, y, '+', nil, style)
			}
		}
		for _, b := range c.ctrl.Bases() {
			style := rgbStyle(b.Color())
			for _, sp := range b.SpawnPoints() {
				if x, y, ok := vp.project(sp); ok {
					c.screen.SetContent(x, y, 'H', nil, style)
				}
			}
			if x, y, ok := vp.project(b.DropPoint()); ok {
				c.screen.SetContent(x, y, 'D', nil, style.Bold(true))
			}
			dim := rgbStyle(b.Color().Scale(0.5))
			for _, d := range b.Drones() {
				x, y, ok := vp.project(d.Position())
				if !ok {
					continue
				}
				st := style
				if d.Phase() == drone.PhaseIdle || d.Phase() == drone.PhaseCooldown {
					st = dim
				}
				c.screen.SetContent(x, y, droneGlyph(d.Phase()), nil, st)
			}
		}
	})

	if h >= chromeRows {
		c.drawText(0, h-2, c.statusLine(), styleStatus)
		if c.editing {
			c.drawText(0, h-1, "respawn interval (s): "+string(c.input)+"_", styleEdit)
		} else {
			help := "+/- drones  [/] speed  p trace  i interval  space pause  q quit"
			if c.notice != "" {
				help = c.notice + "  |  " + help
			}
			c.drawText(0, h-1, help, styleHelp)
		}
	}
	c.screen.Show()
}

func (c *console) statusLine() string {
	var sb strings.Builder
	counts := c.ctrl.Counts()
	for _, b := range c.ctrl.Bases() {
		fmt.Fprintf(&sb, "F%d %d  ", b.Faction(), counts[b.Faction()])
	}
	r := c.ctrl.Ranges()
	st := c.ctrl.World().Status
	fmt.Fprintf(&sb, "| drones %d [%d-%d] | speed %.1f | respawn %ss | nodes %d (%d held) | tick %d",
		r.Drones, r.MinDrones, r.MaxDrones, r.CruiseSpeed, c.interval,
		st.Ints.Get("resource.nodes").Load(), st.Ints.Get("resource.reserved").Load(),
		c.ctrl.World().TickCount())
	if c.ctrl.PathTracing() {
		sb.WriteString(" | tracing")
	}
	if c.sched.Paused() {
		sb.WriteString(" | PAUSED")
	}
	return sb.String()
}

// runConsole drives the scheduler and redraws until quit
func runConsole(ctx context.Context, ctrl *orchestrator.Controller) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("console init: %w", err)
	}
	core.SetCrashReset(screen.Fini)
	defer func() {
		core.SetCrashReset(nil)
		screen.Fini()
	}()

	sched, _ := newScheduler(ctrl)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sched.Start(ctx)
	defer sched.Stop()

	con := newConsole(screen, ctrl, sched)

	events := make(chan tcell.Event, 64)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	})

	frame := time.NewTicker(parameter.FrameUpdateInterval)
	defer frame.Stop()

	con.draw()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !con.handleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
			con.draw()
		case <-frame.C:
			con.draw()
		case <-ctx.Done():
			return nil
		}
	}
}
