package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/drone-harvest/orchestrator"
	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/vmath"
)

func newTestConsole(t *testing.T) (*console, tcell.SimulationScreen) {
	t.Helper()
	ctrl, err := orchestrator.New(nil, orchestrator.Options{})
	require.NoError(t, err)

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(100, 30)

	sched, _ := newScheduler(ctrl)
	return newConsole(screen, ctrl, sched), screen
}

func press(c *console, r rune) bool {
	return c.handleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func pressKey(c *console, k tcell.Key) bool {
	return c.handleKey(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func rowText(s tcell.SimulationScreen, y int) string {
	w, _ := s.Size()
	var sb strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		sb.WriteRune(r)
	}
	return strings.TrimRight(sb.String(), " ")
}

func TestConsoleDroneAndSpeedKeys(t *testing.T) {
	c, _ := newTestConsole(t)

	assert.True(t, press(c, '+'))
	assert.Equal(t, parameter.DefaultDroneCount+1, c.ctrl.Ranges().Drones)
	assert.True(t, press(c, '-'))
	assert.True(t, press(c, '-'))
	assert.Equal(t, parameter.DefaultDroneCount-1, c.ctrl.Ranges().Drones)

	press(c, ']')
	assert.Equal(t, parameter.CruiseSpeed+speedStep, c.ctrl.Ranges().CruiseSpeed)
	press(c, '[')
	press(c, '[')
	assert.Equal(t, parameter.CruiseSpeed-speedStep, c.ctrl.Ranges().CruiseSpeed)
}

func TestConsoleToggles(t *testing.T) {
	c, _ := newTestConsole(t)

	press(c, 'p')
	assert.True(t, c.ctrl.PathTracing())
	press(c, 'p')
	assert.False(t, c.ctrl.PathTracing())

	press(c, ' ')
	assert.True(t, c.sched.Paused())
	press(c, ' ')
	assert.False(t, c.sched.Paused())
}

func TestConsoleIntervalEdit(t *testing.T) {
	c, _ := newTestConsole(t)

	press(c, 'i')
	require.True(t, c.editing)
	assert.Equal(t, "5.0", string(c.input))

	pressKey(c, tcell.KeyBackspace2)
	pressKey(c, tcell.KeyBackspace2)
	pressKey(c, tcell.KeyBackspace2)
	for _, r := range "2.5" {
		press(c, r)
	}
	pressKey(c, tcell.KeyEnter)
	assert.False(t, c.editing)
	assert.Equal(t, "2.5", c.interval)
	assert.Equal(t, 2500*time.Millisecond, c.ctrl.Spawner().RespawnInterval())

	press(c, 'i')
	for _, r := range "zz" {
		press(c, r)
	}
	pressKey(c, tcell.KeyEnter)
	assert.Equal(t, "2.5", c.interval, "malformed input resets the field")
	assert.Contains(t, c.notice, "invalid")
	assert.Equal(t, 2500*time.Millisecond, c.ctrl.Spawner().RespawnInterval())

	press(c, 'i')
	assert.True(t, press(c, 'q'), "q while editing is text, not quit")
	pressKey(c, tcell.KeyEscape)
	assert.False(t, c.editing)
}

func TestConsoleQuit(t *testing.T) {
	c, _ := newTestConsole(t)
	assert.False(t, press(c, 'q'))
	assert.False(t, pressKey(c, tcell.KeyEscape))
	assert.True(t, pressKey(c, tcell.KeyF1))
}

func TestConsoleDraw(t *testing.T) {
	c, screen := newTestConsole(t)
	c.draw()

	_, h := screen.Size()
	status := rowText(screen, h-2)
	assert.Contains(t, status, "F1 0")
	assert.Contains(t, status, "F2 0")
	assert.Contains(t, status, "drones 5 [1-10]")
	assert.Contains(t, status, "respawn 5.0s")
	assert.Contains(t, rowText(screen, h-1), "q quit")

	drops := 0
	for y := 0; y < h-chromeRows; y++ {
		drops += strings.Count(rowText(screen, y), "D")
	}
	assert.Equal(t, 2, drops)
}

func TestViewportProject(t *testing.T) {
	vp := viewport{minX: -10, maxX: 10, minZ: -5, maxZ: 5, cols: 21, rows: 11}

	x, y, ok := vp.project(vmath.Vec3F{})
	require.True(t, ok)
	assert.Equal(t, 10, x)
	assert.Equal(t, 5, y)

	x, y, ok = vp.project(vmath.Vec3F{X: 10, Y: 99, Z: 5})
	require.True(t, ok)
	assert.Equal(t, 20, x)
	assert.Equal(t, 10, y)

	_, _, ok = vp.project(vmath.Vec3F{X: 11})
	assert.False(t, ok)
}

func TestRunHeadless(t *testing.T) {
	ctrl, err := orchestrator.New(nil, orchestrator.Options{})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, runHeadless(ctrl, 60, &out))
	assert.Equal(t, int64(60), ctrl.World().TickCount())
	assert.Contains(t, out.String(), "faction 1: 0 delivered")
	assert.Contains(t, out.String(), "faction 2: 0 delivered")
}
