// Package audio plays short cues for deliveries and stuck kicks through beep
package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/drone-harvest/engine"
	"github.com/lixenwraith/drone-harvest/event"
	"github.com/lixenwraith/drone-harvest/parameter"
)

// Chime mixes delivery and kick cues into one speaker stream
// Without Start it still mixes, so the stream can be pulled directly
type Chime struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	volume  float64
	mixer   *beep.Mixer
	started bool

	muted  atomic.Bool
	played atomic.Int64
}

// NewChime creates a chime at the default sample rate; volume is linear in [0, 1]
func NewChime(volume float64) *Chime {
	return &Chime{
		rate:   beep.SampleRate(parameter.AudioSampleRate),
		volume: min(max(volume, 0), 1),
		mixer:  &beep.Mixer{},
	}
}

// Start opens the speaker and begins playing the mixer
func (c *Chime) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	if err := speaker.Init(c.rate, c.rate.N(parameter.AudioBufferSize)); err != nil {
		return fmt.Errorf("speaker init: %w", err)
	}
	speaker.Play(c.mixer)
	c.started = true
	return nil
}

// Stop silences queued cues; beep offers no speaker close, so the device stays open
func (c *Chime) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		c.mixer.Clear()
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
}

func (c *Chime) SetMuted(m bool) { c.muted.Store(m) }
func (c *Chime) Muted() bool     { return c.muted.Load() }
func (c *Chime) Played() int64   { return c.played.Load() }

// Pending returns the number of cues still sounding
func (c *Chime) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return c.mixer.Len()
}

// Stream pulls samples from the mixer; only meaningful when not started
func (c *Chime) Stream(samples [][2]float64) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mixer.Stream(samples)
}

func (c *Chime) Err() error { return nil }

func (c *Chime) play(s beep.Streamer) {
	if c.muted.Load() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	c.mixer.Add(s)
	c.played.Add(1)
}

func (c *Chime) EventTypes() []event.EventType {
	return []event.EventType{event.EventDelivered, event.EventStuckKick}
}

func (c *Chime) HandleEvent(_ *engine.World, ev event.Event) {
	switch ev.Type {
	case event.EventDelivered:
		faction := 1
		if p, ok := ev.Payload.(*event.DeliveredPayload); ok {
			faction = p.Faction
		}
		c.play(DeliveryTone(faction, c.rate, c.volume))
	case event.EventStuckKick:
		c.play(KickTone(c.rate, c.volume))
	}
}
