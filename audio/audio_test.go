package audio

import (
	"math"
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/drone-harvest/engine"
	"github.com/lixenwraith/drone-harvest/event"
	"github.com/lixenwraith/drone-harvest/parameter"
)

const testRate = beep.SampleRate(parameter.AudioSampleRate)

// drain pulls s to completion and returns the sample count and peak amplitude
func drain(s beep.Streamer) (int, float64) {
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			peak = math.Max(peak, math.Abs(buf[i][0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
}

func TestOscillatorLength(t *testing.T) {
	osc := NewOscillator(440, parameter.ChimeNote1Duration, WaveSine, testRate)
	n, peak := drain(osc)
	assert.Equal(t, testRate.N(parameter.ChimeNote1Duration), n)
	assert.InDelta(t, 1.0, peak, 0.01)
}

func TestEnvelopeShapes(t *testing.T) {
	d := parameter.ChimeNote2Duration
	env := NewEnvelope(NewOscillator(0, d, WaveSquare, testRate), d, parameter.ChimeAttack, parameter.ChimeNote2Release, testRate)

	buf := make([][2]float64, testRate.N(d))
	n, _ := env.Stream(buf)
	require.Equal(t, len(buf), n)
	assert.Zero(t, buf[0][0], "attack starts silent")
	assert.InDelta(t, 1.0, buf[testRate.N(parameter.ChimeAttack)][0], 1e-9)
	assert.Less(t, buf[n-1][0], 0.01, "release ends near silence")
}

func TestDeliveryToneLength(t *testing.T) {
	n, peak := drain(DeliveryTone(1, testRate, 1))
	want := testRate.N(parameter.ChimeNote1Duration) + testRate.N(parameter.ChimeNote2Duration)
	assert.Equal(t, want, n)
	assert.Positive(t, peak)
}

func TestFactionPitch(t *testing.T) {
	assert.Equal(t, 440.0, factionPitch(440, 1))
	assert.InDelta(t, 440*math.Pow(2, 4.0/12), factionPitch(440, 2), 1e-9)
	assert.Equal(t, 440.0, factionPitch(440, 4), "pitch cycles every three factions")
}

func TestSilentVolume(t *testing.T) {
	_, peak := drain(DeliveryTone(1, testRate, 0))
	assert.Zero(t, peak)
}

func TestChimeHandlesEvents(t *testing.T) {
	c := NewChime(1)
	w := engine.NewWorld(nil)
	w.RegisterHandler(c)

	w.Emit(event.EventDelivered, &event.DeliveredPayload{Faction: 2, Total: 1})
	w.Emit(event.EventStuckKick, &event.StuckKickPayload{})
	w.Emit(event.EventNodeSpawned, &event.NodePayload{})
	w.DispatchPending()

	assert.Equal(t, int64(2), c.Played())
	assert.Equal(t, 2, c.Pending())

	_, peak := drain(beep.Take(testRate.N(parameter.ChimeNote1Duration), c))
	assert.Positive(t, peak)

	c.Stop()
	assert.Zero(t, c.Pending())
}

func TestChimeMuted(t *testing.T) {
	c := NewChime(1)
	c.SetMuted(true)
	assert.True(t, c.Muted())
	c.HandleEvent(nil, event.Event{Type: event.EventDelivered})
	assert.Zero(t, c.Played())
	assert.Zero(t, c.Pending())
}
