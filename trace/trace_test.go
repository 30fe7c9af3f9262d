package trace

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/lixenwraith/drone-harvest/engine"
	"github.com/lixenwraith/drone-harvest/event"
	"github.com/lixenwraith/drone-harvest/orchestrator"
)

func TestJournalRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	session := uuid.New()
	j, err := NewJournal(&buf, session)
	require.NoError(t, err)

	require.NoError(t, j.Write(event.Event{Type: event.EventDelivered, Tick: 7, Payload: &event.DeliveredPayload{Drone: 3, Faction: 1, Total: 4}}))
	require.NoError(t, j.Write(event.Event{Type: event.EventCountersChanged, Tick: 7, Payload: &event.CountersChangedPayload{Faction: 1}}))
	require.NoError(t, j.Write(event.Event{Type: event.EventStuckKick, Tick: 9}))
	assert.Equal(t, int64(3), j.Count())
	require.NoError(t, j.Close())
	require.NoError(t, j.Close(), "close is idempotent")

	hdr, recs, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, journalVersion, hdr.Version)
	assert.Equal(t, session.String(), hdr.Session)
	require.Len(t, recs, 3)

	assert.Equal(t, "delivered", recs[0].Type)
	assert.Equal(t, int64(7), recs[0].Tick)
	var p event.DeliveredPayload
	require.NoError(t, json.Unmarshal(recs[0].Payload, &p))
	assert.Equal(t, event.DeliveredPayload{Drone: 3, Faction: 1, Total: 4}, p)

	assert.Equal(t, event.EventCountersChanged.String(), recs[1].Type)
	assert.Empty(t, recs[2].Payload)
}

func TestJournalWriteAfterClose(t *testing.T) {
	var buf bytes.Buffer
	j, err := NewJournal(&buf, uuid.New())
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.ErrorIs(t, j.Write(event.Event{Type: event.EventDelivered}), ErrClosed)
	assert.NoError(t, j.Err())
}

func TestReadRejectsGarbage(t *testing.T) {
	_, _, err := Read(bytes.NewReader([]byte("not zstd")))
	assert.Error(t, err)
}

func TestJournalAsWorldHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "events.jsonl.zst")
	j, err := Create(path, uuid.New())
	require.NoError(t, err)

	w := engine.NewWorld(nil)
	w.RegisterHandler(j)
	w.Emit(event.EventNodeSpawned, &event.NodePayload{Node: 1})
	w.Emit(event.EventRespawnIntervalChanged, &event.RespawnIntervalPayload{Seconds: 2})
	assert.Equal(t, 2, w.DispatchPending())
	require.NoError(t, j.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, recs, err := Read(f)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "node_spawned", recs[0].Type)
	assert.Equal(t, "respawn_interval_changed", recs[1].Type)
}

func TestJournalRecordsScene(t *testing.T) {
	c, err := orchestrator.New(nil, orchestrator.Options{Meter: noop.NewMeterProvider().Meter("test")})
	require.NoError(t, err)

	var buf bytes.Buffer
	j, err := NewJournal(&buf, c.Session())
	require.NoError(t, err)
	c.World().RegisterHandler(j)

	for range 120 {
		c.Step(time.Second / 60)
	}
	require.NoError(t, j.Close())

	_, recs, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, int(j.Count()), len(recs))

	types := make(map[string]int)
	for _, r := range recs {
		types[r.Type]++
	}
	assert.Positive(t, types["node_claimed"], "drones reserve nodes in the first ticks")
	assert.Positive(t, types["phase_changed"])
}

func TestPathsGeoJSON(t *testing.T) {
	c, err := orchestrator.New(nil, orchestrator.Options{Meter: noop.NewMeterProvider().Meter("test")})
	require.NoError(t, err)
	c.SetPathTracing(true)
	for range 240 {
		c.Step(time.Second / 60)
	}

	fleets := make([]Fleet, 0, len(c.Bases()))
	drones := 0
	for _, b := range c.Bases() {
		fleets = append(fleets, b)
		drones += b.Count()
	}

	raw, err := PathsGeoJSON(fleets...)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	require.NoError(t, err)
	require.Len(t, fc.Features, len(fleets)+drones)

	var drops, paths int
	for _, f := range fc.Features {
		switch f.Properties["kind"] {
		case "drop":
			drops++
			assert.IsType(t, orb.Point{}, f.Geometry)
		case "path":
			paths++
			ls, ok := f.Geometry.(orb.LineString)
			require.True(t, ok)
			assert.GreaterOrEqual(t, len(ls), 2)
		}
		assert.Contains(t, f.Properties, "faction")
		assert.Contains(t, f.Properties, "color")
	}
	assert.Equal(t, len(fleets), drops)
	assert.Equal(t, drones, paths)

	first := fc.Features[0]
	assert.Equal(t, orb.Point{-35, 0}, first.Geometry)
	assert.Equal(t, "#3a7bd5", first.Properties["color"])
}

func TestPathsSkipsUntraced(t *testing.T) {
	c, err := orchestrator.New(nil, orchestrator.Options{Meter: noop.NewMeterProvider().Meter("test")})
	require.NoError(t, err)
	for range 240 {
		c.Step(time.Second / 60)
	}
	fc := Paths(c.Bases()[0])
	assert.Len(t, fc.Features, 1)
}
