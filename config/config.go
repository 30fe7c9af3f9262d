// Package config loads the simulation scene from YAML validated against an embedded JSON Schema
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/drone-harvest/base"
	"github.com/lixenwraith/drone-harvest/core"
	"github.com/lixenwraith/drone-harvest/drone"
	"github.com/lixenwraith/drone-harvest/parameter"
	"github.com/lixenwraith/drone-harvest/physics"
	"github.com/lixenwraith/drone-harvest/resource"
	"github.com/lixenwraith/drone-harvest/vmath"
)

//go:embed schema.json
var schemaSource string

const schemaURL = "https://github.com/lixenwraith/drone-harvest/config.schema.json"

// ErrInvalid wraps every schema or semantic validation failure
var ErrInvalid = errors.New("invalid config")

var schema = jsonschema.MustCompileString(schemaURL, schemaSource)

// Vec3 is a YAML [x, y, z] triple
type Vec3 [3]float64

func (v Vec3) Vec() vmath.Vec3F {
	return vmath.Vec3F{X: v[0], Y: v[1], Z: v[2]}
}

// Config is the whole scene
type Config struct {
	Seed      uint64     `yaml:"seed"`
	Spawner   Spawner    `yaml:"spawner"`
	Drone     Drone      `yaml:"drone"`
	Bases     []Base     `yaml:"bases"`
	Obstacles []Obstacle `yaml:"obstacles"`
}

// Spawner places resource nodes; durations are seconds
type Spawner struct {
	Center          Vec3    `yaml:"center"`
	MinRadius       float64 `yaml:"min_radius"`
	MaxRadius       float64 `yaml:"max_radius"`
	InitialCount    int     `yaml:"initial_count"`
	MaxResources    int     `yaml:"max_resources"`
	RespawnInterval float64 `yaml:"respawn_interval"`
}

// Drone holds the shared drone tunables; durations are seconds
type Drone struct {
	FlyHeight          float64 `yaml:"fly_height"`
	TakeoffSpeed       float64 `yaml:"takeoff_speed"`
	LandingSpeed       float64 `yaml:"landing_speed"`
	CruiseSpeed        float64 `yaml:"cruise_speed"`
	MaxTurnRate        float64 `yaml:"max_turn_rate"`
	SeparationDistance float64 `yaml:"separation_distance"`
	SeparationWeight   float64 `yaml:"separation_weight"`
	RayDistance        float64 `yaml:"ray_distance"`
	ArrivalRadius      float64 `yaml:"arrival_radius"`
	QueueSpacing       float64 `yaml:"queue_spacing"`
	HarvestDwell       float64 `yaml:"harvest_dwell"`
	DeliverDwell       float64 `yaml:"deliver_dwell"`
	Cooldown           float64 `yaml:"cooldown"`
	StuckBreaker       bool    `yaml:"stuck_breaker"`
}

// Base is one faction's home
type Base struct {
	Faction       int    `yaml:"faction"`
	Color         string `yaml:"color"`
	DropPoint     Vec3   `yaml:"drop_point"`
	SpawnPoints   []Vec3 `yaml:"spawn_points"`
	MinDrones     int    `yaml:"min_drones"`
	MaxDrones     int    `yaml:"max_drones"`
	InitialDrones int    `yaml:"initial_drones"` // 0 = random in bounds
}

// UnmarshalYAML fills omitted base fields from the defaults
func (b *Base) UnmarshalYAML(n *yaml.Node) error {
	type plain Base
	p := plain(defaultBase(0))
	if err := n.Decode(&p); err != nil {
		return err
	}
	*b = Base(p)
	return nil
}

// Obstacle is exactly one of a sphere or an axis-aligned box
type Obstacle struct {
	Sphere *Sphere `yaml:"sphere,omitempty"`
	Box    *Box    `yaml:"box,omitempty"`
}

type Sphere struct {
	Center Vec3    `yaml:"center"`
	Radius float64 `yaml:"radius"`
}

type Box struct {
	Min Vec3 `yaml:"min"`
	Max Vec3 `yaml:"max"`
}

// seconds converts a validated seconds value, capped so the conversion cannot overflow
func seconds(s float64) time.Duration {
	return time.Duration(min(s, parameter.MaxDurationSetting.Seconds()) * float64(time.Second))
}

func defaultBase(faction int) Base {
	return Base{
		Faction:   faction,
		Color:     "#ffffff",
		MinDrones: parameter.BaseMinDrones,
		MaxDrones: parameter.BaseMaxDrones,
	}
}

// Default returns the stock scene: two opposing bases around a central resource field
func Default() *Config {
	blue := defaultBase(1)
	blue.Color = "#3a7bd5"
	blue.DropPoint = Vec3{-35, 0, 0}
	blue.SpawnPoints = []Vec3{{-40, 0, -4}, {-40, 0, 0}, {-40, 0, 4}}
	blue.InitialDrones = parameter.DefaultDroneCount

	red := defaultBase(2)
	red.Color = "#d53a3a"
	red.DropPoint = Vec3{35, 0, 0}
	red.SpawnPoints = []Vec3{{40, 0, -4}, {40, 0, 0}, {40, 0, 4}}
	red.InitialDrones = parameter.DefaultDroneCount

	return &Config{
		Seed: 1,
		Spawner: Spawner{
			MinRadius:       parameter.SpawnerMinRadius,
			MaxRadius:       parameter.SpawnerMaxRadius,
			InitialCount:    parameter.SpawnerInitialCount,
			MaxResources:    parameter.SpawnerMaxResources,
			RespawnInterval: parameter.SpawnerRespawnInterval.Seconds(),
		},
		Drone: Drone{
			FlyHeight:          parameter.FlyHeight,
			TakeoffSpeed:       parameter.TakeoffSpeed,
			LandingSpeed:       parameter.LandingSpeed,
			CruiseSpeed:        parameter.CruiseSpeed,
			MaxTurnRate:        parameter.MaxTurnRate,
			SeparationDistance: parameter.SeparationDistance,
			SeparationWeight:   parameter.SeparationWeight,
			RayDistance:        parameter.RayDistance,
			ArrivalRadius:      parameter.ArrivalRadius,
			QueueSpacing:       parameter.QueueSpacing,
			HarvestDwell:       parameter.HarvestDwell.Seconds(),
			DeliverDwell:       parameter.DeliverDwell.Seconds(),
			Cooldown:           parameter.CycleCooldown.Seconds(),
			StuckBreaker:       true,
		},
		Bases: []Base{blue, red},
	}
}

// Load reads and parses a scene file
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates raw YAML against the schema, then decodes it over Default
func Parse(raw []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc != nil {
		if err := validateSchema(doc); err != nil {
			return nil, err
		}
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateSchema round-trips the YAML tree through JSON so the validator sees JSON types
func validateSchema(doc any) error {
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Validate checks cross-field constraints the schema cannot express
func (c *Config) Validate() error {
	if c.Spawner.MaxRadius < c.Spawner.MinRadius {
		return fmt.Errorf("%w: spawner max_radius %.2f below min_radius %.2f", ErrInvalid, c.Spawner.MaxRadius, c.Spawner.MinRadius)
	}
	if len(c.Bases) == 0 {
		return fmt.Errorf("%w: no bases", ErrInvalid)
	}
	seen := make(map[int]bool, len(c.Bases))
	lo, hi := c.Bases[0].MinDrones, c.Bases[0].MaxDrones
	for i, b := range c.Bases {
		if seen[b.Faction] {
			return fmt.Errorf("%w: bases[%d]: duplicate faction %d", ErrInvalid, i, b.Faction)
		}
		seen[b.Faction] = true
		if b.MaxDrones < b.MinDrones {
			return fmt.Errorf("%w: bases[%d]: max_drones %d below min_drones %d", ErrInvalid, i, b.MaxDrones, b.MinDrones)
		}
		if len(b.SpawnPoints) == 0 {
			return fmt.Errorf("%w: bases[%d]: no spawn points", ErrInvalid, i)
		}
		if _, err := core.ParseHexRGB(b.Color); err != nil {
			return fmt.Errorf("%w: bases[%d]: %v", ErrInvalid, i, err)
		}
		lo, hi = max(lo, b.MinDrones), min(hi, b.MaxDrones)
	}
	// One drone count slider drives every base
	if hi < lo {
		return fmt.Errorf("%w: bases share no drone count: min_drones up to %d, max_drones down to %d", ErrInvalid, lo, hi)
	}
	for i, o := range c.Obstacles {
		if (o.Sphere == nil) == (o.Box == nil) {
			return fmt.Errorf("%w: obstacles[%d]: want exactly one of sphere or box", ErrInvalid, i)
		}
	}
	return nil
}

// SpawnerConfig converts the spawner section
func (c *Config) SpawnerConfig() resource.SpawnerConfig {
	s := c.Spawner
	return resource.SpawnerConfig{
		Center:          s.Center.Vec(),
		MinRadius:       s.MinRadius,
		MaxRadius:       s.MaxRadius,
		InitialCount:    s.InitialCount,
		MaxResources:    s.MaxResources,
		RespawnInterval: seconds(s.RespawnInterval),
	}
}

// DroneConfig converts the drone section over the built-in steering profile
func (c *Config) DroneConfig() drone.Config {
	d := c.Drone
	out := drone.DefaultConfig()
	out.FlyHeight = d.FlyHeight
	out.TakeoffSpeed = d.TakeoffSpeed
	out.LandingSpeed = d.LandingSpeed
	out.CruiseSpeed = d.CruiseSpeed
	out.QueueSpacing = d.QueueSpacing
	out.HarvestDwell = seconds(d.HarvestDwell)
	out.DeliverDwell = seconds(d.DeliverDwell)
	out.Cooldown = seconds(d.Cooldown)
	out.Steering.MaxTurnRate = d.MaxTurnRate
	out.Steering.SeparationDistance = d.SeparationDistance
	out.Steering.SeparationWeight = d.SeparationWeight
	out.Steering.RayDistance = d.RayDistance
	out.Steering.ArrivalRadius = d.ArrivalRadius
	if !d.StuckBreaker {
		out.StuckTimeout = 0
	}
	return out
}

// BaseConfigs converts every base, sharing one drone configuration
func (c *Config) BaseConfigs() ([]base.Config, error) {
	dc := c.DroneConfig()
	out := make([]base.Config, 0, len(c.Bases))
	for i, b := range c.Bases {
		color, err := core.ParseHexRGB(b.Color)
		if err != nil {
			return nil, fmt.Errorf("bases[%d]: %w", i, err)
		}
		spawns := make([]vmath.Vec3F, len(b.SpawnPoints))
		for j, sp := range b.SpawnPoints {
			spawns[j] = sp.Vec()
		}
		out = append(out, base.Config{
			Faction:       b.Faction,
			Color:         color,
			DropPoint:     b.DropPoint.Vec(),
			SpawnPoints:   spawns,
			MinDrones:     b.MinDrones,
			MaxDrones:     b.MaxDrones,
			InitialDrones: b.InitialDrones,
			Drone:         dc,
		})
	}
	return out, nil
}

// ObstacleSet converts the obstacle list, nil when empty
func (c *Config) ObstacleSet() physics.Obstacles {
	if len(c.Obstacles) == 0 {
		return nil
	}
	out := make(physics.Obstacles, 0, len(c.Obstacles))
	for _, o := range c.Obstacles {
		switch {
		case o.Sphere != nil:
			out = append(out, physics.Sphere{Center: o.Sphere.Center.Vec(), Radius: o.Sphere.Radius})
		case o.Box != nil:
			out = append(out, physics.Box{Min: o.Box.Min.Vec(), Max: o.Box.Max.Vec()})
		}
	}
	return out
}
