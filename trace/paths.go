package trace

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/lixenwraith/drone-harvest/core"
	"github.com/lixenwraith/drone-harvest/drone"
	"github.com/lixenwraith/drone-harvest/vmath"
)

// Fleet is what path export needs from a base
type Fleet interface {
	Faction() int
	Color() core.RGB
	DropPoint() vmath.Vec3F
	Drones() []*drone.Drone
}

// planar projects onto the top-down XZ plane
func planar(v vmath.Vec3F) orb.Point {
	return orb.Point{v.X, v.Z}
}

// Paths builds one Point feature per drop point and one LineString per traced drone
// Drones with fewer than two samples are skipped
func Paths(fleets ...Fleet) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range fleets {
		color := f.Color().Hex()

		drop := geojson.NewFeature(planar(f.DropPoint()))
		drop.Properties["kind"] = "drop"
		drop.Properties["faction"] = f.Faction()
		drop.Properties["color"] = color
		fc.Append(drop)

		for _, d := range f.Drones() {
			path := d.Path()
			if len(path) < 2 {
				continue
			}
			ls := make(orb.LineString, len(path))
			for i, p := range path {
				ls[i] = planar(p)
			}
			feat := geojson.NewFeature(ls)
			feat.Properties["kind"] = "path"
			feat.Properties["faction"] = f.Faction()
			feat.Properties["drone"] = uint64(d.ID)
			feat.Properties["phase"] = d.Phase().String()
			feat.Properties["color"] = color
			fc.Append(feat)
		}
	}
	return fc
}

// PathsGeoJSON marshals Paths
func PathsGeoJSON(fleets ...Fleet) ([]byte, error) {
	return Paths(fleets...).MarshalJSON()
}
