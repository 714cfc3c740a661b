package geozone

import (
	"math"

	"github.com/trailsafe/trailsafe/pkg/geo"
)

// DefaultFallbackCapKm is the default maximum nearest-vertex distance for a
// fallback match.
const DefaultFallbackCapKm = 40.0

// utahRelaxedCapKm is the relaxed cap used for the Utah region override.
const utahRelaxedCapKm = 90.0

// utahBox bounds the region whose zone polygons are known to be coarse near
// the borders. Points inside it get a second, relaxed nearest-vertex pass
// restricted to that region's own zones.
var utahBox = geo.BoundingBox{MinLat: 36.9, MaxLat: 42.1, MinLon: -114.2, MaxLon: -108.9}

// utahCenterID identifies the center owning the override region's zones.
const utahCenterID = "UAC"

// Resolver matches points to hazard zones.
type Resolver struct {
	fallbackCapKm float64
}

// NewResolver creates a resolver with the given fallback cap. A zero or
// negative cap uses DefaultFallbackCapKm.
func NewResolver(fallbackCapKm float64) *Resolver {
	if fallbackCapKm <= 0 {
		fallbackCapKm = DefaultFallbackCapKm
	}
	return &Resolver{fallbackCapKm: fallbackCapKm}
}

// Resolve matches (lat, lon) against the zone features in order:
// first polygon containment, then nearest polygon vertex within the fallback
// cap, then a relaxed nearest-vertex pass restricted to the override region's
// zones when the point sits inside that region's bounding box.
func (r *Resolver) Resolve(zones []Zone, lat, lon float64) Match {
	for i := range zones {
		if zones[i].ContainsPoint(lat, lon) {
			return Match{Zone: &zones[i], Mode: MatchPolygon, DistanceKm: 0}
		}
	}

	if m, ok := nearestWithin(zones, lat, lon, r.fallbackCapKm, ""); ok {
		return m
	}

	if utahBox.Contains(lat, lon) {
		relaxed := math.Max(r.fallbackCapKm, utahRelaxedCapKm)
		if m, ok := nearestWithin(zones, lat, lon, relaxed, utahCenterID); ok {
			return m
		}
	}

	return Match{Mode: MatchNone}
}

// nearestWithin finds the zone whose closest polygon vertex is nearest to the
// point, accepting it only when within capKm. An empty centerID considers all
// zones; otherwise only zones owned by that center.
func nearestWithin(zones []Zone, lat, lon, capKm float64, centerID string) (Match, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i := range zones {
		if centerID != "" && zones[i].Properties.CenterID != centerID {
			continue
		}
		d := zones[i].MinVertexDistanceKm(lat, lon)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	if best < 0 || bestDist > capKm {
		return Match{}, false
	}
	return Match{Zone: &zones[best], Mode: MatchNearest, DistanceKm: bestDist}, true
}
