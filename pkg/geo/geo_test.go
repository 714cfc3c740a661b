package geo_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trailsafe/trailsafe/pkg/geo"
)

// square returns a closed ring around the given center with the given
// half-width in degrees.
func square(lat, lon, half float64) geo.Ring {
	return geo.Ring{
		{lon - half, lat - half},
		{lon + half, lat - half},
		{lon + half, lat + half},
		{lon - half, lat + half},
		{lon - half, lat - half},
	}
}

func TestHaversineKm(t *testing.T) {
	// Salt Lake City to Denver, roughly 600 km.
	slc := geo.Point{Lat: 40.7608, Lon: -111.8910}
	den := geo.Point{Lat: 39.7392, Lon: -104.9903}

	d := geo.HaversineKm(slc, den)
	assert.InDelta(t, 600, d, 15)

	// Zero distance to self.
	assert.InDelta(t, 0, geo.HaversineKm(slc, slc), 1e-9)
}

func TestRingContainsPoint(t *testing.T) {
	ring := square(40.0, -111.0, 0.5)

	assert.True(t, ring.ContainsPoint(40.0, -111.0))
	assert.True(t, ring.ContainsPoint(40.4, -110.6))
	assert.False(t, ring.ContainsPoint(41.0, -111.0))
	assert.False(t, ring.ContainsPoint(40.0, -113.0))
}

func TestPolygonHoles(t *testing.T) {
	outer := square(40.0, -111.0, 1.0)
	hole := square(40.0, -111.0, 0.2)
	poly := geo.Polygon{outer, hole}

	assert.True(t, poly.ContainsPoint(40.5, -111.0), "inside outer, outside hole")
	assert.False(t, poly.ContainsPoint(40.0, -111.0), "inside hole")
	assert.False(t, poly.ContainsPoint(42.0, -111.0), "outside outer")
}

func TestMinVertexDistanceKm(t *testing.T) {
	poly := geo.Polygon{square(40.0, -111.0, 0.5)}

	// Nearest vertex to a point just east of the polygon is the SE corner.
	d := poly.MinVertexDistanceKm(39.5, -110.4)
	want := geo.HaversineKm(geo.Point{Lat: 39.5, Lon: -110.4}, geo.Point{Lat: 39.5, Lon: -110.5})
	assert.InDelta(t, want, d, 1e-9)

	empty := geo.Polygon{}
	assert.True(t, math.IsInf(empty.MinVertexDistanceKm(0, 0), 1))
}

func TestBoundingBoxContains(t *testing.T) {
	box := geo.BoundingBox{MinLat: 36.9, MaxLat: 42.1, MinLon: -114.2, MaxLon: -108.9}

	assert.True(t, box.Contains(40.1, -110.9))
	assert.False(t, box.Contains(45.0, -110.9))
	assert.False(t, box.Contains(40.1, -100.0))
}
