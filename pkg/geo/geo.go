// Package geo provides geographic primitives used for hazard-zone matching:
// haversine distance, ray-casting point-in-polygon tests, and bounding boxes.
package geo

import "math"

// EarthRadiusKm is the mean radius of the Earth in kilometers.
const EarthRadiusKm = 6371.0

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Ring is a closed polygon ring of [lon, lat] vertex pairs, GeoJSON order.
type Ring [][2]float64

// ContainsPoint reports whether the point lies inside the ring, using the
// even-odd ray-casting rule. Points exactly on an edge may land either way;
// zone polygons are coarse enough that this does not matter in practice.
func (r Ring) ContainsPoint(lat, lon float64) bool {
	inside := false
	n := len(r)
	if n < 3 {
		return false
	}
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := r[i][0], r[i][1]
		xj, yj := r[j][0], r[j][1]
		if (yi > lat) != (yj > lat) &&
			lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Polygon is a set of rings. The first ring is the outer boundary; any
// following rings are holes.
type Polygon []Ring

// ContainsPoint reports whether the point is inside the outer ring and
// outside every hole.
func (p Polygon) ContainsPoint(lat, lon float64) bool {
	if len(p) == 0 || !p[0].ContainsPoint(lat, lon) {
		return false
	}
	for _, hole := range p[1:] {
		if hole.ContainsPoint(lat, lon) {
			return false
		}
	}
	return true
}

// MinVertexDistanceKm returns the smallest haversine distance from the point
// to any vertex of any ring. Returns +Inf for an empty polygon.
func (p Polygon) MinVertexDistanceKm(lat, lon float64) float64 {
	min := math.Inf(1)
	from := Point{Lat: lat, Lon: lon}
	for _, ring := range p {
		for _, v := range ring {
			d := HaversineKm(from, Point{Lat: v[1], Lon: v[0]})
			if d < min {
				min = d
			}
		}
	}
	return min
}

// BoundingBox represents a geographic bounding box.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains checks if a point is within the bounding box.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}
