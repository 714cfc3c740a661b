// Package geozone matches geographic points to avalanche hazard-zone
// polygons, with a nearest-vertex fallback for the gaps that
// community-maintained zone layers have near boundaries and high terrain.
package geozone

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/trailsafe/trailsafe/pkg/geo"
)

// Geozone errors.
var (
	ErrLayerUnavailable = errors.New("zone map layer unavailable")
)

// Zone is one hazard-zone feature from a center's map layer.
type Zone struct {
	ID         int            `json:"id"`
	Type       string         `json:"type"`
	Properties ZoneProperties `json:"properties"`
	Geometry   ZoneGeometry   `json:"geometry"`
}

// ZoneProperties carries the owning center and whatever summary danger data
// the map layer already includes. The summary fields are the degradation
// target when detail fetches fail.
type ZoneProperties struct {
	Name         string `json:"name"`
	CenterID     string `json:"center_id"`
	Center       string `json:"center"`
	State        string `json:"state"`
	DangerLevel  int    `json:"danger_level"`
	Danger       string `json:"danger"`
	TravelAdvice string `json:"travel_advice"`
	Link         string `json:"link"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	OffSeason    bool   `json:"off_season"`
}

// ZoneGeometry handles both Polygon and MultiPolygon GeoJSON types, storing
// everything as a flat list of rings.
type ZoneGeometry struct {
	Type  string
	Rings geo.Polygon
}

// UnmarshalJSON flattens Polygon and MultiPolygon coordinates into rings.
func (g *ZoneGeometry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Type = raw.Type

	switch raw.Type {
	case "Polygon":
		var coords [][][2]float64
		if err := json.Unmarshal(raw.Coordinates, &coords); err != nil {
			return fmt.Errorf("unmarshaling Polygon coordinates: %w", err)
		}
		for _, ring := range coords {
			g.Rings = append(g.Rings, geo.Ring(ring))
		}
	case "MultiPolygon":
		var multi [][][][2]float64
		if err := json.Unmarshal(raw.Coordinates, &multi); err != nil {
			return fmt.Errorf("unmarshaling MultiPolygon coordinates: %w", err)
		}
		for _, poly := range multi {
			for _, ring := range poly {
				g.Rings = append(g.Rings, geo.Ring(ring))
			}
		}
	default:
		return fmt.Errorf("unsupported geometry type: %s", raw.Type)
	}
	return nil
}

// MarshalJSON re-emits the geometry as a GeoJSON Polygon of its rings.
func (g ZoneGeometry) MarshalJSON() ([]byte, error) {
	coords := make([][][2]float64, 0, len(g.Rings))
	for _, ring := range g.Rings {
		coords = append(coords, [][2]float64(ring))
	}
	return json.Marshal(struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}{Type: "Polygon", Coordinates: coords})
}

// ContainsPoint reports whether the point falls inside any of the zone's
// polygons. Rings are treated as independent outer boundaries because
// MultiPolygon holes are flattened away; the zone layers in use do not
// publish holes.
func (z *Zone) ContainsPoint(lat, lon float64) bool {
	for _, ring := range z.Geometry.Rings {
		if ring.ContainsPoint(lat, lon) {
			return true
		}
	}
	return false
}

// MinVertexDistanceKm returns the distance from the point to the closest
// polygon vertex of the zone.
func (z *Zone) MinVertexDistanceKm(lat, lon float64) float64 {
	return z.Geometry.Rings.MinVertexDistanceKm(lat, lon)
}

// MapLayer is the full zone feature collection for all centers.
type MapLayer struct {
	Type     string `json:"type"`
	Features []Zone `json:"features"`
}

// MatchMode describes how a point was matched to a zone.
type MatchMode string

const (
	// MatchPolygon means the point fell strictly inside a zone polygon.
	MatchPolygon MatchMode = "polygon"

	// MatchNearest means the point was outside every polygon but within the
	// fallback distance cap of a zone vertex.
	MatchNearest MatchMode = "nearest"

	// MatchNone means no zone matched.
	MatchNone MatchMode = "none"
)

// Match is the result of resolving a point against the zone layer.
type Match struct {
	Zone       *Zone
	Mode       MatchMode
	DistanceKm float64
}
