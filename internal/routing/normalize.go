package routing

// Pure normalization helpers shared by the backend adapters. Nothing in this
// file performs I/O or touches shared state, so every transformation can be
// tested against captured backend fixtures without network access.

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

const (
	// polylinePrecision5 is the classic encoded-polyline scale (1e-5 per
	// unit), used by OpenRouteService and the Google family.
	polylinePrecision5 = 1e5
	// polylinePrecision6 is the higher-resolution scale used by Valhalla
	// shape strings.
	polylinePrecision6 = 1e6
)

// decodePolyline decodes an encoded polyline string into canonical [lon,lat]
// pairs. Polyline codecs emit [lat,lon]; the axis order is flipped here so
// no caller ever sees latitude-first geometry.
func decodePolyline(encoded string, scale float64) ([][]float64, error) {
	codec := polyline.Codec{Dim: 2, Scale: scale}
	coords, remaining, err := codec.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("routing: decode polyline: %w", err)
	}
	if len(remaining) != 0 {
		return nil, fmt.Errorf("routing: decode polyline: %d trailing bytes", len(remaining))
	}
	out := make([][]float64, len(coords))
	for i, c := range coords {
		out[i] = []float64{c[1], c[0]}
	}
	return out, nil
}

// synthesizeWaypoints builds the response waypoint list from the original
// request coordinates. Backends may omit or reorder waypoints, so the
// request is the single source of truth: the first is "Origin", the last
// "Destination", and interior points "Waypoint 1".."Waypoint N-2".
func synthesizeWaypoints(coords []Coordinate) []Waypoint {
	wps := make([]Waypoint, len(coords))
	for i, c := range coords {
		var name string
		switch {
		case i == 0:
			name = "Origin"
		case i == len(coords)-1:
			name = "Destination"
		default:
			name = fmt.Sprintf("Waypoint %d", i)
		}
		wps[i] = Waypoint{Name: name, Location: []float64{c.Longitude, c.Latitude}}
	}
	return wps
}

// singleLeg synthesizes a one-leg breakdown spanning the whole route, used
// when a backend provides no segment/step detail. The step list is empty,
// never nil, so the canonical shape stays fully formed.
func singleLeg(distance, duration float64, summary string) []RouteLeg {
	return []RouteLeg{{
		Distance: distance,
		Duration: duration,
		Steps:    []RouteStep{},
		Summary:  summary,
	}}
}

// sliceGeometry returns geometry[start..end] inclusive, clamped to valid
// bounds. Backends address step geometry by index pairs into the route
// shape; out-of-range indexes from a buggy backend degrade to an empty
// slice instead of panicking.
func sliceGeometry(geometry [][]float64, start, end int) [][]float64 {
	if start < 0 {
		start = 0
	}
	if end >= len(geometry) {
		end = len(geometry) - 1
	}
	if start > end {
		return [][]float64{}
	}
	out := make([][]float64, end-start+1)
	copy(out, geometry[start:end+1])
	return out
}
