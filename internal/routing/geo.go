package routing

import "math"

const deg2rad = math.Pi / 180.0

// initialBearing computes the forward azimuth from one [lon,lat] point to
// another, in degrees normalized to [0,360).
func initialBearing(from, to []float64) float64 {
	lon1 := from[0] * deg2rad
	lat1 := from[1] * deg2rad
	lon2 := to[0] * deg2rad
	lat2 := to[1] * deg2rad

	dLon := lon2 - lon1
	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return normalizeBearing(math.Atan2(y, x) / deg2rad)
}

// normalizeBearing maps any angle in degrees into [0,360).
func normalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// bearingsAt returns the (before, after) bearings at geometry index idx.
// The first point of a geometry has no "before" bearing and the last point
// no "after" bearing; both are defined as 0.
func bearingsAt(geometry [][]float64, idx int) (before, after float64) {
	if idx > 0 && idx < len(geometry) {
		before = initialBearing(geometry[idx-1], geometry[idx])
	}
	if idx >= 0 && idx < len(geometry)-1 {
		after = initialBearing(geometry[idx], geometry[idx+1])
	}
	return before, after
}
