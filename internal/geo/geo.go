// Package geo provides the great-circle distance used for geofence checks.
package geo

import "math"

// earthRadius is the mean Earth radius in meters. Haversine on a sphere is
// within ~0.5% of an ellipsoidal model, fine for radius checks measured in
// tens of meters.
const earthRadius = 6371000

// Distance returns the haversine distance in meters between two coordinates
// given in decimal degrees. Symmetric and zero for identical points.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// ValidCoordinates reports whether a latitude/longitude pair is inside the
// WGS84 value range.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
