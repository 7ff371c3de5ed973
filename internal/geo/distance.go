package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// EarthRadiusMeters is the spherical Earth radius every distance in gpause is expressed in.
const EarthRadiusMeters = 6371000.0

// Distance calculates the great-circle distance between two points in meters.
// s2.LatLng.Distance evaluates the haversine formula, so the result matches
// a classic haversine on a 6371 km sphere.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusMeters
}

// Offset returns the point reached by moving northMeters and eastMeters from
// (lat, lon) on the local tangent plane. Accurate to a few centimeters for the
// sub-kilometer offsets used when synthesizing tracks.
func Offset(lat, lon, northMeters, eastMeters float64) (float64, float64) {
	p := s2.LatLngFromDegrees(lat, lon)
	dLat := s1.Angle(northMeters / EarthRadiusMeters)
	dLon := s1.Angle(eastMeters / (EarthRadiusMeters * math.Cos(p.Lat.Radians())))

	return lat + dLat.Degrees(), lon + dLon.Degrees()
}
