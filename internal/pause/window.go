package pause

import (
	"time"

	"github.com/planbiir/gpause/internal/geo"
)

// All window queries assume fixes are sorted by time: the scans stop at the
// first fix outside the window.

// distance is the geodesic distance between two fixes in meters.
func distance(a, b Fix) float64 {
	return geo.Distance(a.Lat, a.Lon, b.Lat, b.Lon)
}

// pace converts seconds per meter into min/km.
func pace(seconds, meters float64) float64 {
	return (seconds / meters) * 1000 / 60
}

// MaxDisplacement returns the largest distance between any two fixes in the
// run starting at i and ending at the last fix no later than fixes[i].Time+window.
// A run of one fix has a spread of 0.
func MaxDisplacement(fixes []Fix, i int, window time.Duration) float64 {
	end := fixes[i].Time.Add(window)

	last := i
	for j := i + 1; j < len(fixes); j++ {
		if fixes[j].Time.After(end) {
			break
		}
		last = j
	}

	var maxDist float64
	for a := i; a <= last; a++ {
		for b := a + 1; b <= last; b++ {
			if d := distance(fixes[a], fixes[b]); d > maxDist {
				maxDist = d
			}
		}
	}

	return maxDist
}

// AveragePace returns the pace in min/km over the n segments ending at i,
// computed as total time over total distance. ok is false when there is no
// preceding segment or the segments cover no distance or no time.
func AveragePace(fixes []Fix, i, n int) (float64, bool) {
	start := max(0, i-n)
	if start >= i {
		return 0, false
	}

	var totalDistance, totalSeconds float64
	for j := start; j < i; j++ {
		totalDistance += distance(fixes[j], fixes[j+1])
		totalSeconds += fixes[j+1].Time.Sub(fixes[j].Time).Seconds()
	}

	if totalDistance == 0 || totalSeconds == 0 {
		return 0, false
	}

	return pace(totalSeconds, totalDistance), true
}

// SampleDensity returns points per second over the window ending at fixes[i].
// ok is false at the first fix, when fewer than two fixes fall inside the
// window, or when those fixes share a timestamp.
func SampleDensity(fixes []Fix, i int, window time.Duration) (float64, bool) {
	if i == 0 {
		return 0, false
	}

	begin := fixes[i].Time.Add(-window)

	count := 0
	for j := i; j >= 0; j-- {
		if fixes[j].Time.Before(begin) {
			break
		}
		count++
	}

	if count < 2 {
		return 0, false
	}

	elapsed := fixes[i].Time.Sub(fixes[i-count+1].Time).Seconds()
	if elapsed == 0 {
		return 0, false
	}

	return float64(count) / elapsed, true
}
