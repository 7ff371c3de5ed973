package pause

import (
	"time"

	"github.com/planbiir/gpause/internal/geo"
)

var trackStart = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

const (
	originLat = 46.0
	originLon = 7.0
)

// trackBuilder lays out a synthetic track heading north from the origin.
type trackBuilder struct {
	fixes []Fix
	t     float64 // seconds since trackStart
	north float64 // meters from the origin
}

func (b *trackBuilder) add(east float64) {
	lat, lon := geo.Offset(originLat, originLon, b.north, east)
	b.fixes = append(b.fixes, Fix{Lat: lat, Lon: lon, Time: trackStart.Add(seconds(b.t))})
}

// move records n fixes every step seconds while travelling at speed m/s.
func (b *trackBuilder) move(n int, step, speed float64) *trackBuilder {
	for i := 0; i < n; i++ {
		if len(b.fixes) > 0 {
			b.t += step
			b.north += speed * step
		}
		b.add(0)
	}
	return b
}

// stay records n fixes every step seconds jittering 0.3m east and back.
func (b *trackBuilder) stay(n int, step float64) *trackBuilder {
	for k := 0; k < n; k++ {
		if len(b.fixes) > 0 {
			b.t += step
		}
		east := 0.0
		if k%2 == 1 {
			east = 0.3
		}
		b.add(east)
	}
	return b
}

func (b *trackBuilder) build() []Fix {
	return b.fixes
}

// smartRecordingTrack is 2 min running at 3 m/s sampled every second, a 2 min
// stop sampled every 5 s, then 2 min running again. The stop spans fixes
// 120..143.
func smartRecordingTrack() []Fix {
	return new(trackBuilder).
		move(120, 1, 3).
		stay(24, 5).
		move(120, 1, 3).
		build()
}

func mustDetector(cfg Config) *Detector {
	d, err := NewDetector(cfg, nil)
	if err != nil {
		panic(err)
	}
	return d
}
