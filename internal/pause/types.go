package pause

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// ErrInsufficientData is returned when fewer than two timestamped fixes are supplied.
	ErrInsufficientData = errors.New("not enough timestamped points")
	// ErrUnordered is returned when a fix is earlier than the one before it.
	ErrUnordered = errors.New("points are not ordered by time")
	// ErrMissingTimestamp is returned when a fix has a zero timestamp.
	ErrMissingTimestamp = errors.New("point without timestamp")
)

// Fix is one recorded GPS sample.
type Fix struct {
	Lat  float64
	Lon  float64
	Time time.Time
}

// Config holds the pause detection thresholds. Distances are meters, windows
// are seconds, paces are min/km and densities are points per second.
type Config struct {
	// Pause start
	DistStart       float64 `mapstructure:"dist_start" json:"dist_start"`
	TimeWindowStart float64 `mapstructure:"time_window_start" json:"time_window_start"`
	PaceStart       float64 `mapstructure:"pace_start" json:"pace_start"`
	NStart          int     `mapstructure:"n_start" json:"n_start"`
	DensityThresh   float64 `mapstructure:"density_thresh" json:"density_thresh"`
	DensityWindow   float64 `mapstructure:"density_window" json:"density_window"`

	// Pause end
	DistEnd       float64 `mapstructure:"dist_end" json:"dist_end"`
	TimeWindowEnd float64 `mapstructure:"time_window_end" json:"time_window_end"`
	PaceEnd       float64 `mapstructure:"pace_end" json:"pace_end"`
	NEnd          int     `mapstructure:"n_end" json:"n_end"`
}

// DefaultConfig returns thresholds tuned on running tracks recorded with
// smart recording (sparse samples while stopped).
func DefaultConfig() Config {
	return Config{
		DistStart:       30,  // meters of spread that still counts as stopped
		TimeWindowStart: 45,  // seconds looked ahead when opening a pause
		PaceStart:       15,  // min/km, slower than this looks stopped
		NStart:          10,  // segments averaged for the start pace
		DensityThresh:   1.0, // points/s, smart recording drops below this when idle
		DensityWindow:   30,  // seconds looked back for density
		DistEnd:         30,  // meters of spread that means moving again
		TimeWindowEnd:   30,  // shorter than the start window to avoid anticipating
		PaceEnd:         20,  // min/km, faster than this means moving again
		NEnd:            7,   // segments averaged for the end pace
	}
}

// maxWindowSeconds is the first window length time.Duration cannot hold.
const maxWindowSeconds = float64(math.MaxInt64) / float64(time.Second)

// Validate reports every threshold that cannot drive a scan.
func (c Config) Validate() error {
	var errs []string

	positive := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be a positive number, got %g", name, v))
		}
	}
	window := func(name string, v float64) {
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0) || v < 0:
			errs = append(errs, fmt.Sprintf("%s must be a non-negative number of seconds, got %g", name, v))
		case v >= maxWindowSeconds:
			errs = append(errs, fmt.Sprintf("%s must be below %.0f seconds, got %g", name, maxWindowSeconds, v))
		}
	}

	positive("dist_start", c.DistStart)
	positive("dist_end", c.DistEnd)
	window("time_window_start", c.TimeWindowStart)
	window("time_window_end", c.TimeWindowEnd)
	positive("pace_start", c.PaceStart)
	positive("pace_end", c.PaceEnd)
	if c.NStart < 1 {
		errs = append(errs, fmt.Sprintf("n_start must be at least 1, got %d", c.NStart))
	}
	if c.NEnd < 1 {
		errs = append(errs, fmt.Sprintf("n_end must be at least 1, got %d", c.NEnd))
	}
	positive("density_thresh", c.DensityThresh)
	window("density_window", c.DensityWindow)

	if len(errs) > 0 {
		return fmt.Errorf("invalid detection config:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Evidence records the window statistics observed when a transition fired.
// HasPace and HasDensity are false when the query had no data.
type Evidence struct {
	MaxDisplacement float64 `json:"max_displacement_m"`
	Pace            float64 `json:"pace_min_km,omitempty"`
	HasPace         bool    `json:"has_pace"`
	Density         float64 `json:"density_pts_s,omitempty"`
	HasDensity      bool    `json:"has_density"`
}

// Interval is a detected pause between two fixes, inclusive.
type Interval struct {
	Start Fix
	End   Fix

	Duration           float64 // seconds
	Distance           float64 // meters covered inside the pause (GPS noise)
	SinceActivityStart float64 // seconds from the first fix to Start

	StartIndex, EndIndex           int
	StartCumulative, EndCumulative float64 // meters into the activity
	Points                         int

	StartEvidence Evidence
	EndEvidence   Evidence // zero when ClosedByTrackEnd

	ClosedByTrackEnd bool
}

// SecondsPerPoint is the average sampling interval inside the pause.
func (iv Interval) SecondsPerPoint() (float64, bool) {
	if iv.Points <= 1 {
		return 0, false
	}
	return iv.Duration / float64(iv.Points-1), true
}

// Result is the outcome of one detection pass.
type Result struct {
	Fixes      []Fix
	Cumulative []float64
	Intervals  []Interval
}
