package pause

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func TestDetectStationaryThenMoving(t *testing.T) {
	// 60s stationary at 1 Hz within a few decimeters, then 60s at 3 m/s.
	fixes := new(trackBuilder).stay(60, 1).move(60, 1, 3).build()

	result, err := mustDetector(DefaultConfig()).Detect(fixes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(result.Intervals) != 1 {
		t.Fatalf("expected 1 pause, got %d", len(result.Intervals))
	}

	iv := result.Intervals[0]
	// Nothing is known at the first point, so the missing pace and density
	// both count as stopped.
	if iv.StartIndex != 0 {
		t.Errorf("expected pause to start at 0, got %d", iv.StartIndex)
	}
	// Two moving segments are needed before the 7-segment pace drops under 20 min/km.
	if iv.EndIndex != 61 {
		t.Errorf("expected pause to end at 61, got %d", iv.EndIndex)
	}
	if iv.EndIndex <= iv.StartIndex {
		t.Errorf("end index %d must exceed start index %d", iv.EndIndex, iv.StartIndex)
	}
	if iv.Points != 62 {
		t.Errorf("expected 62 points, got %d", iv.Points)
	}
	if iv.Duration != 61 {
		t.Errorf("expected 61s, got %.1fs", iv.Duration)
	}
	if iv.ClosedByTrackEnd {
		t.Errorf("pause should close on movement, not at track end")
	}
	if !iv.EndEvidence.HasPace || iv.EndEvidence.Pace >= 20 {
		t.Errorf("end evidence should carry a pace under 20 min/km, got %+v", iv.EndEvidence)
	}
	if iv.EndEvidence.MaxDisplacement <= 30 {
		t.Errorf("end evidence should carry a spread over 30m, got %.2f", iv.EndEvidence.MaxDisplacement)
	}
}

func TestDetectSmartRecordingStop(t *testing.T) {
	fixes := smartRecordingTrack()

	result, err := mustDetector(DefaultConfig()).Detect(fixes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(result.Intervals) != 1 {
		t.Fatalf("expected 1 pause, got %d", len(result.Intervals))
	}

	iv := result.Intervals[0]
	if iv.StartIndex != 122 {
		t.Errorf("expected pause to start at 122, got %d", iv.StartIndex)
	}
	if iv.EndIndex != 148 {
		t.Errorf("expected pause to end at 148, got %d", iv.EndIndex)
	}
	if iv.Duration != 110 {
		t.Errorf("expected 110s, got %.1fs", iv.Duration)
	}
	if iv.SinceActivityStart != 134 {
		t.Errorf("expected pause 134s into the activity, got %.1f", iv.SinceActivityStart)
	}
	if iv.Points != 27 {
		t.Errorf("expected 27 points, got %d", iv.Points)
	}
	if !iv.Start.Time.Equal(fixes[122].Time) || !iv.End.Time.Equal(fixes[148].Time) {
		t.Errorf("start/end fixes do not match their indices")
	}

	// 21 jitter segments of 0.3m, one ~3.015m step off the stop and 4 running steps.
	if math.Abs(iv.Distance-21.315) > 0.05 {
		t.Errorf("expected ~21.3m inside the pause, got %.3f", iv.Distance)
	}
	if math.Abs(iv.StartCumulative-357.6) > 0.05 {
		t.Errorf("expected pause to start ~357.6m in, got %.3f", iv.StartCumulative)
	}
	if math.Abs((iv.EndCumulative-iv.StartCumulative)-iv.Distance) > 1e-6 {
		t.Errorf("cumulative bookends disagree with pause distance")
	}

	ev := iv.StartEvidence
	if !ev.HasPace || ev.Pace <= 15 {
		t.Errorf("start evidence should carry a pace over 15 min/km, got %+v", ev)
	}
	if !ev.HasDensity || ev.Density >= 1 {
		t.Errorf("start evidence should carry a density under 1 pt/s, got %+v", ev)
	}
}

func TestDetectDenseStopIsIgnored(t *testing.T) {
	// Stopping for two minutes while still sampling every second keeps the
	// density above 1 pt/s, so no pause opens.
	fixes := new(trackBuilder).
		move(120, 1, 3).
		stay(120, 1).
		move(120, 1, 3).
		build()

	result, err := mustDetector(DefaultConfig()).Detect(fixes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Intervals) != 0 {
		t.Errorf("expected no pause, got %d", len(result.Intervals))
	}
}

func TestDetectTrackEndsPaused(t *testing.T) {
	fixes := new(trackBuilder).move(120, 1, 3).stay(24, 5).build()

	result, err := mustDetector(DefaultConfig()).Detect(fixes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(result.Intervals) != 1 {
		t.Fatalf("expected exactly 1 pause, got %d", len(result.Intervals))
	}

	iv := result.Intervals[0]
	last := fixes[len(fixes)-1]
	if !iv.ClosedByTrackEnd {
		t.Errorf("expected pause to be closed by the end of the track")
	}
	if !iv.End.Time.Equal(last.Time) || iv.EndIndex != len(fixes)-1 {
		t.Errorf("expected pause to end on the last point, got index %d at %v", iv.EndIndex, iv.End.Time)
	}
	if iv.Duration != 105 {
		t.Errorf("expected 105s, got %.1fs", iv.Duration)
	}
}

func TestDetectTwoPauses(t *testing.T) {
	fixes := new(trackBuilder).
		move(120, 1, 3).
		stay(24, 5).
		move(120, 1, 3).
		stay(24, 5).
		move(60, 1, 3).
		build()

	result, err := mustDetector(DefaultConfig()).Detect(fixes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(result.Intervals) != 2 {
		t.Fatalf("expected 2 pauses, got %d", len(result.Intervals))
	}

	want := [][2]int{{122, 148}, {266, 292}}
	for i, iv := range result.Intervals {
		if iv.StartIndex != want[i][0] || iv.EndIndex != want[i][1] {
			t.Errorf("pause %d: expected [%d, %d], got [%d, %d]",
				i, want[i][0], want[i][1], iv.StartIndex, iv.EndIndex)
		}
	}

	for i := 1; i < len(result.Intervals); i++ {
		prev, cur := result.Intervals[i-1], result.Intervals[i]
		if cur.StartIndex <= prev.EndIndex {
			t.Errorf("pause %d starts at %d, inside pause %d ending at %d", i, cur.StartIndex, i-1, prev.EndIndex)
		}
	}
}

func TestDetectIsIdempotent(t *testing.T) {
	fixes := smartRecordingTrack()
	d := mustDetector(DefaultConfig())

	first, err := d.Detect(fixes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	second, err := d.Detect(fixes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if !reflect.DeepEqual(first.Intervals, second.Intervals) {
		t.Errorf("two runs over the same track disagree")
	}
}

func TestDetectTwoPoints(t *testing.T) {
	b := new(trackBuilder)
	b.add(0)
	b.t, b.north = 10, 100
	b.add(0)

	result, err := mustDetector(DefaultConfig()).Detect(b.build())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Intervals) != 0 {
		t.Errorf("expected no pause for a moving pair, got %d", len(result.Intervals))
	}

	// A stationary pair opens a pause on the first point, which only the end
	// of the track can close.
	still := new(trackBuilder).stay(2, 1).build()
	result, err = mustDetector(DefaultConfig()).Detect(still)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Intervals) != 1 || !result.Intervals[0].ClosedByTrackEnd {
		t.Errorf("expected one pause closed by the end of the track, got %+v", result.Intervals)
	}
}

func TestDetectErrors(t *testing.T) {
	d := mustDetector(DefaultConfig())

	if _, err := d.Detect(nil); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for no points, got %v", err)
	}

	one := new(trackBuilder).move(1, 1, 3).build()
	if _, err := d.Detect(one); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData for one point, got %v", err)
	}

	unordered := new(trackBuilder).move(5, 1, 3).build()
	unordered[3].Time = unordered[1].Time.Add(-time.Second)
	if _, err := d.Detect(unordered); !errors.Is(err, ErrUnordered) {
		t.Errorf("expected ErrUnordered, got %v", err)
	}

	missing := new(trackBuilder).move(5, 1, 3).build()
	missing[2].Time = time.Time{}
	if _, err := d.Detect(missing); !errors.Is(err, ErrMissingTimestamp) {
		t.Errorf("expected ErrMissingTimestamp, got %v", err)
	}
}

func TestNewDetectorRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero n_start", func(c *Config) { c.NStart = 0 }},
		{"negative dist_end", func(c *Config) { c.DistEnd = -1 }},
		{"NaN dist_start", func(c *Config) { c.DistStart = math.NaN() }},
		{"NaN pace_end", func(c *Config) { c.PaceEnd = math.NaN() }},
		{"infinite pace_start", func(c *Config) { c.PaceStart = math.Inf(1) }},
		{"infinite density_thresh", func(c *Config) { c.DensityThresh = math.Inf(1) }},
		{"NaN time_window_end", func(c *Config) { c.TimeWindowEnd = math.NaN() }},
		{"infinite density_window", func(c *Config) { c.DensityWindow = math.Inf(1) }},
		{"time_window_start beyond time.Duration", func(c *Config) { c.TimeWindowStart = 1e300 }},
		{"time_window_end at the time.Duration limit", func(c *Config) { c.TimeWindowEnd = maxWindowSeconds }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			if _, err := NewDetector(cfg, nil); err == nil {
				t.Fatalf("expected an error for %+v", cfg)
			}
		})
	}
}

func TestLargestWindowStillDetects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DensityWindow = 1e9 // about 31 years, still a valid time.Duration

	if seconds(cfg.DensityWindow) <= 0 {
		t.Fatalf("expected a positive window, got %v", seconds(cfg.DensityWindow))
	}

	result, err := mustDetector(cfg).Detect(smartRecordingTrack())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Intervals) != 1 {
		t.Errorf("expected the single stop to be found, got %d pauses", len(result.Intervals))
	}
}

// A pause only closes on measured movement: a large spread with no pace data
// keeps it open.
func TestMissingPaceKeepsPauseOpen(t *testing.T) {
	b := new(trackBuilder)
	for k := 0; k < 10; k++ {
		if k > 0 {
			b.t += 5
		}
		b.add(0) // fixes 0..9 on the exact same spot, every 5 s
	}
	b.t += 5
	b.north += 100
	b.add(0) // fix 10 jumps 100 m
	b.move(40, 1, 3)
	fixes := b.build()

	d := mustDetector(DefaultConfig())

	for i := 4; i <= 9; i++ {
		ev, end := d.endHolds(fixes, i)
		if !d.endDistanceHolds(ev) {
			t.Fatalf("fix %d: expected the end window to reach the jump, spread %.1f m", i, ev.MaxDisplacement)
		}
		if ev.HasPace {
			t.Fatalf("fix %d: expected no pace over identical fixes, got %.2f", i, ev.Pace)
		}
		if end {
			t.Errorf("fix %d: pause closed without pace data", i)
		}
	}

	result, err := d.Detect(fixes)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(result.Intervals) != 1 {
		t.Fatalf("expected 1 pause, got %d", len(result.Intervals))
	}

	iv := result.Intervals[0]
	if iv.StartIndex != 0 || iv.EndIndex != 10 {
		t.Errorf("expected pause [0, 10], got [%d, %d]", iv.StartIndex, iv.EndIndex)
	}
	if iv.ClosedByTrackEnd || !iv.EndEvidence.HasPace {
		t.Errorf("expected the pause to close on measured pace, got %+v", iv.EndEvidence)
	}
}

func TestPacePredicatesWithoutData(t *testing.T) {
	d := mustDetector(DefaultConfig())
	noPace := Evidence{MaxDisplacement: 100}

	if d.endPaceHolds(noPace) {
		t.Errorf("a missing pace must not close a pause")
	}
	if !d.startPaceHolds(noPace) {
		t.Errorf("a missing pace must not prevent a pause from opening")
	}
	if !d.startDensityHolds(Evidence{}) {
		t.Errorf("a missing density must not prevent a pause from opening")
	}

	if !d.endPaceHolds(Evidence{Pace: 5, HasPace: true}) {
		t.Errorf("a running pace should close a pause")
	}
	if d.endPaceHolds(Evidence{Pace: 25, HasPace: true}) {
		t.Errorf("a walking pace should not close a pause")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.DistStart != 30 || cfg.DistEnd != 30 {
		t.Errorf("unexpected distance thresholds: %+v", cfg)
	}
	if cfg.TimeWindowStart != 45 || cfg.TimeWindowEnd != 30 {
		t.Errorf("unexpected windows: %+v", cfg)
	}
	if cfg.PaceStart != 15 || cfg.PaceEnd != 20 || cfg.NStart != 10 || cfg.NEnd != 7 {
		t.Errorf("unexpected pace thresholds: %+v", cfg)
	}
	if cfg.DensityThresh != 1.0 || cfg.DensityWindow != 30 {
		t.Errorf("unexpected density thresholds: %+v", cfg)
	}
}
