package pause

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Detector finds pauses in a track. It holds no per-track state, so one
// Detector can serve concurrent callers.
type Detector struct {
	config Config
	log    logrus.FieldLogger
}

// NewDetector validates the config and returns a Detector. A nil logger
// discards detection logs.
func NewDetector(config Config, logger logrus.FieldLogger) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	return &Detector{config: config, log: logger}, nil
}

// Config returns the thresholds the Detector was built with.
func (d *Detector) Config() Config {
	return d.config
}

// scanState is either notPaused or paused; only paused carries a start.
type scanState interface {
	isScanState()
}

type notPaused struct{}

type paused struct {
	index      int
	cumulative float64
	evidence   Evidence
}

func (notPaused) isScanState() {}
func (paused) isScanState() {}

// Detect scans the fixes once and returns every pause, in track order.
// A pause still open when the track ends is closed on the last fix.
func (d *Detector) Detect(fixes []Fix) (*Result, error) {
	if err := checkFixes(fixes); err != nil {
		return nil, err
	}

	cumulative := CumulativeDistances(fixes)
	intervals := make([]Interval, 0)

	d.log.WithFields(logrus.Fields{
		"points":   len(fixes),
		"distance": cumulative[len(cumulative)-1],
	}).Debug("Analyzing points for pauses")

	var state scanState = notPaused{}
	for i := range fixes {
		switch s := state.(type) {
		case notPaused:
			evidence, start := d.startHolds(fixes, i)
			if !start {
				continue
			}
			state = paused{index: i, cumulative: cumulative[i], evidence: evidence}
			d.logTransition("Pause started", fixes[i], i, cumulative[i], evidence)

		case paused:
			evidence, end := d.endHolds(fixes, i)
			if !end {
				continue
			}
			iv := closeInterval(fixes, cumulative, s, i)
			iv.EndEvidence = evidence
			intervals = append(intervals, iv)
			state = notPaused{}
			d.logTransition("Pause ended", fixes[i], i, cumulative[i], evidence)
		}
	}

	if s, ok := state.(paused); ok {
		last := len(fixes) - 1
		iv := closeInterval(fixes, cumulative, s, last)
		iv.ClosedByTrackEnd = true
		intervals = append(intervals, iv)
		d.log.WithFields(logrus.Fields{
			"index":    last,
			"time":     fixes[last].Time,
			"duration": iv.Duration,
		}).Debug("Pause ended at end of track")
	}

	d.log.WithField("pauses", len(intervals)).Info("Pause detection completed")

	return &Result{Fixes: fixes, Cumulative: cumulative, Intervals: intervals}, nil
}

// startHolds evaluates the three pause start criteria at i.
func (d *Detector) startHolds(fixes []Fix, i int) (Evidence, bool) {
	var ev Evidence
	ev.MaxDisplacement = MaxDisplacement(fixes, i, seconds(d.config.TimeWindowStart))
	ev.Pace, ev.HasPace = AveragePace(fixes, i, d.config.NStart)
	ev.Density, ev.HasDensity = SampleDensity(fixes, i, seconds(d.config.DensityWindow))

	return ev, d.startDistanceHolds(ev) && d.startPaceHolds(ev) && d.startDensityHolds(ev)
}

// endHolds evaluates the two pause end criteria at i.
func (d *Detector) endHolds(fixes []Fix, i int) (Evidence, bool) {
	var ev Evidence
	ev.MaxDisplacement = MaxDisplacement(fixes, i, seconds(d.config.TimeWindowEnd))
	ev.Pace, ev.HasPace = AveragePace(fixes, i, d.config.NEnd)

	return ev, d.endDistanceHolds(ev) && d.endPaceHolds(ev)
}

func (d *Detector) startDistanceHolds(ev Evidence) bool {
	return ev.MaxDisplacement < d.config.DistStart
}

// startPaceHolds treats a missing pace as slow: a pause may open without data.
func (d *Detector) startPaceHolds(ev Evidence) bool {
	return !ev.HasPace || ev.Pace > d.config.PaceStart
}

// startDensityHolds treats a missing density as sparse.
func (d *Detector) startDensityHolds(ev Evidence) bool {
	return !ev.HasDensity || ev.Density < d.config.DensityThresh
}

func (d *Detector) endDistanceHolds(ev Evidence) bool {
	return ev.MaxDisplacement > d.config.DistEnd
}

// endPaceHolds requires a measured pace: a pause never closes without
// evidence of movement.
func (d *Detector) endPaceHolds(ev Evidence) bool {
	return ev.HasPace && ev.Pace < d.config.PaceEnd
}

func (d *Detector) logTransition(msg string, fix Fix, i int, cumulative float64, ev Evidence) {
	fields := logrus.Fields{
		"index":              i,
		"time":               fix.Time,
		"cumulative_m":       cumulative,
		"max_displacement_m": ev.MaxDisplacement,
	}
	if ev.HasPace {
		fields["pace_min_km"] = ev.Pace
	}
	if ev.HasDensity {
		fields["density_pts_s"] = ev.Density
	}
	d.log.WithFields(fields).Debug(msg)
}

// closeInterval builds the pause that started at s and ends at fixes[end].
func closeInterval(fixes []Fix, cumulative []float64, s paused, end int) Interval {
	start := fixes[s.index]
	return Interval{
		Start:              start,
		End:                fixes[end],
		Duration:           fixes[end].Time.Sub(start.Time).Seconds(),
		Distance:           pathDistance(fixes, s.index, end),
		SinceActivityStart: start.Time.Sub(fixes[0].Time).Seconds(),
		StartIndex:         s.index,
		EndIndex:           end,
		StartCumulative:    s.cumulative,
		EndCumulative:      cumulative[end],
		Points:             end - s.index + 1,
		StartEvidence:      s.evidence,
	}
}

// checkFixes enforces the ordering the window scans depend on.
func checkFixes(fixes []Fix) error {
	if len(fixes) < 2 {
		return fmt.Errorf("%w: got %d, need at least 2", ErrInsufficientData, len(fixes))
	}

	for i, f := range fixes {
		if f.Time.IsZero() {
			return fmt.Errorf("%w at index %d", ErrMissingTimestamp, i)
		}
		if i > 0 && f.Time.Before(fixes[i-1].Time) {
			return fmt.Errorf("%w: point %d (%s) is before point %d (%s)",
				ErrUnordered, i, f.Time.Format(time.RFC3339), i-1, fixes[i-1].Time.Format(time.RFC3339))
		}
	}

	return nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
