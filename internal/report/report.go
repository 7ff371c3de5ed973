package report

import (
	"time"

	"github.com/planbiir/gpause/internal/pause"
)

// Report is the serializable outcome of one analysis.
type Report struct {
	ID            string        `json:"id,omitempty"`
	Source        string        `json:"source"`
	CreatedAt     time.Time     `json:"created_at"`
	FixCount      int           `json:"fix_count"`
	DroppedPoints int           `json:"dropped_points,omitempty"`
	Config        pause.Config  `json:"config"`
	Summary       pause.Summary `json:"summary"`
	Pauses        []Pause       `json:"pauses"`
}

// Pause is one detected pause as reported to users.
type Pause struct {
	Seq   int       `json:"seq"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	StartLat float64 `json:"start_lat"`
	StartLon float64 `json:"start_lon"`
	EndLat   float64 `json:"end_lat"`
	EndLon   float64 `json:"end_lon"`

	Duration           float64 `json:"duration_s"`
	Distance           float64 `json:"distance_m"`
	SinceActivityStart float64 `json:"since_start_s"`

	StartIndex      int     `json:"start_index"`
	EndIndex        int     `json:"end_index"`
	StartCumulative float64 `json:"start_cumulative_m"`
	EndCumulative   float64 `json:"end_cumulative_m"`
	Points          int     `json:"points"`
	SecondsPerPoint float64 `json:"seconds_per_point,omitempty"`

	// AvgPace is the mean segment pace inside the pause, 0 when unknown.
	AvgPace     float64 `json:"avg_pace_min_km,omitempty"`
	AvgPaceText string  `json:"avg_pace,omitempty"`

	ClosedByTrackEnd bool `json:"closed_by_track_end"`

	StartEvidence *pause.Evidence `json:"start_evidence,omitempty"`
	EndEvidence   *pause.Evidence `json:"end_evidence,omitempty"`
}

// Build turns a detection result into a Report. Seq numbers start at 1.
func Build(source string, result *pause.Result, cfg pause.Config) *Report {
	r := &Report{
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		Summary:   pause.Summarize(result),
		Pauses:    make([]Pause, 0),
	}
	if result == nil {
		return r
	}
	r.FixCount = len(result.Fixes)

	for i, iv := range result.Intervals {
		p := Pause{
			Seq:                i + 1,
			Start:              iv.Start.Time,
			End:                iv.End.Time,
			StartLat:           iv.Start.Lat,
			StartLon:           iv.Start.Lon,
			EndLat:             iv.End.Lat,
			EndLon:             iv.End.Lon,
			Duration:           iv.Duration,
			Distance:           iv.Distance,
			SinceActivityStart: iv.SinceActivityStart,
			StartIndex:         iv.StartIndex,
			EndIndex:           iv.EndIndex,
			StartCumulative:    iv.StartCumulative,
			EndCumulative:      iv.EndCumulative,
			Points:             iv.Points,
			ClosedByTrackEnd:   iv.ClosedByTrackEnd,
		}

		if spp, ok := iv.SecondsPerPoint(); ok {
			p.SecondsPerPoint = spp
		}
		if avg, ok := pause.AveragePaceDuring(result.Fixes, iv.StartIndex, iv.EndIndex); ok {
			p.AvgPace = avg
			p.AvgPaceText = FormatPace(avg)
		}

		startEv := iv.StartEvidence
		p.StartEvidence = &startEv
		if !iv.ClosedByTrackEnd {
			endEv := iv.EndEvidence
			p.EndEvidence = &endEv
		}

		r.Pauses = append(r.Pauses, p)
	}

	return r
}
