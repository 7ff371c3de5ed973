package pause

// AveragePaceDuring returns the mean of the per-segment paces (min/km) between
// fixes[startIndex] and fixes[endIndex]. Segments without movement or without
// elapsed time are skipped. Averaging rates keeps a few near-zero segments
// from dominating the way they would in total time over total distance.
func AveragePaceDuring(fixes []Fix, startIndex, endIndex int) (float64, bool) {
	if len(fixes) == 0 || startIndex >= endIndex {
		return 0, false
	}

	var sum float64
	var count int
	for i := startIndex; i < endIndex; i++ {
		meters := distance(fixes[i], fixes[i+1])
		secs := fixes[i+1].Time.Sub(fixes[i].Time).Seconds()
		if meters > 0 && secs > 0 {
			sum += pace(secs, meters)
			count++
		}
	}

	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// Summary aggregates a detection pass over the whole track.
type Summary struct {
	Pauses             int     `json:"pauses"`
	TotalDistance      float64 `json:"total_distance_m"`
	PauseDuration      float64 `json:"pause_duration_s"`
	PauseDistance      float64 `json:"pause_distance_m"`
	MovingDistance     float64 `json:"distance_without_pauses_m"`
	PauseDistanceShare float64 `json:"pause_distance_percent"`
	ActivityDuration   float64 `json:"activity_duration_s"`
}

// Summarize totals the pauses of r against the whole track.
func Summarize(r *Result) Summary {
	var s Summary
	if r == nil || len(r.Fixes) == 0 {
		return s
	}

	s.Pauses = len(r.Intervals)
	s.TotalDistance = r.Cumulative[len(r.Cumulative)-1]
	s.ActivityDuration = r.Fixes[len(r.Fixes)-1].Time.Sub(r.Fixes[0].Time).Seconds()

	for _, iv := range r.Intervals {
		s.PauseDuration += iv.Duration
		s.PauseDistance += iv.Distance
	}

	s.MovingDistance = s.TotalDistance - s.PauseDistance
	if s.TotalDistance > 0 {
		s.PauseDistanceShare = s.PauseDistance / s.TotalDistance * 100
	}

	return s
}
