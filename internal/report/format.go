package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// FormatPace renders a pace in decimal min/km as M:SS.
func FormatPace(pace float64) string {
	minutes := int(pace)
	secs := int((pace - float64(minutes)) * 60)
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// FormatClock renders seconds as HhMM:SS, or M:SS under one hour.
func FormatClock(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	if hours > 0 {
		return fmt.Sprintf("%dh%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

const timestampLayout = "2006-01-02 15:04:05Z07:00"

var rule = strings.Repeat("=", 60)

// WriteText prints the break summary and distance comparison for r.
func WriteText(w io.Writer, r *Report) error {
	var b bytes.Buffer

	fmt.Fprintf(&b, "\n%s\n=== BREAK SUMMARY ===\n%s\n", rule, rule)

	if len(r.Pauses) == 0 {
		fmt.Fprintf(&b, "No breaks detected in this track.\n")
	} else {
		fmt.Fprintf(&b, "Total breaks detected: %d\n\n", len(r.Pauses))

		for _, p := range r.Pauses {
			fmt.Fprintf(&b, "Break #%d:\n", p.Seq)
			fmt.Fprintf(&b, "  Position in race: from %.3fkm to %.3fkm\n", p.StartCumulative/1000, p.EndCumulative/1000)
			fmt.Fprintf(&b, "  Time from start: %s\n", FormatClock(p.SinceActivityStart))
			fmt.Fprintf(&b, "  Start: %s\n", p.Start.Format(timestampLayout))
			fmt.Fprintf(&b, "  End: %s\n", endLabel(p))
			fmt.Fprintf(&b, "  Duration: %.0fs (%.1f min)\n", p.Duration, p.Duration/60)
			fmt.Fprintf(&b, "  Distance during break: %.2fm (%.3f km)\n", p.Distance, p.Distance/1000)
			fmt.Fprintf(&b, "  Location: %.6f, %.6f\n", p.StartLat, p.StartLon)
			if p.Points > 1 {
				fmt.Fprintf(&b, "  Point density: 1 point every %.2f seconds (%d points total)\n", p.SecondsPerPoint, p.Points)
			}
			if p.AvgPace > 0 {
				fmt.Fprintf(&b, "  Average pace during break (from GPX): %s min/km\n", FormatPace(p.AvgPace))
			}
			fmt.Fprintln(&b)
		}

		fmt.Fprintf(&b, "Total break time: %.0fs (%.1f min)\n", r.Summary.PauseDuration, r.Summary.PauseDuration/60)
		fmt.Fprintf(&b, "Total distance during breaks: %.2fm (%.3f km)\n", r.Summary.PauseDistance, r.Summary.PauseDistance/1000)
	}

	s := r.Summary
	fmt.Fprintf(&b, "\n%s\n=== DISTANCE COMPARISON ===\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Total GPS distance: %.2fm (%.3f km)\n", s.TotalDistance, s.TotalDistance/1000)
	fmt.Fprintf(&b, "Distance during breaks: %.2fm (%.3f km)\n", s.PauseDistance, s.PauseDistance/1000)
	fmt.Fprintf(&b, "Distance without breaks: %.2fm (%.3f km)\n", s.MovingDistance, s.MovingDistance/1000)
	if s.TotalDistance > 0 {
		fmt.Fprintf(&b, "Percentage of distance during breaks: %.2f%%\n", s.PauseDistanceShare)
	}

	_, err := w.Write(b.Bytes())
	return err
}

func endLabel(p Pause) string {
	end := p.End.Format(timestampLayout)
	if p.ClosedByTrackEnd {
		return end + " (end of track)"
	}
	return end
}
