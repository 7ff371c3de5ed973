package service

import (
	"fmt"

	"github.com/planbiir/gpause/internal/gpx"
	"github.com/planbiir/gpause/internal/report"
)

// pointKey identifies a point in the original document layout.
type pointKey struct {
	track, segment, point int
}

func keyOf(p gpx.Point) pointKey {
	return pointKey{p.TrackIdx, p.SegIdx, p.PtIdx}
}

// pauseWaypointType marks the waypoints Annotate adds.
const pauseWaypointType = "pause"

// Annotate adds one waypoint per pause at its first fix.
func (an *Analysis) Annotate() int {
	for i, iv := range an.Result.Intervals {
		an.Doc.Waypoints = append(an.Doc.Waypoints, gpx.Waypoint{
			Lat:         iv.Start.Lat,
			Lon:         iv.Start.Lon,
			Time:        iv.Start.Time,
			Name:        fmt.Sprintf("Pause %d", i+1),
			Description: fmt.Sprintf("%s stopped, %.1f m drift", report.FormatClock(iv.Duration), iv.Distance),
			Type:        pauseWaypointType,
		})
	}
	return len(an.Result.Intervals)
}

// Strip removes the fixes strictly inside each pause, keeping the two fixes
// that bound it, and drops any waypoints Annotate added. Points without a
// timestamp are left in place. It returns the number of points removed.
func (an *Analysis) Strip() int {
	waypoints := an.Doc.Waypoints[:0]
	for _, w := range an.Doc.Waypoints {
		if w.Type != pauseWaypointType {
			waypoints = append(waypoints, w)
		}
	}
	an.Doc.Waypoints = waypoints

	remove := make(map[pointKey]bool)
	for _, iv := range an.Result.Intervals {
		for i := iv.StartIndex + 1; i < iv.EndIndex; i++ {
			remove[keyOf(an.Points[i])] = true
		}
	}
	if len(remove) == 0 {
		return 0
	}

	var kept []gpx.Point
	for _, p := range an.Doc.FlattenPoints() {
		if remove[keyOf(p)] {
			continue
		}
		kept = append(kept, p)
	}

	an.Doc.RebuildFromPoints(kept)
	return len(remove)
}
