package gpx

import (
	"time"

	"github.com/planbiir/gpause/internal/geo"
)

// eachPoint calls fn for every track point in document order.
func (g *GPX) eachPoint(fn func(p *Point, track, seg, pt int)) {
	for ti := range g.Tracks {
		segs := g.Tracks[ti].Segments
		for si := range segs {
			for pi := range segs[si].Points {
				fn(&segs[si].Points[pi], ti, si, pi)
			}
		}
	}
}

// FlattenPoints copies every track point into one slice in document order,
// with its position indices set.
func (g *GPX) FlattenPoints() []Point {
	var out []Point
	g.eachPoint(func(p *Point, track, seg, pt int) {
		cp := *p
		cp.TrackIdx, cp.SegIdx, cp.PtIdx = track, seg, pt
		out = append(out, cp)
	})
	return out
}

// TimedPoints returns the flattened points that carry a timestamp. Points
// without one cannot take part in time-window analysis and are dropped.
func (g *GPX) TimedPoints() (timed []Point, dropped int) {
	for _, p := range g.FlattenPoints() {
		if p.Time.IsZero() {
			dropped++
			continue
		}
		timed = append(timed, p)
	}
	return timed, dropped
}

type segmentKey struct{ track, seg int }

// RebuildFromPoints replaces the track points with pts, placing each point
// back into the segment its indices name. Segments and tracks left with no
// points are removed; names and extensions of the rest are kept.
func (g *GPX) RebuildFromPoints(pts []Point) {
	bySegment := make(map[segmentKey][]Point)
	for _, p := range pts {
		k := segmentKey{p.TrackIdx, p.SegIdx}
		bySegment[k] = append(bySegment[k], p)
	}

	var tracks []Track
	for ti, trk := range g.Tracks {
		var segs []TrackSegment
		for si, seg := range trk.Segments {
			kept := bySegment[segmentKey{ti, si}]
			if len(kept) == 0 {
				continue
			}
			segs = append(segs, TrackSegment{Points: kept, Extensions: seg.Extensions})
		}
		if len(segs) == 0 {
			continue
		}
		trk.Segments = segs
		tracks = append(tracks, trk)
	}
	g.Tracks = tracks
}

// Stats returns basic statistics about the GPX data. Distance is in meters
// along every point, duration spans the first to the last timestamped point.
func (g *GPX) Stats() (pointCount int, trackCount int, segmentCount int, duration time.Duration, distance float64) {
	points := g.FlattenPoints()
	pointCount = len(points)
	trackCount = len(g.Tracks)

	for _, track := range g.Tracks {
		segmentCount += len(track.Segments)
	}

	for i := 1; i < len(points); i++ {
		distance += geo.Distance(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon)
	}

	if timed, _ := g.TimedPoints(); len(timed) >= 2 {
		duration = timed[len(timed)-1].Time.Sub(timed[0].Time)
	}

	return
}
