package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/planbiir/gpause/internal/pause"
	"github.com/planbiir/gpause/internal/report"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "gpause.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport(source string, createdAt time.Time) *report.Report {
	start := time.Date(2025, 6, 1, 8, 2, 14, 0, time.UTC)
	cfg := pause.DefaultConfig()
	cfg.PaceEnd = 18

	return &report.Report{
		Source:        source,
		CreatedAt:     createdAt,
		FixCount:      266,
		DroppedPoints: 3,
		Config:        cfg,
		Summary: pause.Summary{
			Pauses:           2,
			TotalDistance:    1000,
			PauseDuration:    150,
			PauseDistance:    50,
			ActivityDuration: 600,
		},
		Pauses: []report.Pause{
			{
				Seq: 1, Start: start, End: start.Add(110 * time.Second),
				StartLat: 46.0, StartLon: 7.003, EndLat: 46.0001, EndLon: 7.0031,
				Duration: 110, Distance: 21.3, SinceActivityStart: 134,
				StartIndex: 122, EndIndex: 148, StartCumulative: 357.6, EndCumulative: 378.9,
				Points: 27, AvgPace: 20.5,
			},
			{
				Seq: 2, Start: start.Add(5 * time.Minute), End: start.Add(5*time.Minute + 40*time.Second),
				Duration: 40, Distance: 28.7, SinceActivityStart: 434,
				StartIndex: 266, EndIndex: 274, StartCumulative: 900, EndCumulative: 928.7,
				Points: 9, ClosedByTrackEnd: true,
			},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := sampleReport("run.gpx", time.Now())
	id, err := s.Save(ctx, in)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" || in.ID != id {
		t.Fatalf("expected Save to assign an id, got %q / %q", id, in.ID)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Source != "run.gpx" || got.FixCount != 266 || got.DroppedPoints != 3 {
		t.Errorf("header mismatch: %+v", got)
	}
	if got.Config != in.Config {
		t.Errorf("config mismatch: got %+v, want %+v", got.Config, in.Config)
	}
	if got.Summary.Pauses != 2 || got.Summary.MovingDistance != 950 || got.Summary.PauseDistanceShare != 5 {
		t.Errorf("summary mismatch: %+v", got.Summary)
	}
	if !got.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("created_at mismatch: %v vs %v", got.CreatedAt, in.CreatedAt)
	}

	if len(got.Pauses) != 2 {
		t.Fatalf("expected 2 pauses, got %d", len(got.Pauses))
	}

	first := got.Pauses[0]
	if !first.Start.Equal(in.Pauses[0].Start) || !first.End.Equal(in.Pauses[0].End) {
		t.Errorf("pause times mismatch: %+v", first)
	}
	if first.StartIndex != 122 || first.EndIndex != 148 || first.Points != 27 {
		t.Errorf("pause indices mismatch: %+v", first)
	}
	if first.AvgPace != 20.5 || first.AvgPaceText != "20:30" {
		t.Errorf("avg pace mismatch: %v %q", first.AvgPace, first.AvgPaceText)
	}

	second := got.Pauses[1]
	if second.AvgPace != 0 || second.AvgPaceText != "" {
		t.Errorf("expected unknown avg pace to stay unset, got %v", second.AvgPace)
	}
	if !second.ClosedByTrackEnd {
		t.Errorf("expected closed_by_track_end to round-trip")
	}
	if second.SecondsPerPoint != 5 {
		t.Errorf("expected 5 s/point, got %v", second.SecondsPerPoint)
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, name := range []string{"a.gpx", "b.gpx", "c.gpx"} {
		if _, err := s.Save(ctx, sampleReport(name, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save %s failed: %v", name, err)
		}
	}

	entries, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Source != "c.gpx" || entries[1].Source != "b.gpx" {
		t.Errorf("expected newest first, got %s then %s", entries[0].Source, entries[1].Source)
	}
	if entries[0].PauseCount != 2 || entries[0].PauseDuration != 150 {
		t.Errorf("unexpected entry %+v", entries[0])
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected default limit to return all 3, got %d", len(all))
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpause.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	id, err := s.Save(ctx, sampleReport("run.gpx", time.Now()))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Get(ctx, id); err != nil {
		t.Errorf("expected analysis to survive reopen: %v", err)
	}
}

func TestOpenEmptyPath(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
