package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planbiir/gpause/internal/pause"
	"github.com/planbiir/gpause/internal/report"
)

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one row of the analysis listing.
type Entry struct {
	ID            string    `json:"id"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
	FixCount      int       `json:"fix_count"`
	TotalDistance float64   `json:"total_distance_m"`
	PauseCount    int       `json:"pause_count"`
	PauseDuration float64   `json:"pause_duration_s"`
	PauseDistance float64   `json:"pause_distance_m"`
}

// Save stores r and its pauses in one transaction and returns the new id.
// r.ID is set on success.
func (s *Store) Save(ctx context.Context, r *report.Report) (string, error) {
	configJSON, err := json.Marshal(r.Config)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	id := uuid.NewString()
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	err = s.transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO analyses (id, source, created_at, fix_count, dropped_points,
				total_distance_m, activity_duration_s, pause_count, total_pause_s,
				pause_distance_m, config_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, r.Source, createdAt.UTC().Format(timeLayout), r.FixCount, r.DroppedPoints,
			r.Summary.TotalDistance, r.Summary.ActivityDuration, len(r.Pauses),
			r.Summary.PauseDuration, r.Summary.PauseDistance, string(configJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert analysis: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO pauses (analysis_id, seq, start_time, end_time, duration_s,
				distance_m, since_start_s, start_index, end_index, start_lat, start_lon,
				end_lat, end_lon, start_cumulative_m, end_cumulative_m, points,
				avg_pace_min_km, closed_by_track_end)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare pause insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range r.Pauses {
			avgPace := sql.NullFloat64{Float64: p.AvgPace, Valid: p.AvgPace > 0}
			_, err := stmt.ExecContext(ctx,
				id, p.Seq, p.Start.UTC().Format(timeLayout), p.End.UTC().Format(timeLayout),
				p.Duration, p.Distance, p.SinceActivityStart, p.StartIndex, p.EndIndex,
				p.StartLat, p.StartLon, p.EndLat, p.EndLon,
				p.StartCumulative, p.EndCumulative, p.Points, avgPace, p.ClosedByTrackEnd,
			)
			if err != nil {
				return fmt.Errorf("failed to insert pause %d: %w", p.Seq, err)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	r.ID = id
	return id, nil
}

// Get loads the report stored under id. Start and end evidence is not
// persisted and comes back nil.
func (s *Store) Get(ctx context.Context, id string) (*report.Report, error) {
	r := &report.Report{ID: id, Pauses: make([]report.Pause, 0)}

	var createdAt, configJSON string
	var pauseCount int
	err := s.db.QueryRowContext(ctx, `
		SELECT source, created_at, fix_count, dropped_points, total_distance_m,
			activity_duration_s, pause_count, total_pause_s, pause_distance_m, config_json
		FROM analyses WHERE id = ?`, id,
	).Scan(
		&r.Source, &createdAt, &r.FixCount, &r.DroppedPoints, &r.Summary.TotalDistance,
		&r.Summary.ActivityDuration, &pauseCount, &r.Summary.PauseDuration,
		&r.Summary.PauseDistance, &configJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}

	if r.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}

	var cfg pause.Config
	if err := json.Unmarshal([]byte(configJSON), &cfg); err != nil {
		return nil, fmt.Errorf("invalid config_json: %w", err)
	}
	r.Config = cfg

	r.Summary.Pauses = pauseCount
	r.Summary.MovingDistance = r.Summary.TotalDistance - r.Summary.PauseDistance
	if r.Summary.TotalDistance > 0 {
		r.Summary.PauseDistanceShare = r.Summary.PauseDistance / r.Summary.TotalDistance * 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, start_time, end_time, duration_s, distance_m, since_start_s,
			start_index, end_index, start_lat, start_lon, end_lat, end_lon,
			start_cumulative_m, end_cumulative_m, points, avg_pace_min_km, closed_by_track_end
		FROM pauses WHERE analysis_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query pauses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p report.Pause
		var start, end string
		var avgPace sql.NullFloat64
		err := rows.Scan(
			&p.Seq, &start, &end, &p.Duration, &p.Distance, &p.SinceActivityStart,
			&p.StartIndex, &p.EndIndex, &p.StartLat, &p.StartLon, &p.EndLat, &p.EndLon,
			&p.StartCumulative, &p.EndCumulative, &p.Points, &avgPace, &p.ClosedByTrackEnd,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pause: %w", err)
		}

		if p.Start, err = time.Parse(timeLayout, start); err != nil {
			return nil, fmt.Errorf("invalid start_time %q: %w", start, err)
		}
		if p.End, err = time.Parse(timeLayout, end); err != nil {
			return nil, fmt.Errorf("invalid end_time %q: %w", end, err)
		}
		if avgPace.Valid {
			p.AvgPace = avgPace.Float64
			p.AvgPaceText = report.FormatPace(avgPace.Float64)
		}
		if p.Points > 1 {
			p.SecondsPerPoint = p.Duration / float64(p.Points-1)
		}

		r.Pauses = append(r.Pauses, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pauses: %w", err)
	}

	return r, nil
}

// List returns the most recent analyses, newest first. limit is clamped to
// 1..1000 with a default of 50.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, created_at, fix_count, total_distance_m, pause_count,
			total_pause_s, pause_distance_m
		FROM analyses ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var createdAt string
		err := rows.Scan(&e.ID, &e.Source, &createdAt, &e.FixCount, &e.TotalDistance,
			&e.PauseCount, &e.PauseDuration, &e.PauseDistance)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
