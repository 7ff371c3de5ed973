package store

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

// migrations are applied in order; append, never edit.
var migrations = []migration{
	{version: 1, name: "create_analyses", sql: createAnalyses},
	{version: 2, name: "create_pauses", sql: createPauses},
}

const createAnalyses = `
	CREATE TABLE analyses (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		created_at TEXT NOT NULL,
		fix_count INTEGER NOT NULL,
		dropped_points INTEGER NOT NULL DEFAULT 0,
		total_distance_m REAL NOT NULL,
		activity_duration_s REAL NOT NULL,
		pause_count INTEGER NOT NULL,
		total_pause_s REAL NOT NULL,
		pause_distance_m REAL NOT NULL,
		config_json TEXT NOT NULL
	);
	CREATE INDEX idx_analyses_created_at ON analyses(created_at);
`

const createPauses = `
	CREATE TABLE pauses (
		analysis_id TEXT NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		duration_s REAL NOT NULL,
		distance_m REAL NOT NULL,
		since_start_s REAL NOT NULL,
		start_index INTEGER NOT NULL,
		end_index INTEGER NOT NULL,
		start_lat REAL NOT NULL,
		start_lon REAL NOT NULL,
		end_lat REAL NOT NULL,
		end_lon REAL NOT NULL,
		start_cumulative_m REAL NOT NULL,
		end_cumulative_m REAL NOT NULL,
		points INTEGER NOT NULL,
		avg_pace_min_km REAL,
		closed_by_track_end INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (analysis_id, seq)
	);
`

// migrate creates the tracking table and applies every migration not yet recorded.
func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := s.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}

		err := s.transaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) appliedMigrations(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}
