package db

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/weekly-report/internal/catalog"
	"github.com/j-veylop/weekly-report/internal/models"
)

// ImportSnapshot replaces the stored catalog with snapshot in one transaction.
// A repeated model key keeps its first position and its last attributes;
// repeated dates for the same model are summed. loc must be the location the
// catalog will later be loaded in; nil means time.Local.
func (db *DB) ImportSnapshot(ctx context.Context, snapshot *models.Snapshot, loc *time.Location) (err error) {
	if loc == nil {
		loc = time.Local
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{"DELETE FROM daily_stats", "DELETE FROM models"} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear catalog: %w", err)
		}
	}

	modelStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO models (owner, name, url, description, run_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner, name) DO UPDATE SET
			url = excluded.url,
			description = excluded.description,
			run_count = excluded.run_count
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare model insert: %w", err)
	}
	defer func() { _ = modelStmt.Close() }()

	for _, m := range snapshot.Models {
		if _, err = modelStmt.ExecContext(ctx, m.Owner, m.Name, m.URL, m.Description, m.RunCount); err != nil {
			return fmt.Errorf("failed to insert model %s: %w", m.Key(), err)
		}
	}

	statStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_stats (model_key, date, daily_runs)
		VALUES (?, ?, ?)
		ON CONFLICT(model_key, date) DO UPDATE SET
			daily_runs = daily_runs + excluded.daily_runs
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare stat insert: %w", err)
	}
	defer func() { _ = statStmt.Close() }()

	for key, entries := range snapshot.Stats {
		for _, e := range entries {
			if _, err = statStmt.ExecContext(ctx, key, formatDate(e.Date, loc), e.DailyRuns); err != nil {
				return fmt.Errorf("failed to insert stats for %s: %w", key, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// LoadSnapshot reads the catalog in stored order. Dates without a zone are
// interpreted in loc, or time.Local when loc is nil.
func (db *DB) LoadSnapshot(ctx context.Context, loc *time.Location) (*models.Snapshot, error) {
	if loc == nil {
		loc = time.Local
	}

	descriptors, err := db.loadModels(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := db.loadDailyStats(ctx, loc)
	if err != nil {
		return nil, err
	}

	return &models.Snapshot{Models: descriptors, Stats: stats}, nil
}

func (db *DB) loadModels(ctx context.Context) ([]models.ModelDescriptor, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT owner, name, url, description, run_count
		FROM models
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var descriptors []models.ModelDescriptor
	for rows.Next() {
		var m models.ModelDescriptor
		if err := rows.Scan(&m.Owner, &m.Name, &m.URL, &m.Description, &m.RunCount); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		descriptors = append(descriptors, m)
	}

	return descriptors, rows.Err()
}

func (db *DB) loadDailyStats(ctx context.Context, loc *time.Location) (map[string][]models.DailyStatEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT model_key, date, daily_runs
		FROM daily_stats
		ORDER BY model_key, date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := make(map[string][]models.DailyStatEntry)
	for rows.Next() {
		var key, date string
		var runs int64
		if err := rows.Scan(&key, &date, &runs); err != nil {
			return nil, fmt.Errorf("failed to scan daily stat: %w", err)
		}
		t, err := catalog.ParseDate(date, loc)
		if err != nil {
			return nil, fmt.Errorf("daily stat for %s: %w", key, err)
		}
		stats[key] = append(stats[key], models.DailyStatEntry{Date: t, DailyRuns: runs})
	}

	return stats, rows.Err()
}

// Counts returns the number of stored models and daily stat rows.
func (db *DB) Counts(ctx context.Context) (modelCount, statCount int, err error) {
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM models").Scan(&modelCount)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count models: %w", err)
	}
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM daily_stats").Scan(&statCount)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count daily stats: %w", err)
	}
	return modelCount, statCount, nil
}

// Source adapts the database to a catalog source.
func (db *DB) Source(loc *time.Location) catalog.Source {
	return &source{db: db, loc: loc}
}

type source struct {
	db  *DB
	loc *time.Location
}

func (s *source) Load(ctx context.Context) (*models.Snapshot, error) {
	return s.db.LoadSnapshot(ctx, s.loc)
}

// formatDate stores midnight in loc as YYYY-MM-DD, which LoadSnapshot reads
// back as the same instant. Anything else keeps its offset as RFC3339.
func formatDate(t time.Time, loc *time.Location) string {
	local := t.In(loc)
	if local.Equal(models.StartOfDay(local)) {
		return local.Format(time.DateOnly)
	}
	return t.Format(time.RFC3339)
}
