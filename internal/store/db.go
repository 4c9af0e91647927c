package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "go-covid-pipeline/internal/errors"
	"go-covid-pipeline/internal/model"
	"go-covid-pipeline/internal/pipeline"
)

// Store is the sqlite-backed persistence of settings, run history and
// exported points.
type Store struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		countries INTEGER NOT NULL DEFAULT 0,
		dates INTEGER NOT NULL DEFAULT 0,
		stages TEXT
	);`,
	`CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		error_message TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS derived_points (
		run_id TEXT NOT NULL,
		entity TEXT NOT NULL,
		date TEXT NOT NULL,
		confirmed INTEGER NOT NULL,
		deaths INTEGER NOT NULL,
		recovered INTEGER NOT NULL,
		active INTEGER NOT NULL,
		death_rate REAL,
		infection_rate REAL,
		daily_new_cases INTEGER NOT NULL,
		PRIMARY KEY (run_id, entity, date)
	);`,
}

// Open connects to the database at dbPath and creates missing tables.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, apperrors.NewStorageError("open database", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, apperrors.NewStorageError("create schema", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSetting returns the value for key. ok is false when it was never set.
func (s *Store) GetSetting(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewStorageError("get setting", err).WithContext("key", key)
	}
	return value, true, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return apperrors.NewStorageError("set setting", err).WithContext("key", key)
	}
	return nil
}

// SaveRun inserts a new run record.
func (s *Store) SaveRun(ctx context.Context, rec model.RunRecord) error {
	stages, err := json.Marshal(rec.Stages)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, status, started_at, finished_at, countries, dates, stages)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Status, rec.StartedAt, rec.FinishedAt, rec.Countries, rec.Dates, string(stages))
	if err != nil {
		return apperrors.NewStorageError("save run", err).WithContext("run_id", rec.ID)
	}
	return nil
}

// UpdateRun overwrites the status fields of a run and records its error, if any.
func (s *Store) UpdateRun(ctx context.Context, rec model.RunRecord) error {
	stages, err := json.Marshal(rec.Stages)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, finished_at = ?, countries = ?, dates = ?, stages = ?
		WHERE id = ?`,
		rec.Status, rec.FinishedAt, rec.Countries, rec.Dates, string(stages), rec.ID)
	if err != nil {
		return apperrors.NewStorageError("update run", err).WithContext("run_id", rec.ID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("run %s", rec.ID))
	}
	if rec.Error != "" {
		return s.SaveRunError(ctx, rec.ID, errors.New(rec.Error))
	}
	return nil
}

// SaveRunError records an error for a run.
func (s *Store) SaveRunError(ctx context.Context, runID string, err error) error {
	if err == nil {
		return nil
	}
	_, e := s.db.ExecContext(ctx, `INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, err.Error(), time.Now().UTC())
	if e != nil {
		return apperrors.NewStorageError("save run error", e).WithContext("run_id", runID)
	}
	return nil
}

// ListRuns returns the most recent runs first, without stages. limit <= 0 means all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	query := `
		SELECT r.id, r.status, r.started_at, r.finished_at, r.countries, r.dates,
			COALESCE((SELECT e.error_message FROM run_errors e WHERE e.run_id = r.id ORDER BY e.id DESC LIMIT 1), '')
		FROM runs r ORDER BY r.started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("list runs", err)
	}
	defer rows.Close()

	runs := []model.RunRecord{}
	for rows.Next() {
		var rec model.RunRecord
		var finished sql.NullTime
		if err := rows.Scan(&rec.ID, &rec.Status, &rec.StartedAt, &finished, &rec.Countries, &rec.Dates, &rec.Error); err != nil {
			return nil, apperrors.NewStorageError("scan run", err)
		}
		if finished.Valid {
			t := finished.Time
			rec.FinishedAt = &t
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list runs", err)
	}
	return runs, nil
}

// GetRun fetches one run with its stages and latest error.
func (s *Store) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	var rec model.RunRecord
	var finished sql.NullTime
	var stages sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT r.id, r.status, r.started_at, r.finished_at, r.countries, r.dates, r.stages,
			COALESCE((SELECT e.error_message FROM run_errors e WHERE e.run_id = r.id ORDER BY e.id DESC LIMIT 1), '')
		FROM runs r WHERE r.id = ?`, id).
		Scan(&rec.ID, &rec.Status, &rec.StartedAt, &finished, &rec.Countries, &rec.Dates, &stages, &rec.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RunRecord{}, apperrors.NewNotFoundError(fmt.Sprintf("run %s", id))
	}
	if err != nil {
		return model.RunRecord{}, apperrors.NewStorageError("get run", err).WithContext("run_id", id)
	}
	if finished.Valid {
		t := finished.Time
		rec.FinishedAt = &t
	}
	if stages.Valid && stages.String != "" {
		if err := json.Unmarshal([]byte(stages.String), &rec.Stages); err != nil {
			return model.RunRecord{}, apperrors.NewStorageError("decode stages", err).WithContext("run_id", id)
		}
	}
	return rec, nil
}

// SavePoints stores export rows for a run in one transaction. Rows already
// stored for the same run, entity and date are replaced.
func (s *Store) SavePoints(ctx context.Context, runID string, rows []pipeline.ExportRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO derived_points
			(run_id, entity, date, confirmed, deaths, recovered, active, death_rate, infection_rate, daily_new_cases)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, runID, r.Entity, r.Date.Format("2006-01-02"),
			r.Confirmed, r.Deaths, r.Recovered, r.Active, r.DeathRate, r.InfectionRate, r.DailyNewCases); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CountPoints returns the number of stored points for a run.
func (s *Store) CountPoints(ctx context.Context, runID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM derived_points WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
