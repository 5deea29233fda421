// Package sqlite provides a SQLite-backed stress storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/wfrp-stress/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/storage"
	"github.com/louisbranch/wfrp-stress/internal/services/stress/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists actors, stress tracks and the resolution ledger in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite stress store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// PutActor inserts or updates an actor. CreatedAt is kept from the first
// insert.
func (s *Store) PutActor(ctx context.Context, actor storage.Actor) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	actorID := strings.TrimSpace(actor.ID)
	if actorID == "" {
		return fmt.Errorf("actor id is required")
	}
	now := time.Now().UTC()
	createdAt := actor.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := actor.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO actors (id, name, willpower, intelligence, cool, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   willpower = excluded.willpower,
		   intelligence = excluded.intelligence,
		   cool = excluded.cool,
		   updated_at = excluded.updated_at`,
		actorID,
		strings.TrimSpace(actor.Name),
		actor.Willpower,
		actor.Intelligence,
		actor.Cool,
		toMillis(createdAt),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put actor: %w", err)
	}
	return nil
}

// GetActor returns one actor by ID.
func (s *Store) GetActor(ctx context.Context, actorID string) (storage.Actor, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Actor{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, willpower, intelligence, cool, created_at, updated_at
		 FROM actors WHERE id = ?`,
		strings.TrimSpace(actorID),
	)
	actor, err := scanActor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Actor{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Actor{}, fmt.Errorf("get actor: %w", err)
	}
	return actor, nil
}

// ListActors returns every actor ordered by name.
func (s *Store) ListActors(ctx context.Context) ([]storage.Actor, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, willpower, intelligence, cool, created_at, updated_at
		 FROM actors ORDER BY name, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	defer rows.Close()

	var actors []storage.Actor
	for rows.Next() {
		actor, err := scanActor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		actors = append(actors, actor)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actors: %w", err)
	}
	return actors, nil
}

// GetStress returns an actor's stress track.
func (s *Store) GetStress(ctx context.Context, actorID string) (storage.StressRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.StressRecord{}, err
	}
	var (
		record    storage.StressRecord
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT actor_id, value, max, updated_at FROM actor_stress WHERE actor_id = ?`,
		strings.TrimSpace(actorID),
	).Scan(&record.ActorID, &record.Value, &record.Max, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.StressRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.StressRecord{}, fmt.Errorf("get stress: %w", err)
	}
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// PutStress inserts or replaces an actor's stress track.
func (s *Store) PutStress(ctx context.Context, record storage.StressRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := putStress(ctx, s.sqlDB, record); err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put stress: %w", err)
	}
	return nil
}

// LatestResolution returns the newest ledger record for testID.
func (s *Store) LatestResolution(ctx context.Context, testID string) (storage.ResolutionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.ResolutionRecord{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT `+resolutionColumns+` FROM stress_resolutions
		 WHERE test_id = ? ORDER BY seq DESC LIMIT 1`,
		strings.TrimSpace(testID),
	)
	record, err := scanResolution(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ResolutionRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.ResolutionRecord{}, fmt.Errorf("get resolution: %w", err)
	}
	return record, nil
}

// ListResolutions returns an actor's ledger, newest first. A non-positive
// limit returns everything.
func (s *Store) ListResolutions(ctx context.Context, actorID string, limit int) ([]storage.ResolutionRecord, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+resolutionColumns+` FROM stress_resolutions
		 WHERE actor_id = ? ORDER BY seq DESC LIMIT ?`,
		strings.TrimSpace(actorID),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list resolutions: %w", err)
	}
	defer rows.Close()

	var records []storage.ResolutionRecord
	for rows.Next() {
		record, err := scanResolution(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resolution: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolutions: %w", err)
	}
	return records, nil
}

// CommitResolution writes the stress track and appends the ledger record in
// one transaction.
func (s *Store) CommitResolution(ctx context.Context, stress storage.StressRecord, record storage.ResolutionRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("resolution id is required")
	}
	if strings.TrimSpace(record.TestID) == "" {
		return fmt.Errorf("test id is required")
	}
	if record.ActorID != stress.ActorID {
		return fmt.Errorf("resolution actor %q does not match stress actor %q", record.ActorID, stress.ActorID)
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin resolution: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := putStress(ctx, tx, stress); err != nil {
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("put stress: %w", err)
	}

	afflicted := 0
	if record.Afflicted {
		afflicted = 1
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO stress_resolutions (
		   id, test_id, actor_id, roll, target, success_levels, outcome, reroll_kind,
		   classification, delta, applied, value_before, value_after, max, afflicted, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.TestID,
		record.ActorID,
		record.Roll,
		record.Target,
		record.SuccessLevels,
		record.Outcome,
		record.RerollKind,
		record.Classification,
		record.Delta,
		record.Applied,
		record.ValueBefore,
		record.ValueAfter,
		record.Max,
		afflicted,
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("append resolution: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit resolution: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putStress(ctx context.Context, db execer, record storage.StressRecord) error {
	actorID := strings.TrimSpace(record.ActorID)
	if actorID == "" {
		return fmt.Errorf("actor id is required")
	}
	updatedAt := record.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO actor_stress (actor_id, value, max, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(actor_id) DO UPDATE SET
		   value = excluded.value,
		   max = excluded.max,
		   updated_at = excluded.updated_at`,
		actorID,
		record.Value,
		record.Max,
		toMillis(updatedAt),
	)
	return err
}

const resolutionColumns = `id, test_id, actor_id, roll, target, success_levels, outcome, reroll_kind,
  classification, delta, applied, value_before, value_after, max, afflicted, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanActor(row scanner) (storage.Actor, error) {
	var (
		actor                storage.Actor
		createdAt, updatedAt int64
	)
	if err := row.Scan(
		&actor.ID,
		&actor.Name,
		&actor.Willpower,
		&actor.Intelligence,
		&actor.Cool,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Actor{}, err
	}
	actor.CreatedAt = fromMillis(createdAt)
	actor.UpdatedAt = fromMillis(updatedAt)
	return actor, nil
}

func scanResolution(row scanner) (storage.ResolutionRecord, error) {
	var (
		record    storage.ResolutionRecord
		afflicted int
		createdAt int64
	)
	if err := row.Scan(
		&record.ID,
		&record.TestID,
		&record.ActorID,
		&record.Roll,
		&record.Target,
		&record.SuccessLevels,
		&record.Outcome,
		&record.RerollKind,
		&record.Classification,
		&record.Delta,
		&record.Applied,
		&record.ValueBefore,
		&record.ValueAfter,
		&record.Max,
		&afflicted,
		&createdAt,
	); err != nil {
		return storage.ResolutionRecord{}, err
	}
	record.Afflicted = afflicted != 0
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}
