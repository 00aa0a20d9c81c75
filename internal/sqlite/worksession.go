package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rpggio/worklog/internal/domain/worksession"
	"github.com/rpggio/worklog/internal/repository"
)

const workSessionColumns = `id, user_id, start_ts, stop_ts, note`

// WorkSessionRepository implements repository.WorkSessionRepository for SQLite
type WorkSessionRepository struct {
	db *DB
}

// NewWorkSessionRepository creates a new WorkSessionRepository
func NewWorkSessionRepository(db *DB) *WorkSessionRepository {
	return &WorkSessionRepository{db: db}
}

// Insert creates an open session and returns its assigned id
func (r *WorkSessionRepository) Insert(ctx context.Context, userID string, startTS int64, note string) (int64, error) {
	query := `
		INSERT INTO work_sessions (user_id, start_ts, note)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, userID, startTS, note)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrActiveExists
		}
		return 0, fmt.Errorf("failed to insert work session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}

	return id, nil
}

// CloseSession sets the stop time and note of an open session
func (r *WorkSessionRepository) CloseSession(ctx context.Context, id, stopTS int64, note string) error {
	query := `
		UPDATE work_sessions
		SET stop_ts = ?, note = ?
		WHERE id = ? AND stop_ts IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, stopTS, note, id)
	if err != nil {
		return fmt.Errorf("failed to close work session: %w", err)
	}

	return r.checkClosed(ctx, result, id)
}

// CloseOverdue sets the stop time of an open session, leaving the note as is
func (r *WorkSessionRepository) CloseOverdue(ctx context.Context, id, stopTS int64) error {
	query := `
		UPDATE work_sessions
		SET stop_ts = ?
		WHERE id = ? AND stop_ts IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, stopTS, id)
	if err != nil {
		return fmt.Errorf("failed to close overdue session: %w", err)
	}

	return r.checkClosed(ctx, result, id)
}

// FindActive returns the newest open session for a user, or nil
func (r *WorkSessionRepository) FindActive(ctx context.Context, userID string) (*worksession.WorkSession, error) {
	query := `
		SELECT ` + workSessionColumns + `
		FROM work_sessions
		WHERE user_id = ? AND stop_ts IS NULL
		ORDER BY start_ts DESC, id DESC
		LIMIT 1
	`

	sess, err := scanWorkSession(r.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active session: %w", err)
	}

	return sess, nil
}

// FindAllOverdue returns open sessions started at or before the cutoff, oldest first
func (r *WorkSessionRepository) FindAllOverdue(ctx context.Context, cutoffStartTS int64) ([]worksession.WorkSession, error) {
	query := `
		SELECT ` + workSessionColumns + `
		FROM work_sessions
		WHERE stop_ts IS NULL AND start_ts <= ?
		ORDER BY start_ts ASC, id ASC
	`

	return r.list(ctx, "overdue sessions", query, cutoffStartTS)
}

// ListActive returns every open session
func (r *WorkSessionRepository) ListActive(ctx context.Context) ([]worksession.WorkSession, error) {
	query := `
		SELECT ` + workSessionColumns + `
		FROM work_sessions
		WHERE stop_ts IS NULL
		ORDER BY start_ts ASC, id ASC
	`

	return r.list(ctx, "active sessions", query)
}

// ListClosed returns up to limit closed sessions for a user, newest first
func (r *WorkSessionRepository) ListClosed(ctx context.Context, userID string, limit int) ([]worksession.WorkSession, error) {
	if limit <= 0 {
		return nil, repository.ErrInvalidInput
	}

	query := `
		SELECT ` + workSessionColumns + `
		FROM work_sessions
		WHERE user_id = ? AND stop_ts IS NOT NULL
		ORDER BY start_ts DESC, id DESC
		LIMIT ?
	`

	return r.list(ctx, "closed sessions", query, userID, limit)
}

// SumHours totals closed hours for a user over sessions started at or after sinceTS
func (r *WorkSessionRepository) SumHours(ctx context.Context, userID string, sinceTS int64) (float64, error) {
	query := `
		SELECT COALESCE(SUM(stop_ts - start_ts), 0)
		FROM work_sessions
		WHERE user_id = ? AND stop_ts IS NOT NULL AND start_ts >= ?
	`

	var seconds int64
	if err := r.db.QueryRowContext(ctx, query, userID, sinceTS).Scan(&seconds); err != nil {
		return 0, fmt.Errorf("failed to sum hours: %w", err)
	}

	return worksession.HoursBetween(0, seconds), nil
}

func (r *WorkSessionRepository) checkClosed(ctx context.Context, result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM work_sessions WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check work session: %w", err)
	}
	return repository.ErrAlreadyClosed
}

func (r *WorkSessionRepository) list(ctx context.Context, what, query string, args ...any) ([]worksession.WorkSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	defer rows.Close()

	var sessions []worksession.WorkSession
	for rows.Next() {
		sess, err := scanWorkSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}

	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkSession(row rowScanner) (*worksession.WorkSession, error) {
	var sess worksession.WorkSession
	var stopTS sql.NullInt64
	if err := row.Scan(&sess.ID, &sess.UserID, &sess.StartTS, &stopTS, &sess.Note); err != nil {
		return nil, err
	}
	if stopTS.Valid {
		sess.StopTS = &stopTS.Int64
	}
	return &sess, nil
}
