// Package spool keeps submissions that failed to deliver in a local SQLite
// database so they can be retried later. The survey flow itself never
// retries; it hands the payload here and reports the failure once.
package spool

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"voice-survey/internal/application"
	"voice-survey/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS pending_submissions (
	id         TEXT PRIMARY KEY,
	survey_id  TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	attempts   INTEGER NOT NULL DEFAULT 0
);`

type Spool struct {
	db     *sql.DB
	logger *slog.Logger
}

func Open(path string, logger *slog.Logger) (*Spool, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening spool db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating spool schema: %w", err)
	}
	return &Spool{db: db, logger: logger}, nil
}

func (s *Spool) Close() error { return s.db.Close() }

// Enqueue stores a submission for a later flush.
func (s *Spool) Enqueue(ctx context.Context, sub *domain.Submission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshaling submission: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pending_submissions (id, survey_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), sub.SurveyID, string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	return nil
}

// Count returns the number of queued submissions.
func (s *Spool) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_submissions`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting spool entries: %w", err)
	}
	return n, nil
}

// Flush attempts to deliver every queued submission once, in insertion
// order. Delivered entries are removed; failed ones stay with their
// attempt counter bumped. Returns the number delivered.
func (s *Spool) Flush(ctx context.Context, submitter application.ResponseSubmitter) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload FROM pending_submissions ORDER BY created_at`)
	if err != nil {
		return 0, fmt.Errorf("querying spool: %w", err)
	}

	type entry struct {
		id      string
		payload string
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.payload); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scanning spool entry: %w", err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating spool: %w", err)
	}

	delivered := 0
	for _, e := range entries {
		var sub domain.Submission
		if err := json.Unmarshal([]byte(e.payload), &sub); err != nil {
			s.logger.Error("dropping corrupt spool entry", "id", e.id, "error", err)
			s.delete(ctx, e.id)
			continue
		}

		if err := submitter.Submit(ctx, &sub); err != nil {
			s.logger.Warn("spooled submission still failing", "id", e.id, "error", err)
			s.db.ExecContext(ctx,
				`UPDATE pending_submissions SET attempts = attempts + 1 WHERE id = ?`, e.id)
			continue
		}

		if err := s.delete(ctx, e.id); err != nil {
			return delivered, err
		}
		delivered++
	}
	return delivered, nil
}

func (s *Spool) delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM pending_submissions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting spool entry: %w", err)
	}
	return nil
}
