package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/trellis/internal/persist"
)

// timeLayout is fixed width so updated_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// HistoryInfo describes one stored blob without loading it.
type HistoryInfo struct {
	ProjectID string
	Revision  int64
	Size      int64
	UpdatedAt time.Time
}

// SaveHistory stores data as the history of projectID, replacing any
// previous blob.
func (s *Store) SaveHistory(ctx context.Context, projectID string, data []byte) error {
	if projectID == "" {
		return errors.New("save history: empty project id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO histories (project_id, blob, revision, updated_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			blob = excluded.blob,
			revision = histories.revision + 1,
			updated_at = excluded.updated_at
	`, projectID, data, s.now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// LoadHistory returns the stored blob of projectID, or persist.ErrNotFound.
func (s *Store) LoadHistory(ctx context.Context, projectID string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT blob FROM histories WHERE project_id = ?
	`, projectID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", projectID, persist.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return data, nil
}

// DeleteHistory removes the blob of projectID. Deleting absent history is
// not an error.
func (s *Store) DeleteHistory(ctx context.Context, projectID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM histories WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}

// Revision returns how many times the history of projectID has been saved,
// or 0 if it never has.
func (s *Store) Revision(ctx context.Context, projectID string) (int64, error) {
	var rev int64
	err := s.db.QueryRowContext(ctx, `
		SELECT revision FROM histories WHERE project_id = ?
	`, projectID).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("history revision: %w", err)
	}
	return rev, nil
}

// List returns every stored history, most recently saved first, ties broken
// by project ID.
//
// Returns an empty slice (not nil) if nothing is stored.
func (s *Store) List(ctx context.Context) ([]HistoryInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, revision, length(blob), updated_at
		FROM histories
		ORDER BY updated_at DESC, project_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query histories: %w", err)
	}
	defer rows.Close()

	out := []HistoryInfo{}
	for rows.Next() {
		var (
			info    HistoryInfo
			updated string
		)
		if err := rows.Scan(&info.ProjectID, &info.Revision, &info.Size, &updated); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		info.UpdatedAt, err = time.Parse(timeLayout, updated)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at for %s: %w", info.ProjectID, err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate histories: %w", err)
	}
	return out, nil
}

var _ persist.Store = (*Store)(nil)
