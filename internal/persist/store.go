package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/trellis/internal/history"
)

// Store holds one history blob per project. Saving replaces the previous
// blob; the last write wins.
type Store interface {
	SaveHistory(ctx context.Context, projectID string, data []byte) error
	LoadHistory(ctx context.Context, projectID string) ([]byte, error)
	DeleteHistory(ctx context.Context, projectID string) error
}

// Load reads and decodes the history of projectID. A project without saved
// history returns an empty snapshot and no error. A corrupt blob returns
// ErrCorruptHistory alongside an empty snapshot.
func Load(ctx context.Context, st Store, projectID string, logger *slog.Logger) (history.Snapshot, Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := st.LoadHistory(ctx, projectID)
	if errors.Is(err, ErrNotFound) {
		return history.Snapshot{}, Report{ProjectID: projectID}, nil
	}
	if err != nil {
		return history.Snapshot{}, Report{}, fmt.Errorf("load history %s: %w", projectID, err)
	}
	snap, rep, err := Decode(data, projectID)
	if err != nil {
		logger.Warn("discarding history", "project", projectID, "error", err)
		return history.Snapshot{}, Report{ProjectID: projectID}, err
	}
	for _, s := range rep.Skipped {
		logger.Warn("skipped history entry", "project", projectID, "index", s.Index, "kind", s.Kind, "error", s.Err)
	}
	logger.Debug("loaded history", "project", projectID, "undo", len(snap.Undo), "redo", len(snap.Redo))
	return snap, rep, nil
}
