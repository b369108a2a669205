package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps each project's history in <root>/<projectID>/undo_history.json,
// next to the project data file.
type FileStore struct {
	root string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Path returns the history file of a project.
func (s *FileStore) Path(projectID string) string {
	return filepath.Join(s.root, projectID, HistoryFile)
}

// SaveHistory writes data with an atomic temp file + rename so a crash never
// leaves a half-written blob behind.
func (s *FileStore) SaveHistory(ctx context.Context, projectID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if projectID == "" {
		return errors.New("save history: empty project id")
	}
	path := s.Path(projectID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return WriteFileAtomic(path, data)
}

// LoadHistory reads the history file. A missing file returns ErrNotFound.
func (s *FileStore) LoadHistory(ctx context.Context, projectID string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(projectID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", projectID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return data, nil
}

// DeleteHistory removes the history file. Deleting absent history is not an
// error.
func (s *FileStore) DeleteHistory(ctx context.Context, projectID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(s.Path(projectID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory followed by a rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
