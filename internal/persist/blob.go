package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/history"
)

// FormatVersion is the layout written by Encode.
const FormatVersion = 1

// HistoryFile is the name of the history blob inside a project directory.
const HistoryFile = "undo_history.json"

type blob struct {
	Version   int               `json:"version"`
	ProjectID string            `json:"project_id"`
	SavedAt   time.Time         `json:"saved_at"`
	UndoLen   int               `json:"undo_len"`
	Entries   []json.RawMessage `json:"entries"`
	Checksum  string            `json:"checksum"`
}

// Skip describes one entry that could not be loaded.
type Skip struct {
	Index int
	Kind  command.Kind
	Err   error
}

// Report summarizes a load.
type Report struct {
	ProjectID string
	SavedAt   time.Time
	Loaded    int
	Skipped   []Skip
}

// Encode serializes snap for projectID.
func Encode(projectID string, snap history.Snapshot, savedAt time.Time) ([]byte, error) {
	entries := make([]json.RawMessage, 0, len(snap.Undo)+len(snap.Redo))
	for _, stack := range [][]command.Command{snap.Undo, snap.Redo} {
		for _, c := range stack {
			e, err := command.Encode(c)
			if err != nil {
				return nil, fmt.Errorf("encode history: %w", err)
			}
			raw, err := json.Marshal(e)
			if err != nil {
				return nil, fmt.Errorf("encode history: %s: %w", c, err)
			}
			entries = append(entries, raw)
		}
	}
	sum, err := checksum(projectID, len(snap.Undo), entries)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	b := blob{
		Version:   FormatVersion,
		ProjectID: projectID,
		SavedAt:   savedAt.UTC().Round(0),
		UndoLen:   len(snap.Undo),
		Entries:   entries,
		Checksum:  sum,
	}
	return json.MarshalIndent(b, "", "  ")
}

// Decode parses a blob written by Encode. When projectID is not empty the
// blob must belong to that project.
func Decode(data []byte, projectID string) (history.Snapshot, Report, error) {
	var b blob
	if err := json.Unmarshal(data, &b); err != nil {
		return history.Snapshot{}, Report{}, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	if b.Version != FormatVersion {
		return history.Snapshot{}, Report{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptHistory, b.Version)
	}
	if projectID != "" && b.ProjectID != projectID {
		return history.Snapshot{}, Report{}, fmt.Errorf("%w: blob is for project %q", ErrCorruptHistory, b.ProjectID)
	}
	if b.UndoLen < 0 || b.UndoLen > len(b.Entries) {
		return history.Snapshot{}, Report{}, fmt.Errorf("%w: undo_len %d out of range", ErrCorruptHistory, b.UndoLen)
	}
	want, err := checksum(b.ProjectID, b.UndoLen, b.Entries)
	if err != nil || want != b.Checksum {
		return history.Snapshot{}, Report{}, fmt.Errorf("%w: checksum mismatch", ErrCorruptHistory)
	}

	rep := Report{ProjectID: b.ProjectID, SavedAt: b.SavedAt}
	var snap history.Snapshot
	for i, raw := range b.Entries {
		c, err := decodeEntry(raw)
		if err != nil {
			var e command.Entry
			_ = json.Unmarshal(raw, &e)
			rep.Skipped = append(rep.Skipped, Skip{Index: i, Kind: e.Kind, Err: err})
			continue
		}
		rep.Loaded++
		if i < b.UndoLen {
			snap.Undo = append(snap.Undo, c)
		} else {
			snap.Redo = append(snap.Redo, c)
		}
	}
	return snap, rep, nil
}

func decodeEntry(raw json.RawMessage) (command.Command, error) {
	var e command.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return command.Command{}, err
	}
	return command.Decode(e)
}

// UnknownKinds counts skipped entries whose kind is not known to this
// build, as opposed to entries that are malformed.
func (r Report) UnknownKinds() int {
	n := 0
	for _, s := range r.Skipped {
		if errors.Is(s.Err, command.ErrUnknownKind) {
			n++
		}
	}
	return n
}
