// Package persist writes History Stack snapshots to durable storage and
// reads them back.
//
// A history blob is a JSON document holding both stacks as one list of
// entries plus the split point between them:
//
//	{
//	  "version": 1,
//	  "project_id": "...",
//	  "saved_at": "2026-01-01T09:00:00Z",
//	  "undo_len": 2,
//	  "entries": [ undo bottom..top, redo bottom..top ],
//	  "checksum": "<sha256 hex>"
//	}
//
// Timestamps are kept so that a project reopened inside a merge window can
// keep batching. The checksum covers project_id, undo_len and entries.
//
// Loading never fails the project. A blob that cannot be parsed, whose
// checksum does not match, or that belongs to another project returns
// ErrCorruptHistory and the caller starts with empty history. Individual
// entries with an unknown kind or an undecodable state are skipped and
// listed in the Report; the rest of the history loads normally.
package persist
