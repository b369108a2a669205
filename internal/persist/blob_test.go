package persist

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/history"
	"github.com/roach88/trellis/internal/scene"
	"github.com/roach88/trellis/internal/testutil"
)

var t0 = testutil.Epoch

func sampleSnapshot() history.Snapshot {
	ref := scene.TextRef{Target: "n1", Field: scene.FieldTitle}
	return history.Snapshot{
		Undo: []command.Command{
			command.NewCreateNode(command.NodeRecord{
				Node:       scene.Node{ID: "n1", Kind: scene.KindPipelineModule},
				Membership: command.Unbound,
			}, t0),
			command.NewEditText(ref, scene.TextState{}, scene.TextState{Value: "Hi", Cursor: 2, Anchor: 2}, t0.Add(time.Second)),
		},
		Redo: []command.Command{
			command.NewToggleFlag("n1", false, t0.Add(2*time.Second)),
		},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	data, err := Encode("p1", snap, t0.Add(time.Minute))
	require.NoError(t, err)

	got, rep, err := Decode(data, "p1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)
	assert.Equal(t, 3, rep.Loaded)
	assert.Empty(t, rep.Skipped)
	assert.Equal(t, "p1", rep.ProjectID)
	assert.Equal(t, t0.Add(time.Minute), rep.SavedAt)
}

func TestEncode_EmptySnapshot(t *testing.T) {
	data, err := Encode("p1", history.Snapshot{}, t0)
	require.NoError(t, err)
	got, rep, err := Decode(data, "p1")
	require.NoError(t, err)
	assert.Empty(t, got.Undo)
	assert.Empty(t, got.Redo)
	assert.Zero(t, rep.Loaded)
}

// rewrite edits the decoded blob and recomputes the checksum, the way a
// newer build writing kinds this one does not know would.
func rewrite(t *testing.T, data []byte, edit func(b *blob)) []byte {
	t.Helper()
	var b blob
	require.NoError(t, json.Unmarshal(data, &b))
	edit(&b)
	sum, err := checksum(b.ProjectID, b.UndoLen, b.Entries)
	require.NoError(t, err)
	b.Checksum = sum
	out, err := json.Marshal(b)
	require.NoError(t, err)
	return out
}

func TestDecode_SkipsUnknownKind(t *testing.T) {
	data, err := Encode("p1", sampleSnapshot(), t0)
	require.NoError(t, err)

	data = rewrite(t, data, func(b *blob) {
		rotate := json.RawMessage(`{"kind":"rotate","target_id":"n1","before_state":{"deg":0},"after_state":{"deg":90},"timestamp":"2026-01-01T09:00:01Z"}`)
		b.Entries = append([]json.RawMessage{b.Entries[0], rotate}, b.Entries[1:]...)
		b.UndoLen++
	})

	snap, rep, err := Decode(data, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Loaded)
	require.Len(t, rep.Skipped, 1)
	assert.Equal(t, 1, rep.Skipped[0].Index)
	assert.Equal(t, command.Kind("rotate"), rep.Skipped[0].Kind)
	assert.ErrorIs(t, rep.Skipped[0].Err, command.ErrUnknownKind)
	assert.Equal(t, 1, rep.UnknownKinds())

	require.Len(t, snap.Undo, 2)
	require.Len(t, snap.Redo, 1)

	// the remaining entries work against a real stack
	s := scene.New()
	h := history.New(s)
	for _, c := range snap.Undo {
		require.NoError(t, c.Apply(s))
	}
	h.Restore(snap, true)
	require.NoError(t, h.Undo())
	require.NoError(t, h.Undo())
	assert.False(t, s.Has("n1"))
	require.NoError(t, h.Redo())
	assert.True(t, s.Has("n1"))
}

func TestDecode_SkipsMalformedEntry(t *testing.T) {
	data, err := Encode("p1", sampleSnapshot(), t0)
	require.NoError(t, err)
	data = rewrite(t, data, func(b *blob) {
		b.Entries[2] = json.RawMessage(`{"kind":"toggle_flag","target_id":"n1","before_state":"yes","timestamp":"2026-01-01T09:00:01Z"}`)
	})

	snap, rep, err := Decode(data, "p1")
	require.NoError(t, err)
	assert.Len(t, snap.Undo, 2)
	assert.Empty(t, snap.Redo)
	require.Len(t, rep.Skipped, 1)
	assert.NotErrorIs(t, rep.Skipped[0].Err, command.ErrUnknownKind)
	assert.Zero(t, rep.UnknownKinds())
}

func TestDecode_Corrupt(t *testing.T) {
	good, err := Encode("p1", sampleSnapshot(), t0)
	require.NoError(t, err)

	var b blob
	require.NoError(t, json.Unmarshal(good, &b))
	b.UndoLen = 1 // checksum not recomputed
	tampered, err := json.Marshal(b)
	require.NoError(t, err)

	tests := []struct {
		name      string
		data      []byte
		projectID string
	}{
		{"not json", []byte("{{{"), "p1"},
		{"truncated", good[:len(good)/2], "p1"},
		{"checksum mismatch", tampered, "p1"},
		{"other project", good, "p2"},
		{"future version", rewrite(t, good, func(b *blob) { b.Version = 7 }), "p1"},
		{"undo_len past end", rewrite(t, good, func(b *blob) { b.UndoLen = 9 }), "p1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, _, err := Decode(tt.data, tt.projectID)
			assert.ErrorIs(t, err, ErrCorruptHistory)
			assert.Empty(t, snap.Undo)
			assert.Empty(t, snap.Redo)
		})
	}
}

func TestDecode_IndentationIndependent(t *testing.T) {
	data, err := Encode("p1", sampleSnapshot(), t0)
	require.NoError(t, err)

	var compact bytes.Buffer
	require.NoError(t, json.Compact(&compact, data))
	require.Less(t, compact.Len(), len(data))

	_, rep, err := Decode(compact.Bytes(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Loaded)
}
