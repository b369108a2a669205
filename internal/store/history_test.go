package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trellis/internal/command"
	"github.com/roach88/trellis/internal/history"
	"github.com/roach88/trellis/internal/persist"
	"github.com/roach88/trellis/internal/scene"
	"github.com/roach88/trellis/internal/testutil"
)

func TestSaveHistory_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.SaveHistory(ctx, "p1", []byte("one")))
	require.NoError(t, s.SaveHistory(ctx, "p1", []byte("two")))

	got, err := s.LoadHistory(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	rev, err := s.Revision(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)
}

func TestSaveHistory_RejectsEmptyProject(t *testing.T) {
	s := createTestStore(t)
	assert.Error(t, s.SaveHistory(context.Background(), "", []byte("x")))
}

func TestLoadHistory_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.LoadHistory(context.Background(), "missing")
	assert.ErrorIs(t, err, persist.ErrNotFound)

	rev, err := s.Revision(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, rev)
}

func TestDeleteHistory(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	require.NoError(t, s.SaveHistory(ctx, "p1", []byte("x")))
	require.NoError(t, s.DeleteHistory(ctx, "p1"))
	require.NoError(t, s.DeleteHistory(ctx, "p1"), "deleting twice is fine")

	_, err := s.LoadHistory(ctx, "p1")
	assert.ErrorIs(t, err, persist.ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	clock := testutil.NewFakeClock(testutil.Epoch)
	s.now = clock.Now

	require.NoError(t, s.SaveHistory(ctx, "a", []byte("aa")))
	clock.Advance(time.Second)
	require.NoError(t, s.SaveHistory(ctx, "b", []byte("b")))
	clock.Advance(time.Second)
	require.NoError(t, s.SaveHistory(ctx, "a", []byte("aaa")))

	list, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, HistoryInfo{ProjectID: "a", Revision: 2, Size: 3, UpdatedAt: testutil.Epoch.Add(2 * time.Second)}, list[0])
	assert.Equal(t, HistoryInfo{ProjectID: "b", Revision: 1, Size: 1, UpdatedAt: testutil.Epoch.Add(time.Second)}, list[1])
}

func TestStore_PersistRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	sc := scene.New()
	h := history.New(sc)
	rec := command.NodeRecord{
		Node:       scene.Node{ID: "n1", Kind: scene.KindPipelineModule, Title: scene.TextState{Value: "Load"}},
		Membership: command.Unbound,
	}
	require.NoError(t, h.Execute(command.NewCreateNode(rec, testutil.Epoch)))
	require.NoError(t, h.Execute(command.NewToggleFlag("n1", false, testutil.Epoch.Add(time.Second))))
	require.NoError(t, h.Undo())

	data, err := persist.Encode("p1", h.Snapshot(), testutil.Epoch)
	require.NoError(t, err)
	require.NoError(t, s.SaveHistory(ctx, "p1", data))

	snap, rep, err := persist.Load(ctx, s, "p1", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Loaded)
	assert.Empty(t, rep.Skipped)
	assert.Equal(t, h.Snapshot(), snap)
}
