package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trellis/internal/persist"
	"github.com/roach88/trellis/internal/scene"
	"github.com/roach88/trellis/internal/store"
	"github.com/roach88/trellis/internal/testutil"
)

type fixture struct {
	root  string
	clock *testutil.FakeClock
	ids   *testutil.SequenceIDs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		root:  t.TempDir(),
		clock: testutil.NewFakeClock(testutil.Epoch),
		ids:   testutil.NewSequenceIDs("id"),
	}
}

func (f *fixture) opts(extra ...Option) []Option {
	return append([]Option{WithClock(f.clock), WithIDs(f.ids)}, extra...)
}

func TestCreateOpen_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := Create(ctx, f.root, "Pipeline", f.opts()...)
	require.NoError(t, err)
	assert.Equal(t, "id-1", p.ID())
	assert.Equal(t, filepath.Join(f.root, "id-1"), p.Dir())

	n, err := p.Editor().CreateNode(scene.KindPipelineModule, scene.Point{X: 10, Y: 20}, "Load")
	require.NoError(t, err)
	require.NoError(t, p.Editor().ToggleFlag(n))
	require.NoError(t, p.Save(ctx))
	want := p.Scene().Document()
	require.NoError(t, p.Close(ctx))

	q, err := Open(ctx, f.root, "id-1", f.opts()...)
	require.NoError(t, err)
	defer q.Close(ctx)

	assert.Empty(t, q.Warnings())
	assert.Equal(t, "Pipeline", q.Name())
	assert.Equal(t, testutil.Epoch, q.CreatedAt())
	assert.Equal(t, want, q.Scene().Document())
	assert.Equal(t, 2, q.History().UndoLen())

	require.NoError(t, q.Editor().Undo())
	flagged, err := q.Scene().Flagged(n)
	require.NoError(t, err)
	assert.False(t, flagged)
	require.NoError(t, q.Editor().Undo())
	assert.False(t, q.Scene().Has(n))
}

func TestCreate_RequiresName(t *testing.T) {
	f := newFixture(t)
	_, err := Create(context.Background(), f.root, "", f.opts()...)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestOpen_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := Open(context.Background(), f.root, "nope", f.opts()...)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_InvalidData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"version":1,`},
		{"wrong version", `{"version":2,"id":"x","name":"n","scene":{"version":1}}`},
		{"unknown node kind", `{"version":1,"id":"x","name":"n","scene":{"version":1,"nodes":[{"id":"a","kind":"bogus"}]}}`},
		{"self loop", `{"version":1,"id":"x","name":"n","scene":{"version":1,"nodes":[{"id":"a","kind":"pipeline_module"}],"edges":[{"id":"e","source_id":"a","target_id":"a"}]}}`},
		{"dangling edge", `{"version":1,"id":"x","name":"n","scene":{"version":1,"edges":[{"id":"e","source_id":"a","target_id":"b"}]}}`},
		{"id mismatch", `{"version":1,"id":"y","name":"n","scene":{"version":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			dir := filepath.Join(f.root, "x")
			require.NoError(t, os.MkdirAll(dir, 0o755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, DataFile), []byte(tt.data), 0o644))

			_, err := Open(context.Background(), f.root, "x", f.opts()...)
			assert.ErrorIs(t, err, ErrInvalidData)
		})
	}
}

func TestOpen_CorruptHistoryIsWarning(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := Create(ctx, f.root, "Pipeline", f.opts()...)
	require.NoError(t, err)
	n, err := p.Editor().CreateNode(scene.KindReferencePaper, scene.Point{}, "Attention")
	require.NoError(t, err)
	require.NoError(t, p.Save(ctx))
	require.NoError(t, p.Close(ctx))

	path := filepath.Join(f.root, p.ID(), persist.HistoryFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"version":1,"entries":[`), 0o644))

	q, err := Open(ctx, f.root, p.ID(), f.opts()...)
	require.NoError(t, err, "corrupt history must not block opening")
	defer q.Close(ctx)

	assert.True(t, q.Scene().Has(n))
	assert.Zero(t, q.History().UndoLen())
	warnings := q.Warnings()
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0].Err, persist.ErrCorruptHistory)
	assert.Equal(t, "load history", warnings[0].Op)
}

func TestOpen_SealRestored(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := Create(ctx, f.root, "Pipeline", f.opts()...)
	require.NoError(t, err)
	n, err := p.Editor().CreateNode(scene.KindPipelineModule, scene.Point{}, "")
	require.NoError(t, err)
	require.NoError(t, p.Editor().Nudge(n, 1, 0))
	require.NoError(t, p.Save(ctx))
	require.NoError(t, p.Close(ctx))

	open := func(seal bool) int {
		q, err := Open(ctx, f.root, p.ID(), f.opts(WithSealRestored(seal))...)
		require.NoError(t, err)
		defer q.Close(ctx)
		assert.Equal(t, seal, q.History().Sealed())
		require.NoError(t, q.Editor().Nudge(n, 1, 0))
		return q.History().UndoLen()
	}

	assert.Equal(t, 2, open(false), "nudge within the window merges into the restored move")
	assert.Equal(t, 3, open(true), "sealed history starts a new entry")
}

func TestAutosave_FlushesOnClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := Create(ctx, f.root, "Pipeline", f.opts(WithAutosave(time.Hour))...)
	require.NoError(t, err)
	_, err = p.Editor().CreateNode(scene.KindPipelineModule, scene.Point{}, "Load")
	require.NoError(t, err)
	require.NoError(t, p.Close(ctx))

	snap, _, err := persist.Load(ctx, persist.NewFileStore(f.root), p.ID(), nil)
	require.NoError(t, err)
	assert.Len(t, snap.Undo, 1)
}

func TestAutosave_SceneMatchesHistoryAfterReopen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := Create(ctx, f.root, "Pipeline", f.opts(WithAutosave(0))...)
	require.NoError(t, err)
	a, err := p.Editor().CreateNode(scene.KindPipelineModule, scene.Point{X: 4, Y: 2}, "A")
	require.NoError(t, err)
	require.NoError(t, p.Save(ctx))
	saved, _ := p.Scene().Node(a)

	// changed after the last Save; only autosave and Close see it
	require.NoError(t, p.Editor().DeleteNode(a))
	require.NoError(t, p.Close(ctx))

	q, err := Open(ctx, f.root, p.ID(), f.opts()...)
	require.NoError(t, err)
	defer q.Close(ctx)

	assert.Empty(t, q.Warnings())
	assert.False(t, q.Scene().Has(a), "stored scene includes the delete")
	require.Equal(t, 2, q.History().UndoLen())

	require.NoError(t, q.Editor().Undo())
	got, ok := q.Scene().Node(a)
	require.True(t, ok, "undo brings the node back")
	assert.Equal(t, saved, got)
	assert.Equal(t, 1, q.History().RedoLen())

	require.NoError(t, q.Editor().Undo())
	assert.False(t, q.Scene().Has(a))
	assert.False(t, q.Editor().CanUndo())
	assert.Equal(t, scene.New().Document(), q.Scene().Document())
}

type failingStore struct{ persist.Store }

func (failingStore) SaveHistory(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func (failingStore) LoadHistory(_ context.Context, id string) ([]byte, error) {
	return nil, persist.ErrNotFound
}

func TestAutosave_FailureIsWarning(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := Create(ctx, f.root, "Pipeline", f.opts(WithStore(failingStore{}), WithAutosave(time.Hour))...)
	require.NoError(t, err)
	_, err = p.Editor().CreateNode(scene.KindPipelineModule, scene.Point{}, "Load")
	require.NoError(t, err)

	assert.Error(t, p.Close(ctx))
	warnings := p.Warnings()
	require.NotEmpty(t, warnings)
	assert.Equal(t, "autosave", warnings[0].Op)
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	db, err := store.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer db.Close()

	p, err := Create(ctx, f.root, "Pipeline", f.opts(WithStore(db))...)
	require.NoError(t, err)
	_, err = p.Editor().CreateNode(scene.KindPipelineModule, scene.Point{}, "Load")
	require.NoError(t, err)
	require.NoError(t, p.Save(ctx))
	require.NoError(t, p.Close(ctx))

	_, err = os.Stat(filepath.Join(p.Dir(), persist.HistoryFile))
	assert.True(t, os.IsNotExist(err), "history goes to the database, not the file")

	q, err := Open(ctx, f.root, p.ID(), f.opts(WithStore(db))...)
	require.NoError(t, err)
	defer q.Close(ctx)
	assert.Equal(t, 1, q.History().UndoLen())
}

func TestClosed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := Create(ctx, f.root, "Pipeline", f.opts()...)
	require.NoError(t, err)
	require.NoError(t, p.Close(ctx))
	require.NoError(t, p.Close(ctx))

	assert.ErrorIs(t, p.Save(ctx), ErrClosed)
	assert.ErrorIs(t, p.SaveHistory(ctx), ErrClosed)
	_, err = p.LoadHistory(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}
