package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/roach88/trellis/internal/history"
	"github.com/roach88/trellis/internal/intercept"
	"github.com/roach88/trellis/internal/persist"
	"github.com/roach88/trellis/internal/scene"
)

// DataFile is the name of the scene document inside a project directory.
const DataFile = "project_data.json"

// DataVersion is the current layout of Data.
const DataVersion = 1

// Data is the content of project_data.json.
type Data struct {
	Version   int            `json:"version" validate:"eq=1"`
	ID        string         `json:"id" validate:"required"`
	Name      string         `json:"name" validate:"required"`
	CreatedAt time.Time      `json:"created_at"`
	Scene     scene.Document `json:"scene"`
}

// Project is an open canvas project: its scene, history and editor.
//
// Thread-safety: the editor, scene and stack belong to one goroutine.
// Warnings and Close are safe to call from any goroutine.
type Project struct {
	id        string
	name      string
	createdAt time.Time
	dir       string

	store        persist.Store
	stack        *history.Stack
	editor       *intercept.Editor
	autosaver    *persist.Autosaver
	clock        history.Clock
	logger       *slog.Logger
	sealRestored bool

	mu       sync.Mutex
	warnings []Warning
	closed   bool
}

// Create makes a new project directory under root and opens it.
func Create(ctx context.Context, root, name string, opts ...Option) (*Project, error) {
	o := buildOptions(root, opts)
	d := Data{
		Version:   DataVersion,
		ID:        o.ids.NewID(),
		Name:      name,
		CreatedAt: o.clock.Now().UTC().Round(0),
		Scene:     scene.New().Document(),
	}
	if err := validateData(d); err != nil {
		return nil, err
	}
	dir := filepath.Join(root, d.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	if err := writeData(dir, d); err != nil {
		return nil, err
	}

	p, err := open(ctx, dir, d, scene.New(), o)
	if err != nil {
		return nil, err
	}
	o.logger.Info("created project", "project", p.id, "name", p.name)
	return p, nil
}

// Open loads the project id from root. Missing or corrupt history is not an
// error; see Warnings.
func Open(ctx context.Context, root, id string, opts ...Option) (*Project, error) {
	o := buildOptions(root, opts)
	dir := filepath.Join(root, id)
	d, err := readData(dir)
	if err != nil {
		return nil, err
	}
	if d.ID != id {
		return nil, fmt.Errorf("%w: file in %s claims id %q", ErrInvalidData, id, d.ID)
	}
	sc, err := scene.FromDocument(d.Scene)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	p, err := open(ctx, dir, d, sc, o)
	if err != nil {
		return nil, err
	}
	if _, err := p.LoadHistory(ctx); err != nil {
		p.logger.Warn("history not restored", "project", id, "error", err)
	}
	o.logger.Info("opened project", "project", p.id, "undo", p.stack.UndoLen(), "redo", p.stack.RedoLen())
	return p, nil
}

func open(ctx context.Context, dir string, d Data, sc *scene.Scene, o options) (*Project, error) {
	p := &Project{
		id:           d.ID,
		name:         d.Name,
		createdAt:    d.CreatedAt,
		dir:          dir,
		store:        o.store,
		clock:        o.clock,
		logger:       o.logger.With("project", d.ID),
		sealRestored: o.sealRestored,
	}

	hopts := []history.Option{history.WithLogger(p.logger)}
	if o.autosave {
		p.autosaver = persist.NewAutosaver(o.store, d.ID,
			persist.WithInterval(o.interval),
			persist.WithAutosaveClock(o.clock),
			persist.WithAutosaveLogger(p.logger),
			persist.WithErrorHandler(func(err error) { p.warn("autosave", err) }),
			persist.WithSceneWriter(func(_ context.Context, doc scene.Document) error {
				return writeData(p.dir, p.data(doc))
			}),
		)
		hopts = append(hopts, history.WithObserver(history.ObserverFunc(p.observe)))
	}
	hopts = append(hopts, o.history...)

	p.stack = history.New(sc, hopts...)
	p.editor = intercept.New(p.stack,
		intercept.WithClock(o.clock),
		intercept.WithIDs(o.ids),
		intercept.WithLogger(p.logger),
	)
	if p.autosaver != nil {
		p.autosaver.Start(ctx)
	}
	return p, nil
}

// observe schedules an autosave of the scene and history for every change
// except a restore, which only mirrors what is already stored. Both are
// captured here, on the editing goroutine, so they describe the same state.
func (p *Project) observe(e history.Event) {
	if e.Type == history.EventRestore {
		return
	}
	doc := p.Scene().Document()
	p.autosaver.ScheduleCheckpoint(persist.Checkpoint{History: p.stack.Snapshot(), Scene: &doc})
}

func (p *Project) ID() string           { return p.id }
func (p *Project) Name() string         { return p.name }
func (p *Project) Dir() string          { return p.dir }
func (p *Project) CreatedAt() time.Time { return p.createdAt }

// Editor returns the entry point for every user mutation.
func (p *Project) Editor() *intercept.Editor { return p.editor }

// History returns the project's undo/redo stacks.
func (p *Project) History() *history.Stack { return p.stack }

// Scene returns the project's canvas. Mutate it through Editor.
func (p *Project) Scene() *scene.Scene { return p.stack.Scene() }

// Warnings returns the non-fatal problems recorded so far.
func (p *Project) Warnings() []Warning {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.warnings)
}

func (p *Project) warn(op string, err error) {
	p.mu.Lock()
	p.warnings = append(p.warnings, Warning{Op: op, Err: err})
	p.mu.Unlock()
}

// Save writes the scene document and the history.
func (p *Project) Save(ctx context.Context) error {
	if p.isClosed() {
		return ErrClosed
	}
	if err := writeData(p.dir, p.data(p.Scene().Document())); err != nil {
		return err
	}
	return p.SaveHistory(ctx)
}

func (p *Project) data(doc scene.Document) Data {
	return Data{
		Version:   DataVersion,
		ID:        p.id,
		Name:      p.name,
		CreatedAt: p.createdAt,
		Scene:     doc,
	}
}

// SaveHistory writes both stacks to the store, replacing what was there.
func (p *Project) SaveHistory(ctx context.Context) error {
	if p.isClosed() {
		return ErrClosed
	}
	data, err := persist.Encode(p.id, p.stack.Snapshot(), p.clock.Now())
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if err := p.store.SaveHistory(ctx, p.id, data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	p.logger.Debug("saved history", "undo", p.stack.UndoLen(), "redo", p.stack.RedoLen())
	return nil
}

// LoadHistory replaces both stacks with what the store holds. A corrupt
// blob empties the stacks, and is returned as well as recorded as a
// warning. Skipped entries are recorded as warnings only.
func (p *Project) LoadHistory(ctx context.Context) (persist.Report, error) {
	if p.isClosed() {
		return persist.Report{}, ErrClosed
	}
	snap, rep, err := persist.Load(ctx, p.store, p.id, p.logger)
	if err != nil {
		p.stack.Restore(history.Snapshot{}, p.sealRestored)
		p.warn("load history", err)
		return rep, err
	}
	for _, s := range rep.Skipped {
		p.warn("load history", fmt.Errorf("entry %d (%s) skipped: %w", s.Index, s.Kind, s.Err))
	}
	p.stack.Restore(snap, p.sealRestored)
	return rep, nil
}

// Close flushes pending autosaves and stops the writer. With autosave on,
// the flush writes the scene document together with the history; without
// it nothing is written, so call Save first. Close is idempotent.
func (p *Project) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if p.autosaver == nil {
		return nil
	}
	if err := p.autosaver.Close(ctx); err != nil {
		return fmt.Errorf("close project %s: %w", p.id, err)
	}
	return nil
}

func (p *Project) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func readData(dir string) (Data, error) {
	raw, err := os.ReadFile(filepath.Join(dir, DataFile))
	if errors.Is(err, os.ErrNotExist) {
		return Data{}, fmt.Errorf("%s: %w", dir, ErrNotFound)
	}
	if err != nil {
		return Data{}, fmt.Errorf("read project data: %w", err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if err := validateData(d); err != nil {
		return Data{}, err
	}
	return d, nil
}

func writeData(dir string, d Data) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project data: %w", err)
	}
	if err := persist.WriteFileAtomic(filepath.Join(dir, DataFile), append(raw, '\n')); err != nil {
		return fmt.Errorf("write project data: %w", err)
	}
	return nil
}
