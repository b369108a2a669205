package cli

import (
	"context"
	"errors"

	"github.com/roach88/trellis/internal/project"
)

// openProject opens id with the session's options, mapping failures to
// command errors.
func (s *session) openProject(ctx context.Context, id string) (*project.Project, error) {
	p, err := project.Open(ctx, s.cfg.Storage.Root, id, s.projectOptions()...)
	switch {
	case errors.Is(err, project.ErrNotFound):
		return nil, s.out.Fail(ExitCommandError, CodeProject, "project not found: "+id, err)
	case errors.Is(err, project.ErrInvalidData):
		return nil, s.out.Fail(ExitCommandError, CodeProject, "project data invalid: "+id, err)
	case err != nil:
		return nil, s.out.Fail(ExitCommandError, CodeProject, "failed to open project", err)
	}
	for _, w := range p.Warnings() {
		s.out.VerboseLog("warning: %s", w)
	}
	return p, nil
}

// saveAndClose writes p and records the outcome in the metrics.
func (s *session) saveAndClose(ctx context.Context, p *project.Project) error {
	err := p.Save(ctx)
	s.metrics.ObserveSave(err)
	if cerr := p.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeStore, "failed to save project", err)
	}
	return nil
}

func warningStrings(ws []project.Warning) []string {
	if len(ws) == 0 {
		return nil
	}
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}
