package cases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/plan"
	"github.com/MrJamesThe3rd/auditcase/internal/render"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=cases
type Repository interface {
	SaveCase(ctx context.Context, c *Case) error
	GetCase(ctx context.Context, id uuid.UUID) (*Case, error)
	ListCases(ctx context.Context) ([]*Case, error)
	SetDocumentHandle(ctx context.Context, caseID uuid.UUID, documentID string, h render.Handle) error
}

type Generator interface {
	Generate(seed string, o engine.Overrides) (*plan.Plan, error)
}

type Renderer interface {
	Render(ctx context.Context, spec plan.GenerationSpec) (render.Handle, error)
}

type Service struct {
	repo      Repository
	generator Generator
	renderer  Renderer
}

func NewService(repo Repository, generator Generator, renderer Renderer) *Service {
	return &Service{repo: repo, generator: generator, renderer: renderer}
}

// Create generates the plan for seed and stores it. Creating the same seed and
// overrides again overwrites the same case.
func (s *Service) Create(ctx context.Context, seed string, o engine.Overrides) (*Case, error) {
	p, err := s.generator.Generate(seed, o)
	if err != nil {
		return nil, fmt.Errorf("generating case: %w", err)
	}

	c := &Case{
		ID:        ID(seed, o),
		Seed:      seed,
		Overrides: o,
		Plan:      p,
		Documents: documentsFor(p),
	}

	if err := s.repo.SaveCase(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Case, error) {
	return s.repo.GetCase(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Case, error) {
	return s.repo.ListCases(ctx)
}

// AnswerKeys returns the grading keys of a stored case.
func (s *Service) AnswerKeys(ctx context.Context, id uuid.UUID) (map[string]plan.AnswerKey, error) {
	c, err := s.repo.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}

	return c.Plan.AnswerKeys(), nil
}

// Render sends every document still lacking a handle to the rendering service.
// Documents rendered before are skipped, so a failed run can be retried.
func (s *Service) Render(ctx context.Context, id uuid.UUID) (*Case, error) {
	c, err := s.repo.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}

	var errs []error

	for i, d := range c.Documents {
		if d.Rendered() {
			continue
		}

		spec, ok := c.Plan.Document(d.ID)
		if !ok {
			errs = append(errs, fmt.Errorf("document %s missing from plan", d.ID))
			continue
		}

		h, err := s.renderer.Render(ctx, spec.GenerationSpec)
		if err != nil {
			slog.Error("failed to render document", "case_id", id, "document_id", d.ID, "error", err)
			errs = append(errs, fmt.Errorf("rendering %s: %w", d.ID, err))

			continue
		}

		if err := s.repo.SetDocumentHandle(ctx, id, d.ID, h); err != nil {
			return nil, fmt.Errorf("storing handle for %s: %w", d.ID, err)
		}

		c.Documents[i].HandleID = new(h.ID)
		if h.URL != "" {
			c.Documents[i].HandleURL = new(h.URL)
		}
	}

	return c, errors.Join(errs...)
}
