package promptservice

import (
	"context"
	"strings"

	"github.com/starford/promptloom/internal/apperr"
	"github.com/starford/promptloom/internal/models"
)

// ListTemplates returns all templates ordered by id.
func (s *Service) ListTemplates(_ context.Context) []models.Template {
	return nonNilSlice(s.store.Templates())
}

// GetTemplate returns the template or an ErrNotFound error.
func (s *Service) GetTemplate(_ context.Context, id int64) (*models.Template, error) {
	t, ok := s.store.Template(id)
	if !ok {
		return nil, apperr.NotFound("Template")
	}
	return &t, nil
}

// CreateTemplate validates and stores a template with a unique name.
func (s *Service) CreateTemplate(_ context.Context, in models.TemplateInput) (*models.Template, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.names.Lock()
	defer s.names.Unlock()
	for _, t := range s.store.Templates() {
		if t.Name == in.Name {
			return nil, apperr.AlreadyExists("Template", in.Name)
		}
	}
	t := s.store.CreateTemplate(in)
	s.mutated(EntityTemplate, "created", t.ID)
	return &t, nil
}
