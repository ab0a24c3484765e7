package promptservice

import (
	"context"
	"strings"

	"github.com/starford/promptloom/internal/apperr"
	"github.com/starford/promptloom/internal/models"
)

// ListCategories returns all categories ordered by id.
func (s *Service) ListCategories(_ context.Context) []models.Category {
	return nonNilSlice(s.store.Categories())
}

// GetCategory returns the category or an ErrNotFound error.
func (s *Service) GetCategory(_ context.Context, id int64) (*models.Category, error) {
	c, ok := s.store.Category(id)
	if !ok {
		return nil, apperr.NotFound("Category")
	}
	return &c, nil
}

// CreateCategory validates and stores a category with a unique name.
func (s *Service) CreateCategory(_ context.Context, in models.CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.names.Lock()
	defer s.names.Unlock()
	if _, ok := s.categoryByName(in.Name); ok {
		return nil, apperr.AlreadyExists("Category", in.Name)
	}
	c := s.store.CreateCategory(in)
	s.mutated(EntityCategory, "created", c.ID)
	return &c, nil
}

// EnsureCategory returns the category named name, creating it if needed.
func (s *Service) EnsureCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	s.names.Lock()
	c, ok := s.categoryByName(name)
	s.names.Unlock()
	if ok {
		return &c, nil
	}
	created, err := s.CreateCategory(ctx, models.CategoryInput{Name: name})
	if err == nil {
		return created, nil
	}
	// Lost a race with a concurrent creator.
	if c, ok := s.categoryByName(name); ok {
		return &c, nil
	}
	return nil, err
}

// DeleteCategory removes a category. Prompts referencing it keep their
// categoryId; deletion never cascades.
func (s *Service) DeleteCategory(_ context.Context, id int64) error {
	if !s.store.DeleteCategory(id) {
		return apperr.NotFound("Category")
	}
	s.mutated(EntityCategory, "deleted", id)
	return nil
}

// CategorySummary returns every category with its kind, label and prompt count.
func (s *Service) CategorySummary(_ context.Context) []models.CategorySummary {
	counts := make(map[int64]int)
	for _, p := range s.store.Prompts() {
		if p.CategoryID != nil {
			counts[*p.CategoryID]++
		}
	}
	cats := s.store.Categories()
	out := make([]models.CategorySummary, 0, len(cats))
	for _, c := range cats {
		out = append(out, models.CategorySummary{
			Category: c,
			Kind:     c.Kind(),
			Label:    c.Label(),
			Count:    counts[c.ID],
		})
	}
	return out
}

func (s *Service) categoryByName(name string) (models.Category, bool) {
	for _, c := range s.store.Categories() {
		if c.Name == name {
			return c, true
		}
	}
	return models.Category{}, false
}
