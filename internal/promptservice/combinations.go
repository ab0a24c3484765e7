package promptservice

import (
	"context"

	"github.com/starford/promptloom/internal/apperr"
	"github.com/starford/promptloom/internal/composer"
	"github.com/starford/promptloom/internal/models"
)

// The service is the in-process persistence bridge for compositions.
var _ composer.Bridge = (*Service)(nil)

// ListCombinations returns all combinations ordered by id.
func (s *Service) ListCombinations(_ context.Context) []models.Combination {
	return nonNilSlice(s.store.Combinations())
}

// GetCombination returns the combination or an ErrNotFound error.
func (s *Service) GetCombination(_ context.Context, id int64) (*models.Combination, error) {
	c, ok := s.store.Combination(id)
	if !ok {
		return nil, apperr.NotFound("Combination")
	}
	return &c, nil
}

// CreateCombination validates and stores a combination. Prompt ids are not
// checked for existence.
func (s *Service) CreateCombination(_ context.Context, in models.CombinationInput) (*models.Combination, error) {
	err := in.Validate()
	if err == nil {
		c := s.store.CreateCombination(in.Normalized())
		s.metrics.Save(nil)
		s.mutated(EntityCombination, "created", c.ID)
		return &c, nil
	}
	s.metrics.Save(err)
	return nil, err
}

// UpdateCombination merges the patch. Replacing only the prompt ids resets
// the order to the identity permutation.
func (s *Service) UpdateCombination(_ context.Context, id int64, patch models.CombinationPatch) (*models.Combination, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	current, ok := s.store.Combination(id)
	if !ok {
		return nil, apperr.NotFound("Combination")
	}
	// Reject an inconsistent order before touching the store, and write the
	// merged values so a trimmed name and a reset order are persisted.
	merged, err := patch.Merge(current)
	if err != nil {
		return nil, err
	}
	c, ok := s.store.UpdateCombination(id, models.CombinationPatch{
		Name:      &merged.Name,
		PromptIDs: &merged.PromptIDs,
		Order:     &merged.Order,
	})
	if !ok {
		return nil, apperr.NotFound("Combination")
	}
	s.mutated(EntityCombination, "updated", c.ID)
	return &c, nil
}

// DeleteCombination removes a combination.
func (s *Service) DeleteCombination(_ context.Context, id int64) error {
	if !s.store.DeleteCombination(id) {
		return apperr.NotFound("Combination")
	}
	s.mutated(EntityCombination, "deleted", id)
	return nil
}

// ResolveCombination returns the prompts of a combination in composed order.
// Prompts deleted since the save are skipped.
func (s *Service) ResolveCombination(ctx context.Context, id int64) ([]models.Prompt, error) {
	c, err := s.GetCombination(ctx, id)
	if err != nil {
		return nil, err
	}
	out := []models.Prompt{}
	for _, pid := range c.Ordered() {
		if p, ok := s.store.Prompt(pid); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// CombinationText renders a combination the way a composition renders its
// combined text.
func (s *Service) CombinationText(ctx context.Context, id int64) (string, error) {
	prompts, err := s.ResolveCombination(ctx, id)
	if err != nil {
		return "", err
	}
	items := make([]composer.Item, len(prompts))
	for i, p := range prompts {
		items[i] = composer.Item{PromptID: p.ID, Content: p.Content, Index: i}
	}
	return composer.JoinContents(items), nil
}
