package promptservice

import (
	"context"
	"log/slog"

	"github.com/starford/promptloom/internal/apperr"
	"github.com/starford/promptloom/internal/index"
	"github.com/starford/promptloom/internal/models"
)

// PromptFilter narrows ListPrompts. Zero values match everything.
type PromptFilter struct {
	CategoryID *int64
	Tag        string
}

// ListPrompts returns prompts ordered by id, filtered by category and tag.
func (s *Service) ListPrompts(_ context.Context, f PromptFilter) []models.Prompt {
	var prompts []models.Prompt
	if f.CategoryID != nil {
		prompts = s.store.PromptsByCategory(*f.CategoryID)
	} else {
		prompts = s.store.Prompts()
	}
	if f.Tag == "" {
		return nonNilSlice(prompts)
	}
	out := []models.Prompt{}
	for _, p := range prompts {
		if p.HasTag(f.Tag) {
			out = append(out, p)
		}
	}
	return out
}

// GetPrompt returns the prompt or an ErrNotFound error.
func (s *Service) GetPrompt(_ context.Context, id int64) (*models.Prompt, error) {
	p, ok := s.store.Prompt(id)
	if !ok {
		return nil, apperr.NotFound("Prompt")
	}
	return &p, nil
}

// CreatePrompt validates, stores and indexes a prompt.
func (s *Service) CreatePrompt(_ context.Context, in models.PromptInput) (*models.Prompt, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := s.store.CreatePrompt(in)
	s.reindex(p)
	s.mutated(EntityPrompt, "created", p.ID)
	return &p, nil
}

// UpdatePrompt merges the provided fields over the stored prompt.
func (s *Service) UpdatePrompt(_ context.Context, id int64, patch models.PromptPatch) (*models.Prompt, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	p, ok := s.store.UpdatePrompt(id, patch)
	if !ok {
		return nil, apperr.NotFound("Prompt")
	}
	s.reindex(p)
	s.mutated(EntityPrompt, "updated", p.ID)
	return &p, nil
}

// DeletePrompt removes a prompt from the store and the index. Combinations
// that reference it are left untouched.
func (s *Service) DeletePrompt(_ context.Context, id int64) error {
	if !s.store.DeletePrompt(id) {
		return apperr.NotFound("Prompt")
	}
	if s.idx != nil {
		if err := s.idx.DeletePrompt(id); err != nil {
			s.logger.Warn("index: delete failed", slog.Int64("id", id), slog.String("error", err.Error()))
		}
	}
	s.mutated(EntityPrompt, "deleted", id)
	return nil
}

// reindex keeps the derived index in step. Index failures never fail the
// write; the next Sync repairs them.
func (s *Service) reindex(p models.Prompt) {
	if s.idx == nil {
		return
	}
	if err := s.idx.UpsertPrompt(index.RowFromPrompt(p)); err != nil {
		s.logger.Warn("index: upsert failed", slog.Int64("id", p.ID), slog.String("error", err.Error()))
	}
}
