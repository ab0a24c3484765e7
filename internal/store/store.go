package store

import (
	"time"

	"github.com/starford/promptloom/internal/models"
)

// Store is the entity store contract. Absence is reported with a false flag,
// never an error: store operations are pure in-process and cannot fail.
type Store interface {
	Categories() []models.Category
	Category(id int64) (models.Category, bool)
	CreateCategory(in models.CategoryInput) models.Category
	DeleteCategory(id int64) bool

	Prompts() []models.Prompt
	Prompt(id int64) (models.Prompt, bool)
	PromptsByCategory(categoryID int64) []models.Prompt
	CreatePrompt(in models.PromptInput) models.Prompt
	UpdatePrompt(id int64, patch models.PromptPatch) (models.Prompt, bool)
	DeletePrompt(id int64) bool

	Combinations() []models.Combination
	Combination(id int64) (models.Combination, bool)
	CreateCombination(in models.CombinationInput) models.Combination
	UpdateCombination(id int64, patch models.CombinationPatch) (models.Combination, bool)
	DeleteCombination(id int64) bool

	Templates() []models.Template
	Template(id int64) (models.Template, bool)
	CreateTemplate(in models.TemplateInput) models.Template
}

// Verify *MemStore satisfies Store at compile time.
var _ Store = (*MemStore)(nil)

// MemStore keeps every entity kind in its own volatile table.
type MemStore struct {
	categories   *table[models.Category]
	prompts      *table[models.Prompt]
	combinations *table[models.Combination]
	templates    *table[models.Template]

	now func() time.Time
}

// Option configures a MemStore.
type Option func(*MemStore)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *MemStore) {
		s.now = now
	}
}

// NewMemStore returns an empty store. Each call yields an isolated instance.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		categories:   newTable(func(c models.Category) int64 { return c.ID }, func(c models.Category) models.Category { return c }),
		prompts:      newTable(func(p models.Prompt) int64 { return p.ID }, clonePrompt),
		combinations: newTable(func(c models.Combination) int64 { return c.ID }, cloneCombination),
		templates:    newTable(func(t models.Template) int64 { return t.ID }, func(t models.Template) models.Template { return t }),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories returns all categories.
func (s *MemStore) Categories() []models.Category { return s.categories.list() }

// Category looks up a category by id.
func (s *MemStore) Category(id int64) (models.Category, bool) { return s.categories.get(id) }

// CreateCategory stores a new category.
func (s *MemStore) CreateCategory(in models.CategoryInput) models.Category {
	return s.categories.insert(func(id int64) models.Category {
		return models.Category{ID: id, Name: in.Name}
	})
}

// DeleteCategory removes a category. Prompts referencing it are left untouched.
func (s *MemStore) DeleteCategory(id int64) bool { return s.categories.remove(id) }

// Prompts returns all prompts.
func (s *MemStore) Prompts() []models.Prompt { return s.prompts.list() }

// Prompt looks up a prompt by id.
func (s *MemStore) Prompt(id int64) (models.Prompt, bool) { return s.prompts.get(id) }

// PromptsByCategory returns the prompts whose category matches exactly.
func (s *MemStore) PromptsByCategory(categoryID int64) []models.Prompt {
	return s.prompts.filter(func(p models.Prompt) bool { return p.InCategory(categoryID) })
}

// CreatePrompt stores a new prompt, defaulting tags to an empty list.
func (s *MemStore) CreatePrompt(in models.PromptInput) models.Prompt {
	now := s.now()
	return s.prompts.insert(func(id int64) models.Prompt {
		return models.Prompt{
			ID:         id,
			Title:      in.Title,
			Content:    in.Content,
			CategoryID: copyID(in.CategoryID),
			Tags:       copyTags(in.Tags),
			CreatedAt:  now,
		}
	})
}

// UpdatePrompt merges the provided fields over the stored prompt.
func (s *MemStore) UpdatePrompt(id int64, patch models.PromptPatch) (models.Prompt, bool) {
	return s.prompts.update(id, func(p models.Prompt) models.Prompt {
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Content != nil {
			p.Content = *patch.Content
		}
		if patch.CategoryID != nil {
			p.CategoryID = copyID(patch.CategoryID)
		}
		if patch.Tags != nil {
			p.Tags = copyTags(*patch.Tags)
		}
		return p
	})
}

// DeletePrompt removes a prompt.
func (s *MemStore) DeletePrompt(id int64) bool { return s.prompts.remove(id) }

// Combinations returns all combinations.
func (s *MemStore) Combinations() []models.Combination { return s.combinations.list() }

// Combination looks up a combination by id.
func (s *MemStore) Combination(id int64) (models.Combination, bool) { return s.combinations.get(id) }

// CreateCombination stores a new combination. A missing order defaults to
// the identity order over the prompt ids.
func (s *MemStore) CreateCombination(in models.CombinationInput) models.Combination {
	now := s.now()
	order := append([]int{}, in.Order...)
	if len(order) == 0 {
		order = models.IdentityOrder(len(in.PromptIDs))
	}
	return s.combinations.insert(func(id int64) models.Combination {
		return models.Combination{
			ID:        id,
			Name:      in.Name,
			PromptIDs: append([]int64{}, in.PromptIDs...),
			Order:     order,
			CreatedAt: now,
		}
	})
}

// UpdateCombination merges the provided fields over the stored combination.
// Id and creation time are always retained. Replacing the prompt ids without
// an order resets the order to identity.
func (s *MemStore) UpdateCombination(id int64, patch models.CombinationPatch) (models.Combination, bool) {
	return s.combinations.update(id, func(c models.Combination) models.Combination {
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.PromptIDs != nil {
			c.PromptIDs = append([]int64{}, (*patch.PromptIDs)...)
		}
		switch {
		case patch.Order != nil:
			c.Order = append([]int{}, (*patch.Order)...)
		case patch.PromptIDs != nil:
			c.Order = models.IdentityOrder(len(c.PromptIDs))
		}
		return c
	})
}

// DeleteCombination removes a combination.
func (s *MemStore) DeleteCombination(id int64) bool { return s.combinations.remove(id) }

// Templates returns all templates.
func (s *MemStore) Templates() []models.Template { return s.templates.list() }

// Template looks up a template by id.
func (s *MemStore) Template(id int64) (models.Template, bool) { return s.templates.get(id) }

// CreateTemplate stores a new template.
func (s *MemStore) CreateTemplate(in models.TemplateInput) models.Template {
	return s.templates.insert(func(id int64) models.Template {
		return models.Template{ID: id, Name: in.Name, Content: in.Content}
	})
}

func clonePrompt(p models.Prompt) models.Prompt {
	p.CategoryID = copyID(p.CategoryID)
	p.Tags = copyTags(p.Tags)
	return p
}

func cloneCombination(c models.Combination) models.Combination {
	c.PromptIDs = append([]int64{}, c.PromptIDs...)
	c.Order = append([]int{}, c.Order...)
	return c
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
