// Package models defines the domain types for Promptloom.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Prompt is a stored reusable text fragment.
type Prompt struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CategoryID *int64    `json:"categoryId"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PromptInput is the insert shape for a prompt.
type PromptInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID *int64   `json:"categoryId,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Validate applies the prompt form rules.
func (in PromptInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.RuneLength(3, 0).Error("title must be at least 3 characters")),
		validation.Field(&in.Content, validation.Required, validation.RuneLength(5, 0).Error("content must be at least 5 characters")),
		validation.Field(&in.CategoryID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&in.Tags, validation.Each(validation.Required)),
	)
}

// PromptPatch carries a partial prompt update. Nil fields keep their stored value.
type PromptPatch struct {
	Title      *string   `json:"title,omitempty"`
	Content    *string   `json:"content,omitempty"`
	CategoryID *int64    `json:"categoryId,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
}

// Validate applies the prompt form rules to the fields present in the patch.
func (p PromptPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.RuneLength(3, 0).Error("title must be at least 3 characters")),
		validation.Field(&p.Content, validation.NilOrNotEmpty, validation.RuneLength(5, 0).Error("content must be at least 5 characters")),
		validation.Field(&p.CategoryID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&p.Tags, validation.By(func(value any) error {
			tags, _ := value.(*[]string)
			if tags == nil {
				return nil
			}
			return validation.Validate(*tags, validation.Each(validation.Required))
		})),
	)
}

// Empty reports whether the patch carries no fields at all.
func (p PromptPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.CategoryID == nil && p.Tags == nil
}

// InCategory reports whether the prompt belongs to the given category.
// A prompt without a category never matches.
func (p Prompt) InCategory(categoryID int64) bool {
	return p.CategoryID != nil && *p.CategoryID == categoryID
}

// HasTag reports whether the prompt carries the tag (exact match).
func (p Prompt) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
