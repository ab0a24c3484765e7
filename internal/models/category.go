package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Category name prefixes used to group the sidebar.
const (
	DomainPrefix  = "Domain Topic:"
	UtilityPrefix = "Utility:"
)

// Category kinds derived from the name prefix.
const (
	KindDomain  = "domain"
	KindUtility = "utility"
	KindOther   = "other"
)

// Category is a labeled grouping of prompts.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CategoryInput is the insert shape for a category.
type CategoryInput struct {
	Name string `json:"name"`
}

// Validate applies the category form rules.
func (in CategoryInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(2, 0).Error("category name must be at least 2 characters")),
	)
}

// Kind classifies the category by its name prefix.
func (c Category) Kind() string {
	switch {
	case strings.HasPrefix(c.Name, DomainPrefix):
		return KindDomain
	case strings.HasPrefix(c.Name, UtilityPrefix):
		return KindUtility
	default:
		return KindOther
	}
}

// Label returns the name without its kind prefix.
func (c Category) Label() string {
	name := c.Name
	for _, prefix := range []string{DomainPrefix, UtilityPrefix} {
		if strings.HasPrefix(name, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(name, prefix))
		}
	}
	return name
}

// CategorySummary is a category with its derived kind and prompt count.
type CategorySummary struct {
	Category
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Count int    `json:"count"`
}
