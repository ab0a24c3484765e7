package models

import validation "github.com/go-ozzo/ozzo-validation/v4"

// Template is read-only reference content.
type Template struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// TemplateInput is the insert shape for a template.
type TemplateInput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Validate checks that name and content are present.
func (in TemplateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Content, validation.Required),
	)
}
