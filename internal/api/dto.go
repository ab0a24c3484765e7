package api

import (
	"github.com/starford/promptloom/internal/composer"
	"github.com/starford/promptloom/internal/drafts"
	"github.com/starford/promptloom/internal/index"
)

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// AddItemRequest adds a stored prompt by id, or a scratch item when
// promptId is absent.
type AddItemRequest struct {
	PromptID   *int64   `json:"promptId,omitempty" example:"3"`
	Title      string   `json:"title,omitempty" example:"Scratch"`
	Content    string   `json:"content,omitempty" example:"Answer in French."`
	CategoryID *int64   `json:"categoryId,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

func (req AddItemRequest) candidate() composer.Candidate {
	return composer.Candidate{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
	}
}

// MoveRequest moves the item at From to To.
type MoveRequest struct {
	From int `json:"from" example:"0"`
	To   int `json:"to" example:"2"`
}

// MoveResponse reports the draft after a move.
type MoveResponse struct {
	Moved bool        `json:"moved"`
	Draft drafts.View `json:"draft"`
}

// RemoveResponse reports the draft after an item removal.
type RemoveResponse struct {
	Removed bool        `json:"removed"`
	Draft   drafts.View `json:"draft"`
}

// HoverRequest is one drag hover tick.
type HoverRequest struct {
	Drag   composer.DragItem    `json:"drag"`
	Target composer.HoverTarget `json:"target"`
}

// SaveRequest names the combination to save a draft as.
type SaveRequest struct {
	Name string `json:"name" example:"Code review flow" validate:"required"`
}

// ShareResponse carries the hand-off URL for a draft.
type ShareResponse struct {
	URL string `json:"url" example:"https://gemini.google.com/app?text=hello" validate:"required"`
}
