// Package composer holds the ordered draft prompt chain and its derived text.
package composer

import (
	"errors"
	"strings"

	"github.com/starford/promptloom/internal/models"
)

// UntitledPrompt replaces a blank title when an item is built.
const UntitledPrompt = "Untitled prompt"

// ErrEmptyItem is returned when a candidate carries no id, title or content.
var ErrEmptyItem = errors.New("composer: candidate has no id, title or content")

// Candidate is the raw input for a composition item, as received from a
// drop event or an API request.
type Candidate struct {
	ID         int64
	Title      string
	Content    string
	CategoryID *int64
	Tags       []string
}

// CandidateFromPrompt builds a candidate from a stored prompt.
func CandidateFromPrompt(p models.Prompt) Candidate {
	return Candidate{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		CategoryID: p.CategoryID,
		Tags:       p.Tags,
	}
}

// Item is a prompt snapshot at a position in the composition.
// Index always equals the item's offset; it is assigned by the composition.
type Item struct {
	PromptID   int64    `json:"promptId"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID *int64   `json:"categoryId"`
	Tags       []string `json:"tags"`
	Synthetic  bool     `json:"synthetic,omitempty"`
	Index      int      `json:"index"`
}

// NewItem validates and normalizes a candidate. A non-positive id is replaced
// with syntheticID and the item is flagged Synthetic; a blank title becomes
// UntitledPrompt. The returned item has no position yet.
func NewItem(c Candidate, syntheticID int64) (Item, error) {
	title := strings.TrimSpace(c.Title)
	if c.ID <= 0 && title == "" && strings.TrimSpace(c.Content) == "" {
		return Item{}, ErrEmptyItem
	}
	item := Item{
		PromptID: c.ID,
		Title:    title,
		Content:  c.Content,
		Tags:     append([]string{}, c.Tags...),
	}
	if c.CategoryID != nil {
		id := *c.CategoryID
		item.CategoryID = &id
	}
	if item.PromptID <= 0 {
		item.PromptID = syntheticID
		item.Synthetic = true
	}
	if item.Title == "" {
		item.Title = UntitledPrompt
	}
	return item, nil
}

func (it Item) clone() Item {
	it.Tags = append([]string{}, it.Tags...)
	if it.CategoryID != nil {
		id := *it.CategoryID
		it.CategoryID = &id
	}
	return it
}
