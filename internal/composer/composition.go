package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/promptloom/internal/models"
)

// Separator joins item contents in the combined text.
const Separator = "\n\n"

// Save failures. Each names the precondition that was violated.
var (
	ErrEmptyName        = errors.New("composer: combination name is required")
	ErrEmptyComposition = errors.New("composer: composition is empty")
	ErrNoValidIDs       = errors.New("composer: composition has no stored prompts")
	ErrNoBridge         = errors.New("composer: no persistence bridge configured")
)

// Composition is the ordered draft prompt chain of a single session.
// It is not safe for concurrent use; the owner serializes access.
type Composition struct {
	items     []Item
	bridge    Bridge
	logger    *slog.Logger
	synthetic int64
}

// Option configures a Composition.
type Option func(*Composition)

// WithLogger sets the logger used for rejected input.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composition) {
		c.logger = logger
	}
}

// New returns an empty composition that saves through bridge.
func New(bridge Bridge, opts ...Option) *Composition {
	c := &Composition{
		bridge: bridge,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add appends an item built from the candidate at the last position.
// An invalid candidate is logged and leaves the sequence unchanged.
func (c *Composition) Add(cand Candidate) (Item, error) {
	item, err := NewItem(cand, c.synthetic-1)
	if err != nil {
		c.logger.Warn("composer: rejected item", slog.String("error", err.Error()))
		return Item{}, err
	}
	if item.Synthetic {
		c.synthetic--
	}
	item.Index = len(c.items)
	c.items = append(c.items, item)
	return item.clone(), nil
}

// Remove deletes the first item carrying promptID and reindexes the rest.
// It reports whether an item was removed.
func (c *Composition) Remove(promptID int64) bool {
	for i, it := range c.items {
		if it.PromptID != promptID {
			continue
		}
		c.items = append(c.items[:i:i], c.items[i+1:]...)
		c.reindex()
		return true
	}
	return false
}

// Move takes the item at src out of the sequence and reinserts it at dst of
// the shortened sequence. Out-of-range indices make the call a no-op.
func (c *Composition) Move(src, dst int) bool {
	n := len(c.items)
	if src < 0 || src >= n || dst < 0 || dst >= n {
		c.logger.Debug("composer: move out of range",
			slog.Int("src", src), slog.Int("dst", dst), slog.Int("len", n))
		return false
	}
	if src == dst {
		return false
	}
	moved := c.items[src]
	rest := make([]Item, 0, n)
	rest = append(rest, c.items[:src]...)
	rest = append(rest, c.items[src+1:]...)

	next := make([]Item, 0, n)
	next = append(next, rest[:dst]...)
	next = append(next, moved)
	next = append(next, rest[dst:]...)

	c.items = next
	c.reindex()
	return true
}

// MoveUp swaps the item at i with its predecessor.
func (c *Composition) MoveUp(i int) bool {
	return i > 0 && c.Move(i, i-1)
}

// MoveDown swaps the item at i with its successor.
func (c *Composition) MoveDown(i int) bool {
	return i < len(c.items)-1 && c.Move(i, i+1)
}

// Clear empties the sequence.
func (c *Composition) Clear() {
	c.items = nil
}

// Load replaces the sequence with items built from cands, skipping invalid
// candidates. It returns the number of items added.
func (c *Composition) Load(cands []Candidate) int {
	c.Clear()
	for _, cand := range cands {
		_, _ = c.Add(cand)
	}
	return len(c.items)
}

// Len returns the number of items.
func (c *Composition) Len() int {
	return len(c.items)
}

// Items returns a copy of the sequence.
func (c *Composition) Items() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.clone()
	}
	return out
}

// CombinedText joins the trimmed, non-empty item contents with a blank line.
func (c *Composition) CombinedText() string {
	return JoinContents(c.items)
}

// JoinContents applies the combined-text rule to any item sequence.
func JoinContents(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		if s := strings.TrimSpace(it.Content); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, Separator)
}

// SaveAs persists the sequence as a named combination through the bridge.
// The sequence itself is never modified, whether the save succeeds or not.
func (c *Composition) SaveAs(ctx context.Context, name string) (*models.Combination, error) {
	in, err := c.saveRequest(name)
	if err != nil {
		return nil, err
	}
	if c.bridge == nil {
		return nil, ErrNoBridge
	}
	saved, err := c.bridge.CreateCombination(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("composer: save %q: %w", in.Name, err)
	}
	return saved, nil
}

func (c *Composition) saveRequest(name string) (models.CombinationInput, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CombinationInput{}, ErrEmptyName
	}
	if len(c.items) == 0 {
		return models.CombinationInput{}, ErrEmptyComposition
	}
	ids := make([]int64, 0, len(c.items))
	for _, it := range c.items {
		if it.Synthetic || it.PromptID <= 0 {
			continue
		}
		ids = append(ids, it.PromptID)
	}
	if len(ids) == 0 {
		return models.CombinationInput{}, ErrNoValidIDs
	}
	return models.CombinationInput{
		Name:      name,
		PromptIDs: ids,
		Order:     models.IdentityOrder(len(ids)),
	}, nil
}

func (c *Composition) reindex() {
	for i := range c.items {
		c.items[i].Index = i
	}
}
