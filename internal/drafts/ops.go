package drafts

import (
	"context"
	"strings"

	"github.com/starford/promptloom/internal/composer"
	"github.com/starford/promptloom/internal/models"
)

// ExportFilename is the suggested download name for an exported draft.
const ExportFilename = "prompt_export.txt"

// shareBase opens the combined text in Gemini.
const shareBase = "https://gemini.google.com/app?text="

// AddPrompt appends the stored prompt with the given id.
func (r *Registry) AddPrompt(ctx context.Context, id string, promptID int64) (View, error) {
	p, err := r.src.GetPrompt(ctx, promptID)
	if err != nil {
		return View{}, err
	}
	return r.AddCandidate(id, composer.CandidateFromPrompt(*p))
}

// AddCandidate appends a raw candidate, such as an unsaved scratch prompt.
func (r *Registry) AddCandidate(id string, cand composer.Candidate) (View, error) {
	var v View
	err := r.with(id, func(d *draft) error {
		if _, err := d.comp.Add(cand); err != nil {
			return err
		}
		v = d.view()
		return nil
	})
	return v, err
}

// Remove drops the first item carrying promptID. The boolean reports
// whether anything changed.
func (r *Registry) Remove(id string, promptID int64) (View, bool, error) {
	var v View
	var changed bool
	err := r.with(id, func(d *draft) error {
		changed = d.comp.Remove(promptID)
		v = d.view()
		return nil
	})
	return v, changed, err
}

// Move relocates the item at src to dst.
func (r *Registry) Move(id string, src, dst int) (View, bool, error) {
	var v View
	var changed bool
	err := r.with(id, func(d *draft) error {
		changed = d.comp.Move(src, dst)
		v = d.view()
		return nil
	})
	return v, changed, err
}

// HoverResult is the outcome of one drag-hover tick.
type HoverResult struct {
	Drag  composer.DragItem `json:"drag"`
	Moved bool              `json:"moved"`
	Draft View              `json:"draft"`
}

// Hover applies one drag-hover tick.
func (r *Registry) Hover(id string, drag composer.DragItem, target composer.HoverTarget) (HoverResult, error) {
	var res HoverResult
	err := r.with(id, func(d *draft) error {
		res.Drag, res.Moved = d.comp.Hover(drag, target)
		res.Draft = d.view()
		return nil
	})
	return res, err
}

// Clear empties a draft.
func (r *Registry) Clear(id string) (View, error) {
	var v View
	err := r.with(id, func(d *draft) error {
		d.comp.Clear()
		v = d.view()
		return nil
	})
	return v, err
}

// Save persists the draft as a named combination. The draft is unchanged
// whatever the outcome.
func (r *Registry) Save(ctx context.Context, id, name string) (*models.Combination, error) {
	var saved *models.Combination
	err := r.with(id, func(d *draft) error {
		var err error
		saved, err = d.comp.SaveAs(ctx, name)
		return err
	})
	return saved, err
}

// Load replaces the draft's items with the prompts of a saved combination.
func (r *Registry) Load(ctx context.Context, id string, combinationID int64) (View, error) {
	// Check the draft first so a bad draft id is reported before a bad
	// combination id.
	if _, err := r.Get(id); err != nil {
		return View{}, err
	}
	prompts, err := r.src.ResolveCombination(ctx, combinationID)
	if err != nil {
		return View{}, err
	}
	cands := make([]composer.Candidate, len(prompts))
	for i, p := range prompts {
		cands[i] = composer.CandidateFromPrompt(p)
	}
	var v View
	err = r.with(id, func(d *draft) error {
		d.comp.Load(cands)
		v = d.view()
		return nil
	})
	return v, err
}

// Export returns the combined text for download.
func (r *Registry) Export(id string) (string, error) {
	v, err := r.Get(id)
	if err != nil {
		return "", err
	}
	return v.Text, nil
}

// Share returns a URL that opens the combined text in Gemini.
func (r *Registry) Share(id string) (string, error) {
	text, err := r.Export(id)
	if err != nil {
		return "", err
	}
	return ShareURL(text), nil
}

// ShareURL encodes text the way encodeURIComponent does: every byte outside
// A-Z a-z 0-9 and -_.!~*'() is percent-encoded.
func ShareURL(text string) string {
	return shareBase + encodeURIComponent(text)
}

func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
