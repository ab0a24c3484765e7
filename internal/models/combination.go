package models

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Combination is a persisted, named snapshot of a composition.
// Order[i] is the position of PromptIDs[i] in the composed sequence.
type Combination struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	PromptIDs []int64   `json:"promptIds"`
	Order     []int     `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

// CombinationInput is the insert shape for a combination.
// A nil Order is filled with the identity permutation.
type CombinationInput struct {
	Name      string  `json:"name"`
	PromptIDs []int64 `json:"promptIds"`
	Order     []int   `json:"order,omitempty"`
}

// Validate checks the name, the prompt ids and the order permutation.
func (in CombinationInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.By(trimmedRequired)),
		validation.Field(&in.PromptIDs, validation.Each(validation.Required, validation.Min(int64(1)))),
		validation.Field(&in.Order, validation.By(func(any) error {
			if in.Order == nil {
				return nil
			}
			return checkPermutation(in.Order, len(in.PromptIDs))
		})),
	)
}

// Normalized returns a copy with the name trimmed and a defaulted order.
func (in CombinationInput) Normalized() CombinationInput {
	out := CombinationInput{
		Name:      strings.TrimSpace(in.Name),
		PromptIDs: append([]int64{}, in.PromptIDs...),
	}
	if in.Order == nil {
		out.Order = IdentityOrder(len(in.PromptIDs))
	} else {
		out.Order = append([]int{}, in.Order...)
	}
	return out
}

// CombinationPatch carries a partial combination update.
type CombinationPatch struct {
	Name      *string  `json:"name,omitempty"`
	PromptIDs *[]int64 `json:"promptIds,omitempty"`
	Order     *[]int   `json:"order,omitempty"`
}

// Validate checks the fields present in the patch. Order consistency with the
// stored prompt ids is checked by the caller once the patch is merged.
func (p CombinationPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.By(func(value any) error {
			name, _ := value.(*string)
			if name == nil {
				return nil
			}
			return trimmedRequired(*name)
		})),
		validation.Field(&p.PromptIDs, validation.By(func(value any) error {
			ids, _ := value.(*[]int64)
			if ids == nil {
				return nil
			}
			return validation.Validate(*ids, validation.Each(validation.Required, validation.Min(int64(1))))
		})),
	)
}

// Merge applies the patch on top of c. When only the prompt ids change, the
// order is reset to the identity permutation.
func (p CombinationPatch) Merge(c Combination) (Combination, error) {
	out := c
	if p.Name != nil {
		out.Name = strings.TrimSpace(*p.Name)
	}
	if p.PromptIDs != nil {
		out.PromptIDs = append([]int64{}, (*p.PromptIDs)...)
		if p.Order == nil {
			out.Order = IdentityOrder(len(out.PromptIDs))
		}
	}
	if p.Order != nil {
		out.Order = append([]int{}, (*p.Order)...)
	}
	if err := checkPermutation(out.Order, len(out.PromptIDs)); err != nil {
		return c, validation.Errors{"order": err}
	}
	return out, nil
}

// Ordered returns the prompt ids arranged by Order.
func (c Combination) Ordered() []int64 {
	if checkPermutation(c.Order, len(c.PromptIDs)) != nil {
		return append([]int64{}, c.PromptIDs...)
	}
	out := make([]int64, len(c.PromptIDs))
	for i, pos := range c.Order {
		out[pos] = c.PromptIDs[i]
	}
	return out
}

// IdentityOrder returns 0..n-1.
func IdentityOrder(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func checkPermutation(order []int, n int) error {
	if len(order) != n {
		return errors.New("order must have one entry per prompt id")
	}
	seen := make([]bool, n)
	for _, pos := range order {
		if pos < 0 || pos >= n || seen[pos] {
			return errors.New("order must be a permutation of 0..n-1")
		}
		seen[pos] = true
	}
	return nil
}

func trimmedRequired(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}
