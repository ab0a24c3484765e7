package models

import (
	"errors"
	"slices"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ptr[T any](v T) *T { return &v }

func TestPromptInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      PromptInput
		wantErr []string
	}{
		{"valid", PromptInput{Title: "Summarize", Content: "Summarize the text."}, nil},
		{"short title", PromptInput{Title: "ab", Content: "enough content"}, []string{"title"}},
		{"short content", PromptInput{Title: "Title", Content: "abc"}, []string{"content"}},
		{"missing both", PromptInput{}, []string{"title", "content"}},
		{"bad category", PromptInput{Title: "Title", Content: "content", CategoryID: ptr(int64(0))}, []string{"categoryId"}},
		{"blank tag", PromptInput{Title: "Title", Content: "content", Tags: []string{"ok", ""}}, []string{"tags"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation.Errors, got %v", err)
			}
			for _, field := range tt.wantErr {
				if _, ok := verrs[field]; !ok {
					t.Errorf("missing error for %q in %v", field, verrs)
				}
			}
		})
	}
}

func TestPromptPatch(t *testing.T) {
	if !(PromptPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	if err := (PromptPatch{Title: ptr("New title")}).Validate(); err != nil {
		t.Errorf("valid patch: %v", err)
	}
	if err := (PromptPatch{Title: ptr("x")}).Validate(); err == nil {
		t.Error("short title in patch should fail")
	}
	if err := (PromptPatch{Tags: &[]string{""}}).Validate(); err == nil {
		t.Error("blank tag in patch should fail")
	}
}

func TestPromptFilters(t *testing.T) {
	p := Prompt{CategoryID: ptr(int64(3)), Tags: []string{"Review", "code"}}
	if !p.InCategory(3) || p.InCategory(4) {
		t.Error("InCategory mismatch")
	}
	if (Prompt{}).InCategory(3) {
		t.Error("uncategorized prompt should not match")
	}
	if !p.HasTag("code") || p.HasTag("review") {
		t.Error("HasTag should be an exact match")
	}
}

func TestCategoryKindAndLabel(t *testing.T) {
	tests := []struct {
		name, kind, label string
	}{
		{"Domain Topic: Finance", KindDomain, "Finance"},
		{"Utility: Formatting", KindUtility, "Formatting"},
		{"Writing", KindOther, "Writing"},
	}
	for _, tt := range tests {
		c := Category{Name: tt.name}
		if got := c.Kind(); got != tt.kind {
			t.Errorf("Kind(%q) = %q, want %q", tt.name, got, tt.kind)
		}
		if got := c.Label(); got != tt.label {
			t.Errorf("Label(%q) = %q, want %q", tt.name, got, tt.label)
		}
	}
	if err := (CategoryInput{Name: "A"}).Validate(); err == nil {
		t.Error("one-character category name should fail")
	}
}

func TestCombinationInputValidate(t *testing.T) {
	tests := []struct {
		name string
		in   CombinationInput
		ok   bool
	}{
		{"valid default order", CombinationInput{Name: "Flow", PromptIDs: []int64{1, 2}}, true},
		{"valid permutation", CombinationInput{Name: "Flow", PromptIDs: []int64{1, 2}, Order: []int{1, 0}}, true},
		{"blank name", CombinationInput{Name: "   ", PromptIDs: []int64{1}}, false},
		{"zero id", CombinationInput{Name: "Flow", PromptIDs: []int64{0}}, false},
		{"short order", CombinationInput{Name: "Flow", PromptIDs: []int64{1, 2}, Order: []int{0}}, false},
		{"duplicate position", CombinationInput{Name: "Flow", PromptIDs: []int64{1, 2}, Order: []int{0, 0}}, false},
		{"position out of range", CombinationInput{Name: "Flow", PromptIDs: []int64{1, 2}, Order: []int{0, 2}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCombinationNormalized(t *testing.T) {
	out := CombinationInput{Name: "  Flow ", PromptIDs: []int64{4, 5, 6}}.Normalized()
	if out.Name != "Flow" {
		t.Errorf("name = %q", out.Name)
	}
	if !slices.Equal(out.Order, []int{0, 1, 2}) {
		t.Errorf("order = %v", out.Order)
	}
}

func TestCombinationOrdered(t *testing.T) {
	c := Combination{PromptIDs: []int64{10, 20, 30}, Order: []int{2, 0, 1}}
	if got := c.Ordered(); !slices.Equal(got, []int64{20, 30, 10}) {
		t.Errorf("Ordered() = %v", got)
	}
	broken := Combination{PromptIDs: []int64{10, 20}, Order: []int{5}}
	if got := broken.Ordered(); !slices.Equal(got, []int64{10, 20}) {
		t.Errorf("Ordered() with bad order = %v", got)
	}
}

func TestCombinationPatchMerge(t *testing.T) {
	base := Combination{ID: 1, Name: "Flow", PromptIDs: []int64{1, 2}, Order: []int{1, 0}}

	renamed, err := CombinationPatch{Name: ptr(" Renamed ")}.Merge(base)
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Name != "Renamed" || !slices.Equal(renamed.Order, []int{1, 0}) {
		t.Errorf("rename changed more than the name: %+v", renamed)
	}

	reids, err := CombinationPatch{PromptIDs: &[]int64{7, 8, 9}}.Merge(base)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(reids.Order, []int{0, 1, 2}) {
		t.Errorf("order not reset: %v", reids.Order)
	}

	if _, err := (CombinationPatch{Order: &[]int{0, 1, 2}}).Merge(base); err == nil {
		t.Error("order longer than prompt ids should fail")
	}
	if base.Name != "Flow" {
		t.Error("merge mutated its input")
	}
}

func TestTemplateInputValidate(t *testing.T) {
	if err := (TemplateInput{Name: "Email", Content: "Dear {{name}}"}).Validate(); err != nil {
		t.Errorf("valid template: %v", err)
	}
	if err := (TemplateInput{Name: "Email"}).Validate(); err == nil {
		t.Error("template without content should fail")
	}
}
