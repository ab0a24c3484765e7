package parser

import (
	"slices"
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Code review\ncategory: \"Utility: Review\"\ntags:\n  - go\n  - review\n---\n# Heading kept\nReview this diff.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Code review" {
		t.Errorf("title = %q, want %q", r.Title, "Code review")
	}
	if r.Category != "Utility: Review" {
		t.Errorf("category = %q", r.Category)
	}
	if !slices.Equal(r.Tags, []string{"go", "review"}) {
		t.Errorf("tags = %v, want [go review]", r.Tags)
	}
	if r.Content != "# Heading kept\nReview this diff." {
		t.Errorf("content = %q", r.Content)
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("\n# Just a heading\nSome text.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
	if r.Content != "Some text." {
		t.Errorf("content = %q", r.Content)
	}
	if r.Tags == nil || len(r.Tags) != 0 {
		t.Errorf("tags = %#v, want empty", r.Tags)
	}
}

func TestParse_HeadingNotFirstLine(t *testing.T) {
	r, _ := Parse([]byte("intro text\n# Later heading\n"))
	if r.Title != "" {
		t.Errorf("title = %q, want empty", r.Title)
	}
	if r.Content != "intro text\n# Later heading" {
		t.Errorf("content = %q", r.Content)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if r.Content == "Body" {
		t.Error("invalid frontmatter should stay in the content")
	}
}

func TestExtractTags_CommaString(t *testing.T) {
	tags := extractTags(map[string]any{"tags": "alpha, beta,alpha, "})
	if !slices.Equal(tags, []string{"alpha", "beta"}) {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
}

func TestTitleFromPath(t *testing.T) {
	tests := map[string]string{
		"code-review_checklist.md": "code review checklist",
		"nested/dir/Summary.md":    "Summary",
	}
	for in, want := range tests {
		if got := TitleFromPath(in); got != want {
			t.Errorf("TitleFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}
