package promptservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/promptloom/internal/apperr"
	"github.com/starford/promptloom/internal/composer"
	"github.com/starford/promptloom/internal/index"
	"github.com/starford/promptloom/internal/models"
	"github.com/starford/promptloom/internal/store"
)

type recordedEvent struct {
	entity, kind string
	id           int64
}

type eventLog struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (l *eventLog) PublishEntityEvent(entity, kind string, id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, recordedEvent{entity, kind, id})
}

// fakeIndex records upserts and deletes in memory.
type fakeIndex struct {
	rows    map[int64]index.PromptRow
	deleted []int64
}

func newFakeIndex() *fakeIndex { return &fakeIndex{rows: map[int64]index.PromptRow{}} }

func (f *fakeIndex) UpsertPrompt(r index.PromptRow) error {
	f.rows[r.ID] = r
	return nil
}

func (f *fakeIndex) DeletePrompt(id int64) error {
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}
func (f *fakeIndex) GetChecksum(id int64) (string, error) { return f.rows[id].Checksum, nil }
func (f *fakeIndex) Search(q string, _ int) ([]index.SearchResult, error) {
	return []index.SearchResult{{ID: 1, Title: q}}, nil
}
func (f *fakeIndex) AllChecksums() (map[int64]string, error) { return nil, nil }
func (f *fakeIndex) Close() error                            { return nil }

func newTestService(t *testing.T) (*Service, *eventLog, *fakeIndex) {
	t.Helper()
	events := &eventLog{}
	idx := newFakeIndex()
	svc := NewService(store.NewMemStore(), idx,
		WithNotifier(events),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return svc, events, idx
}

func ptr[T any](v T) *T { return &v }

func TestCreatePrompt_ValidatesIndexesAndNotifies(t *testing.T) {
	svc, events, idx := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreatePrompt(ctx, models.PromptInput{Title: "ab", Content: "hello world"})
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected validation error, got %v", err)
	}

	p, err := svc.CreatePrompt(ctx, models.PromptInput{Title: "Greeting", Content: "Say hello politely."})
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if _, ok := idx.rows[p.ID]; !ok {
		t.Error("prompt not indexed")
	}
	if len(events.events) != 1 || events.events[0] != (recordedEvent{"prompt", "created", p.ID}) {
		t.Errorf("events = %+v", events.events)
	}
}

func TestUpdatePrompt(t *testing.T) {
	svc, _, idx := newTestService(t)
	ctx := context.Background()
	p, _ := svc.CreatePrompt(ctx, models.PromptInput{Title: "Original", Content: "Original body", Tags: []string{"x"}})

	updated, err := svc.UpdatePrompt(ctx, p.ID, models.PromptPatch{Title: ptr("Renamed")})
	if err != nil {
		t.Fatalf("UpdatePrompt: %v", err)
	}
	if updated.Content != "Original body" || !slices.Equal(updated.Tags, []string{"x"}) {
		t.Errorf("partial update lost fields: %+v", updated)
	}
	if idx.rows[p.ID].Title != "Renamed" {
		t.Error("index not refreshed")
	}

	if _, err := svc.UpdatePrompt(ctx, 999, models.PromptPatch{Title: ptr("Nobody")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeletePrompt(t *testing.T) {
	svc, _, idx := newTestService(t)
	ctx := context.Background()
	p, _ := svc.CreatePrompt(ctx, models.PromptInput{Title: "Doomed", Content: "Delete me soon"})

	if err := svc.DeletePrompt(ctx, p.ID); err != nil {
		t.Fatalf("DeletePrompt: %v", err)
	}
	if _, err := svc.GetPrompt(ctx, p.ID); err == nil || err.Error() != "Prompt not found" {
		t.Errorf("expected 'Prompt not found', got %v", err)
	}
	if !slices.Equal(idx.deleted, []int64{p.ID}) {
		t.Errorf("index deletes = %v", idx.deleted)
	}
	if err := svc.DeletePrompt(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestListPrompts_Filters(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	cat, _ := svc.CreateCategory(ctx, models.CategoryInput{Name: "Writing"})
	_, _ = svc.CreatePrompt(ctx, models.PromptInput{Title: "One", Content: "first prompt", CategoryID: &cat.ID, Tags: []string{"draft"}})
	_, _ = svc.CreatePrompt(ctx, models.PromptInput{Title: "Two", Content: "second prompt", CategoryID: &cat.ID})
	_, _ = svc.CreatePrompt(ctx, models.PromptInput{Title: "Three", Content: "third prompt", Tags: []string{"draft"}})

	if got := svc.ListPrompts(ctx, PromptFilter{}); len(got) != 3 {
		t.Errorf("unfiltered = %d", len(got))
	}
	if got := svc.ListPrompts(ctx, PromptFilter{CategoryID: &cat.ID}); len(got) != 2 {
		t.Errorf("by category = %d", len(got))
	}
	got := svc.ListPrompts(ctx, PromptFilter{CategoryID: &cat.ID, Tag: "draft"})
	if len(got) != 1 || got[0].Title != "One" {
		t.Errorf("by category and tag = %+v", got)
	}
	if got := svc.ListPrompts(ctx, PromptFilter{Tag: "missing"}); got == nil || len(got) != 0 {
		t.Errorf("no match should be an empty list, got %#v", got)
	}
}

func TestCategories(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	dom, err := svc.CreateCategory(ctx, models.CategoryInput{Name: "Domain Topic: Finance"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, models.CategoryInput{Name: "Domain Topic: Finance"}); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate name: %v", err)
	}
	_, _ = svc.CreatePrompt(ctx, models.PromptInput{Title: "Budget", Content: "Plan a budget.", CategoryID: &dom.ID})

	summary := svc.CategorySummary(ctx)
	if len(summary) != 1 || summary[0].Count != 1 || summary[0].Kind != models.KindDomain || summary[0].Label != "Finance" {
		t.Errorf("summary = %+v", summary)
	}

	again, err := svc.EnsureCategory(ctx, "Domain Topic: Finance")
	if err != nil || again.ID != dom.ID {
		t.Errorf("EnsureCategory existing = %+v, %v", again, err)
	}
	fresh, err := svc.EnsureCategory(ctx, "Utility: Format")
	if err != nil || fresh.ID == dom.ID {
		t.Errorf("EnsureCategory new = %+v, %v", fresh, err)
	}

	if err := svc.DeleteCategory(ctx, dom.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	// No cascade: the prompt survives with its dangling reference.
	prompts := svc.ListPrompts(ctx, PromptFilter{CategoryID: &dom.ID})
	if len(prompts) != 1 {
		t.Errorf("prompt should survive category delete, got %d", len(prompts))
	}
}

func TestCreateCombination_AsBridge(t *testing.T) {
	svc, events, _ := newTestService(t)
	ctx := context.Background()
	a, _ := svc.CreatePrompt(ctx, models.PromptInput{Title: "First", Content: "  alpha  "})
	b, _ := svc.CreatePrompt(ctx, models.PromptInput{Title: "Second", Content: "beta!"})

	comp := composer.New(svc)
	_, _ = comp.Add(composer.CandidateFromPrompt(*b))
	_, _ = comp.Add(composer.CandidateFromPrompt(*a))

	saved, err := comp.SaveAs(ctx, " Flow ")
	if err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if saved.Name != "Flow" || !slices.Equal(saved.PromptIDs, []int64{b.ID, a.ID}) || !slices.Equal(saved.Order, []int{0, 1}) {
		t.Errorf("saved = %+v", saved)
	}
	last := events.events[len(events.events)-1]
	if last.entity != EntityCombination || last.kind != "created" {
		t.Errorf("last event = %+v", last)
	}

	text, err := svc.CombinationText(ctx, saved.ID)
	if err != nil {
		t.Fatalf("CombinationText: %v", err)
	}
	if text != "beta!\n\nalpha" {
		t.Errorf("text = %q", text)
	}
}

func TestCombinationOrderAndResolve(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	var ids []int64
	for _, title := range []string{"Alpha", "Bravo", "Charlie"} {
		p, _ := svc.CreatePrompt(ctx, models.PromptInput{Title: title, Content: title + " body"})
		ids = append(ids, p.ID)
	}

	c, err := svc.CreateCombination(ctx, models.CombinationInput{Name: "Rotated", PromptIDs: ids, Order: []int{2, 0, 1}})
	if err != nil {
		t.Fatalf("CreateCombination: %v", err)
	}
	_ = svc.DeletePrompt(ctx, ids[0])

	prompts, err := svc.ResolveCombination(ctx, c.ID)
	if err != nil {
		t.Fatalf("ResolveCombination: %v", err)
	}
	var titles []string
	for _, p := range prompts {
		titles = append(titles, p.Title)
	}
	if !slices.Equal(titles, []string{"Bravo", "Charlie"}) {
		t.Errorf("titles = %v", titles)
	}

	if _, err := svc.CreateCombination(ctx, models.CombinationInput{Name: "Bad", PromptIDs: ids, Order: []int{0, 0, 1}}); err == nil {
		t.Error("invalid order accepted")
	}
	if _, err := svc.UpdateCombination(ctx, c.ID, models.CombinationPatch{Order: &[]int{0}}); err == nil {
		t.Error("order of wrong length accepted on update")
	}
	updated, err := svc.UpdateCombination(ctx, c.ID, models.CombinationPatch{PromptIDs: &[]int64{ids[1]}})
	if err != nil {
		t.Fatalf("UpdateCombination: %v", err)
	}
	if !slices.Equal(updated.Order, []int{0}) {
		t.Errorf("order not reset: %v", updated.Order)
	}
	if _, err := svc.CombinationText(ctx, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing combination: %v", err)
	}
}

func TestTemplates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tpl, err := svc.CreateTemplate(ctx, models.TemplateInput{Name: "Email", Content: "Dear {{name}},"})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if _, err := svc.CreateTemplate(ctx, models.TemplateInput{Name: "Email", Content: "other"}); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate template: %v", err)
	}
	got, err := svc.GetTemplate(ctx, tpl.ID)
	if err != nil || got.Content != "Dear {{name}}," {
		t.Errorf("GetTemplate = %+v, %v", got, err)
	}
	if len(svc.ListTemplates(ctx)) != 1 {
		t.Error("expected one template")
	}
}

func TestSearch(t *testing.T) {
	svc, _, _ := newTestService(t)
	res, err := svc.Search(context.Background(), "review", 5)
	if err != nil || len(res) != 1 || res[0].Title != "review" {
		t.Errorf("index search not used: %+v, %v", res, err)
	}

	plain := NewService(store.NewMemStore(), nil)
	ctx := context.Background()
	_, _ = plain.CreatePrompt(ctx, models.PromptInput{Title: "Code review", Content: "Review this diff."})
	_, _ = plain.CreatePrompt(ctx, models.PromptInput{Title: "Summary", Content: "Summarize it.", Tags: []string{"REVIEW-later"}})
	_, _ = plain.CreatePrompt(ctx, models.PromptInput{Title: "Other", Content: "Unrelated."})

	res, err = plain.Search(ctx, "Review", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 2 {
		t.Errorf("scan search = %+v", res)
	}
	res, _ = plain.Search(ctx, "  ", 0)
	if len(res) != 0 {
		t.Errorf("blank query = %+v", res)
	}
}
