// Package promptservice coordinates the entity store, the search index, change
// events and metrics behind one validated API shared by HTTP, MCP and the
// library importer.
package promptservice

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/promptloom/internal/index"
	"github.com/starford/promptloom/internal/metrics"
	"github.com/starford/promptloom/internal/store"
)

// Entity names used in events, metrics and error messages.
const (
	EntityCategory    = "category"
	EntityPrompt      = "prompt"
	EntityCombination = "combination"
	EntityTemplate    = "template"
)

// Notifier receives one call per successful mutation.
type Notifier interface {
	PublishEntityEvent(entity, kind string, id int64)
}

// Service coordinates store, index and event operations.
type Service struct {
	store   store.Store
	idx     index.PromptIndex
	events  Notifier
	metrics *metrics.Collector
	logger  *slog.Logger

	// names serializes check-then-create for unique category and template names.
	names sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the change event sink.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.events = n }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new prompt service. idx may be nil, in which case
// search scans the store directly.
func NewService(st store.Store, idx index.PromptIndex, opts ...Option) *Service {
	s := &Service{
		store:  st,
		idx:    idx,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search returns prompts matching query, best match first.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.idx != nil {
		return s.idx.Search(query, limit)
	}
	if limit <= 0 {
		limit = 20
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := []index.SearchResult{}
	if q == "" {
		return out, nil
	}
	for _, p := range s.store.Prompts() {
		if len(out) == limit {
			break
		}
		hay := strings.ToLower(p.Title + "\n" + p.Content + "\n" + strings.Join(p.Tags, " "))
		if strings.Contains(hay, q) {
			out = append(out, index.SearchResult{ID: p.ID, Title: p.Title, Snippet: snippet(p.Content)})
		}
	}
	return out, nil
}

func (s *Service) mutated(entity, kind string, id int64) {
	s.metrics.Mutation(entity, kind)
	if s.events != nil {
		s.events.PublishEntityEvent(entity, kind, id)
	}
	s.logger.Debug("entity mutated",
		slog.String("entity", entity), slog.String("op", kind), slog.Int64("id", id))
}

func snippet(content string) string {
	r := []rune(content)
	if len(r) > 200 {
		return string(r[:200])
	}
	return content
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
