// Package drafts keeps server-held compositions, one per client session,
// addressed by a random uuid and expired after a period of inactivity.
package drafts

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/promptloom/internal/apperr"
	"github.com/starford/promptloom/internal/composer"
	"github.com/starford/promptloom/internal/metrics"
	"github.com/starford/promptloom/internal/models"
)

// ErrLimit is returned by Create when the registry is full.
var ErrLimit = errors.New("drafts: too many open drafts")

// Source resolves prompts and saved combinations for a draft.
type Source interface {
	GetPrompt(ctx context.Context, id int64) (*models.Prompt, error)
	ResolveCombination(ctx context.Context, id int64) ([]models.Prompt, error)
}

// View is a snapshot of a draft returned to callers.
type View struct {
	ID         string          `json:"id"`
	Items      []composer.Item `json:"items"`
	Text       string          `json:"text"`
	Characters int             `json:"characters"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type draft struct {
	id uuid.UUID

	// mu serializes every operation on comp, including a save in flight.
	mu      sync.Mutex
	comp    *composer.Composition
	touched time.Time
}

// Registry owns all live drafts.
type Registry struct {
	src     Source
	bridge  composer.Bridge
	logger  *slog.Logger
	metrics *metrics.Collector
	ttl     time.Duration
	max     int
	now     func() time.Time

	mu     sync.Mutex
	drafts map[uuid.UUID]*draft
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL sets how long an untouched draft survives. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.ttl = ttl }
}

// WithMax caps the number of live drafts. Zero means unlimited.
func WithMax(n int) Option {
	return func(r *Registry) { r.max = n }
}

// WithLogger sets the logger handed to each composition.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// NewRegistry creates an empty registry. Prompts are looked up in src and
// saves go through bridge.
func NewRegistry(src Source, bridge composer.Bridge, opts ...Option) *Registry {
	r := &Registry{
		src:    src,
		bridge: bridge,
		logger: slog.Default(),
		ttl:    time.Hour,
		now:    time.Now,
		drafts: make(map[uuid.UUID]*draft),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create opens an empty draft.
func (r *Registry) Create() (View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.drafts) >= r.max {
		return View{}, ErrLimit
	}
	d := &draft{
		id:      uuid.New(),
		comp:    composer.New(r.bridge, composer.WithLogger(r.logger)),
		touched: r.now(),
	}
	r.drafts[d.id] = d
	r.metrics.SetDrafts(len(r.drafts))
	return d.view(), nil
}

// Get returns the current state of a draft.
func (r *Registry) Get(id string) (View, error) {
	var v View
	err := r.with(id, func(d *draft) error {
		v = d.view()
		return nil
	})
	return v, err
}

// Delete discards a draft.
func (r *Registry) Delete(id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drafts[key]; !ok {
		return apperr.NotFound("Draft")
	}
	delete(r.drafts, key)
	r.metrics.SetDrafts(len(r.drafts))
	return nil
}

// Len returns the number of live drafts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}

// Expire drops drafts untouched for longer than the TTL and returns how many
// were dropped.
func (r *Registry) Expire() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key, d := range r.drafts {
		if !d.mu.TryLock() {
			// Busy drafts are in use by definition.
			continue
		}
		stale := d.touched.Before(cutoff)
		d.mu.Unlock()
		if stale {
			delete(r.drafts, key)
			n++
		}
	}
	if n > 0 {
		r.metrics.SetDrafts(len(r.drafts))
		r.logger.Debug("drafts: expired", slog.Int("count", n))
	}
	return n
}

// Run expires idle drafts every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Expire()
		}
	}
}

// with runs fn under the draft's lock and marks the draft as touched.
func (r *Registry) with(id string, fn func(d *draft) error) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	d, ok := r.drafts[key]
	r.mu.Unlock()
	if !ok {
		return apperr.NotFound("Draft")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	// The draft may have been expired or deleted while we waited for it.
	if !r.live(key, d) {
		return apperr.NotFound("Draft")
	}
	d.touched = r.now()
	return fn(d)
}

func (r *Registry) live(key uuid.UUID, d *draft) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drafts[key] == d
}

func (d *draft) view() View {
	text := d.comp.CombinedText()
	return View{
		ID:         d.id.String(),
		Items:      d.comp.Items(),
		Text:       text,
		Characters: len([]rune(text)),
		UpdatedAt:  d.touched,
	}
}

func parseID(id string) (uuid.UUID, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperr.InvalidID("draft")
	}
	return key, nil
}
