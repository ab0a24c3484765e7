package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/starford/promptloom/internal/apperr"
	"github.com/starford/promptloom/internal/checksum"
	"github.com/starford/promptloom/internal/metrics"
	"github.com/starford/promptloom/internal/models"
	"github.com/starford/promptloom/internal/parser"
)

// Target receives imported prompts. The prompt service satisfies it.
type Target interface {
	CreatePrompt(ctx context.Context, in models.PromptInput) (*models.Prompt, error)
	UpdatePrompt(ctx context.Context, id int64, patch models.PromptPatch) (*models.Prompt, error)
	DeletePrompt(ctx context.Context, id int64) error
	EnsureCategory(ctx context.Context, name string) (*models.Category, error)
}

type imported struct {
	id       int64
	checksum string
}

// Importer maps library files to prompts. Each file owns exactly one prompt;
// the mapping lives only as long as the process.
type Importer struct {
	fs      *FS
	target  Target
	logger  *slog.Logger
	metrics *metrics.Collector

	mu    sync.Mutex
	files map[string]imported
}

// NewImporter creates an importer for the files under fsys.
func NewImporter(fsys *FS, target Target, logger *slog.Logger, m *metrics.Collector) *Importer {
	return &Importer{
		fs:      fsys,
		target:  target,
		logger:  logger,
		metrics: m,
		files:   make(map[string]imported),
	}
}

// FS returns the library the importer reads from.
func (im *Importer) FS() *FS {
	return im.fs
}

// Sync walks the library and brings the imported prompts up to date:
//   - new/changed files are parsed and imported
//   - prompts whose files disappeared are deleted
func (im *Importer) Sync(ctx context.Context) error {
	files, err := im.fs.List("")
	if err != nil {
		return err
	}
	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}
		if _, err := im.Import(ctx, f.Path); err != nil {
			im.logger.Warn("library: import failed", slog.String("path", f.Path), slog.String("error", err.Error()))
		}
	}
	for _, p := range im.Paths() {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := im.Remove(ctx, p); err != nil {
			im.logger.Warn("library: remove failed", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
	return nil
}

// Import reads one file and creates or updates its prompt. Unchanged files
// are skipped. It returns the prompt id.
func (im *Importer) Import(ctx context.Context, path string) (int64, error) {
	data, err := im.fs.Read(path)
	if err != nil {
		return 0, err
	}
	sum := checksum.Sum(data)

	im.mu.Lock()
	defer im.mu.Unlock()

	prev, known := im.files[path]
	if known && prev.checksum == sum {
		return prev.id, nil
	}

	in, err := im.promptInput(ctx, path, data)
	if err != nil {
		im.metrics.Import(err)
		return 0, err
	}

	var p *models.Prompt
	if known {
		p, err = im.target.UpdatePrompt(ctx, prev.id, models.PromptPatch{
			Title:      &in.Title,
			Content:    &in.Content,
			CategoryID: in.CategoryID,
			Tags:       &in.Tags,
		})
		if errors.Is(err, apperr.ErrNotFound) {
			// Deleted through the API; the file brings it back.
			known = false
		}
	}
	if !known {
		p, err = im.target.CreatePrompt(ctx, in)
	}
	im.metrics.Import(err)
	if err != nil {
		return 0, fmt.Errorf("library: import %s: %w", path, err)
	}

	im.files[path] = imported{id: p.ID, checksum: sum}
	im.logger.Debug("library: imported", slog.String("path", path), slog.Int64("id", p.ID))
	return p.ID, nil
}

// Remove deletes the prompt imported from path, if any.
func (im *Importer) Remove(ctx context.Context, path string) error {
	im.mu.Lock()
	defer im.mu.Unlock()

	prev, ok := im.files[path]
	if !ok {
		return nil
	}
	delete(im.files, path)
	if err := im.target.DeletePrompt(ctx, prev.id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	im.logger.Debug("library: removed", slog.String("path", path), slog.Int64("id", prev.id))
	return nil
}

// PromptID returns the id of the prompt imported from path.
func (im *Importer) PromptID(path string) (int64, bool) {
	im.mu.Lock()
	defer im.mu.Unlock()
	f, ok := im.files[path]
	return f.id, ok
}

// Paths returns the imported file paths in lexical order.
func (im *Importer) Paths() []string {
	im.mu.Lock()
	defer im.mu.Unlock()
	out := make([]string, 0, len(im.files))
	for p := range im.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (im *Importer) promptInput(ctx context.Context, path string, data []byte) (models.PromptInput, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return models.PromptInput{}, err
	}
	in := models.PromptInput{
		Title:   res.Title,
		Content: res.Content,
		Tags:    res.Tags,
	}
	if in.Title == "" {
		in.Title = parser.TitleFromPath(path)
	}
	if res.Category != "" {
		cat, err := im.target.EnsureCategory(ctx, res.Category)
		if err != nil {
			return models.PromptInput{}, fmt.Errorf("library: category %q: %w", res.Category, err)
		}
		in.CategoryID = &cat.ID
	}
	return in, nil
}
