package index

import (
	"log/slog"

	"github.com/starford/promptloom/internal/models"
)

// PromptSource lists the prompts the index mirrors.
type PromptSource interface {
	Prompts() []models.Prompt
}

// Sync brings the index up to date with src:
//   - new/changed prompts are upserted
//   - prompts no longer in src are deleted from the index
func Sync(db PromptIndex, src PromptSource, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	live := make(map[int64]struct{})
	for _, p := range src.Prompts() {
		live[p.ID] = struct{}{}
		row := RowFromPrompt(p)
		if checksums[p.ID] == row.Checksum {
			continue
		}
		if err := db.UpsertPrompt(row); err != nil {
			logger.Warn("sync: index failed", slog.Int64("id", p.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.Int64("id", p.ID))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := live[id]; !ok {
			if err := db.DeletePrompt(id); err != nil {
				logger.Warn("sync: delete failed", slog.Int64("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.Int64("id", id))
			}
		}
	}
	return nil
}
