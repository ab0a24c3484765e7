package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/promptloom/internal/checksum"
	"github.com/starford/promptloom/internal/models"
)

// PromptRow represents a row in the prompts table.
type PromptRow struct {
	ID         int64
	Title      string
	Content    string
	CategoryID int64
	Tags       []string
	Checksum   string
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// RowFromPrompt converts a stored prompt to an index row with its checksum.
func RowFromPrompt(p models.Prompt) PromptRow {
	var cat int64
	if p.CategoryID != nil {
		cat = *p.CategoryID
	}
	return PromptRow{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		CategoryID: cat,
		Tags:       p.Tags,
		Checksum:   checksum.Fields(p.Title, p.Content, strconv.FormatInt(cat, 10), strings.Join(p.Tags, "\x1f")),
	}
}

// UpsertPrompt inserts or replaces a prompt and its FTS entry within a transaction.
func (db *DB) UpsertPrompt(r PromptRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.Exec(`
		INSERT INTO prompts (id, title, content, tags, category_id, checksum)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			content     = excluded.content,
			tags        = excluded.tags,
			category_id = excluded.category_id,
			checksum    = excluded.checksum
	`, r.ID, r.Title, r.Content, string(tagsJSON), r.CategoryID, r.Checksum)
	if err != nil {
		return fmt.Errorf("index: upsert prompt: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, r.ID, r.Title, r.Content, tags); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePrompt removes a prompt and its FTS entry.
func (db *DB) DeletePrompt(id int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	if _, err := tx.Exec(`DELETE FROM prompts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete prompt: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a prompt, or empty string if not indexed.
func (db *DB) GetChecksum(id int64) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM prompts WHERE id = ?`, id).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns id -> checksum for every indexed prompt.
func (db *DB) AllChecksums() (map[int64]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM prompts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[int64]string)
	for rows.Next() {
		var id int64
		var cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
