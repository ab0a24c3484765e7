//go:build sqlite_fts5

package index

import "testing"

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM prompts_fts`).Scan(&count); err != nil {
		t.Fatalf("prompts_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	row := PromptRow{ID: 5, Title: "FTS Prompt", Content: "Promptloom provides powerful full-text search.", Tags: []string{"search"}, Checksum: "f1"}
	if err := db.UpsertPrompt(row); err != nil {
		t.Fatalf("UpsertPrompt: %v", err)
	}

	results, err := db.Search("powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].ID != 5 {
		t.Errorf("id = %d", results[0].ID)
	}
	if results[0].Snippet == "" {
		t.Error("expected non-empty snippet")
	}
}

func TestFTS5_QuotesOperators(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertPrompt(PromptRow{ID: 1, Title: "Ops", Content: "AND OR NOT near", Checksum: "o"})

	if _, err := db.Search(`"unbalanced AND (`, 10); err != nil {
		t.Errorf("query syntax leaked into MATCH: %v", err)
	}
}
