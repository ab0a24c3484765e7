package internal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/promptloom/internal/promptservice"
)

func TestNewCore_SeedsAndImportsLibrary(t *testing.T) {
	libDir := t.TempDir()
	body := "---\ntitle: Release notes\ncategory: Writing\ntags: [changelog]\n---\nSummarize the merged changes.\n"
	if err := os.WriteFile(filepath.Join(libDir, "release.md"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	cfg.Index.DSN = filepath.Join(t.TempDir(), "index.db")
	cfg.Library.Path = libDir
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := newCore(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("newCore: %v", err)
	}
	defer c.close()

	ctx := context.Background()
	imported := c.svc.ListPrompts(ctx, promptservice.PromptFilter{Tag: "changelog"})
	if len(imported) != 1 || imported[0].Title != "Release notes" {
		t.Fatalf("imported = %+v", imported)
	}
	if len(c.svc.ListPrompts(ctx, promptservice.PromptFilter{})) < 2 {
		t.Error("default prompts were not seeded")
	}

	results, err := c.svc.Search(ctx, "merged", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("search results = %+v", results)
	}
}

func TestSetupRequiresConfig(t *testing.T) {
	if _, _, err := setup(nil); err == nil {
		t.Fatal("expected error without config")
	}
}
