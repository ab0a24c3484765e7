// Package testutil provides shared test helpers for setting up indexes,
// services and prompt libraries.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/promptloom/internal/index"
	"github.com/starford/promptloom/internal/promptservice"
	"github.com/starford/promptloom/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "promptloom-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Service returns a prompt service over a fresh store and index. With seed
// set, the store holds the default categories, templates and prompts.
func Service(t *testing.T, seed bool, opts ...promptservice.Option) (*promptservice.Service, *store.MemStore) {
	t.Helper()
	st := store.NewMemStore()
	if seed {
		store.Seed(st)
	}
	db := TestDB(t)
	if err := index.Sync(db, st, Logger()); err != nil {
		t.Fatal(err)
	}
	opts = append([]promptservice.Option{promptservice.WithLogger(Logger())}, opts...)
	return promptservice.NewService(st, db, opts...), st
}

// WriteFile writes content to rel under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}
