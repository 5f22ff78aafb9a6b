package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
}

func TestListMigrations_OrderedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "010_bookmarks_index.sql", "002_jobs.sql", "001_local_state.sql", "README.md", "notes_draft.sql")
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	migrations, err := ListMigrations(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{1, 2, 10}
	if len(migrations) != len(want) {
		t.Fatalf("expected %d migrations, got %+v", len(want), migrations)
	}
	for i, v := range want {
		if migrations[i].Version != v {
			t.Errorf("position %d: expected version %d, got %d", i, v, migrations[i].Version)
		}
	}
	if migrations[0].Path != filepath.Join(dir, "001_local_state.sql") {
		t.Errorf("unexpected path %q", migrations[0].Path)
	}
}

func TestListMigrations_DuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "001_local_state.sql", "1_other.sql")

	_, err := ListMigrations(dir)
	if err == nil || !strings.Contains(err.Error(), "share version 1") {
		t.Fatalf("expected duplicate version error, got %v", err)
	}
}

func TestListMigrations_MissingDir(t *testing.T) {
	if _, err := ListMigrations(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestListMigrations_ShippedSchema(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(migrations) == 0 || migrations[0].Name != "001_local_state.sql" {
		t.Fatalf("expected 001_local_state.sql first, got %+v", migrations)
	}
}
