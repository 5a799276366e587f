package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite, got %s", cfg.Database.Driver)
	}
	if cfg.Chunking.Size != 300 {
		t.Errorf("expected size 300, got %d", cfg.Chunking.Size)
	}
	if cfg.Retrieval.TopK != 10 {
		t.Errorf("expected top_k 10, got %d", cfg.Retrieval.TopK)
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toml")
	os.WriteFile(path, []byte(`
[database]
path = "custom.db"

[chunking]
size = 500
`), 0644)

	cfg := Load(path)
	if cfg.Database.Path != "custom.db" {
		t.Errorf("expected custom.db, got %s", cfg.Database.Path)
	}
	if cfg.Chunking.Size != 500 {
		t.Errorf("expected size 500, got %d", cfg.Chunking.Size)
	}
	// Defaults preserved
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("default should be preserved, got %s", cfg.Database.Driver)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("LOREBASE_DB_PATH", "env.db")
	t.Setenv("LOREBASE_TOP_K", "25")

	cfg := Load("/nonexistent/path.toml")
	if cfg.Database.Path != "env.db" {
		t.Errorf("expected env.db, got %s", cfg.Database.Path)
	}
	if cfg.Retrieval.TopK != 25 {
		t.Errorf("expected top_k 25, got %d", cfg.Retrieval.TopK)
	}
}

func TestPostgresFallsBackWithoutURL(t *testing.T) {
	t.Setenv("LOREBASE_DB_DRIVER", "postgres")

	cfg := Load("/nonexistent/path.toml")
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite fallback, got %s", cfg.Database.Driver)
	}
}
