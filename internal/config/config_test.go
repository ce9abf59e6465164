package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("SHELFMARK_DB", "")
	t.Setenv("SHELFMARK_ROOT_FOLDER", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
	if cfg.RootFolder != "" {
		t.Errorf("RootFolder = %q, want empty", cfg.RootFolder)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("SHELFMARK_DB", "")
	t.Setenv("SHELFMARK_ROOT_FOLDER", "")

	path := filepath.Join(dir, "shelfmark", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	content := "db_path: /tmp/custom.db\nroot_folder: Inbox\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/custom.db" || cfg.RootFolder != "Inbox" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "shelfmark", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("db_path: /tmp/file.db\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SHELFMARK_DB", "/tmp/env.db")
	t.Setenv("SHELFMARK_ROOT_FOLDER", "Sorted")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/env.db" {
		t.Errorf("DBPath = %q, want env override", cfg.DBPath)
	}
	if cfg.RootFolder != "Sorted" {
		t.Errorf("RootFolder = %q, want Sorted", cfg.RootFolder)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "shelfmark", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("db_path: [broken\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("malformed config accepted")
	}
}
