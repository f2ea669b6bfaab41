package pkgmanifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}

	return path
}

func Test_Load_Basic(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "home.toml", `
[package]
name = "demo"
version = "0.1.0"

[dependencies]
fmtlib = { version = "1.2.0" }
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if m.Package.Name != "demo" {
		t.Fatalf("expected package name %q, got %q", "demo", m.Package.Name)
	}

	if m.Package.Edition != DefaultEdition {
		t.Fatalf("expected default edition %q, got %q", DefaultEdition, m.Package.Edition)
	}

	dep, ok := m.Deps["fmtlib"]
	if !ok {
		t.Fatal("expected a fmtlib dependency entry")
	}

	if dep.Version != "1.2.0" {
		t.Fatalf("expected version 1.2.0, got %q", dep.Version)
	}
}

func Test_Load_MissingName(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "home.toml", `
[package]
version = "0.1.0"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for a manifest missing [package].name")
	}
}

func Test_LoadLockfile_MissingIsEmpty(t *testing.T) {
	lf, err := LoadLockfile(filepath.Join(t.TempDir(), "home.lock"))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}

	if len(lf.Entries) != 0 {
		t.Fatal("expected no entries for a missing lockfile")
	}
}

func Test_SaveLoad_Lockfile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "home.lock")

	lf := &Lockfile{Entries: []LockEntry{
		{Name: "fmtlib", Version: "1.2.0", Hash: "abc123", Source: "registry"},
	}}

	if err := SaveLockfile(path, lf); err != nil {
		t.Fatalf("SaveLockfile: %v", err)
	}

	reloaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}

	if len(reloaded.Entries) != 1 || reloaded.Entries[0].Hash != "abc123" {
		t.Fatalf("unexpected reloaded entries: %+v", reloaded.Entries)
	}

	if got := reloaded.Hashes(); len(got) != 1 || got[0] != "abc123" {
		t.Fatalf("unexpected Hashes(): %v", got)
	}
}
