package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/comptime"
)

func Test_ExitCodeOf_Int(t *testing.T) {
	if got := exitCodeOf(comptime.Int(7)); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func Test_ExitCodeOf_NonInt(t *testing.T) {
	if got := exitCodeOf(comptime.Bool(true)); got != 0 {
		t.Fatalf("expected 0 for a non-int result, got %d", got)
	}
}

func Test_SortedTestNames_FiltersByPrefix(t *testing.T) {
	funcs := map[string]*ast.FuncDecl{
		"main":          {Name: "main"},
		"test_alpha":    {Name: "test_alpha"},
		"test_beta":     {Name: "test_beta"},
		"helper":        {Name: "helper"},
	}

	got := sortedTestNames(funcs)

	want := []string{"test_alpha", "test_beta"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func Test_CollectHomeFiles_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.home")

	if err := os.WriteFile(path, []byte("fn main() {}"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := collectHomeFiles(path)
	if err != nil {
		t.Fatalf("collectHomeFiles: %v", err)
	}

	if len(got) != 1 || got[0] != path {
		t.Fatalf("expected [%s], got %v", path, got)
	}
}

func Test_CollectHomeFiles_Directory(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"a.home", "b.home", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(""), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	got, err := collectHomeFiles(dir)
	if err != nil {
		t.Fatalf("collectHomeFiles: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 .home files, got %d: %v", len(got), got)
	}
}

func Test_DocEntry_FuncDecl(t *testing.T) {
	fn := &ast.FuncDecl{Name: "main", Doc: "entry point", ReturnType: nil}

	name, doc, sig := docEntry(fn)

	if name != "main" || doc != "entry point" {
		t.Fatalf("unexpected docEntry result: %q %q %q", name, doc, sig)
	}
}
