package scheduler

import (
	"sync"
	"testing"

	"github.com/home-lang/home/pkg/diag"
	"github.com/home-lang/home/pkg/util/source"
)

func Test_Run_OrdersByDependency(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)

	record := func(name string) *diag.Collector {
		mu.Lock()
		order = append(order, name)
		mu.Unlock()

		return diag.NewCollector()
	}

	mods := []*Module{
		{Name: "c", Deps: []string{"a", "b"}, Compile: func() *diag.Collector { return record("c") }},
		{Name: "a", Compile: func() *diag.Collector { return record("a") }},
		{Name: "b", Deps: []string{"a"}, Compile: func() *diag.Collector { return record("b") }},
	}

	if _, err := Run(mods); err != nil {
		t.Fatalf("Run: %v", err)
	}

	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}

	if pos["a"] > pos["b"] {
		t.Fatalf("expected a before b, got order %v", order)
	}

	if pos["b"] > pos["c"] || pos["a"] > pos["c"] {
		t.Fatalf("expected c last, got order %v", order)
	}
}

func Test_Run_DetectsCycle(t *testing.T) {
	mods := []*Module{
		{Name: "x", Deps: []string{"y"}, Compile: func() *diag.Collector { return diag.NewCollector() }},
		{Name: "y", Deps: []string{"x"}, Compile: func() *diag.Collector { return diag.NewCollector() }},
	}

	if _, err := Run(mods); err == nil {
		t.Fatal("expected a dependency-cycle error")
	}
}

func Test_Run_MergesDiagnostics(t *testing.T) {
	mods := []*Module{
		{Name: "a", Compile: func() *diag.Collector {
			c := diag.NewCollector()
			c.Errorf(nil, source.NewSpan(0, 0), "H0001", "boom in a")
			return c
		}},
		{Name: "b", Compile: func() *diag.Collector {
			c := diag.NewCollector()
			c.Errorf(nil, source.NewSpan(0, 0), "H0002", "boom in b")
			return c
		}},
	}

	merged, err := Run(mods)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(merged.Items()) != 2 {
		t.Fatalf("expected 2 merged diagnostics, got %d", len(merged.Items()))
	}
}
