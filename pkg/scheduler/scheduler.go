// Package scheduler runs module compilation across a dependency DAG: every
// module whose dependencies have finished compiling is dispatched to its
// own goroutine, and per-module diagnostics are collected in a stable order
// so multi-module builds report errors deterministically.
package scheduler

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/home-lang/home/pkg/diag"
)

// Module is one compilation unit the scheduler tracks: a name, its direct
// dependencies (by name), and the function that actually compiles it.
type Module struct {
	Name    string
	Deps    []string
	Compile func() *diag.Collector
}

// result pairs a module's name with the diagnostics its compile step
// produced, sent back over a channel for the caller to collect.
type result struct {
	name  string
	diags *diag.Collector
}

// Run compiles every module in mods, respecting dependency order: a
// module is only dispatched once every dependency named in its Deps list
// has completed. Independent modules (or an entire "ready" wavefront) run
// concurrently, one goroutine per module, collecting results over a
// channel. Returns a diag.Collector merging every module's diagnostics in
// the order the modules appear in mods, each module's own diagnostics
// sorted per diag.Collector.Sort, so completion order never affects
// report order.
func Run(mods []*Module) (*diag.Collector, error) {
	byName := make(map[string]*Module, len(mods))
	for _, m := range mods {
		byName[m.Name] = m
	}

	if err := checkAcyclic(mods, byName); err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(mods))
	results := make(map[string]*diag.Collector, len(mods))

	remaining := append([]*Module(nil), mods...)

	for len(remaining) > 0 {
		ready, rest := splitReady(remaining, done)
		if len(ready) == 0 {
			// checkAcyclic already rejected true cycles, so this only
			// happens if a module names a dependency that doesn't exist.
			return nil, fmt.Errorf("scheduler: no module ready to run among %d remaining (missing dependency?)", len(remaining))
		}

		c := make(chan result, len(ready))

		for _, m := range ready {
			go func(m *Module) {
				log.WithField("module", m.Name).Debug("compiling module")
				c <- result{name: m.Name, diags: m.Compile()}
			}(m)
		}

		for range ready {
			r := <-c
			done[r.name] = true
			results[r.name] = r.diags
		}

		remaining = rest
	}

	merged := diag.NewCollector()

	for _, m := range mods {
		if c := results[m.Name]; c != nil {
			c.Sort()

			for _, d := range c.Items() {
				merged.Report(d)
			}
		}
	}

	return merged, nil
}

func splitReady(mods []*Module, done map[string]bool) (ready, rest []*Module) {
	for _, m := range mods {
		allDone := true

		for _, d := range m.Deps {
			if !done[d] {
				allDone = false
				break
			}
		}

		if allDone {
			ready = append(ready, m)
		} else {
			rest = append(rest, m)
		}
	}

	return ready, rest
}

// checkAcyclic reports a dependency cycle, if any, via depth-first
// search with a recursion-stack marker.
func checkAcyclic(mods []*Module, byName map[string]*Module) error {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)

	state := make(map[string]int, len(mods))

	var visit func(name string, path []string) error

	visit = func(name string, path []string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			return fmt.Errorf("scheduler: dependency cycle detected: %v", append(path, name))
		}

		state[name] = visiting

		if m, ok := byName[name]; ok {
			for _, d := range m.Deps {
				if err := visit(d, append(path, name)); err != nil {
					return err
				}
			}
		}

		state[name] = visited

		return nil
	}

	for _, m := range mods {
		if err := visit(m.Name, nil); err != nil {
			return err
		}
	}

	return nil
}
