// Package pass implements the optimization pass manager: an ordered
// pipeline of IR-to-IR transformations selected by optimization level,
// each instrumented with a per-pass counter.
package pass

import (
	"fmt"

	"github.com/home-lang/home/pkg/ast"
)

// Level identifies an optimization level, mirroring the common compiler
// -O0..-O3 and -Os convention.
type Level int

// Optimization levels.
const (
	O0 Level = iota
	O1
	O2
	O3
	Os // optimize for size
)

// ParseLevel converts a CLI flag string into a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "0":
		return O0, nil
	case "1":
		return O1, nil
	case "2":
		return O2, nil
	case "3":
		return O3, nil
	case "s":
		return Os, nil
	default:
		return O0, fmt.Errorf("unrecognised optimization level %q", s)
	}
}

// Pass is a single optimization transformation over a function body. It
// returns the (possibly rewritten) block and the number of changes it
// made, so the pass manager can report per-pass statistics.
type Pass struct {
	Name string
	Run  func(*ast.Block) (*ast.Block, int)
}

// Stats accumulates per-pass change counts across every Run of a
// Manager; Manager.Stats returns it.
type Stats struct {
	Counts map[string]int
}

// NewStats constructs an empty Stats accumulator.
func NewStats() *Stats { return &Stats{Counts: make(map[string]int)} }

// Manager runs the ordered pipeline of passes appropriate to a given
// optimization level.
type Manager struct {
	passes []Pass
	stats  *Stats
}

// NewManager constructs a pass manager configured for the given level.
func NewManager(level Level) *Manager {
	var passes []Pass

	switch level {
	case O0:
		// No optimization: only the mandatory lowering passes run, which
		// live in pkg/codegen rather than here.
	case Os:
		passes = []Pass{constantFoldPass(), deadStoreEliminationPass()}
	case O1:
		passes = []Pass{constantFoldPass(), deadStoreEliminationPass()}
	case O2:
		passes = []Pass{constantFoldPass(), deadStoreEliminationPass(), commonSubexpressionPass()}
	case O3:
		passes = []Pass{
			constantFoldPass(), deadStoreEliminationPass(), commonSubexpressionPass(),
			constantFoldPass(), // second fixpoint-style pass after CSE exposes more folds
		}
	}

	return &Manager{passes: passes, stats: NewStats()}
}

// Stats returns the accumulated per-pass change counters.
func (m *Manager) Stats() *Stats { return m.stats }

// RunFunc runs the configured pipeline over a single function's body,
// in order, feeding each pass's output into the next.
func (m *Manager) RunFunc(body *ast.Block) *ast.Block {
	for _, p := range m.passes {
		var n int
		body, n = p.Run(body)
		m.stats.Counts[p.Name] += n
	}

	return body
}
