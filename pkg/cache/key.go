// Package cache implements the content-addressed artifact cache: compiled
// module outputs are keyed by a hash of their source, compiler version,
// optimisation level, flags, and dependency hashes, so an unchanged module
// can be skipped on a subsequent build.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/home-lang/home/pkg/pass"
)

// Key uniquely identifies one compiled artifact.
type Key struct {
	Source      []byte
	Version     string
	Level       pass.Level
	Flags       []string
	DepHashes   []string // content hashes of this module's direct dependencies
}

// Hash computes the cache key's content-addressed digest:
// hash(source ⊕ version ⊕ opt-level ⊕ flags ⊕ dep-hashes). Flags and
// dependency hashes are sorted first so that key construction is
// insensitive to caller ordering.
func (k Key) Hash() string {
	h := sha256.New()

	h.Write(k.Source)
	fmt.Fprintf(h, "\x00version=%s\x00level=%d", k.Version, k.Level)

	flags := append([]string(nil), k.Flags...)
	sort.Strings(flags)

	for _, f := range flags {
		fmt.Fprintf(h, "\x00flag=%s", f)
	}

	deps := append([]string(nil), k.DepHashes...)
	sort.Strings(deps)

	for _, d := range deps {
		fmt.Fprintf(h, "\x00dep=%s", d)
	}

	return hex.EncodeToString(h.Sum(nil))
}
