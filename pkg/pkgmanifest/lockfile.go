package pkgmanifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Lockfile pins the exact resolved version and content hash of every
// transitive dependency, so repeated builds are reproducible.
type Lockfile struct {
	Entries []LockEntry `toml:"package"`
}

// LockEntry is one resolved dependency.
type LockEntry struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Hash    string `toml:"hash"`
	Source  string `toml:"source"`
}

// LoadLockfile reads home.lock from path. A missing file is not an error:
// it simply means no lockfile has been generated yet.
func LoadLockfile(path string) (*Lockfile, error) {
	var lf Lockfile

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Lockfile{}, nil
	}

	if _, err := toml.DecodeFile(path, &lf); err != nil {
		return nil, fmt.Errorf("pkgmanifest: decoding lockfile %s: %w", path, err)
	}

	return &lf, nil
}

// SaveLockfile writes lf to path as TOML, one [[package]] table per entry.
func SaveLockfile(path string, lf *Lockfile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pkgmanifest: creating lockfile %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(lf); err != nil {
		return fmt.Errorf("pkgmanifest: encoding lockfile %s: %w", path, err)
	}

	return nil
}

// Hashes returns every entry's content hash, for feeding into
// cache.Key.DepHashes.
func (lf *Lockfile) Hashes() []string {
	out := make([]string, len(lf.Entries))
	for i, e := range lf.Entries {
		out[i] = e.Hash
	}

	return out
}
