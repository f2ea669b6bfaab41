// Package pkgmanifest reads and writes a Home package's manifest
// (home.toml) and lockfile (home.lock), the module-level equivalent of
// a per-module compilation config.
package pkgmanifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Manifest is the decoded contents of a package's home.toml.
type Manifest struct {
	Package Package          `toml:"package"`
	Deps    map[string]Dependency `toml:"dependencies"`
}

// Package holds the package-identity section of home.toml.
type Package struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Edition     string `toml:"edition"`
	Entrypoint  string `toml:"entrypoint"`
}

// Dependency is one entry of the [dependencies] table, written as a table
// with version, path or git keys (`fmtlib = { version = "1.2.0" }`); a
// bare version string does not decode into it.
type Dependency struct {
	Version string `toml:"version"`
	Path    string `toml:"path"`
	Git     string `toml:"git"`
}

// Load reads and decodes a home.toml manifest from path.
func Load(path string) (*Manifest, error) {
	var m Manifest

	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("pkgmanifest: decoding %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("pkgmanifest: %s: unrecognised keys %v", path, undecoded)
	}

	if m.Package.Name == "" {
		return nil, fmt.Errorf("pkgmanifest: %s: [package].name is required", path)
	}

	if m.Package.Edition == "" {
		m.Package.Edition = DefaultEdition
	}

	return &m, nil
}

// DefaultEdition is assumed when a manifest omits the edition key.
const DefaultEdition = "2024"

// Save writes m to path as TOML.
func Save(path string, m *Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pkgmanifest: creating %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("pkgmanifest: encoding %s: %w", path, err)
	}

	return nil
}
