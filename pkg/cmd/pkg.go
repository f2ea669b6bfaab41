package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/home-lang/home/pkg/pkgmanifest"
)

var pkgCmd = &cobra.Command{
	Use:   "pkg",
	Short: "Package manifest operations (init, add, install, run).",
}

var pkgInitCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a new home.toml manifest in the current directory.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}

		path := filepath.Join(".", "home.toml")

		if _, err := os.Stat(path); err == nil {
			fmt.Println("home.toml already exists")
			os.Exit(1)
		}

		m := &pkgmanifest.Manifest{
			Package: pkgmanifest.Package{
				Name:    args[0],
				Version: "0.1.0",
				Edition: pkgmanifest.DefaultEdition,
			},
			Deps: map[string]pkgmanifest.Dependency{},
		}

		if err := pkgmanifest.Save(path, m); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var pkgAddCmd = &cobra.Command{
	Use:   "add <name> <version>",
	Short: "Add a dependency to home.toml.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}

		m, err := pkgmanifest.Load("home.toml")
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		if m.Deps == nil {
			m.Deps = map[string]pkgmanifest.Dependency{}
		}

		m.Deps[args[0]] = pkgmanifest.Dependency{Version: args[1]}

		if err := pkgmanifest.Save("home.toml", m); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var pkgInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Resolve dependencies in home.toml and write home.lock.",
	Run: func(cmd *cobra.Command, args []string) {
		m, err := pkgmanifest.Load("home.toml")
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		lf, err := pkgmanifest.LoadLockfile("home.lock")
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		locked := make(map[string]bool, len(lf.Entries))
		for _, e := range lf.Entries {
			locked[e.Name] = true
		}

		for name, dep := range m.Deps {
			if locked[name] {
				continue
			}

			// No registry or VCS fetcher is wired up; a locally-pinned
			// version with an empty hash records intent without
			// fabricating content that was never actually resolved.
			lf.Entries = append(lf.Entries, pkgmanifest.LockEntry{
				Name:    name,
				Version: dep.Version,
				Source:  dep.Path,
			})
		}

		if err := pkgmanifest.SaveLockfile("home.lock", lf); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

var pkgRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Compile and run the package's entrypoint.",
	Run: func(cmd *cobra.Command, args []string) {
		m, err := pkgmanifest.Load("home.toml")
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		entry := m.Package.Entrypoint
		if entry == "" {
			entry = "main.home"
		}

		runCmd.Run(cmd, []string{entry})
	},
}

func init() {
	pkgCmd.AddCommand(pkgInitCmd)
	pkgCmd.AddCommand(pkgAddCmd)
	pkgCmd.AddCommand(pkgInstallCmd)
	pkgCmd.AddCommand(pkgRunCmd)
}
