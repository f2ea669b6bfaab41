// Package cmd implements the home command-line tool: build, run, test,
// check, fmt, pkg and doc, wired over pkg/compiler, pkg/comptime,
// pkg/fmtsrc, pkg/pkgmanifest and pkg/cache.
package cmd

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in when building via a release pipeline; left empty
// for "go install" builds, which fall back to runtime/debug build info.
var Version string

var rootCmd = &cobra.Command{
	Use:   "home",
	Short: "The Home language compiler and toolchain.",
	Long:  "A compiler and general toolbox for the Home programming language.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("home ")

			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Printf("(unknown version)")
			}

			fmt.Println()

			return
		}

		fmt.Println(cmd.UsageString())
	},
}

// Execute runs the root command, whose child commands are added in init.
// Called once from cmd/home/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable ANSI colour in diagnostic output")
	rootCmd.PersistentFlags().String("cache-dir", "", "artifact cache directory (defaults to $HOME_CACHE_DIR)")
	rootCmd.PersistentFlags().String("target", "", "target triple (accepted but not read; output is always an x86-64 ELF64 object)")
	rootCmd.PersistentFlags().UintP("opt", "O", 0, "optimisation level (0-3, or 4 for size)")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	}

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(pkgCmd)
	rootCmd.AddCommand(docCmd)
}
