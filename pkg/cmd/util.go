package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/home-lang/home/pkg/pass"
)

// optLevel maps the --opt flag (0-3, 4 for size) onto a pass.Level.
func optLevel(cmd *cobra.Command) pass.Level {
	switch GetUint(cmd, "opt") {
	case 0:
		return pass.O0
	case 1:
		return pass.O1
	case 2:
		return pass.O2
	case 3:
		return pass.O3
	default:
		return pass.Os
	}
}

// GetFlag gets an expected boolean flag; on error it prints the error and
// exits with status 2.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetString gets an expected string flag; on error it prints the error and
// exits with status 2.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned integer flag; on error it prints the
// error and exits with status 2.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// cacheDir resolves the artifact cache directory: the --cache-dir flag,
// falling back to the HOME_CACHE_DIR environment variable, empty when
// neither is set (caching disabled).
func cacheDir(cmd *cobra.Command) string {
	if dir := GetString(cmd, "cache-dir"); dir != "" {
		return dir
	}

	return os.Getenv("HOME_CACHE_DIR")
}

// useColour reports whether diagnostics should be rendered with ANSI
// colour: disabled by NO_COLOR (per its de-facto convention) or the
// --no-color flag, enabled otherwise.
func useColour(cmd *cobra.Command) bool {
	if GetFlag(cmd, "no-color") {
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	return true
}
