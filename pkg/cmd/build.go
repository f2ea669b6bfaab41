package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/home-lang/home/pkg/cache"
	"github.com/home-lang/home/pkg/compiler"
	"github.com/home-lang/home/pkg/diag"
	"github.com/home-lang/home/pkg/util/source"
)

var buildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Compile a Home source file to a native object file.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}

		out := GetString(cmd, "output")
		if out == "" {
			base := filepath.Base(args[0])
			out = strings.TrimSuffix(base, filepath.Ext(base))
		}

		object, diags, err := compileNative(cmd, args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		printDiags(cmd, diags)

		if diags.HasErrors() {
			os.Exit(1)
		}

		if err := os.WriteFile(out, object, 0o644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	buildCmd.Flags().StringP("output", "o", "", "output path (defaults to the input file's base name)")
	buildCmd.Flags().Bool("no-cache", false, "bypass the artifact cache")
}

// compileNative runs the full pipeline (parse through native codegen) over
// a single file, honouring --no-cache, --cache-dir and --opt.
func compileNative(cmd *cobra.Command, path string) ([]byte, *diag.Collector, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("home: reading %q: %w", path, err)
	}

	file := source.NewSourceFile(path, contents)

	cfg := compiler.CompilationConfig{
		OptLevel:        optLevel(cmd),
		Native:          true,
		CompilerVersion: Version,
	}

	var c *compiler.Compiler

	if dir := cacheDir(cmd); dir != "" && !GetFlag(cmd, "no-cache") {
		store, err := cache.NewStore(dir, 1<<30)
		if err != nil {
			return nil, nil, fmt.Errorf("home: opening cache at %q: %w", dir, err)
		}

		c = compiler.NewCompilerWithCache(cfg, store)
	} else {
		c = compiler.NewCompiler(cfg)
	}

	result, err := c.CompileFile(file)
	if err != nil {
		return nil, nil, err
	}

	return result.Object, result.Diags, nil
}

func printDiags(cmd *cobra.Command, diags *diag.Collector) {
	if diags == nil || len(diags.Items()) == 0 {
		return
	}

	noColor := !useColour(cmd)
	fmt.Print(diag.RenderAll(diags, false, noColor))
}
