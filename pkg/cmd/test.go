package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/comptime"
	"github.com/home-lang/home/pkg/parser"
	"github.com/home-lang/home/pkg/util/source"
)

// testFuncPrefix marks a top-level function as a test entry point. The
// language has no attribute syntax modelled in the AST yet, so discovery
// falls back to a naming convention rather than a richer metadata channel.
const testFuncPrefix = "test_"

var testCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Collect and run test functions.",
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) == 1 {
			path = args[0]
		}

		files, err := collectHomeFiles(path)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		failed := 0
		ran := 0

		for _, path := range files {
			contents, err := os.ReadFile(path)
			if err != nil {
				fmt.Println(err)
				os.Exit(2)
			}

			file := source.NewSourceFile(path, contents)
			astFile, _, diags := parser.Parse(file)

			printDiags(cmd, diags)

			if diags.HasErrors() {
				failed++
				continue
			}

			prog := &comptime.Program{Funcs: make(map[string]*ast.FuncDecl), Consts: make(map[string]ast.Expr), Enums: make(map[string]*ast.EnumDecl)}

			for _, item := range astFile.Items {
				switch it := item.(type) {
				case *ast.FuncDecl:
					prog.Funcs[it.Name] = it
				case *ast.EnumDecl:
					prog.Enums[it.Name] = it
				case *ast.ConstDecl:
					prog.Consts[it.Name] = it.Value
				}
			}

			for _, name := range sortedTestNames(prog.Funcs) {
				ran++

				ev := comptime.NewEvaluator(prog)

				if _, err := ev.EvalFunc(prog.Funcs[name], nil); err != nil {
					fmt.Printf("FAIL %s::%s: %v\n", path, name, err)
					failed++

					continue
				}

				fmt.Printf("ok   %s::%s\n", path, name)
			}
		}

		fmt.Printf("%d tests, %d failed\n", ran, failed)

		if failed > 0 {
			os.Exit(1)
		}
	},
}

func sortedTestNames(funcs map[string]*ast.FuncDecl) []string {
	var names []string

	for name := range funcs {
		if strings.HasPrefix(name, testFuncPrefix) {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

func collectHomeFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string

	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && filepath.Ext(p) == ".home" {
			files = append(files, p)
		}

		return nil
	})

	return files, err
}
