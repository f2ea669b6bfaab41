package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/comptime"
	"github.com/home-lang/home/pkg/parser"
	"github.com/home-lang/home/pkg/util/source"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Compile and run a Home source file's main function.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(2)
		}

		contents, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		file := source.NewSourceFile(args[0], contents)

		astFile, _, diags := parser.Parse(file)

		printDiags(cmd, diags)

		if diags.HasErrors() {
			os.Exit(1)
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

		if _, ok := prog.Funcs["main"]; !ok {
			fmt.Println("home: no main function found")
			os.Exit(2)
		}

		ev := comptime.NewEvaluator(prog)

		result, err := ev.EvalFunc(prog.Funcs["main"], nil)
		if err != nil {
			// A main that isn't compile-time-evaluable (I/O, syscalls,
			// non-const loops beyond the step budget) needs a linked,
			// loaded native binary to execute, which this toolchain does
			// not implement; report rather than silently no-op.
			fmt.Printf("home: cannot run %q: %v\n", args[0], err)
			os.Exit(1)
		}

		os.Exit(exitCodeOf(result))
	},
}

func exitCodeOf(v comptime.Value) int {
	switch n := v.(type) {
	case comptime.Int:
		return int(n)
	default:
		return 0
	}
}
