package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/home-lang/home/pkg/compiler"
	"github.com/home-lang/home/pkg/util/source"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Type- and borrow-check a Home source file without codegen.",
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

		c := compiler.NewCompiler(compiler.CompilationConfig{
			OptLevel: optLevel(cmd),
			Native:   false,
		})

		result, err := c.CompileFile(file)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		printDiags(cmd, result.Diags)

		if result.Diags.HasErrors() {
			os.Exit(1)
		}
	},
}
