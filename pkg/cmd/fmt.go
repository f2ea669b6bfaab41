package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/home-lang/home/pkg/fmtsrc"
	"github.com/home-lang/home/pkg/parser"
	"github.com/home-lang/home/pkg/util/source"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <path>",
	Short: "Format a Home source file in place.",
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

		formatted := fmtsrc.File(astFile)

		if GetFlag(cmd, "check") {
			if formatted != string(contents) {
				fmt.Printf("%s is not formatted\n", args[0])
				os.Exit(1)
			}

			return
		}

		if err := os.WriteFile(args[0], []byte(formatted), 0o644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	fmtCmd.Flags().Bool("check", false, "report whether the file is already formatted, without writing")
}
