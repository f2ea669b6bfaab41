package cmd

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/home-lang/home/pkg/ast"
	"github.com/home-lang/home/pkg/fmtsrc"
	"github.com/home-lang/home/pkg/parser"
	"github.com/home-lang/home/pkg/util/source"
)

var docCmd = &cobra.Command{
	Use:   "doc <file>",
	Short: "Emit HTML documentation for a Home source file to ./docs/.",
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

		if err := os.MkdirAll("docs", 0o755); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		out := filepath.Join("docs", name+".html")

		if err := os.WriteFile(out, []byte(renderDocHTML(name, astFile)), 0o644); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func renderDocHTML(title string, f *ast.File) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title></head><body>\n")
	b.WriteString("<h1>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h1>\n")

	for _, item := range f.Items {
		name, doc, sig := docEntry(item)
		if name == "" {
			continue
		}

		b.WriteString("<section>\n<h2><code>")
		b.WriteString(html.EscapeString(sig))
		b.WriteString("</code></h2>\n")

		if doc != "" {
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(doc))
			b.WriteString("</p>\n")
		}

		b.WriteString("</section>\n")
	}

	b.WriteString("</body></html>\n")

	return b.String()
}

// docEntry extracts the name, doc comment and rendered signature of an
// item worth documenting. Items with no name (impls) are skipped.
func docEntry(item ast.Item) (name, doc, sig string) {
	switch it := item.(type) {
	case *ast.FuncDecl:
		return it.Name, it.Doc, fmt.Sprintf("fn %s(...) -> %s", it.Name, fmtsrc.TypeString(it.ReturnType))
	case *ast.StructDecl:
		return it.Name, it.Doc, "struct " + it.Name
	case *ast.EnumDecl:
		return it.Name, it.Doc, "enum " + it.Name
	case *ast.TraitDecl:
		return it.Name, it.Doc, "trait " + it.Name
	default:
		return "", "", ""
	}
}
