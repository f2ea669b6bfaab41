// Command home is the entry point for the Home language compiler and
// toolchain's command-line interface.
package main

import "github.com/home-lang/home/pkg/cmd"

func main() {
	cmd.Execute()
}
