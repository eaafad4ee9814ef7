// Command orchcore is a CLI harness over the orchcore package: it builds a
// Session, spawns one ProcessRunner per prompt, and drives them through one
// of the core's execution strategies.
package main

import (
	"fmt"
	"os"

	"github.com/kandev/orchcore/cmd/orchcore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "orchcore: %v\n", err)
		os.Exit(1)
	}
}
