// The main package for the tourney-enrich executable.
package main

import (
	"github.com/refsignal/tourney-enrich/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
