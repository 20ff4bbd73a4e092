// ./main.go
package main

import (
	"github.com/sbenkov/aviator/cmd"
)

func main() {
	// Execute handles command-line parsing, configuration and signal-aware
	// execution for every subcommand.
	cmd.Execute()
}
