package main

import (
	"os"

	"github.com/skipfire/tether/cmd/tetherctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		commands.PrintErr("Error: %v", err)
		os.Exit(1)
	}
}
