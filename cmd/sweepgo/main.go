package main

import (
	"os"

	"sweepgo/cmd/sweepgo/commands"
)

func main() {
	root := commands.NewRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
